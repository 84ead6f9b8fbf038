package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	t.Run("commands exist", func(t *testing.T) {
		for _, name := range []string{"rebuild", "stats", "watch"} {
			assert.NotNil(t, findCommand(t, app, name))
		}
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		cmd := findCommand(t, app, "rebuild")
		var reportFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "report-interval" {
				reportFlag = f
				break
			}
		}
		require.NotNil(t, reportFlag)
		assert.Equal(t, 100, reportFlag.Value)
	})

	t.Run("debounce defaults to the watcher default", func(t *testing.T) {
		cmd := findCommand(t, app, "watch")
		var debounceFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "debounce" {
				debounceFlag = f
				break
			}
		}
		require.NotNil(t, debounceFlag)
		assert.Equal(t, watch.DefaultDebounce, debounceFlag.Value)
	})

	t.Run("config reads DOCINDEX_CONFIG", func(t *testing.T) {
		var configFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "config" {
				configFlag = f
				break
			}
		}
		require.NotNil(t, configFlag)
		assert.Equal(t, []string{"DOCINDEX_CONFIG"}, configFlag.EnvVars)
	})
}

func TestRebuildCommand(t *testing.T) {
	t.Run("missing root fails", func(t *testing.T) {
		dir := t.TempDir()
		app := newApp()
		app.Writer = &bytes.Buffer{}

		err := app.Run([]string{"docindex", "--env-file", "", "rebuild",
			"--root", filepath.Join(dir, "missing"),
			"--index", filepath.Join(dir, "index"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, index.ErrRootNotFound)
	})

	t.Run("invalid chunking is rejected", func(t *testing.T) {
		dir := t.TempDir()
		app := newApp()

		err := app.Run([]string{"docindex", "--env-file", "", "rebuild",
			"--root", dir,
			"--chunk-size", "10",
			"--chunk-overlap", "10",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestStatsCommand(t *testing.T) {
	t.Run("no active index", func(t *testing.T) {
		dir := t.TempDir()
		app := newApp()
		app.Writer = &bytes.Buffer{}

		err := app.Run([]string{"docindex", "--env-file", "", "stats",
			"--index", filepath.Join(dir, "index"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, index.ErrNoActiveIndex)
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(""))
	})

	t.Run("values are exported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DOCINDEX_TEST_VALUE=loaded\n"), 0644))
		t.Setenv("DOCINDEX_TEST_VALUE", "")
		require.NoError(t, os.Unsetenv("DOCINDEX_TEST_VALUE"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "loaded", os.Getenv("DOCINDEX_TEST_VALUE"))
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docindex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root: from-file\nchunk_size: 500\n"), 0644))

	var gotRoot, gotIndex string
	var gotSize, gotOverlap int
	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
		},
		Commands: []*cli.Command{
			{
				Name:  "rebuild",
				Flags: overrideFlags(),
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					gotRoot, gotIndex = cfg.Root, cfg.IndexLocation
					gotSize, gotOverlap = cfg.ChunkSize, cfg.ChunkOverlap
					return nil
				},
			},
		},
	}

	err := app.Run([]string{"test", "--config", cfgPath, "rebuild", "--index", "elsewhere", "--chunk-overlap", "50"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", gotRoot)
	assert.Equal(t, "elsewhere", gotIndex)
	assert.Equal(t, 500, gotSize)
	assert.Equal(t, 50, gotOverlap)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
