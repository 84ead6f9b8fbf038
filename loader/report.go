package loader

import "github.com/poiesic/docindex/core"

// FileError records a single file that failed to parse.
type FileError struct {
	Path string
	Err  error
}

// FormatResult is the outcome of one extension's batch.
type FormatResult struct {
	Extension string
	Format    string
	// Files lists every matched file in path order.
	Files     []string
	Documents []core.Document
	// Err is set when the batch contribution was dropped.
	Err error
	// FileErrors lists files dropped in tolerant mode.
	FileErrors []FileError
}

// Failed reports whether the batch was dropped.
func (r *FormatResult) Failed() bool {
	return r.Err != nil
}

// Report summarizes a load.
type Report struct {
	Root        string
	Results     []FormatResult
	Unsupported []string
}

// Documents returns the total number of documents produced.
func (r *Report) Documents() int {
	n := 0
	for i := range r.Results {
		n += len(r.Results[i].Documents)
	}
	return n
}

// Files returns the number of matched files.
func (r *Report) Files() int {
	n := 0
	for i := range r.Results {
		n += len(r.Results[i].Files)
	}
	return n
}

// Failures returns the results whose batch was dropped.
func (r *Report) Failures() []FormatResult {
	var out []FormatResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}
