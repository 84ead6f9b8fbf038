// Package watch triggers full index rebuilds when a corpus directory
// changes.
//
// A Watcher subscribes to the corpus tree with fsnotify, coalesces bursts
// of events within a debounce window, and then runs one rebuild. Rebuilds
// never overlap; events that arrive during a rebuild schedule the next one.
package watch
