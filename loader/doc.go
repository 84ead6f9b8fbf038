// Package loader walks a corpus directory and turns every supported file
// into documents using a formats.Registry.
//
// The walk happens once. Matching files are grouped by extension and each
// extension is parsed as a batch on a bounded worker pool. Batches are
// processed in registry order and files in path order, so the output is
// deterministic for a given tree.
//
// By default a failing file empties its whole extension's contribution and
// the failure is reported in the FormatResult. WithFileTolerance narrows
// the blast radius to the failing file.
package loader
