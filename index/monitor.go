package index

import (
	"io"

	"github.com/poiesic/docindex/embedding"
	"github.com/poiesic/docindex/loader"
)

// RebuildMonitor observes the stages of a rebuild. Calls happen on the
// rebuilding goroutine, in stage order.
type RebuildMonitor interface {
	Start(root, location string)
	AfterLoad(report *loader.Report)
	AfterSplit(documents, chunks int)
	BatchWritten(written, total int)
	AfterSwap(generation string, chunks int)
	Finish(chunks int, err error)
}

type noopMonitor struct{}

var _ RebuildMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)          {}
func (n *noopMonitor) AfterLoad(_ *loader.Report) {}
func (n *noopMonitor) AfterSplit(_, _ int)        {}
func (n *noopMonitor) BatchWritten(_, _ int)      {}
func (n *noopMonitor) AfterSwap(_ string, _ int)  {}
func (n *noopMonitor) Finish(_ int, _ error)      {}

// ProgressMonitor prints embedding progress to a writer, typically a terminal.
type ProgressMonitor struct {
	noopMonitor
	writer   io.Writer
	interval int
	tracker  *embedding.ProgressTracker
}

var _ RebuildMonitor = (*ProgressMonitor)(nil)

// NewProgressMonitor reports every interval chunks.
func NewProgressMonitor(w io.Writer, interval int) *ProgressMonitor {
	return &ProgressMonitor{writer: w, interval: interval}
}

func (p *ProgressMonitor) AfterSplit(_, chunks int) {
	p.tracker = embedding.NewProgressTracker(p.writer, chunks, p.interval)
	p.tracker.SetLabel("Indexing", "chunks")
	p.tracker.Start()
}

func (p *ProgressMonitor) BatchWritten(written, _ int) {
	if p.tracker != nil {
		p.tracker.Update(written)
	}
}

func (p *ProgressMonitor) Finish(_ int, err error) {
	if p.tracker != nil && err == nil {
		p.tracker.Finish()
	}
	p.tracker = nil
}
