package service

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// BuildProgress reports ingestion progress for the build command. It is
// a single-task simplification of the teacher's ProgressManagerImpl,
// which tracked many named tasks; ingestion only ever runs one.
type BuildProgress struct {
	bar         *progressbar.ProgressBar
	interactive bool
}

// NewBuildProgress creates a progress reporter for total files, writing
// to w. The bar renders only when w is an interactive terminal.
func NewBuildProgress(w io.Writer, total int) *BuildProgress {
	interactive := isInteractiveWriter(w)
	if !interactive {
		return &BuildProgress{interactive: false}
	}
	return &BuildProgress{
		interactive: true,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("ingesting"),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetWriter(w),
		),
	}
}

// Add advances the bar by n, a no-op when non-interactive.
func (p *BuildProgress) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

// Finish completes the bar, a no-op when non-interactive.
func (p *BuildProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func isInteractiveWriter(w io.Writer) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
