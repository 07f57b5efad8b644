package util

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"

	"gomori.dev/x/judge/pkg/eve/match"
)

const SPIN = 31

// Progress is a terminal spinner which counts the finished matches of a
// tournament. It does nothing when standard error isn't a terminal.
type Progress struct {
	match.Nop

	mu       sync.Mutex
	spinner  *spinner.Spinner
	total    int
	finished int
}

func NewProgress(total int) *Progress {
	progress := &Progress{total: total}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		progress.spinner = spinner.New(
			spinner.CharSets[SPIN], 100*time.Millisecond,
			spinner.WithWriter(os.Stderr),
		)
	}

	progress.update()
	return progress
}

func (progress *Progress) Start() {
	if progress.spinner != nil {
		progress.spinner.Start()
	}
}

func (progress *Progress) Finished(match.Result) {
	progress.mu.Lock()
	defer progress.mu.Unlock()

	progress.finished++
	progress.update()
}

// Count returns the number of finished matches.
func (progress *Progress) Count() int {
	progress.mu.Lock()
	defer progress.mu.Unlock()
	return progress.finished
}

func (progress *Progress) Close() error {
	if progress.spinner != nil {
		progress.spinner.Stop()
	}

	return nil
}

func (progress *Progress) update() {
	if progress.spinner == nil {
		return
	}

	progress.spinner.Lock()
	progress.spinner.Suffix = fmt.Sprintf(" \x1b[33m%d/%d\x1b[0m matches", progress.finished, progress.total)
	progress.spinner.Unlock()
}
