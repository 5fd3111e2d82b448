package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/ytm-grabber/internal/event"
)

// progressLineStep is the percent step of plain progress lines when the bar is disabled.
const progressLineStep = 25

// Renderer prints events for a terminal.
// Download progress drives a progress bar; every other event becomes a status line.
type Renderer struct {
	out         io.Writer
	showBar     bool
	mu          sync.Mutex
	bar         *progressbar.ProgressBar
	barPosition int
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer, showBar bool) *Renderer {
	return &Renderer{
		out:     out,
		showBar: showBar,
	}
}

// Consume renders messages until the channel is closed.
func (r *Renderer) Consume(messages <-chan event.Message) {
	for msg := range messages {
		r.Render(msg)
	}

	r.closeBar()
}

// Render prints a single message.
func (r *Renderer) Render(msg event.Message) {
	progress, isProgress := msg.Event.(event.DownloadProgress)
	if !isProgress {
		r.closeBar()
		fmt.Fprintln(r.out, event.Format(msg.Event)) //nolint:errcheck // Terminal output.

		return
	}

	if r.showBar {
		r.updateBar(progress)

		return
	}

	if progress.Percent()%progressLineStep == 0 {
		fmt.Fprintln(r.out, event.Format(progress)) //nolint:errcheck // Terminal output.
	}
}

func (r *Renderer) updateBar(progress event.DownloadProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || r.barPosition != progress.Position {
		if r.bar != nil {
			_ = r.bar.Finish()
		}

		r.bar = progressbar.NewOptions64(
			progress.TotalBytes,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %s", progress.Position, progress.Total, progress.Title)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30), //nolint:mnd // Bar width in characters.
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }), //nolint:errcheck // Terminal output.
		)
		r.barPosition = progress.Position
	}

	_ = r.bar.Set64(progress.BytesRead)
}

func (r *Renderer) closeBar() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}

	_ = r.bar.Finish()
	r.bar = nil
}
