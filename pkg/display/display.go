// Package display prints the conversation to the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	userLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	botLabel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Options configures a Display.
type Options struct {
	// Render formats replies as markdown with glamour.
	Render bool
	// Spinner shows an animated indicator while waiting for the model.
	Spinner bool
	// WordWrap is the markdown wrap width. Zero means 100.
	WordWrap int
}

// Display writes prompts, replies and errors.
type Display struct {
	out      io.Writer
	errOut   io.Writer
	renderer *glamour.TermRenderer
	spinner  bool
}

// New creates a Display. A renderer that fails to initialise degrades to
// plain text output and the error is returned alongside a usable Display.
func New(out, errOut io.Writer, opts Options) (*Display, error) {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	d := &Display{out: out, errOut: errOut, spinner: opts.Spinner}
	if !opts.Render {
		return d, nil
	}
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return d, fmt.Errorf("init markdown renderer: %w", err)
	}
	d.renderer = r
	return d, nil
}

// Welcome prints the banner shown when the session starts.
func (d *Display) Welcome(title string, lines []string) {
	_, _ = fmt.Fprintln(d.out, titleStyle.Render(title))
	for _, line := range lines {
		_, _ = fmt.Fprintln(d.out, line)
	}
	_, _ = fmt.Fprintln(d.out)
}

// Prompt prints the user input label.
func (d *Display) Prompt() {
	_, _ = fmt.Fprint(d.out, userLabel.Render("You:")+" ")
}

// Reply prints the assistant's reply.
func (d *Display) Reply(content string) {
	content = strings.TrimSpace(content)
	if d.renderer != nil {
		if rendered, err := d.renderer.Render(content); err == nil {
			_, _ = fmt.Fprintf(d.out, "%s\n%s\n", botLabel.Render("Bot:"), strings.TrimRight(rendered, "\n"))
			return
		}
	}
	_, _ = fmt.Fprintf(d.out, "%s %s\n\n", botLabel.Render("Bot:"), content)
}

// Info prints a plain line to the conversation output.
func (d *Display) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format+"\n", args...)
}

// Note prints a dimmed line, used for status messages.
func (d *Display) Note(format string, args ...any) {
	_, _ = fmt.Fprintln(d.out, dimStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error to the error output.
func (d *Display) Error(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(d.errOut, "%s %v\n\n", errorLabel.Render("Error:"), err)
}

// StartSpinner starts a spinner on the error output. The returned Spinner is
// a no-op when spinners are disabled.
func (d *Display) StartSpinner(message string) *Spinner {
	if !d.spinner {
		return &Spinner{stopped: true}
	}
	sp := NewSpinner(d.errOut, message)
	sp.Start()
	return sp
}

// Spinner wraps the spinner with elapsed time display.
type Spinner struct {
	s         *spinner.Spinner
	startTime time.Time
	message   string
	stopChan  chan struct{}
	wg        sync.WaitGroup
	stopped   bool
	mu        sync.Mutex
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" %s (0.0s)", message)
	s.Writer = w
	return &Spinner{
		s:        s,
		message:  message,
		stopChan: make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	sp.startTime = time.Now()
	sp.s.Start()

	sp.wg.Add(1)
	go func() {
		defer sp.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-sp.stopChan:
				return
			case <-ticker.C:
				sp.mu.Lock()
				elapsed := time.Since(sp.startTime).Seconds()
				sp.s.Suffix = fmt.Sprintf(" %s (%.1fs)", sp.message, elapsed)
				sp.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and clears the line. Safe to call more than once.
func (sp *Spinner) Stop() {
	sp.mu.Lock()
	if sp.stopped {
		sp.mu.Unlock()
		return
	}
	sp.stopped = true
	sp.mu.Unlock()

	close(sp.stopChan)
	sp.wg.Wait()
	sp.s.Stop()
}
