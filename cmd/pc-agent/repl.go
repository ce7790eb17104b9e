package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/pc-agent-go/pkg/display"
	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
)

// runner is the part of the agent loop the REPL drives.
type runner interface {
	Run(ctx context.Context, userInput string) (string, error)
	Reset()
}

// replOptions configures REPL behavior.
type replOptions struct {
	Display  *display.Display
	AppNames []string
	Model    string
	Verbose  bool
	Logger   loggerpkg.Logger
}

type inputLine struct {
	text string
	err  error
}

// readLines feeds lines from in until EOF, a read error (sent as the last
// value) or ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		send := func(l inputLine) bool {
			select {
			case lines <- l:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return lines
}

// runREPL reads user messages until quit, EOF or ctx is cancelled.
func runREPL(ctx context.Context, app runner, opts replOptions, in io.Reader) error {
	if app == nil {
		return errors.New("agent loop is required")
	}
	if in == nil {
		return errors.New("input reader is required")
	}
	disp := opts.Display
	if disp == nil {
		disp, _ = display.New(nil, nil, display.Options{})
	}
	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", map[string]any{"model": opts.Model})

	printWelcome(disp, opts.Model)
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, in)

	for {
		disp.Prompt()

		var line inputLine
		var ok bool
		select {
		case <-ctx.Done():
			disp.Info("")
			disp.Info("Goodbye!")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			disp.Info("")
			disp.Info("Goodbye!")
			return nil
		}
		if line.err != nil {
			return fmt.Errorf("read input: %w", line.err)
		}

		input := strings.TrimSpace(line.text)
		if input == "" {
			continue
		}

		handled, shouldQuit := handleCommand(input, app, opts.AppNames, disp)
		if shouldQuit {
			return nil
		}
		if handled {
			continue
		}

		sp := disp.StartSpinner("Thinking...")
		reply, err := app.Run(ctx, input)
		sp.Stop()
		if err != nil {
			if ctx.Err() != nil {
				disp.Info("")
				disp.Info("Goodbye!")
				return nil
			}
			disp.Error(err)
			continue
		}
		disp.Reply(reply)
	}
}

func printWelcome(disp *display.Display, model string) {
	lines := []string{}
	if model != "" {
		lines = append(lines, "Model: "+model)
	}
	lines = append(lines, "Ask me to open apps, search the web or manage files. Type /help for commands, quit or exit to leave.")
	disp.Welcome("=== PC Agent - Interactive Mode ===", lines)
}

// handleCommand runs REPL commands. Bare quit/exit leave the loop like their
// slash forms.
func handleCommand(input string, app runner, appNames []string, disp *display.Display) (handled, shouldQuit bool) {
	cmd := strings.ToLower(input)
	switch cmd {
	case "quit", "exit", "/quit", "/exit", "/q":
		disp.Info("Goodbye!")
		return true, true
	}
	if !strings.HasPrefix(cmd, "/") {
		return false, false
	}

	switch cmd {
	case "/help", "/h":
		printHelp(disp)
	case "/clear", "/c":
		app.Reset()
		disp.Info("Conversation history cleared.")
		disp.Info("")
	case "/apps":
		printApps(disp, appNames)
	default:
		disp.Info("Unknown command: %s. Type /help for available commands.", input)
		disp.Info("")
	}
	return true, false
}

func printHelp(disp *display.Display) {
	disp.Info("Commands:")
	disp.Info("  /help  - Show this help message")
	disp.Info("  /clear - Clear conversation history")
	disp.Info("  /apps  - List applications known by name")
	disp.Info("  /quit  - Exit the program (also: quit, exit, /exit)")
	disp.Info("")
}

func printApps(disp *display.Display, names []string) {
	if len(names) == 0 {
		disp.Info("No applications are configured.")
		disp.Info("")
		return
	}
	disp.Info("Known applications (%d):", len(names))
	for _, name := range names {
		disp.Info("  %s", name)
	}
	disp.Note("Any other command or path on your PATH can be launched too.")
	disp.Info("")
}
