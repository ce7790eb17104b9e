// Package launcher starts applications, documents and URLs without waiting on them.
package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
)

// ErrNotFound is returned when neither the target nor the platform opener
// can be resolved to an executable.
var ErrNotFound = errors.New("executable not found")

// Launcher opens launch targets using the host platform's conventions.
type Launcher interface {
	// Open starts target. Executables are spawned directly; anything else
	// (URLs, URIs, documents, app bundles) goes through the platform opener.
	Open(target []string) error
	// Launch starts a single user-supplied name. Executables on PATH are
	// spawned directly, URIs and existing paths go through the platform
	// opener, and anything else is ErrNotFound.
	Launch(name string) error
	// Exec spawns name with args directly, bypassing the platform opener.
	Exec(name string, args ...string) error
	// Platform reports the GOOS value the launcher was built for.
	Platform() string
}

// Option customises a launcher.
type Option func(*runner)

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *runner) { r.lookPath = fn }
}

// WithStarter replaces the function that spawns a resolved executable.
func WithStarter(fn func(path string, args ...string) error) Option {
	return func(r *runner) { r.start = fn }
}

// WithStat replaces os.Stat for checking that a path exists.
func WithStat(fn func(string) (fs.FileInfo, error)) Option {
	return func(r *runner) { r.stat = fn }
}

// WithLogger attaches a logger; debug lines are written when verbose is set.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(r *runner) {
		r.logger = l
		r.verbose = verbose
	}
}

// New returns the launcher for the running platform.
func New(opts ...Option) Launcher {
	return ForPlatform(runtime.GOOS, opts...)
}

// ForPlatform returns the launcher for goos. Platforms other than windows
// and darwin use xdg-open.
func ForPlatform(goos string, opts ...Option) Launcher {
	r := runner{
		lookPath: exec.LookPath,
		start:    startDetached,
		stat:     os.Stat,
		logger:   loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&r)
		}
	}

	switch goos {
	case "windows":
		return &windowsLauncher{runner: r}
	case "darwin":
		return &darwinLauncher{runner: r}
	default:
		return &xdgLauncher{runner: r, goos: goos}
	}
}

type runner struct {
	lookPath func(string) (string, error)
	start    func(path string, args ...string) error
	stat     func(string) (fs.FileInfo, error)
	logger   loggerpkg.Logger
	verbose  bool
}

// Exec resolves name and spawns it.
func (r runner) Exec(name string, args ...string) error {
	path, err := r.lookPath(name)
	if err != nil {
		loggerpkg.Debugf(r.verbose, r.logger, "[verbose] launcher: lookup failed for %s: %v", name, err)
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	loggerpkg.Debug(r.verbose, r.logger, "launcher: spawn", map[string]any{
		"path": path,
		"args": args,
	})
	if err := r.start(path, args...); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

// executable reports whether name can be spawned directly.
func (r runner) executable(name string) bool {
	if looksLikeURI(name) {
		return false
	}
	_, err := r.lookPath(name)
	return err == nil
}

func (r runner) openDirect(target []string) (bool, error) {
	if len(target) == 0 || strings.TrimSpace(target[0]) == "" {
		return true, errors.New("empty launch target")
	}
	if r.executable(target[0]) {
		return true, r.Exec(target[0], target[1:]...)
	}
	return false, nil
}

// launchable reports ErrNotFound for a bare name that is neither an
// executable, a URI nor an existing path; platform openers would otherwise
// accept it and fail silently.
func (r runner) launchable(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty launch target")
	}
	if looksLikeURI(name) || r.executable(name) {
		return nil
	}
	if _, err := r.stat(name); err == nil {
		return nil
	}
	loggerpkg.Debugf(r.verbose, r.logger, "[verbose] launcher: %s is not an executable, URI or path", name)
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

type windowsLauncher struct{ runner }

func (l *windowsLauncher) Launch(name string) error {
	if err := l.launchable(name); err != nil {
		return err
	}
	return l.Open([]string{name})
}

func (l *windowsLauncher) Platform() string { return "windows" }

func (l *windowsLauncher) Open(target []string) error {
	if handled, err := l.openDirect(target); handled {
		return err
	}
	// The empty argument is the window title expected by start.
	args := append([]string{"/c", "start", ""}, target...)
	return l.Exec("cmd", args...)
}

type darwinLauncher struct{ runner }

func (l *darwinLauncher) Platform() string { return "darwin" }

func (l *darwinLauncher) Launch(name string) error {
	if err := l.launchable(name); err != nil {
		return err
	}
	return l.Open([]string{name})
}

func (l *darwinLauncher) Open(target []string) error {
	if handled, err := l.openDirect(target); handled {
		return err
	}
	return l.Exec("open", target...)
}

type xdgLauncher struct {
	runner
	goos string
}

func (l *xdgLauncher) Platform() string { return l.goos }

func (l *xdgLauncher) Launch(name string) error {
	if err := l.launchable(name); err != nil {
		return err
	}
	return l.Open([]string{name})
}

func (l *xdgLauncher) Open(target []string) error {
	if handled, err := l.openDirect(target); handled {
		return err
	}
	// xdg-open takes exactly one file or URL.
	if len(target) > 1 {
		return fmt.Errorf("%w: %s", ErrNotFound, target[0])
	}
	return l.Exec("xdg-open", target[0])
}

// startDetached starts the process and reaps it in the background.
func startDetached(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var uriScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)

// looksLikeURI matches "https://...", "steam://..." and "ms-settings:" but
// not Windows drive paths such as "C:\...".
func looksLikeURI(s string) bool {
	return uriScheme.MatchString(s)
}
