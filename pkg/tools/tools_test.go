// Tests for tool registration and dispatch.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minhyannv/pc-agent-go/pkg/apps"
	"github.com/minhyannv/pc-agent-go/pkg/config"
	"github.com/minhyannv/pc-agent-go/pkg/fsops"
	"github.com/minhyannv/pc-agent-go/pkg/launcher"
)

// fakeLauncher records calls; commands whose first token is in fail return ErrNotFound.
type fakeLauncher struct {
	fail   map[string]bool
	opened [][]string
	execed [][]string
}

func (f *fakeLauncher) Open(target []string) error {
	f.opened = append(f.opened, append([]string(nil), target...))
	if f.fail[target[0]] {
		return launcher.ErrNotFound
	}
	return nil
}

func (f *fakeLauncher) Launch(name string) error {
	return f.Open([]string{name})
}

func (f *fakeLauncher) Exec(name string, args ...string) error {
	f.execed = append(f.execed, append([]string{name}, args...))
	if f.fail[name] {
		return launcher.ErrNotFound
	}
	return nil
}

func (f *fakeLauncher) Platform() string { return "test" }

func newTestRegistry(l *fakeLauncher, browser config.BrowserConfig) *Registry {
	return New(Deps{
		Library:  apps.NewLibrary(map[string]apps.Target{"chrome": {"google-chrome"}, "calculator": {"gnome-calculator"}}),
		Launcher: l,
		FS:       fsops.New(fsops.DefaultMaxReadBytes, nil, false),
		Browser:  browser,
	})
}

func argsJSON(t *testing.T, m map[string]string) string {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestRegistryDefinitions(t *testing.T) {
	r := newTestRegistry(&fakeLauncher{}, config.BrowserConfig{})
	want := []string{
		"launch_application", "search_youtube", "search_google", "read_file", "write_file",
		"remove_path", "move_path", "rename_path", "create_folder", "check_path",
	}
	if !reflect.DeepEqual(r.Names(), want) {
		t.Fatalf("Names() = %v", r.Names())
	}
	defs := r.Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Function.Name != want[i] {
			t.Fatalf("definition %d is %q, want %q", i, def.Function.Name, want[i])
		}
	}

	params := defs[4].Function.Parameters
	if !reflect.DeepEqual(params["required"], []string{"file_name", "content"}) {
		t.Fatalf("write_file required = %v", params["required"])
	}
	if req := defs[9].Function.Parameters["required"]; len(req.([]string)) != 0 {
		t.Fatalf("check_path should have no required args, got %v", req)
	}
}

func TestExecuteRejectsUnknownToolAndBadArgs(t *testing.T) {
	r := newTestRegistry(&fakeLauncher{}, config.BrowserConfig{})
	ctx := context.Background()

	tests := []struct {
		name    string
		tool    string
		args    string
		wantMsg string
	}{
		{name: "unknown tool", tool: "format_disk", args: `{}`, wantMsg: "unknown tool"},
		{name: "not json", tool: "read_file", args: `nope`, wantMsg: "must be a JSON object"},
		{name: "missing required", tool: "move_path", args: `{"path":"a"}`, wantMsg: `missing required argument "destination"`},
		{name: "wrong type", tool: "create_folder", args: `{"folder_name":3}`, wantMsg: `argument "folder_name" must be a string`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Execute(ctx, tt.tool, tt.args)
			if res.Kind != fsops.KindInvalid || !strings.Contains(res.Message, tt.wantMsg) {
				t.Fatalf("got %s %q", res.Kind, res.Message)
			}
		})
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, config.BrowserConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.Execute(ctx, "launch_application", `{"app_name":"calculator"}`)
	if res.Kind != fsops.KindError || !strings.Contains(res.Message, "cancelled") {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
	if len(l.opened) != 0 {
		t.Fatalf("nothing should launch after cancel: %v", l.opened)
	}
}

func TestLaunchApplicationResolvesCaseInsensitively(t *testing.T) {
	for _, name := range []string{"calculator", "CALCULATOR", "Calculator"} {
		l := &fakeLauncher{}
		r := newTestRegistry(l, config.BrowserConfig{})

		res := r.Execute(context.Background(), "launch_application", argsJSON(t, map[string]string{"app_name": name}))
		if res.Kind != fsops.KindOK || res.Message != "Successfully launched "+name+"." {
			t.Fatalf("%s: got %s %q", name, res.Kind, res.Message)
		}
		if !reflect.DeepEqual(l.opened, [][]string{{"gnome-calculator"}}) {
			t.Fatalf("%s: opened %v", name, l.opened)
		}
	}
}

func TestLaunchApplicationFallsBackToRawName(t *testing.T) {
	l := &fakeLauncher{fail: map[string]bool{"google-chrome": true}}
	r := newTestRegistry(l, config.BrowserConfig{})

	res := r.Execute(context.Background(), "launch_application", `{"app_name":"Chrome"}`)
	if res.Kind != fsops.KindOK {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
	if !reflect.DeepEqual(l.opened, [][]string{{"google-chrome"}, {"Chrome"}}) {
		t.Fatalf("opened %v", l.opened)
	}
}

func TestLaunchApplicationNotFoundSuggests(t *testing.T) {
	l := &fakeLauncher{fail: map[string]bool{"calc": true}}
	r := newTestRegistry(l, config.BrowserConfig{})

	res := r.Execute(context.Background(), "launch_application", `{"app_name":"calc"}`)
	if res.Kind != fsops.KindNotFound {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
	if !strings.HasPrefix(res.Message, "Failed to launch calc. Error: Application or command not found.") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if !strings.Contains(res.Message, "Did you mean 'calculator'?") {
		t.Fatalf("expected suggestion: %q", res.Message)
	}
}

func TestLaunchApplicationReportsMissingAppOnEveryPlatform(t *testing.T) {
	onPath := map[string]string{"cmd": "cmd.exe", "open": "/usr/bin/open", "xdg-open": "/usr/bin/xdg-open"}
	for _, goos := range []string{"windows", "darwin", "linux"} {
		t.Run(goos, func(t *testing.T) {
			var spawned [][]string
			l := launcher.ForPlatform(goos,
				launcher.WithLookPath(func(name string) (string, error) {
					if p, ok := onPath[name]; ok {
						return p, nil
					}
					return "", errors.New("not on PATH")
				}),
				launcher.WithStat(func(name string) (fs.FileInfo, error) {
					return nil, fs.ErrNotExist
				}),
				launcher.WithStarter(func(path string, args ...string) error {
					spawned = append(spawned, append([]string{path}, args...))
					return nil
				}),
			)
			r := New(Deps{Library: apps.NewLibrary(map[string]apps.Target{"notepad": {"notepad"}}), Launcher: l})

			res := r.Execute(context.Background(), "launch_application", `{"app_name":"notarealapp"}`)
			if res.Kind != fsops.KindNotFound || !strings.Contains(res.Message, "Application or command not found") {
				t.Fatalf("got %s %q", res.Kind, res.Message)
			}
			if len(spawned) != 0 {
				t.Fatalf("nothing should be spawned for an unknown app: %v", spawned)
			}

			res = r.Execute(context.Background(), "launch_application", `{"app_name":"notpad"}`)
			if res.Kind != fsops.KindNotFound || !strings.Contains(res.Message, "Did you mean 'notepad'?") {
				t.Fatalf("got %s %q", res.Kind, res.Message)
			}
		})
	}
}

func TestLaunchApplicationOpensExistingPath(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(doc, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var spawned [][]string
	l := launcher.ForPlatform("linux",
		launcher.WithLookPath(func(name string) (string, error) {
			if name == "xdg-open" {
				return "/usr/bin/xdg-open", nil
			}
			return "", errors.New("not on PATH")
		}),
		launcher.WithStarter(func(path string, args ...string) error {
			spawned = append(spawned, append([]string{path}, args...))
			return nil
		}),
	)
	r := New(Deps{Launcher: l})

	res := r.Execute(context.Background(), "launch_application", argsJSON(t, map[string]string{"app_name": doc}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
	if !reflect.DeepEqual(spawned, [][]string{{"/usr/bin/xdg-open", doc}}) {
		t.Fatalf("spawned %v", spawned)
	}
}

func TestSearchGoogleEncodesQuery(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, config.BrowserConfig{})

	res := r.Execute(context.Background(), "search_google", `{"search":"  recipe for pizza & pasta "}`)
	if res.Kind != fsops.KindOK || res.Message != "Successfully searched Google for 'recipe for pizza & pasta'." {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
	want := "https://www.google.com/search?q=recipe+for+pizza+%26+pasta"
	if !reflect.DeepEqual(l.opened, [][]string{{want}}) {
		t.Fatalf("opened %v", l.opened)
	}
}

func TestSearchGoogleFallsBackToChrome(t *testing.T) {
	url := "https://www.google.com/search?q=go"
	tests := []struct {
		name    string
		browser config.BrowserConfig
		want    []string
	}{
		{name: "library chrome", want: []string{"google-chrome", url}},
		{name: "override", browser: config.BrowserConfig{Chrome: apps.Target{"chromium", "--new-window"}}, want: []string{"chromium", "--new-window", url}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLauncher{fail: map[string]bool{url: true}}
			r := newTestRegistry(l, tt.browser)

			res := r.Execute(context.Background(), "search_google", `{"search":"go"}`)
			if res.Kind != fsops.KindOK || !strings.HasSuffix(res.Message, "using Chrome as a fallback.") {
				t.Fatalf("got %s %q", res.Kind, res.Message)
			}
			if len(l.opened) != 2 || !reflect.DeepEqual(l.opened[1], tt.want) {
				t.Fatalf("opened %v", l.opened)
			}
		})
	}
}

func TestSearchGoogleReportsMissingBrowser(t *testing.T) {
	url := "https://www.google.com/search?q=go"
	l := &fakeLauncher{fail: map[string]bool{url: true, "google-chrome": true}}
	r := newTestRegistry(l, config.BrowserConfig{})

	res := r.Execute(context.Background(), "search_google", `{"search":"go"}`)
	if res.Kind != fsops.KindNotFound || !strings.Contains(res.Message, "Web browser or command not found") {
		t.Fatalf("got %s %q", res.Kind, res.Message)
	}
}

func TestSearchYouTube(t *testing.T) {
	url := "https://www.youtube.com/results?search_query=lofi+beats"

	t.Run("default browser", func(t *testing.T) {
		l := &fakeLauncher{}
		r := newTestRegistry(l, config.BrowserConfig{})
		res := r.Execute(context.Background(), "search_youtube", `{"search":"lofi beats"}`)
		if res.Kind != fsops.KindOK || !reflect.DeepEqual(l.opened, [][]string{{url}}) {
			t.Fatalf("got %s %q, opened %v", res.Kind, res.Message, l.opened)
		}
	})

	t.Run("app mode", func(t *testing.T) {
		l := &fakeLauncher{}
		browser := config.BrowserConfig{YouTube: config.YouTubeConfig{Executable: "/opt/brave/chrome_proxy", AppID: "app123", Profile: "Default"}}
		r := newTestRegistry(l, browser)
		res := r.Execute(context.Background(), "search_youtube", `{"search":"lofi beats"}`)
		if res.Kind != fsops.KindOK {
			t.Fatalf("got %s %q", res.Kind, res.Message)
		}
		want := []string{"/opt/brave/chrome_proxy", "--profile-directory=Default", "--app-id=app123", "--app-launch-url-for-shortcuts-menu-item=" + url}
		if !reflect.DeepEqual(l.execed, [][]string{want}) {
			t.Fatalf("execed %v", l.execed)
		}
	})

	t.Run("missing app browser", func(t *testing.T) {
		l := &fakeLauncher{fail: map[string]bool{"/opt/brave/chrome_proxy": true}}
		browser := config.BrowserConfig{YouTube: config.YouTubeConfig{Executable: "/opt/brave/chrome_proxy"}}
		r := newTestRegistry(l, browser)
		res := r.Execute(context.Background(), "search_youtube", `{"search":"lofi beats"}`)
		if res.Kind != fsops.KindNotFound || !strings.Contains(res.Message, "browser.youtube.executable") {
			t.Fatalf("got %s %q", res.Kind, res.Message)
		}
	})
}

func TestFileToolsRoundTrip(t *testing.T) {
	r := newTestRegistry(&fakeLauncher{}, config.BrowserConfig{})
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "project", "main.py")

	res := r.Execute(ctx, "write_file", argsJSON(t, map[string]string{"file_name": file, "content": "print('hi')\n"}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("write_file: %s %q", res.Kind, res.Message)
	}
	res = r.Execute(ctx, "read_file", argsJSON(t, map[string]string{"file_name": file}))
	if res.Message != "print('hi')\n" {
		t.Fatalf("read_file: %q", res.Message)
	}

	renamed := filepath.Join(dir, "project", "bot.py")
	res = r.Execute(ctx, "rename_path", argsJSON(t, map[string]string{"old_name": file, "new_name": renamed}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("rename_path: %s %q", res.Kind, res.Message)
	}

	archive := filepath.Join(dir, "archive")
	res = r.Execute(ctx, "create_folder", argsJSON(t, map[string]string{"folder_name": archive}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("create_folder: %s %q", res.Kind, res.Message)
	}
	res = r.Execute(ctx, "move_path", argsJSON(t, map[string]string{"path": renamed, "destination": archive}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("move_path: %s %q", res.Kind, res.Message)
	}
	res = r.Execute(ctx, "check_path", argsJSON(t, map[string]string{"directory": archive}))
	if !strings.Contains(res.Message, "[FILE] bot.py") {
		t.Fatalf("check_path: %q", res.Message)
	}

	res = r.Execute(ctx, "remove_path", argsJSON(t, map[string]string{"path": filepath.Join(dir, "project")}))
	if res.Kind != fsops.KindOK {
		t.Fatalf("remove_path: %s %q", res.Kind, res.Message)
	}
	res = r.Execute(ctx, "check_path", argsJSON(t, map[string]string{"directory": filepath.Join(dir, "project")}))
	if res.Kind != fsops.KindNotFound {
		t.Fatalf("check_path after remove: %s %q", res.Kind, res.Message)
	}
	if _, err := os.Stat(filepath.Join(archive, "bot.py")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
}

func TestCheckPathWithoutArguments(t *testing.T) {
	r := newTestRegistry(&fakeLauncher{}, config.BrowserConfig{})
	res := r.Execute(context.Background(), "check_path", "")
	if !res.Succeeded() {
		t.Fatalf("check_path with no args: %s %q", res.Kind, res.Message)
	}
}
