package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minhyannv/pc-agent-go/pkg/apps"
	"github.com/minhyannv/pc-agent-go/pkg/fsops"
	"github.com/minhyannv/pc-agent-go/pkg/launcher"
)

const (
	googleSearchURL  = "https://www.google.com/search?q="
	youtubeSearchURL = "https://www.youtube.com/results?search_query="
)

type launchArgs struct {
	AppName string `json:"app_name"`
}

func launchApplicationTool(d Deps) tool {
	return typedTool[launchArgs]{
		schema: schema{
			name:        "launch_application",
			description: "Launches an application or game on the user's PC.",
			params: []param{
				{name: "app_name", description: "The name of the application to launch (e.g. 'chrome', 'calculator', 'steam').", required: true},
			},
		},
		run: func(_ context.Context, args launchArgs) Result {
			name := strings.TrimSpace(args.AppName)
			if name == "" {
				return Result{Kind: fsops.KindInvalid, Message: "Error: app_name is required."}
			}
			d.Logger.Info("launching application", map[string]any{"app": name})

			if target, ok := d.Library.Lookup(name); ok {
				err := d.Launcher.Open(target)
				if err == nil {
					return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully launched %s.", name)}
				}
				d.debugf("[verbose] launch_application: library target for %s failed: %v", name, err)
			}

			// Fall back to the raw name as a command, URI or path.
			err := d.Launcher.Launch(name)
			if err == nil {
				return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully launched %s.", name)}
			}
			d.debugf("[verbose] launch_application: raw command %s failed: %v", name, err)

			msg := fmt.Sprintf("Failed to launch %s. Error: Application or command not found. Please check the name or path.", name)
			if suggestion, ok := d.Library.Suggest(name); ok && suggestion != strings.ToLower(name) {
				msg += fmt.Sprintf(" Did you mean '%s'?", suggestion)
			}
			return Result{Kind: fsops.KindNotFound, Message: msg}
		},
	}
}

type searchArgs struct {
	Search string `json:"search"`
}

func searchGoogleTool(d Deps) tool {
	return typedTool[searchArgs]{
		schema: schema{
			name:        "search_google",
			description: "Launches a web browser and performs a Google search.",
			params: []param{
				{name: "search", description: "The text to search for on Google (e.g. 'latest AI news', 'recipe for pizza').", required: true},
			},
		},
		run: func(_ context.Context, args searchArgs) Result {
			query := strings.TrimSpace(args.Search)
			if query == "" {
				return Result{Kind: fsops.KindInvalid, Message: "Error: search text is required."}
			}
			d.Logger.Info("searching google", map[string]any{"query": query})
			target := googleSearchURL + url.QueryEscape(query)

			err := d.Launcher.Open([]string{target})
			if err == nil {
				return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully searched Google for '%s'.", query)}
			}
			d.debugf("[verbose] search_google: default browser failed: %v", err)

			chrome := d.chromeCommand()
			cmd := append(append(apps.Target(nil), chrome...), target)
			if err := d.Launcher.Open(cmd); err == nil {
				return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully searched Google for '%s' using Chrome as a fallback.", query)}
			}
			d.debugf("[verbose] search_google: chrome fallback %v failed", chrome)
			return Result{
				Kind: fsops.KindNotFound,
				Message: fmt.Sprintf("Failed to search Google for '%s'. Error: Web browser or command not found. "+
					"Please ensure a browser is installed and configured, or set browser.chrome (or the 'chrome' app entry) in the settings file.", query),
			}
		},
	}
}

// chromeCommand picks the fallback browser: the explicit override, then the
// application table's chrome entry, then a bare "chrome".
func (d Deps) chromeCommand() apps.Target {
	if len(d.Browser.Chrome) > 0 {
		return d.Browser.Chrome
	}
	if target, ok := d.Library.Lookup("chrome"); ok {
		return target
	}
	return apps.Target{"chrome"}
}

func searchYouTubeTool(d Deps) tool {
	return typedTool[searchArgs]{
		schema: schema{
			name:        "search_youtube",
			description: "Opens YouTube and searches for videos. Use only for searches on YouTube.",
			params: []param{
				{name: "search", description: "Text the user wants to search for on YouTube (e.g. 'python new update', 'lofi playlist').", required: true},
			},
		},
		run: func(_ context.Context, args searchArgs) Result {
			query := strings.TrimSpace(args.Search)
			if query == "" {
				return Result{Kind: fsops.KindInvalid, Message: "Error: search text is required."}
			}
			d.Logger.Info("searching youtube", map[string]any{"query": query})
			target := youtubeSearchURL + url.QueryEscape(query)

			yt := d.Browser.YouTube
			if yt.Executable == "" {
				if err := d.Launcher.Open([]string{target}); err != nil {
					return Result{Kind: fsops.KindNotFound, Message: fmt.Sprintf("Failed to search YouTube for '%s'. Error: no web browser could be opened: %v", query, err)}
				}
				return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully searched YouTube for '%s'.", query)}
			}

			err := d.Launcher.Exec(yt.Executable,
				"--profile-directory="+yt.Profile,
				"--app-id="+yt.AppID,
				"--app-launch-url-for-shortcuts-menu-item="+target,
			)
			switch {
			case err == nil:
				return Result{Kind: fsops.KindOK, Message: fmt.Sprintf("Successfully searched YouTube for '%s'.", query)}
			case errors.Is(err, launcher.ErrNotFound):
				return Result{Kind: fsops.KindNotFound, Message: fmt.Sprintf("Failed to launch the browser for the YouTube app (%s). "+
					"Please ensure it is installed or update browser.youtube.executable in the settings file.", yt.Executable)}
			default:
				return Result{Kind: fsops.KindError, Message: fmt.Sprintf("Failed to search YouTube for '%s'. Error: %v", query, err)}
			}
		},
	}
}
