// Package tools is the capability registry the model dispatches into.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minhyannv/pc-agent-go/pkg/apps"
	"github.com/minhyannv/pc-agent-go/pkg/config"
	"github.com/minhyannv/pc-agent-go/pkg/fsops"
	"github.com/minhyannv/pc-agent-go/pkg/launcher"
	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
	"github.com/openai/openai-go"
)

// Result is the text outcome of one tool call.
type Result = fsops.Result

type tool interface {
	name() string
	definition() openai.ChatCompletionToolParam
	execute(ctx context.Context, argText string) Result
}

// Deps are the collaborators the built-in tools act through.
type Deps struct {
	Library  *apps.Library
	Launcher launcher.Launcher
	FS       *fsops.FS
	Browser  config.BrowserConfig
	Logger   loggerpkg.Logger
	Verbose  bool
}

func (d Deps) debugf(format string, args ...any) {
	loggerpkg.Debugf(d.Verbose, d.Logger, format, args...)
}

// Registry holds registered tools and handles execution.
type Registry struct {
	registry map[string]tool
	names    []string
	params   []openai.ChatCompletionToolParam
	deps     Deps
}

// New builds a registry with the built-in tools.
func New(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = loggerpkg.NopLogger{}
	}
	if deps.Library == nil {
		deps.Library = apps.NewLibrary()
	}
	if deps.FS == nil {
		deps.FS = fsops.New(fsops.DefaultMaxReadBytes, deps.Logger, deps.Verbose)
	}
	if deps.Launcher == nil {
		deps.Launcher = launcher.New(launcher.WithLogger(deps.Logger, deps.Verbose))
	}

	r := &Registry{
		registry: make(map[string]tool),
		deps:     deps,
	}
	r.register(launchApplicationTool(deps))
	r.register(searchYouTubeTool(deps))
	r.register(searchGoogleTool(deps))
	r.register(readFileTool(deps))
	r.register(writeFileTool(deps))
	r.register(removePathTool(deps))
	r.register(movePathTool(deps))
	r.register(renamePathTool(deps))
	r.register(createFolderTool(deps))
	r.register(checkPathTool(deps))
	return r
}

func (r *Registry) register(toolImpl tool) {
	r.registry[toolImpl.name()] = toolImpl
	r.names = append(r.names, toolImpl.name())
	r.params = append(r.params, toolImpl.definition())
	r.deps.debugf("[verbose] registered tool: %s", toolImpl.name())
}

// Definitions returns the tool schemas in registration order.
func (r *Registry) Definitions() []openai.ChatCompletionToolParam {
	return r.params
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Execute runs the named tool. Unknown tools, invalid arguments and a
// cancelled context are reported as results, never as errors.
func (r *Registry) Execute(ctx context.Context, name, argText string) Result {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return Result{Kind: fsops.KindError, Message: fmt.Sprintf("Error: tool call %s cancelled: %v", name, ctx.Err())}
		default:
		}
	} else {
		ctx = context.Background()
	}

	toolImpl, ok := r.registry[name]
	if !ok {
		return Result{Kind: fsops.KindInvalid, Message: fmt.Sprintf("Error: unknown tool: %s", name)}
	}

	res := toolImpl.execute(ctx, argText)
	loggerpkg.Debug(r.deps.Verbose, r.deps.Logger, "tool executed", map[string]any{
		"tool":    name,
		"outcome": res.Kind.String(),
		"bytes":   len(res.Message),
	})
	return res
}

// param declares one string argument of a tool.
type param struct {
	name        string
	description string
	required    bool
}

type schema struct {
	name        string
	description string
	params      []param
}

func (s schema) definition() openai.ChatCompletionToolParam {
	properties := make(map[string]any, len(s.params))
	required := []string{}
	for _, p := range s.params {
		properties[p.name] = map[string]any{
			"type":        "string",
			"description": p.description,
		}
		if p.required {
			required = append(required, p.name)
		}
	}
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        s.name,
			Description: openai.String(s.description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

// validate checks that argText is a JSON object whose declared arguments are
// strings and whose required arguments are present.
func (s schema) validate(argText string) error {
	argText = strings.TrimSpace(argText)
	if argText == "" {
		argText = "{}"
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(argText), &raw); err != nil {
		return errors.New("arguments must be a JSON object")
	}
	for _, p := range s.params {
		v, ok := raw[p.name]
		if !ok || v == nil {
			if p.required {
				return fmt.Errorf("missing required argument %q", p.name)
			}
			continue
		}
		if _, ok := v.(string); !ok {
			return fmt.Errorf("argument %q must be a string", p.name)
		}
	}
	return nil
}

// typedTool validates arguments against its schema, decodes them into A and
// hands them to run.
type typedTool[A any] struct {
	schema schema
	run    func(ctx context.Context, args A) Result
}

func (t typedTool[A]) name() string { return t.schema.name }

func (t typedTool[A]) definition() openai.ChatCompletionToolParam { return t.schema.definition() }

func (t typedTool[A]) execute(ctx context.Context, argText string) Result {
	if err := t.schema.validate(argText); err != nil {
		return Result{Kind: fsops.KindInvalid, Message: fmt.Sprintf("Error: invalid arguments for %s: %v", t.schema.name, err)}
	}
	var args A
	if strings.TrimSpace(argText) != "" {
		if err := json.Unmarshal([]byte(argText), &args); err != nil {
			return Result{Kind: fsops.KindInvalid, Message: fmt.Sprintf("Error: invalid arguments for %s: %v", t.schema.name, err)}
		}
	}
	return t.run(ctx, args)
}
