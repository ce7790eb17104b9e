package agent

import (
	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
	"github.com/minhyannv/pc-agent-go/pkg/tools"
)

// AgentOption configures optional runtime dependencies for AgentLoop.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger    loggerpkg.Logger
	completer Completer
	registry  *tools.Registry
	appNames  []string
	goos      string
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithCompleter replaces the OpenAI client, e.g. with a fake in tests.
func WithCompleter(c Completer) AgentOption {
	return func(d *agentDeps) {
		d.completer = c
	}
}

// WithRegistry sets the tool registry the model dispatches into.
func WithRegistry(r *tools.Registry) AgentOption {
	return func(d *agentDeps) {
		d.registry = r
	}
}

// WithApplications lists the application names advertised in the system prompt.
func WithApplications(names []string) AgentOption {
	return func(d *agentDeps) {
		d.appNames = append([]string(nil), names...)
	}
}

// WithPlatform overrides the platform named in the system prompt.
func WithPlatform(goos string) AgentOption {
	return func(d *agentDeps) {
		d.goos = goos
	}
}
