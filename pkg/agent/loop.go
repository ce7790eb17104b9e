// Package agent runs the conversation against the chat completions API and
// dispatches the tool calls the model asks for.
package agent

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"github.com/google/uuid"
	configpkg "github.com/minhyannv/pc-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
	"github.com/minhyannv/pc-agent-go/pkg/prompt"
	"github.com/minhyannv/pc-agent-go/pkg/tools"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrMaxTurns is returned when the model keeps requesting tools past MaxTurns.
var ErrMaxTurns = errors.New("max turns reached before assistant produced a final response")

// Completer is the part of the chat completions client the loop uses.
type Completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// AgentLoop holds agent runtime state.
type AgentLoop struct {
	config       configpkg.Config
	completer    Completer
	tools        *tools.Registry
	SystemPrompt string
	SessionID    string
	history      []openai.ChatCompletionMessageParamUnion

	logger  loggerpkg.Logger
	verbose bool
}

// New initializes an AgentLoop from the config and optional dependencies.
func New(cfg configpkg.Config, opts ...AgentOption) (*AgentLoop, error) {
	cfg = configpkg.Normalize(cfg)
	deps := agentDeps{logger: loggerpkg.NopLogger{}, goos: runtime.GOOS}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	if deps.completer == nil {
		if cfg.APIKey == "" {
			return nil, errors.New("no API key set: export OPENAI_API_KEY or GEMINI_API_KEY")
		}
		client := newOpenAIClient(cfg)
		deps.completer = &client.Chat.Completions
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("Model is not set")
	}

	sessionID := uuid.New().String()
	logger := loggerpkg.With(deps.logger, map[string]string{"session": sessionID[:8]})

	loggerpkg.Debug(cfg.Verbose, logger, "agent_loop init", map[string]any{
		"max_turns": cfg.MaxTurns,
		"model":     cfg.Model,
		"base_url":  cfg.BaseURL,
	})

	registry := deps.registry
	if registry == nil {
		registry = tools.New(tools.Deps{
			Browser: cfg.Browser,
			Logger:  logger,
			Verbose: cfg.Verbose,
		})
	}
	loggerpkg.Debug(cfg.Verbose, logger, "tools registered", map[string]any{
		"count": len(registry.Definitions()),
	})

	systemPrompt := prompt.BuildSystemPrompt(deps.goos, registry.Names(), deps.appNames)
	loggerpkg.Debug(cfg.Verbose, logger, "system prompt ready", map[string]any{
		"bytes": len(systemPrompt),
	})

	return &AgentLoop{
		config:       cfg,
		completer:    deps.completer,
		tools:        registry,
		SystemPrompt: systemPrompt,
		SessionID:    sessionID,
		history:      []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)},

		logger:  logger,
		verbose: cfg.Verbose,
	}, nil
}

func newOpenAIClient(cfg configpkg.Config) openai.Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return openai.NewClient(opts...)
}

// runOnce performs one model completion request.
func (a *AgentLoop) runOnce(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	a.debugf("[verbose] iteration: sending request")
	completion, err := a.completer.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("empty completion choices")
	}
	return completion.Choices[0].Message, nil
}

// runIteration executes model/tool turns for one user interaction.
func (a *AgentLoop) runIteration(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	maxTurns int,
) ([]openai.ChatCompletionMessageParamUnion, openai.ChatCompletionMessage, error) {
	currentMessages := append([]openai.ChatCompletionMessageParamUnion{}, messages...)

	for turn := 0; turn < maxTurns; turn++ {
		a.debugf("[verbose] iteration: %d/%d", turn+1, maxTurns)
		message, err := a.runOnce(ctx, a.newChatParams(currentMessages))
		if err != nil {
			return nil, openai.ChatCompletionMessage{}, err
		}

		if len(message.ToolCalls) == 0 {
			return currentMessages, message, nil
		}

		// The assistant tool-call turn must precede its tool responses.
		currentMessages = append(currentMessages, message.ToParam())
		a.debugf("[verbose] iteration: assistant requested %d tool call(s)", len(message.ToolCalls))
		currentMessages = a.appendToolResponses(ctx, currentMessages, message.ToolCalls)
	}

	return nil, openai.ChatCompletionMessage{}, ErrMaxTurns
}

// Run processes one user input and returns the final assistant text.
// Tool-call turns are kept in the history so later turns can refer to them;
// on error the history is rolled back to before the user message.
func (a *AgentLoop) Run(ctx context.Context, userInput string) (string, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return "", errors.New("user input is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a.logger.Info("user turn", map[string]any{"chars": len(userInput)})

	previousLen := len(a.history)
	a.history = append(a.history, openai.UserMessage(userInput))

	messages, finalMessage, err := a.runIteration(ctx, a.history, a.config.MaxTurns)
	if err != nil {
		a.history = a.history[:previousLen]
		a.logger.Error("turn failed", map[string]any{"error": err.Error()})
		return "", err
	}

	a.history = append(messages, finalMessage.ToParam())
	return finalMessage.Content, nil
}

// Reset clears conversation history and keeps only the system prompt.
func (a *AgentLoop) Reset() {
	a.history = []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(a.SystemPrompt)}
	a.logger.Info("history cleared", nil)
}

// HistoryLen reports the number of messages in the conversation, system
// prompt included.
func (a *AgentLoop) HistoryLen() int {
	return len(a.history)
}

func (a *AgentLoop) debugf(format string, args ...any) {
	loggerpkg.Debugf(a.verbose, a.logger, format, args...)
}

func (a *AgentLoop) newChatParams(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.config.Model),
		Messages: messages,
		Tools:    a.tools.Definitions(),
	}
}

func (a *AgentLoop) appendToolResponses(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	toolCalls []openai.ChatCompletionMessageToolCall,
) []openai.ChatCompletionMessageParamUnion {
	updated := messages
	for _, call := range toolCalls {
		a.logger.Info("tool call", map[string]any{"tool": call.Function.Name})
		a.debugf("[verbose] tool %s args: %s", call.Function.Name, call.Function.Arguments)
		res := a.tools.Execute(ctx, call.Function.Name, call.Function.Arguments)
		if !res.Succeeded() {
			a.logger.Warn("tool call failed", map[string]any{"tool": call.Function.Name, "outcome": res.Kind.String()})
		}
		updated = append(updated, openai.ToolMessage(res.Message, call.ID))
	}
	return updated
}
