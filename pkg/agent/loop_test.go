package agent

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	configpkg "github.com/minhyannv/pc-agent-go/pkg/config"
	"github.com/minhyannv/pc-agent-go/pkg/tools"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// scriptedCompleter replays canned completions and records every request.
type scriptedCompleter struct {
	replies  []*openai.ChatCompletion
	errs     []error
	requests []openai.ChatCompletionNewParams
}

func (s *scriptedCompleter) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	i := len(s.requests)
	s.requests = append(s.requests, body)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.replies) {
		return nil, errors.New("no scripted reply left")
	}
	return s.replies[i], nil
}

type toolCall struct {
	id   string
	name string
	args map[string]string
}

func completion(t *testing.T, content string, calls ...toolCall) *openai.ChatCompletion {
	t.Helper()
	message := map[string]any{"role": "assistant", "content": content}
	finish := "stop"
	if len(calls) > 0 {
		finish = "tool_calls"
		raw := make([]map[string]any, 0, len(calls))
		for _, c := range calls {
			args, err := json.Marshal(c.args)
			if err != nil {
				t.Fatalf("marshal args: %v", err)
			}
			raw = append(raw, map[string]any{
				"id":       c.id,
				"type":     "function",
				"function": map[string]any{"name": c.name, "arguments": string(args)},
			})
		}
		message["tool_calls"] = raw
	}
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{"index": 0, "finish_reason": finish, "message": message}},
	})
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	var out openai.ChatCompletion
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal completion: %v", err)
	}
	return &out
}

func newTestLoop(t *testing.T, c Completer, maxTurns int) *AgentLoop {
	t.Helper()
	cfg := configpkg.DefaultConfig()
	cfg.Model = "test-model"
	cfg.MaxTurns = maxTurns
	loop, err := New(cfg,
		WithCompleter(c),
		WithRegistry(tools.New(tools.Deps{})),
		WithApplications([]string{"calculator"}),
		WithPlatform("linux"),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return loop
}

func messagesJSON(t *testing.T, params openai.ChatCompletionNewParams) string {
	t.Helper()
	b, err := json.Marshal(params.Messages)
	if err != nil {
		t.Fatalf("marshal messages: %v", err)
	}
	return string(b)
}

func TestNewRequiresAPIKeyWithoutCompleter(t *testing.T) {
	_, err := New(configpkg.DefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestNewBuildsSystemPrompt(t *testing.T) {
	loop := newTestLoop(t, &scriptedCompleter{}, 3)
	for _, want := range []string{"(linux)", "launch_application", "- calculator"} {
		if !strings.Contains(loop.SystemPrompt, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, loop.SystemPrompt)
		}
	}
	if loop.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if loop.HistoryLen() != 1 {
		t.Fatalf("expected only the system prompt in history, got %d", loop.HistoryLen())
	}
}

func TestRunReturnsPlainReply(t *testing.T) {
	c := &scriptedCompleter{replies: []*openai.ChatCompletion{completion(t, "Hello there!")}}
	loop := newTestLoop(t, c, 3)

	reply, err := loop.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reply != "Hello there!" {
		t.Fatalf("reply = %q", reply)
	}
	if len(c.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(c.requests))
	}
	if got := c.requests[0].Model; got != openai.ChatModel("test-model") {
		t.Fatalf("model = %q", got)
	}
	if len(c.requests[0].Tools) != 10 {
		t.Fatalf("expected 10 tool definitions, got %d", len(c.requests[0].Tools))
	}
	if loop.HistoryLen() != 3 {
		t.Fatalf("expected system, user and assistant messages, got %d", loop.HistoryLen())
	}
}

func TestRunDispatchesToolCalls(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	c := &scriptedCompleter{replies: []*openai.ChatCompletion{
		completion(t, "", toolCall{id: "call_1", name: "write_file", args: map[string]string{"file_name": file, "content": "remember milk"}}),
		completion(t, "",
			toolCall{id: "call_2", name: "check_path", args: map[string]string{"directory": dir}},
			toolCall{id: "call_3", name: "no_such_tool", args: map[string]string{}},
		),
		completion(t, "I saved your note."),
	}}
	loop := newTestLoop(t, c, 5)

	reply, err := loop.Run(context.Background(), "save a note saying remember milk")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if reply != "I saved your note." {
		t.Fatalf("reply = %q", reply)
	}
	data, err := os.ReadFile(file)
	if err != nil || string(data) != "remember milk" {
		t.Fatalf("file not written: %q, %v", data, err)
	}

	if len(c.requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(c.requests))
	}
	second := messagesJSON(t, c.requests[1])
	if !strings.Contains(second, "call_1") || !strings.Contains(second, "Successfully wrote to") {
		t.Fatalf("second request missing tool result:\n%s", second)
	}
	third := messagesJSON(t, c.requests[2])
	for _, want := range []string{"[FILE] notes.txt", "unknown tool: no_such_tool", "call_3"} {
		if !strings.Contains(third, want) {
			t.Fatalf("third request missing %q:\n%s", want, third)
		}
	}
	// system, user, assistant(call_1), tool, assistant(call_2, call_3), tool, tool, final
	if loop.HistoryLen() != 8 {
		t.Fatalf("history length = %d", loop.HistoryLen())
	}
}

func TestRunRollsBackOnError(t *testing.T) {
	c := &scriptedCompleter{
		replies: []*openai.ChatCompletion{nil, completion(t, "Back online.")},
		errs:    []error{errors.New("503 service unavailable")},
	}
	loop := newTestLoop(t, c, 3)

	if _, err := loop.Run(context.Background(), "open calculator"); err == nil {
		t.Fatal("expected error from failed completion")
	}
	if loop.HistoryLen() != 1 {
		t.Fatalf("history should be rolled back, got %d messages", loop.HistoryLen())
	}

	reply, err := loop.Run(context.Background(), "are you there?")
	if err != nil || reply != "Back online." {
		t.Fatalf("second turn: %q, %v", reply, err)
	}
	if strings.Contains(messagesJSON(t, c.requests[1]), "open calculator") {
		t.Fatal("failed user turn leaked into the next request")
	}
}

func TestRunStopsAtMaxTurns(t *testing.T) {
	loopingCall := toolCall{id: "call_x", name: "check_path", args: map[string]string{"directory": t.TempDir()}}
	c := &scriptedCompleter{replies: []*openai.ChatCompletion{
		completion(t, "", loopingCall),
		completion(t, "", loopingCall),
		completion(t, "", loopingCall),
	}}
	loop := newTestLoop(t, c, 2)

	_, err := loop.Run(context.Background(), "list forever")
	if !errors.Is(err, ErrMaxTurns) {
		t.Fatalf("expected ErrMaxTurns, got %v", err)
	}
	if len(c.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(c.requests))
	}
	if loop.HistoryLen() != 1 {
		t.Fatalf("history should be rolled back, got %d", loop.HistoryLen())
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	c := &scriptedCompleter{}
	loop := newTestLoop(t, c, 3)
	if _, err := loop.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty input")
	}
	if len(c.requests) != 0 {
		t.Fatal("empty input must not reach the model")
	}
}

func TestReset(t *testing.T) {
	c := &scriptedCompleter{replies: []*openai.ChatCompletion{completion(t, "ok")}}
	loop := newTestLoop(t, c, 3)
	if _, err := loop.Run(context.Background(), "hi"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	loop.Reset()
	if loop.HistoryLen() != 1 {
		t.Fatalf("expected only the system prompt after Reset, got %d", loop.HistoryLen())
	}
}
