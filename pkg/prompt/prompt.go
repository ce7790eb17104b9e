package prompt

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt constructs the system prompt from the registered tool
// names and the application names the launcher knows about.
func BuildSystemPrompt(goos string, toolNames []string, appNames []string) string {
	var sb strings.Builder
	sb.WriteString("You are a PC controller assistant running on the user's computer")
	if goos != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", goos))
	}
	sb.WriteString(". Use the tools to launch applications, search the web and manage files and folders when the user asks for it.")
	sb.WriteString("\nEvery tool returns a short text result; summarize it for the user in plain language.")
	sb.WriteString("\nBefore changing an existing file, read it with read_file and then write the full updated content with write_file.")
	sb.WriteString("\nDeleting, moving and renaming cannot be undone; only do it when the user clearly asked for it.")
	if len(toolNames) > 0 {
		sb.WriteString("\nTools available: ")
		sb.WriteString(strings.Join(toolNames, ", "))
		sb.WriteString(".")
	}

	if md := ToPromptMarkdown(appNames); md != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md)
	}

	return strings.TrimSpace(sb.String())
}

// ToPromptMarkdown renders the known application names as a markdown section.
func ToPromptMarkdown(appNames []string) string {
	names := make([]string, 0, len(appNames))
	for _, name := range appNames {
		if name = sanitizeMarkdown(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Known Applications\n")
	sb.WriteString("Pass one of these names to launch_application when it matches the request. Other names are tried as raw commands.\n\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return strings.TrimSpace(sb.String())
}

// sanitizeMarkdown keeps markdown fields single-line and trimmed.
func sanitizeMarkdown(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
