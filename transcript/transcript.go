// Package transcript renders a conversation's messages for export.
//
// Markdown is the canonical form; HTML is rendered from it with GitHub
// Flavored Markdown and sanitized for embedding, and Text is a plain
// rendering for terminals and logs.
package transcript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/agentlens/agentlens"
)

// markdown converts the canonical form to HTML. Raw HTML in message content
// is omitted by the renderer; the sanitizer below is the second line.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// sanitizer strips anything outside user-generated-content HTML.
var sanitizer = bluemonday.UGCPolicy()

// Markdown renders the conversation as Markdown: a title block, one section
// per message with role and timestamp, fenced tool calls, and a usage
// footer.
func Markdown(conv *agentlens.Conversation, messages []*agentlens.Message) string {
	var b strings.Builder

	title := "Conversation"
	if conv != nil && conv.Title != "" {
		title = conv.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if conv != nil {
		fmt.Fprintf(&b, "- Conversation: `%s`\n", conv.ID)
		fmt.Fprintf(&b, "- Task: `%s`\n", conv.TaskID)
		if !conv.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "- Started: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		b.WriteString("\n")
	}

	var usage agentlens.Usage
	for _, msg := range messages {
		writeMessageMarkdown(&b, msg)
		if msg.Usage != nil {
			usage = usage.Add(*msg.Usage)
		}
	}

	// Usage footer
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "%d messages · %s input tokens · %s output tokens\n",
		len(messages), FormatTokens(usage.InputTokens), FormatTokens(usage.OutputTokens))

	return b.String()
}

func writeMessageMarkdown(b *strings.Builder, msg *agentlens.Message) {
	fmt.Fprintf(b, "## %s — %s\n\n", roleTitle(msg.Role), msg.CreatedAt.Format("15:04:05"))

	if content := strings.TrimSpace(msg.Content); content != "" {
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	for _, call := range msg.ToolCalls {
		fmt.Fprintf(b, "### Tool: %s\n\n", call.Tool)
		if call.Input != "" {
			fmt.Fprintf(b, "```json\n%s\n```\n\n", strings.TrimSpace(call.Input))
		}
		if call.Error != "" {
			fmt.Fprintf(b, "Error:\n\n```\n%s\n```\n\n", strings.TrimSpace(call.Error))
		} else if call.Result != "" {
			fmt.Fprintf(b, "Result:\n\n```\n%s\n```\n\n", strings.TrimSpace(call.Result))
		}
	}
}

// HTML renders the conversation as sanitized HTML via the Markdown form.
func HTML(conv *agentlens.Conversation, messages []*agentlens.Message) (string, error) {
	source := Markdown(conv, messages)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("transcript: render html: %w", err)
	}

	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// Text renders the conversation as plain text, one block per message.
func Text(conv *agentlens.Conversation, messages []*agentlens.Message) string {
	var b strings.Builder

	if conv != nil {
		if conv.Title != "" {
			fmt.Fprintf(&b, "%s\n", conv.Title)
		}
		fmt.Fprintf(&b, "conversation %s (task %s)\n\n", conv.ID, conv.TaskID)
	}

	for _, msg := range messages {
		fmt.Fprintf(&b, "[%s %s]\n", msg.Role, msg.CreatedAt.Format("15:04:05"))
		if content := strings.TrimSpace(msg.Content); content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
		for _, call := range msg.ToolCalls {
			result := call.Result
			if call.Error != "" {
				result = "error: " + call.Error
			}
			fmt.Fprintf(&b, "  tool %s: %s\n", call.Tool, Truncate(result, 120))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// roleTitle capitalizes a message role for section headers.
func roleTitle(role agentlens.MessageRole) string {
	switch role {
	case agentlens.MessageRoleSystem:
		return "System"
	case agentlens.MessageRoleUser:
		return "User"
	case agentlens.MessageRoleAssistant:
		return "Assistant"
	case agentlens.MessageRoleTool:
		return "Tool"
	default:
		return string(role)
	}
}
