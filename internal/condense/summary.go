package condense

import (
	"context"
	"fmt"
	"strings"
)

const summarySystemPrompt = `You compress the working history of an autonomous code-repair agent into a
structured summary. The summary replaces the original messages, so anything
you omit is gone. Rules:

- Output EXACTLY these sections, in this order, each as a heading:
  USER_CONTEXT, CONSTRAINTS, TASK_TRACKING, CODE_STATE, TESTS, CHANGES,
  ERRORS, NEXT_STEPS
- Preserve test names and test commands VERBATIM. They are load-bearing.
- Preserve file paths and function names exactly.
- NEVER include raw diffs; describe changes in one line each instead.
- Keep errors with their exact messages; drop stack-trace noise.
- Be complete before being brief.`

// maxSummarizedInputLength caps each dropped tool payload fed to the
// summariser so one giant diff cannot crowd out the rest of the history.
const maxSummarizedInputLength = MaxToolUseInputLength

// buildSummaryRequest renders the dropped messages into the single user
// message sent to the summariser. progress is the optional state-machine
// assessment line.
func buildSummaryRequest(dropped []Message, progress string) Message {
	var b strings.Builder
	b.WriteString("Summarise the following agent history following the system instructions.\n")
	if progress != "" {
		b.WriteString("\nProgress assessment (from the workflow state machine):\n")
		b.WriteString(progress)
		b.WriteString("\n")
	}
	b.WriteString("\n--- HISTORY START ---\n")
	for _, m := range dropped {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		for _, blk := range m.Content {
			switch blk.Type {
			case BlockText:
				b.WriteString(blk.Text)
				b.WriteString("\n")
			case BlockToolUse:
				fmt.Fprintf(&b, "<tool_use name=%q id=%q>\n", blk.Name, blk.ID)
				for k, v := range blk.Input {
					fmt.Fprintf(&b, "  %s: %s\n", k, truncateMiddle(v, maxSummarizedInputLength))
				}
				b.WriteString("</tool_use>\n")
			case BlockToolResult:
				fmt.Fprintf(&b, "<tool_result for=%q>\n%s\n</tool_result>\n",
					blk.ToolUseID, truncateMiddle(blk.Content, maxSummarizedInputLength))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("--- HISTORY END ---\n")
	return NewTextMessage(RoleUser, b.String())
}

// requestSummary asks the LLM for a structured summary, re-requesting up to
// MaxSummaryEnhancementAttempts times until the summary carries at least
// MinSummaryTokens tokens.
func (c *Compressor) requestSummary(ctx context.Context, dropped []Message) (string, error) {
	progress := ""
	if c.stats != nil {
		progress = c.stats()
	}
	request := buildSummaryRequest(dropped, progress)

	var lastText string
	for attempt := 1; attempt <= MaxSummaryEnhancementAttempts; attempt++ {
		events, err := c.llm.CreateMessage(ctx, summarySystemPrompt, []Message{request})
		if err != nil {
			return "", fmt.Errorf("summary request failed: %w", err)
		}
		text, _, err := collectStream(ctx, events)
		if err != nil {
			return "", fmt.Errorf("summary stream failed: %w", err)
		}
		lastText = text

		tokens, err := c.llm.CountTokens(ctx, []ContentBlock{{Type: BlockText, Text: text}})
		if err != nil {
			return "", fmt.Errorf("failed to count summary tokens: %w", err)
		}
		if tokens >= MinSummaryTokens {
			return text, nil
		}
		if c.logger != nil {
			c.logger.Printf("condense: summary attempt %d too small (%d < %d tokens), re-requesting",
				attempt, tokens, MinSummaryTokens)
		}
		request = NewTextMessage(RoleUser, request.Content[0].Text+
			"\n\nThe previous summary was too short to be safe. Expand every section with the concrete details from the history.")
	}
	if strings.TrimSpace(lastText) == "" {
		return "", fmt.Errorf("summariser returned empty text after %d attempts", MaxSummaryEnhancementAttempts)
	}
	// An undersized summary is still better than dropping history blind.
	return lastText, nil
}

// truncateMiddle keeps a prefix and suffix of s within limit, the marker
// text included in the budget.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	const marker = "\n[... truncated ...]\n"
	if limit <= len(marker) {
		return s[:limit]
	}
	budget := limit - len(marker)
	head := budget / 2
	tail := budget - head
	return s[:head] + marker + s[len(s)-tail:]
}
