package condense

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Fixed tuning constants. The aggressive values are the retry knobs when the
// standard pass does not shrink the transcript enough.
const (
	// CondenseThreshold is the fraction of usable context at which
	// condensation triggers.
	CondenseThreshold = 0.70
	// TokenBufferPct is held back from the raw context window.
	TokenBufferPct = 0.10

	// KeepToolResults is how many recent paired tool steps survive.
	KeepToolResults           = 4
	AggressiveKeepToolResults = 2

	// MaxToolResultLength bounds kept tool payloads, marker included.
	MaxToolResultLength           = 8000
	AggressiveMaxToolResultLength = 4000

	// MaxToolUseInputLength bounds dropped tool payloads fed to the summariser.
	MaxToolUseInputLength = 2000

	// MinSummaryTokens is the floor below which a summary is re-requested.
	MinSummaryTokens = 2000
	// MaxSummaryEnhancementAttempts bounds those re-requests.
	MaxSummaryEnhancementAttempts = 3

	// MinMessagesBetweenSummaries stops back-to-back condensations.
	MinMessagesBetweenSummaries = 20

	// PostCondenseTarget is the utilisation the condensed transcript must
	// reach before the aggressive retry kicks in.
	PostCondenseTarget = 0.40

	// FallbackToolResultLength bounds tool payloads in the fallback trim.
	FallbackToolResultLength = 4000
)

// Result reports what a condensation attempt did. When Condensed is false
// Messages is the input unchanged.
type Result struct {
	Messages     []Message
	Condensed    bool
	UsedFallback bool
	Aggressive   bool
	CondenseID   string
	TokensBefore int
	TokensAfter  int
	Reason       string // why nothing happened, when Condensed is false
}

// Compressor owns the condensation pipeline for one task. It holds the LLM
// client for summarisation and, optionally, a read-only statistics hook into
// the workflow state machine.
type Compressor struct {
	llm                 LLMClient
	contextWindow       int
	maxCompletionTokens int
	stats               func() string
	logger              *log.Logger
	newID               func() string
}

// NewCompressor creates a compressor for a model context window.
func NewCompressor(llm LLMClient, contextWindow, maxCompletionTokens int, logger *log.Logger) *Compressor {
	return &Compressor{
		llm:                 llm,
		contextWindow:       contextWindow,
		maxCompletionTokens: maxCompletionTokens,
		logger:              logger,
		newID:               uuid.NewString,
	}
}

// WithStats attaches the state machine's progress renderer. The compressor
// never writes through it; condensation works without it.
func (c *Compressor) WithStats(stats func() string) *Compressor {
	c.stats = stats
	return c
}

// WithIDSource overrides condense-id generation, for tests.
func (c *Compressor) WithIDSource(newID func() string) *Compressor {
	c.newID = newID
	return c
}

// Usable is the token budget actually available for the transcript.
func (c *Compressor) Usable() int {
	return int(float64(c.contextWindow)*(1-TokenBufferPct)) - c.maxCompletionTokens
}

// ShouldCondense reports whether the transcript has crossed the trigger
// threshold before the next LLM call.
func (c *Compressor) ShouldCondense(ctx context.Context, systemPrompt string, msgs []Message) (bool, error) {
	vis := visible(msgs)
	if len(vis) == 0 {
		return false, nil
	}
	total, err := c.countTranscript(ctx, systemPrompt, vis)
	if err != nil {
		return false, err
	}
	last, err := c.countMessages(ctx, vis[len(vis)-1:])
	if err != nil {
		return false, err
	}
	usable := c.Usable()
	if usable <= 0 {
		return true, nil
	}
	return float64(total+last)/float64(usable) >= CondenseThreshold, nil
}

// Condense runs the pipeline: the standard pass, the aggressive retry when
// the result is still above the post-condense target, and the fallback trim
// when even that leaves the transcript over budget. When everything fails
// the original transcript comes back with Condensed=false.
func (c *Compressor) Condense(ctx context.Context, systemPrompt string, msgs []Message) (Result, error) {
	vis := visible(msgs)
	if len(vis) < 3 {
		return Result{Messages: msgs, Reason: "transcript too short"}, nil
	}
	if recentSummaryExists(vis) {
		return Result{Messages: msgs, Reason: "summary already present in recent messages"}, nil
	}

	originalTokens, err := c.countTranscript(ctx, systemPrompt, vis)
	if err != nil {
		return Result{Messages: msgs}, fmt.Errorf("failed to count original tokens: %w", err)
	}
	usable := c.Usable()

	res, err := c.condenseOnce(ctx, systemPrompt, msgs, KeepToolResults, MaxToolResultLength)
	if err == nil && res.TokensAfter > int(float64(usable)*PostCondenseTarget) {
		if c.logger != nil {
			c.logger.Printf("condense: %d tokens above target %.0f, retrying aggressively",
				res.TokensAfter, float64(usable)*PostCondenseTarget)
		}
		aggr, aerr := c.condenseOnce(ctx, systemPrompt, msgs, AggressiveKeepToolResults, AggressiveMaxToolResultLength)
		if aerr == nil {
			aggr.Aggressive = true
			res, err = aggr, nil
		}
	}

	if err == nil && res.TokensAfter >= originalTokens {
		err = fmt.Errorf("condensed transcript (%d tokens) did not shrink below original (%d)",
			res.TokensAfter, originalTokens)
	}

	if err != nil || res.TokensAfter > usable {
		if c.logger != nil && err != nil {
			c.logger.Printf("condense: standard strategy failed: %v, using fallback", err)
		}
		fb, ferr := c.fallback(ctx, systemPrompt, msgs)
		if ferr != nil {
			if c.logger != nil {
				c.logger.Printf("condense: fallback also failed: %v, returning transcript unchanged", ferr)
			}
			return Result{Messages: msgs, TokensBefore: originalTokens, Reason: "both strategies failed"}, nil
		}
		fb.TokensBefore = originalTokens
		return fb, nil
	}

	res.TokensBefore = originalTokens
	res.Condensed = true
	return res, nil
}

// condenseOnce runs one partition/summarise/rebuild pass.
func (c *Compressor) condenseOnce(ctx context.Context, systemPrompt string, msgs []Message, keepPairs, maxLen int) (Result, error) {
	keep, firstDropped := partition(msgs, keepPairs)
	if firstDropped < 0 {
		return Result{}, fmt.Errorf("nothing to drop")
	}

	var dropped []Message
	for idx, m := range msgs {
		if !m.Hidden() && !keep[idx] {
			dropped = append(dropped, m)
		}
	}

	summaryText, err := c.requestSummary(ctx, dropped)
	if err != nil {
		return Result{}, err
	}

	condenseID := c.newID()
	summaryMsg := Message{
		Role:       RoleUser,
		Content:    []ContentBlock{{Type: BlockText, Text: summaryText}},
		IsSummary:  true,
		CondenseID: condenseID,
	}

	rebuilt := rebuild(msgs, keep, firstDropped, summaryMsg, condenseID, maxLen)

	after, err := c.countTranscript(ctx, systemPrompt, visible(rebuilt))
	if err != nil {
		return Result{}, fmt.Errorf("failed to count condensed tokens: %w", err)
	}

	return Result{
		Messages:    rebuilt,
		CondenseID:  condenseID,
		TokensAfter: after,
	}, nil
}

// recentSummaryExists checks the last MinMessagesBetweenSummaries visible
// messages for an existing summary.
func recentSummaryExists(vis []Message) bool {
	start := len(vis) - MinMessagesBetweenSummaries
	if start < 0 {
		start = 0
	}
	for _, m := range vis[start:] {
		if m.IsSummary {
			return true
		}
	}
	return false
}

// partition computes the keep-set over the original indexes: the first
// visible message, the last visible message, and the most recent keepPairs
// paired {tool_use, tool_result} steps. A tool_result whose matching
// tool_use is not visible is never kept. Returns the index of the first
// dropped message (-1 when nothing drops).
func partition(msgs []Message, keepPairs int) (keep map[int]bool, firstDropped int) {
	keep = make(map[int]bool)

	visIdx := make([]int, 0, len(msgs))
	for idx, m := range msgs {
		if !m.Hidden() {
			visIdx = append(visIdx, idx)
		}
	}
	if len(visIdx) == 0 {
		return keep, -1
	}
	first, last := visIdx[0], visIdx[len(visIdx)-1]
	keep[first] = true
	keep[last] = true

	// Collect paired steps in transcript order.
	type pair struct{ use, result int }
	var pairs []pair
	for vi, idx := range visIdx {
		m := msgs[idx]
		if m.Role != RoleAssistant {
			continue
		}
		useIDs := m.toolUseIDs()
		if len(useIDs) == 0 {
			continue
		}
		idSet := make(map[string]bool, len(useIDs))
		for _, id := range useIDs {
			idSet[id] = true
		}
		for _, jdx := range visIdx[vi+1:] {
			matched := false
			for _, rid := range msgs[jdx].toolResultIDs() {
				if idSet[rid] {
					matched = true
					break
				}
			}
			if matched {
				pairs = append(pairs, pair{use: idx, result: jdx})
				break
			}
		}
	}

	if keepPairs > 0 && len(pairs) > keepPairs {
		pairs = pairs[len(pairs)-keepPairs:]
	}
	for _, p := range pairs {
		keep[p.use] = true
		keep[p.result] = true
	}

	firstDropped = -1
	for _, idx := range visIdx {
		if !keep[idx] {
			firstDropped = idx
			break
		}
	}
	return keep, firstDropped
}

// rebuild assembles the condensed transcript: kept messages truncated to
// maxLen (first and last preserved byte-for-byte), dropped messages tagged
// with the summary's condense id, and the summary spliced in at the first
// dropped index.
func rebuild(msgs []Message, keep map[int]bool, firstDropped int, summary Message, condenseID string, maxLen int) []Message {
	visIdx := make([]int, 0, len(msgs))
	for idx, m := range msgs {
		if !m.Hidden() {
			visIdx = append(visIdx, idx)
		}
	}
	first, last := visIdx[0], visIdx[len(visIdx)-1]

	out := make([]Message, 0, len(msgs)+1)
	for idx, m := range msgs {
		if idx == firstDropped {
			out = append(out, summary)
		}
		switch {
		case m.Hidden():
			out = append(out, m)
		case keep[idx]:
			if idx == first || idx == last {
				out = append(out, m)
			} else {
				out = append(out, truncateMessage(m, maxLen))
			}
		default:
			m.CondenseParent = condenseID
			out = append(out, m)
		}
	}
	return out
}

// truncateMessage bounds the heavy tool payloads of a kept message.
func truncateMessage(m Message, maxLen int) Message {
	blocks := make([]ContentBlock, len(m.Content))
	copy(blocks, m.Content)
	for bi, blk := range blocks {
		switch blk.Type {
		case BlockToolUse:
			if blk.Input == nil {
				continue
			}
			input := make(map[string]string, len(blk.Input))
			for k, v := range blk.Input {
				switch k {
				case "diff", "content", "file_text", "patch":
					input[k] = truncateMiddle(v, maxLen)
				default:
					input[k] = v
				}
			}
			blocks[bi].Input = input
		case BlockToolResult:
			blocks[bi].Content = truncateMiddle(blk.Content, maxLen)
		}
	}
	m.Content = blocks
	return m
}

// fallback is the drastic strategy: keep the first message and the last two,
// truncate their tool payloads, and splice in a synthetic notice. No LLM
// involved. Fails only when even the trimmed transcript is over budget.
func (c *Compressor) fallback(ctx context.Context, systemPrompt string, msgs []Message) (Result, error) {
	visIdx := make([]int, 0, len(msgs))
	for idx, m := range msgs {
		if !m.Hidden() {
			visIdx = append(visIdx, idx)
		}
	}
	if len(visIdx) < 3 {
		return Result{}, fmt.Errorf("transcript too short for fallback")
	}

	keep := map[int]bool{
		visIdx[0]:             true,
		visIdx[len(visIdx)-2]: true,
		visIdx[len(visIdx)-1]: true,
	}

	condenseID := c.newID()
	notice := Message{
		Role: RoleUser,
		Content: []ContentBlock{{
			Type: BlockText,
			Text: "[Context fallback] The conversation exceeded the context budget and the " +
				"standard summary could not bring it down. Everything between the task " +
				"statement and the last two messages was removed without summarisation. " +
				"Re-establish state by re-reading the files and re-running the tests you rely on.",
		}},
		IsSummary:  true,
		CondenseID: condenseID,
	}

	firstDropped := -1
	for _, idx := range visIdx {
		if !keep[idx] {
			firstDropped = idx
			break
		}
	}
	if firstDropped < 0 {
		return Result{}, fmt.Errorf("nothing to drop in fallback")
	}

	out := make([]Message, 0, len(msgs)+1)
	for idx, m := range msgs {
		if idx == firstDropped {
			out = append(out, notice)
		}
		switch {
		case m.Hidden():
			out = append(out, m)
		case keep[idx]:
			out = append(out, truncateMessage(m, FallbackToolResultLength))
		default:
			m.CondenseParent = condenseID
			out = append(out, m)
		}
	}

	after, err := c.countTranscript(ctx, systemPrompt, visible(out))
	if err != nil {
		return Result{}, fmt.Errorf("failed to count fallback tokens: %w", err)
	}
	if after > c.Usable() {
		return Result{}, fmt.Errorf("fallback transcript still over budget: %d > %d", after, c.Usable())
	}

	return Result{
		Messages:     out,
		Condensed:    true,
		UsedFallback: true,
		CondenseID:   condenseID,
		TokensAfter:  after,
	}, nil
}

// countTranscript counts the system prompt plus all given messages.
func (c *Compressor) countTranscript(ctx context.Context, systemPrompt string, msgs []Message) (int, error) {
	total, err := c.llm.CountTokens(ctx, []ContentBlock{{Type: BlockText, Text: systemPrompt}})
	if err != nil {
		return 0, err
	}
	n, err := c.countMessages(ctx, msgs)
	if err != nil {
		return 0, err
	}
	return total + n, nil
}

func (c *Compressor) countMessages(ctx context.Context, msgs []Message) (int, error) {
	var blocks []ContentBlock
	for _, m := range msgs {
		blocks = append(blocks, m.Content...)
	}
	if len(blocks) == 0 {
		return 0, nil
	}
	return c.llm.CountTokens(ctx, blocks)
}
