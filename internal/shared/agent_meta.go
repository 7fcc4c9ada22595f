package shared

import (
	"fmt"
	"time"
)

// TokenUsage is what a provider reports for one completion.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Total prefers the provider's own total and falls back to the sum.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// AgentMeta describes one LLM-backed operation (plan generation, recipe import).
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// Summary renders meta as a short human line, e.g. "MealPlanner: 150 tokens in 1.2s".
func (m AgentMeta) Summary() string {
	return fmt.Sprintf("%s: %d tokens in %.1fs", m.AgentName, m.Usage.Total(), m.Latency.Seconds())
}
