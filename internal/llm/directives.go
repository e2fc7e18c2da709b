package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lazypower/council/internal/config"
)

// PayloadPlaceholder is replaced with the JSON payload when a directive is rendered.
const PayloadPlaceholder = "{payload}"

// Directive is an instruction template sent to the reasoning backend.
type Directive string

// Render JSON-encodes payload (without HTML escaping) and substitutes it
// for the placeholder.
func (d Directive) Render(payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	encoded := strings.TrimRight(buf.String(), "\n")
	return strings.ReplaceAll(string(d), PayloadPlaceholder, encoded), nil
}

// Directives holds one template per reasoning step. Values are copied into
// each advisor and the executive at construction and never mutated.
type Directives struct {
	SelectMemories  Directive // advisor: which memories matter → JSON array
	Consult         Directive // advisor: impression from selected memories → text
	KeepMemory      Directive // advisor: keep this experience? → true/false
	SummarizeMemory Directive // advisor: one-sentence literal summary → text
	SelectAdvisors  Directive // executive: which advisors to consult → JSON array
	Decide          Directive // executive: final decision → text
}

// DirectivesFrom applies non-empty overrides from cfg over the defaults.
func DirectivesFrom(cfg config.DirectivesConfig) Directives {
	d := DefaultDirectives()
	override := func(dst *Directive, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = Directive(strings.TrimSpace(src))
		}
	}
	override(&d.SelectMemories, cfg.SelectMemories)
	override(&d.Consult, cfg.Consult)
	override(&d.KeepMemory, cfg.KeepMemory)
	override(&d.SummarizeMemory, cfg.SummarizeMemory)
	override(&d.SelectAdvisors, cfg.SelectAdvisors)
	override(&d.Decide, cfg.Decide)
	return d
}

// Validate reports a directive that lacks the payload placeholder.
func (d Directives) Validate() error {
	for name, dir := range map[string]Directive{
		"select_memories":  d.SelectMemories,
		"consult":          d.Consult,
		"keep_memory":      d.KeepMemory,
		"summarize_memory": d.SummarizeMemory,
		"select_advisors":  d.SelectAdvisors,
		"decide":           d.Decide,
	} {
		if !strings.Contains(string(dir), PayloadPlaceholder) {
			return fmt.Errorf("directive %s: missing %s placeholder", name, PayloadPlaceholder)
		}
	}
	return nil
}

// DefaultDirectives returns the built-in directive text.
func DefaultDirectives() Directives {
	return Directives{
		SelectMemories:  selectMemoriesDirective,
		Consult:         consultDirective,
		KeepMemory:      keepMemoryDirective,
		SummarizeMemory: summarizeMemoryDirective,
		SelectAdvisors:  selectAdvisorsDirective,
		Decide:          decideDirective,
	}
}

const selectMemoriesDirective Directive = `You select which memories are relevant to the scenario.

Rules:
- Return ONLY valid JSON (no markdown, no code fences, no extra text).
- Output format must be exactly a JSON array of strings: ["id1","id2",...]
- Every returned id MUST be a key present in payload.memory.
- Select memories that meaningfully affect decisions in the scenario (risk, goals, constraints, social context, obligations).
- Ignore trivia unless it changes the decision.
- If none are relevant, return [].

Payload (JSON):
{payload}`

const consultDirective Directive = `You are an advisor to a decision maker. Your personality is given in the payload.
Offer the key insight your selected memories suggest for the scenario.

Rules:
- Write in ENGLISH ONLY.
- Return ONLY plain text (no JSON, no markdown).
- 3 sentences maximum.
- Do not restate the full scenario, only the memory-based insight.

Payload (JSON):
{payload}`

const keepMemoryDirective Directive = `You decide whether to remember anything from the experience you are presented with.

Rules:
- Return the word "true" exactly as presented if you want to keep a memory.
- Return the word "false" exactly as presented if you do not want to keep a memory.
- Decide based on your personality, which is specified in the payload.

Payload (JSON):
{payload}`

const summarizeMemoryDirective Directive = `You provide a one sentence summary of the literal events contained in the experience.

Rules:
- Do not assign meaning to the events or attempt to extrapolate on what you learned.
- Write in ENGLISH ONLY.
- Return ONLY plain text (no JSON, no markdown).
- 1 sentence maximum.

Payload (JSON):
{payload}`

const selectAdvisorsDirective Directive = `You decide which personalities to consult when making a decision.

Rules:
- Return ONLY valid JSON (no markdown, no code fences, no extra text).
- Output format must be exactly a JSON array of strings: ["id1","id2",...]
- Every returned id MUST be a key present in payload.personalities.
- Select at most 4 ids.
- Select personalities that would have useful insight for the scenario.
- If none are relevant, return [].

Payload (JSON):
{payload}`

const decideDirective Directive = `You are the executive function of the brain. You take insight from your advisors to make a decision in the given scenario.

Rules:
- Write in ENGLISH ONLY.
- Return ONLY plain text (no JSON, no markdown).
- Be as descriptive as you wish about what you decide and why.
- Speak as the person the brain belongs to.

Payload (JSON):
{payload}`
