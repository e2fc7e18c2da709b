// Package advisor implements a single council member: a personality with a
// private, decaying memory store that can be consulted about a scenario and
// can decide to remember an outcome.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lazypower/council/internal/llm"
	"github.com/lazypower/council/internal/memory"
)

const (
	defaultRetainedDecay    = 0.01
	defaultRetainedStrength = 1.0
)

// Advisor owns one memory collection and consults the reasoning backend
// through its directives. Not safe for concurrent use.
type Advisor struct {
	id          string
	personality Personality
	memories    *memory.Collection
	client      llm.Client
	directives  llm.Directives
	log         *zap.Logger

	retainedDecay    float64
	retainedStrength float64
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithDirectives replaces the default directive set.
func WithDirectives(d llm.Directives) Option {
	return func(a *Advisor) { a.directives = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRetention sets the decay rate and initial strength of memories kept
// by RetainMemory. Non-positive values keep the defaults.
func WithRetention(decayRate, strength float64) Option {
	return func(a *Advisor) {
		if decayRate > 0 {
			a.retainedDecay = decayRate
		}
		if strength > 0 {
			a.retainedStrength = strength
		}
	}
}

// New creates an advisor with an empty memory collection.
func New(id string, p Personality, client llm.Client, opts ...Option) *Advisor {
	a := &Advisor{
		id:               id,
		personality:      p,
		memories:         memory.NewCollection(),
		client:           client,
		directives:       llm.DefaultDirectives(),
		log:              zap.NewNop(),
		retainedDecay:    defaultRetainedDecay,
		retainedStrength: defaultRetainedStrength,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(zap.String("advisor", id))
	return a
}

// ID returns the advisor's identifier.
func (a *Advisor) ID() string { return a.id }

// Personality returns the advisor's personality.
func (a *Advisor) Personality() Personality { return a.personality }

// Memories returns the advisor's memory collection.
func (a *Advisor) Memories() *memory.Collection { return a.memories }

// Remember seeds a memory directly, bypassing the retain decision.
func (a *Advisor) Remember(statement string, decayRate, strength float64) (string, error) {
	return a.memories.Add(memory.New(statement, decayRate, strength))
}

type selectMemoriesPayload struct {
	Memory      json.RawMessage `json:"memory"`
	Scenario    string          `json:"scenario"`
	Personality any             `json:"personality"`
}

type consultPayload struct {
	SelectedMemories []string `json:"selected_memories"`
	Scenario         string   `json:"scenario"`
	Personality      any      `json:"personality"`
}

type experience struct {
	Scenario    string `json:"scenario"`
	ActionTaken string `json:"action_taken"`
	Result      string `json:"result"`
}

type experiencePayload struct {
	Experience  experience `json:"experience"`
	Personality any        `json:"personality"`
}

// Consult asks the backend which memories bear on the scenario, applies the
// selection to the memory store (refresh selected, decay the rest, prune),
// and returns a short impression. An empty string means the advisor has
// nothing to contribute; in that case no second backend call is made.
// Malformed backend output never produces an error; backend failures do.
func (a *Advisor) Consult(ctx context.Context, scenario string) (string, error) {
	serialized, err := a.memories.Serialize()
	if err != nil {
		return "", err
	}

	prompt, err := a.directives.SelectMemories.Render(selectMemoriesPayload{
		Memory:      json.RawMessage(serialized),
		Scenario:    scenario,
		Personality: a.personality.Describe(),
	})
	if err != nil {
		return "", fmt.Errorf("render select memories: %w", err)
	}

	resp, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("advisor %s: select memories: %w", a.id, err)
	}

	ids, ok := llm.ParseStringListOK(resp.Content)
	if !ok {
		a.log.Debug("memory selection unreadable, selecting none", zap.String("response", resp.Content))
	}
	before := a.memories.Len()
	selected := a.memories.Select(ids)
	a.log.Debug("memories selected",
		zap.Int("requested", len(ids)),
		zap.Int("selected", len(selected)),
		zap.Int("pruned", before-a.memories.Len()),
	)

	if len(selected) == 0 {
		return "", nil
	}

	statements := make([]string, len(selected))
	for i, m := range selected {
		statements[i] = m.Statement()
	}

	prompt, err = a.directives.Consult.Render(consultPayload{
		SelectedMemories: statements,
		Scenario:         scenario,
		Personality:      a.personality.Describe(),
	})
	if err != nil {
		return "", fmt.Errorf("render consult: %w", err)
	}

	resp, err = a.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("advisor %s: consult: %w", a.id, err)
	}
	return resp.Content, nil
}

// RetainMemory lets the advisor decide whether an experience is worth
// remembering. When it is, a one-sentence summary is stored as a new memory
// that fades unless later selected. Reports whether a memory was stored.
func (a *Advisor) RetainMemory(ctx context.Context, scenario, actionTaken, result string) (bool, error) {
	payload := experiencePayload{
		Experience: experience{
			Scenario:    scenario,
			ActionTaken: actionTaken,
			Result:      result,
		},
		Personality: a.personality.Describe(),
	}

	prompt, err := a.directives.KeepMemory.Render(payload)
	if err != nil {
		return false, fmt.Errorf("render keep memory: %w", err)
	}

	resp, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("advisor %s: keep memory: %w", a.id, err)
	}
	keep, ok := llm.ParseBoolOK(resp.Content)
	if !ok {
		a.log.Debug("keep decision unreadable, discarding", zap.String("response", resp.Content))
	}
	if !keep {
		a.log.Debug("experience discarded")
		return false, nil
	}

	prompt, err = a.directives.SummarizeMemory.Render(payload)
	if err != nil {
		return false, fmt.Errorf("render summarize memory: %w", err)
	}

	resp, err = a.client.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("advisor %s: summarize memory: %w", a.id, err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		a.log.Warn("empty memory summary, nothing stored")
		return false, nil
	}

	id, err := a.Remember(summary, a.retainedDecay, a.retainedStrength)
	if err != nil {
		return false, err
	}
	a.log.Info("memory retained", zap.String("memory", id), zap.String("statement", summary))
	return true, nil
}
