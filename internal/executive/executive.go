// Package executive runs a council deliberation: it picks which advisors to
// consult for a scenario, collects their impressions and asks the reasoning
// backend for a final decision.
package executive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lazypower/council/internal/advisor"
	"github.com/lazypower/council/internal/llm"
	"github.com/lazypower/council/internal/memory"
)

var (
	// ErrAdvisorExists is returned when registering a name already in use.
	ErrAdvisorExists = errors.New("advisor already registered")
	// ErrUnknownAdvisor is returned when an advisor id is not registered.
	ErrUnknownAdvisor = errors.New("unknown advisor")
)

// Executive owns the advisor registry. A single Executive must not be used
// from more than one goroutine at a time.
type Executive struct {
	client     llm.Client
	directives llm.Directives
	log        *zap.Logger
	parallel   bool
	newID      func() string

	retainedDecay    float64
	retainedStrength float64

	advisors map[string]*advisor.Advisor
	order    []string // registration order
}

// Option configures an Executive.
type Option func(*Executive)

// WithDirectives replaces the default directive set for the executive and
// every advisor it registers.
func WithDirectives(d llm.Directives) Option {
	return func(e *Executive) { e.directives = d }
}

// WithLogger sets the logger shared with registered advisors.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executive) {
		if l != nil {
			e.log = l
		}
	}
}

// WithParallelConsult consults selected advisors concurrently. Impressions
// keep selector order either way.
func WithParallelConsult(enabled bool) Option {
	return func(e *Executive) { e.parallel = enabled }
}

// WithIDGenerator overrides how ids are generated for unnamed advisors.
func WithIDGenerator(fn func() string) Option {
	return func(e *Executive) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithRetention sets decay rate and strength for memories advisors retain.
func WithRetention(decayRate, strength float64) Option {
	return func(e *Executive) {
		e.retainedDecay = decayRate
		e.retainedStrength = strength
	}
}

// New creates an Executive with no advisors.
func New(client llm.Client, opts ...Option) *Executive {
	e := &Executive{
		client:     client,
		directives: llm.DefaultDirectives(),
		log:        zap.NewNop(),
		newID:      memory.NewID,
		advisors:   make(map[string]*advisor.Advisor),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterAdvisor adds an advisor under name, or under a generated id when
// name is empty.
func (e *Executive) RegisterAdvisor(p advisor.Personality, name string) (*advisor.Advisor, error) {
	id := name
	if id == "" {
		id = e.newID()
	}
	if _, ok := e.advisors[id]; ok {
		return nil, fmt.Errorf("register %q: %w", id, ErrAdvisorExists)
	}

	a := advisor.New(id, p, e.client,
		advisor.WithDirectives(e.directives),
		advisor.WithLogger(e.log),
		advisor.WithRetention(e.retainedDecay, e.retainedStrength),
	)
	e.advisors[id] = a
	e.order = append(e.order, id)
	e.log.Debug("advisor registered", zap.String("advisor", id))
	return a, nil
}

// Advisor returns the registered advisor with id, or nil.
func (e *Executive) Advisor(id string) *advisor.Advisor {
	return e.advisors[id]
}

// Lookup returns the registered advisor with id, or ErrUnknownAdvisor.
func (e *Executive) Lookup(id string) (*advisor.Advisor, error) {
	a, ok := e.advisors[id]
	if !ok {
		return nil, fmt.Errorf("advisor %q: %w", id, ErrUnknownAdvisor)
	}
	return a, nil
}

// Advisors returns all advisors in registration order.
func (e *Executive) Advisors() []*advisor.Advisor {
	out := make([]*advisor.Advisor, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.advisors[id])
	}
	return out
}

// Impression is one advisor's contribution to a deliberation.
type Impression struct {
	AdvisorID string `json:"advisor_id"`
	Text      string `json:"text"`
}

// Deliberation is the full trace of one DecideAction call.
type Deliberation struct {
	Scenario    string       `json:"scenario"`
	Selected    []string     `json:"selected"`
	Impressions []Impression `json:"impressions"`
	Decision    string       `json:"decision"`
}

// Insights returns the impression texts in order.
func (d *Deliberation) Insights() []string {
	out := make([]string, len(d.Impressions))
	for i, imp := range d.Impressions {
		out[i] = imp.Text
	}
	return out
}

// DecideAction deliberates on scenario and returns the decision text.
func (e *Executive) DecideAction(ctx context.Context, scenario string) (string, error) {
	d, err := e.Deliberate(ctx, scenario)
	if err != nil {
		return "", err
	}
	return d.Decision, nil
}

type selectAdvisorsPayload struct {
	Personalities map[string]any `json:"personalities"`
	Scenario      string         `json:"scenario"`
}

type decidePayload struct {
	AdvisorInsights []string `json:"advisor_insights"`
	Scenario        string   `json:"scenario"`
}

// Deliberate selects advisors, consults them in selector order and asks for
// a decision. A selection that names no registered advisor still reaches the
// decision step with no insights. Any backend failure aborts the call.
func (e *Executive) Deliberate(ctx context.Context, scenario string) (*Deliberation, error) {
	selected, err := e.selectAdvisors(ctx, scenario)
	if err != nil {
		return nil, err
	}

	impressions, err := e.consultAll(ctx, selected, scenario)
	if err != nil {
		return nil, err
	}

	d := &Deliberation{
		Scenario:    scenario,
		Selected:    selected,
		Impressions: impressions,
	}
	for _, imp := range impressions {
		e.log.Info("advisor insight", zap.String("advisor", imp.AdvisorID), zap.String("insight", imp.Text))
	}

	prompt, err := e.directives.Decide.Render(decidePayload{
		AdvisorInsights: d.Insights(),
		Scenario:        scenario,
	})
	if err != nil {
		return nil, fmt.Errorf("render decide: %w", err)
	}

	resp, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}
	d.Decision = resp.Content
	return d, nil
}

// selectAdvisors asks the backend which advisors to consult and keeps only
// registered ids, first occurrence wins.
func (e *Executive) selectAdvisors(ctx context.Context, scenario string) ([]string, error) {
	catalog := make(map[string]any, len(e.advisors))
	for id, a := range e.advisors {
		catalog[id] = a.Personality().Describe()
	}

	prompt, err := e.directives.SelectAdvisors.Render(selectAdvisorsPayload{
		Personalities: catalog,
		Scenario:      scenario,
	})
	if err != nil {
		return nil, fmt.Errorf("render select advisors: %w", err)
	}

	resp, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("select advisors: %w", err)
	}

	requested, ok := llm.ParseStringListOK(resp.Content)
	if !ok {
		e.log.Debug("advisor selection unreadable, consulting none", zap.String("response", resp.Content))
	}
	seen := make(map[string]bool, len(requested))
	selected := make([]string, 0, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := e.advisors[id]; !ok {
			e.log.Debug("selector named unknown advisor", zap.String("advisor", id))
			continue
		}
		selected = append(selected, id)
	}

	e.log.Debug("advisors selected", zap.Strings("selected", selected), zap.Int("requested", len(requested)))
	return selected, nil
}

// consultAll gathers impressions from ids in order, dropping empty ones.
func (e *Executive) consultAll(ctx context.Context, ids []string, scenario string) ([]Impression, error) {
	texts := make([]string, len(ids))

	if e.parallel && len(ids) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				text, err := e.advisors[id].Consult(gctx, scenario)
				if err != nil {
					return fmt.Errorf("consult %s: %w", id, err)
				}
				texts[i] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, id := range ids {
			text, err := e.advisors[id].Consult(ctx, scenario)
			if err != nil {
				return nil, fmt.Errorf("consult %s: %w", id, err)
			}
			texts[i] = text
		}
	}

	impressions := make([]Impression, 0, len(ids))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		impressions = append(impressions, Impression{AdvisorID: ids[i], Text: text})
	}
	return impressions, nil
}

// Reflect offers an outcome to every advisor in registration order and
// returns the ids of those that kept a memory of it.
func (e *Executive) Reflect(ctx context.Context, scenario, actionTaken, result string) ([]string, error) {
	var kept []string
	for _, id := range e.order {
		ok, err := e.advisors[id].RetainMemory(ctx, scenario, actionTaken, result)
		if err != nil {
			return kept, fmt.Errorf("reflect %s: %w", id, err)
		}
		if ok {
			kept = append(kept, id)
		}
	}
	return kept, nil
}
