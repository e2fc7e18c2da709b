package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lazypower/council/internal/advisor"
	"github.com/lazypower/council/internal/config"
	"github.com/lazypower/council/internal/executive"
	"github.com/lazypower/council/internal/llm"
)

// newClient returns the configured backend, or a recording dry-run client.
func newClient(cfg config.Config, dryRun bool) (llm.Client, error) {
	if dryRun {
		return llm.NewDryRun(), nil
	}
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	return client, nil
}

// buildCouncil registers every configured advisor and seeds its memories.
func buildCouncil(cfg config.Config, client llm.Client, log *zap.Logger) (*executive.Executive, error) {
	directives := llm.DirectivesFrom(cfg.Directives)
	if err := directives.Validate(); err != nil {
		return nil, err
	}

	exec := executive.New(client,
		executive.WithDirectives(directives),
		executive.WithLogger(log),
		executive.WithParallelConsult(cfg.Council.ParallelConsult),
		executive.WithRetention(cfg.Council.RetainedDecayRate, cfg.Council.RetainedStrength),
	)

	for _, ac := range cfg.Advisors {
		a, err := exec.RegisterAdvisor(advisor.PersonalityFrom(ac), ac.Name)
		if err != nil {
			return nil, err
		}
		for _, m := range ac.Memories {
			if _, err := a.Remember(m.Statement, m.DecayRate, m.InitialStrength()); err != nil {
				return nil, fmt.Errorf("seed %s: %w", a.ID(), err)
			}
		}
	}

	log.Debug("council assembled", zap.Int("advisors", len(cfg.Advisors)), zap.String("provider", cfg.LLM.Provider))
	return exec, nil
}
