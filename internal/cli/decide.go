package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/council/internal/config"
	"github.com/lazypower/council/internal/llm"
	"github.com/lazypower/council/internal/logger"
	"github.com/lazypower/council/internal/store"
)

var (
	decideDryRun    bool
	decideNoJournal bool
)

var decideCmd = &cobra.Command{
	Use:   "decide [scenario]",
	Short: "Deliberate on a scenario and print the decision",
	Long:  "Consult the council about a scenario. With no scenario, a built-in example is used.",
	RunE:  runDecide,
}

func init() {
	decideCmd.Flags().BoolVar(&decideDryRun, "dry-run", false, "print the prompts that would be sent instead of calling the backend")
	decideCmd.Flags().BoolVar(&decideNoJournal, "no-journal", false, "do not record the decision")

	reflectCmd.Flags().StringVar(&reflectScenario, "scenario", "", "scenario (defaults to the journaled decision's)")
	reflectCmd.Flags().StringVar(&reflectAction, "action", "", "action taken (defaults to the journaled decision)")
	reflectCmd.Flags().StringVar(&reflectResult, "result", "", "what happened")
}

func runDecide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Debug)
	defer log.Sync()

	scenario := strings.TrimSpace(strings.Join(args, " "))
	if scenario == "" {
		scenario = config.ExampleScenario
	}

	client, err := newClient(cfg, decideDryRun)
	if err != nil {
		return err
	}
	exec, err := buildCouncil(cfg, client, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	d, err := exec.Deliberate(ctx, scenario)
	if err != nil {
		return fmt.Errorf("deliberate: %w", err)
	}

	out := cmd.OutOrStdout()
	renderDeliberation(out, d)

	if mock, ok := client.(*llm.MockClient); ok && decideDryRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, headingStyle.Render("Prompts (dry run)"))
		for i, p := range mock.Prompts() {
			fmt.Fprintf(out, "%s\n%s\n\n", mutedStyle.Render(fmt.Sprintf("--- %d ---", i+1)), p)
		}
		return nil
	}
	if decideNoJournal {
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rec, err := db.RecordDecision(d)
	if err != nil {
		return err
	}
	log.Debug("decision recorded", zap.String("id", rec.ID))
	fmt.Fprintln(out, mutedStyle.Render("journal: "+rec.ID))
	return nil
}

var (
	reflectScenario string
	reflectAction   string
	reflectResult   string
)

var reflectCmd = &cobra.Command{
	Use:   "reflect [decision-id]",
	Short: "Offer an outcome to the council and record which advisors remember it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReflect,
}

func runReflect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Debug)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ref := &store.Reflection{
		Scenario:    reflectScenario,
		ActionTaken: reflectAction,
		Result:      reflectResult,
	}
	if len(args) == 1 {
		d, err := db.GetDecision(args[0])
		if err != nil {
			return err
		}
		ref.DecisionID = d.ID
		if ref.Scenario == "" {
			ref.Scenario = d.Scenario
		}
		if ref.ActionTaken == "" {
			ref.ActionTaken = d.Decision
		}
	}
	if ref.Scenario == "" || ref.ActionTaken == "" || ref.Result == "" {
		return fmt.Errorf("reflect needs a scenario, an action and a --result (pass a decision id to reuse its scenario and action)")
	}

	client, err := newClient(cfg, false)
	if err != nil {
		return err
	}
	exec, err := buildCouncil(cfg, client, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ref.RetainedBy, err = exec.Reflect(ctx, ref.Scenario, ref.ActionTaken, ref.Result)
	if err != nil {
		return fmt.Errorf("reflect: %w", err)
	}
	if err := db.RecordReflection(ref); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ref.RetainedBy) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No advisor found this worth remembering."))
		return nil
	}
	for _, id := range ref.RetainedBy {
		renderAdvisor(out, exec.Advisor(id))
	}
	return nil
}
