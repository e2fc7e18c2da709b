package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [decision-id]",
	Short: "Show recent decisions, or one decision with its reflections",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of decisions")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		d, err := db.GetDecision(args[0])
		if err != nil {
			return err
		}
		refs, err := db.ReflectionsFor(d.ID)
		if err != nil {
			return err
		}
		renderDeliberation(out, &d.Deliberation)
		renderReflections(out, refs)
		return nil
	}

	decisions, err := db.RecentDecisions(historyLimit)
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No decisions recorded yet.")
		return nil
	}
	for _, d := range decisions {
		renderDecisionLine(out, d)
	}
	return nil
}
