package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/council/internal/llm"
)

var councilCmd = &cobra.Command{
	Use:   "council",
	Short: "List the configured advisors and their seed memories",
	RunE:  runCouncil,
}

func runCouncil(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Listing never calls the backend.
	exec, err := buildCouncil(cfg, llm.NewDryRun(), zap.NewNop())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", headingStyle.Render("Council"),
		mutedStyle.Render(fmt.Sprintf("(%s, %s)", cfg.LLM.Provider, cfg.LLM.Model)))
	for _, a := range exec.Advisors() {
		renderAdvisor(out, a)
		fmt.Fprintln(out)
	}
	return nil
}
