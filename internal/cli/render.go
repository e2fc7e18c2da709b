package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lazypower/council/internal/advisor"
	"github.com/lazypower/council/internal/executive"
	"github.com/lazypower/council/internal/store"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	advisorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	decisionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(78)
)

func renderDeliberation(w io.Writer, d *executive.Deliberation) {
	fmt.Fprintln(w, headingStyle.Render("Scenario"))
	fmt.Fprintln(w, d.Scenario)
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render("Council"))
	if len(d.Selected) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no advisors consulted"))
	}
	spoke := make(map[string]string, len(d.Impressions))
	for _, imp := range d.Impressions {
		spoke[imp.AdvisorID] = imp.Text
	}
	for _, id := range d.Selected {
		text, ok := spoke[id]
		if !ok {
			fmt.Fprintf(w, "  %s %s\n", advisorStyle.Render(id), mutedStyle.Render("(nothing to add)"))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", advisorStyle.Render(id), text)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render("Decision"))
	fmt.Fprintln(w, decisionStyle.Render(strings.TrimSpace(d.Decision)))
}

func renderAdvisor(w io.Writer, a *advisor.Advisor) {
	fmt.Fprintf(w, "%s %s\n", advisorStyle.Render(a.ID()), mutedStyle.Render(a.Personality().String()))
	snap := a.Memories().Snapshot()
	if len(snap) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no memories"))
	}
	for _, m := range snap {
		fmt.Fprintf(w, "  [%.2f] %s %s\n", m.Strength, m.Statement,
			mutedStyle.Render(fmt.Sprintf("(decay %.2f, step %d)", m.DecayRate, m.Step)))
	}
}

func renderDecisionLine(w io.Writer, d store.Decision) {
	created := time.UnixMilli(d.CreatedAt).Format("2006-01-02 15:04")
	fmt.Fprintf(w, "%s %s %s\n", mutedStyle.Render(d.ID), mutedStyle.Render(created), truncate(d.Scenario, 60))
}

func renderReflections(w io.Writer, refs []store.Reflection) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Reflections"))
	for _, r := range refs {
		kept := "nobody kept a memory"
		if len(r.RetainedBy) > 0 {
			kept = "kept by " + strings.Join(r.RetainedBy, ", ")
		}
		fmt.Fprintf(w, "  %s %s\n", r.Result, mutedStyle.Render("("+kept+")"))
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
