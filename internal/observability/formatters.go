// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mkoda/bifrost/internal/evaluator"
	"github.com/mkoda/bifrost/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEvaluations outputs the per-category training scores with their
// feature breakdowns, highest first.
func (p *Printer) PrintEvaluations(evals map[types.Stat]evaluator.Evaluation) {
	if len(evals) == 0 {
		return
	}

	var sb strings.Builder
	first := true
	for _, stat := range types.AllStats {
		eval, ok := evals[stat]
		if !ok {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(fmt.Sprintf("%-8s %7.2f\n", stat, eval.Score))
		b := eval.Breakdown
		sb.WriteString(fmt.Sprintf("  gains: %d  fail: %d%%  energy: %+d\n",
			b.Gains.Total(), b.FailPercent, b.EnergyDelta))
		sb.WriteString(fmt.Sprintf("  bond: %d (useful: %d)  rainbows: %d  hints: %d\n",
			b.BondGain, b.UsefulBond, b.Rainbows, b.Hints))
	}

	p.printBox("TRAINING EVALUATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecision outputs the rest-vs-train recommendation.
func (p *Printer) PrintDecision(decision evaluator.Decision) {
	var sb strings.Builder

	switch {
	case decision.Deferred:
		sb.WriteString("Calculator disabled; passing through suggestion.\n")
		if decision.Best != "" {
			sb.WriteString(fmt.Sprintf("Suggested: %s", decision.Best))
		}
	case decision.Rest:
		sb.WriteString("Recommendation: REST\n")
		sb.WriteString(fmt.Sprintf("Rest score: %.2f  Best training: %.2f", decision.RestScore, decision.BestScore))
	default:
		sb.WriteString(fmt.Sprintf("Recommendation: TRAIN %s\n", strings.ToUpper(string(decision.Best))))
		sb.WriteString(fmt.Sprintf("Score: %.2f  Rest score: %.2f", decision.BestScore, decision.RestScore))
	}

	p.printBox("DECISION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBuilds outputs the optimizer's recommended skill builds.
func (p *Printer) PrintBuilds(builds []types.Build) {
	if len(builds) == 0 {
		p.printBox("SKILL BUILDS", "No viable builds found.")
		return
	}

	var sb strings.Builder
	count := min(len(builds), maxItemsToShow)
	for i := 0; i < count; i++ {
		b := builds[i]
		sb.WriteString(fmt.Sprintf("%s  (cost %d, %d skills)\n", b.Name, b.Cost, len(b.SkillIDs)))
		sb.WriteString(fmt.Sprintf("  advantage: %.3f\n", b.Mean))
		sb.WriteString(fmt.Sprintf("  survival: %.1f%%  spurt: %.1f%%  final leg: %.1f%%\n",
			b.Metrics.Survival*100, b.Metrics.Spurt*100, b.Metrics.FinalLeg*100))
		ids := strings.Join(b.SkillIDs, ", ")
		if len(ids) > 45 {
			ids = ids[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("  [%s]\n", ids))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(builds) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more builds", len(builds)-maxItemsToShow))
	}

	p.printBox("SKILL BUILDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs the purchasable skill candidates in display order.
func (p *Printer) PrintCandidates(candidates []*types.SkillCandidate, budget int) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Budget: %d points, %d candidates\n\n", budget, len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		name := c.Name
		if len(name) > 34 {
			name = name[:31] + "..."
		}
		price := "?"
		if cost, ok := c.Cost(); ok {
			price = fmt.Sprintf("%d", cost)
		}
		sb.WriteString(fmt.Sprintf("• %-34s %5s\n", name, price))
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox("SKILL CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}
