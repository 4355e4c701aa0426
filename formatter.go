package regress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/llta-project/llta-regress/runner"
	"github.com/llta-project/llta-regress/types"
)

// ResultFormatter is responsible for formatting and displaying test results.
type ResultFormatter interface {
	FormatResults(result *runner.SuiteResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger    log.Logger
	out       io.Writer
	showTable bool
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter. A nil out writes to stdout.
func NewConsoleResultFormatter(logger log.Logger, out io.Writer, showTable bool) *ConsoleResultFormatter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleResultFormatter{
		logger:    logger,
		out:       out,
		showTable: showTable,
	}
}

// FormatResults prints the optional results table followed by the plain summary lines.
func (f *ConsoleResultFormatter) FormatResults(result *runner.SuiteResult) error {
	if result == nil {
		return fmt.Errorf("no results to format")
	}
	f.logger.Info("Printing results...")

	if f.showTable {
		f.renderTable(result)
	}

	var b strings.Builder
	b.WriteString("\n=== Summary ===\n")
	for _, res := range result.Results {
		fmt.Fprintf(&b, "%s: %s\n", res.Name(), res.Verdict)
	}
	fmt.Fprintf(&b, "\nFinal Result: %s\n", result.Overall)
	_, err := io.WriteString(f.out, b.String())
	return err
}

func (f *ConsoleResultFormatter) renderTable(result *runner.SuiteResult) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("WCET Regression Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Test", "Mode", "Baseline", "Bound", "Delta", "Duration", "Verdict", "Detail",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Baseline", Align: text.AlignRight},
		{Name: "Bound", Align: text.AlignRight},
		{Name: "Delta", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Detail", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, res := range result.Results {
		t.AppendRow(table.Row{
			res.Name(),
			modeString(res.Case.Mode),
			res.Case.Baseline,
			boundString(res),
			deltaString(res),
			formatDuration(res.Duration),
			getVerdictString(res.Verdict),
			detailString(res),
		})
	}

	switch result.Overall {
	case types.VerdictGreen:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.VerdictYellow:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", result.Stats.Total),
		"",
		"",
		"",
		formatDuration(result.Duration),
		getVerdictString(result.Overall),
		fmt.Sprintf("green=%d yellow=%d red=%d", result.Stats.Green, result.Stats.Yellow, result.Stats.Red),
	})

	t.Render()
}

func modeString(m types.TestMode) string {
	if m == "" {
		return types.TestModeSingle.String()
	}
	return m.String()
}

func boundString(res *types.TestResult) string {
	if !res.HasBound {
		return "-"
	}
	if res.Source == "" {
		return fmt.Sprintf("%d", res.Bound)
	}
	return fmt.Sprintf("%d (%s)", res.Bound, res.Source)
}

func deltaString(res *types.TestResult) string {
	if !res.HasBound {
		return "-"
	}
	return fmt.Sprintf("%+d", res.Delta())
}

// detailString combines the failure diagnostic with the per-solver results.
func detailString(res *types.TestResult) string {
	var parts []string
	if res.Error != nil && res.Failure != types.FailureNone {
		parts = append(parts, fmt.Sprintf("%s: %v", res.Failure, res.Error))
	}
	if summary := res.SolverSummary(); summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, "; ")
}

func getVerdictString(v types.Verdict) string {
	switch v {
	case types.VerdictGreen:
		return "✓ " + v.String()
	case types.VerdictYellow:
		return "! " + v.String()
	default:
		return "✗ " + v.String()
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
