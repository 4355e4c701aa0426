package runner

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/llta-project/llta-regress/types"
)

var (
	// ErrMarkerNotFound is returned when a required success marker is absent from stdout
	ErrMarkerNotFound = errors.New("success marker not found")
	// ErrBoundNotFound is returned when no WCET bound can be recovered from stdout
	ErrBoundNotFound = errors.New("WCET bound not found")
)

var (
	legacyBoundPattern  = regexp.MustCompile(`WCET \(worst-case execution time\): (\d+) cycles`)
	unifiedBoundPattern = regexp.MustCompile(`All solvers agree on WCET: (\d+) cycles`)
	solverRowPattern    = regexp.MustCompile(`(?m)^\|[ \t]*(\S+)[ \t]*\|[ \t]*(\S+)[ \t]*\|[ \t]*(Yes|No)[ \t]*\|[ \t]*(Yes|No)[ \t]*\|[ \t]*(\d+)[ \t]*\|[ \t]*([0-9.]+)[ \t]*\|[ \t]*$`)
)

// BoundFormat records which report generation a bound was read from
type BoundFormat int

const (
	// FormatLegacy is the single-solver "WCET (worst-case execution time): N cycles" line
	FormatLegacy BoundFormat = iota
	// FormatUnified is the multi-solver "All solvers agree on WCET: N cycles" line
	FormatUnified
)

// String implements the Stringer interface for BoundFormat
func (f BoundFormat) String() string {
	if f == FormatUnified {
		return "unified"
	}
	return "legacy"
}

// Bound is a WCET bound recovered from analyzer output
type Bound struct {
	Cycles uint64
	Format BoundFormat
}

// OutputParser recovers results from analyzer stdout
type OutputParser interface {
	// ParseBound tries the legacy pattern, then the unified pattern.
	ParseBound(stdout string) (Bound, bool)
	// BoundAfterMarker requires marker to be present and parses the unified line from
	// the first occurrence of marker onward.
	BoundAfterMarker(stdout string, marker string) (Bound, error)
	// SolverTable returns the rows of the unified solver comparison table, if printed.
	SolverTable(stdout string) []types.SolverResult
	// SolversDisagree reports whether the analyzer flagged differing solver results.
	SolversDisagree(stdout string) bool
}

// outputParser implements OutputParser interface
type outputParser struct{}

// NewOutputParser creates a new output parser
func NewOutputParser() OutputParser {
	return &outputParser{}
}

// ParseBound implements OutputParser
func (p *outputParser) ParseBound(stdout string) (Bound, bool) {
	clean := stripansi.Strip(stdout)
	if cycles, ok := firstMatch(legacyBoundPattern, clean); ok {
		return Bound{Cycles: cycles, Format: FormatLegacy}, true
	}
	if cycles, ok := firstMatch(unifiedBoundPattern, clean); ok {
		return Bound{Cycles: cycles, Format: FormatUnified}, true
	}
	return Bound{}, false
}

// BoundAfterMarker implements OutputParser
func (p *outputParser) BoundAfterMarker(stdout string, marker string) (Bound, error) {
	clean := stripansi.Strip(stdout)
	idx := strings.Index(clean, marker)
	if marker == "" || idx < 0 {
		return Bound{}, ErrMarkerNotFound
	}
	cycles, ok := firstMatch(unifiedBoundPattern, clean[idx:])
	if !ok {
		return Bound{}, ErrBoundNotFound
	}
	return Bound{Cycles: cycles, Format: FormatUnified}, nil
}

// SolverTable implements OutputParser
func (p *outputParser) SolverTable(stdout string) []types.SolverResult {
	matches := solverRowPattern.FindAllStringSubmatch(stripansi.Strip(stdout), -1)
	if len(matches) == 0 {
		return nil
	}
	rows := make([]types.SolverResult, 0, len(matches))
	for _, m := range matches {
		wcet, err := strconv.ParseUint(m[5], 10, 64)
		if err != nil {
			continue
		}
		ms, err := strconv.ParseFloat(m[6], 64)
		if err != nil {
			continue
		}
		rows = append(rows, types.SolverResult{
			Type:      m[1],
			Solver:    m[2],
			Available: m[3] == "Yes",
			Success:   m[4] == "Yes",
			WCET:      wcet,
			SolveTime: time.Duration(ms * float64(time.Millisecond)),
		})
	}
	return rows
}

// SolversDisagree implements OutputParser
func (p *outputParser) SolversDisagree(stdout string) bool {
	return strings.Contains(stripansi.Strip(stdout), SolverDisagreementMarker)
}

// firstMatch parses the first capture group of the first match of re in s.
// Values that don't fit in a uint64 count as no match.
func firstMatch(re *regexp.Regexp, s string) (uint64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
