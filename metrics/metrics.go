package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/llta-project/llta-regress/types"
)

const (
	MetricsNamespace = "llta_regress"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of evaluated regression tests",
	}, []string{
		"run_id",
		"name",
		"mode",
		"verdict",
	})

	testBound = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "test_wcet_cycles",
		Help:      "WCET bound reported by the analyzer, in cycles",
	}, []string{
		"run_id",
		"name",
	})

	testBaseline = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "test_baseline_cycles",
		Help:      "Recorded WCET baseline, in cycles",
	}, []string{
		"run_id",
		"name",
	})

	testDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "test_duration_seconds",
		Help:      "Wall-clock duration of a single analyzer run",
	}, []string{
		"run_id",
		"name",
	})

	suiteResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_results",
		Help:      "Overall verdict of a regression run",
	}, []string{
		"run_id",
		"verdict",
	})

	suiteTests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests",
		Help:      "Number of tests per verdict in a regression run",
	}, []string{
		"run_id",
		"verdict",
	})

	suiteDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_duration_seconds",
		Help:      "Duration of a regression run",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTest records the verdict of one test. The bound gauge is only set
// when the analyzer produced a bound.
func RecordTest(runID string, result *types.TestResult) {
	if result == nil {
		return
	}
	if !result.Verdict.IsValid() {
		log.Error("RecordTest - invalid verdict", "verdict", result.Verdict)
		return
	}
	name := result.Name()
	mode := result.Case.Mode
	if mode == "" {
		mode = types.TestModeSingle
	}
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"run_id", runID,
			"name", name,
			"mode", mode,
			"verdict", result.Verdict)
	}
	testsTotal.WithLabelValues(runID, name, mode.String(), result.Verdict.String()).Inc()
	testBaseline.WithLabelValues(runID, name).Set(float64(result.Case.Baseline))
	testDuration.WithLabelValues(runID, name).Set(result.Duration.Seconds())
	if result.HasBound {
		testBound.WithLabelValues(runID, name).Set(float64(result.Bound))
	}
}

func RecordSuite(
	runID string,
	overall types.Verdict,
	green int,
	yellow int,
	red int,
	duration time.Duration,
) {
	suiteResults.WithLabelValues(runID, overall.String()).Set(1)
	suiteTests.WithLabelValues(runID, types.VerdictGreen.String()).Set(float64(green))
	suiteTests.WithLabelValues(runID, types.VerdictYellow.String()).Set(float64(yellow))
	suiteTests.WithLabelValues(runID, types.VerdictRed.String()).Set(float64(red))
	suiteDuration.WithLabelValues(runID).Set(duration.Seconds())
}

// WriteTextfile dumps the default registry to path in the node exporter
// textfile collector format.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics textfile path cannot be empty")
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
