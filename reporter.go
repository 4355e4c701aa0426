package regress

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/llta-project/llta-regress/metrics"
	"github.com/llta-project/llta-regress/runner"
)

// MetricsReporter is responsible for reporting metrics from test results.
type MetricsReporter interface {
	ReportResults(result *runner.SuiteResult) error
}

// DefaultMetricsReporter implements the MetricsReporter interface. Per-test
// metrics are recorded by the runner; this adds the suite summary and, when a
// textfile path is configured, exports the registry.
type DefaultMetricsReporter struct {
	log      log.Logger
	textfile string
}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter. An empty
// textfile keeps metrics in-process only.
func NewDefaultMetricsReporter(logger log.Logger, textfile string) *DefaultMetricsReporter {
	return &DefaultMetricsReporter{
		log:      logger,
		textfile: textfile,
	}
}

// ReportResults reports the test results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(result *runner.SuiteResult) error {
	if result == nil {
		return nil
	}
	metrics.RecordSuite(
		result.RunID,
		result.Overall,
		result.Stats.Green,
		result.Stats.Yellow,
		result.Stats.Red,
		result.Duration,
	)
	if r.textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(r.textfile); err != nil {
		metrics.RecordErrorDetails("textfile", err)
		return err
	}
	r.log.Info("Wrote metrics textfile", "path", r.textfile)
	return nil
}
