package scholar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalFetches tracks per-year queries issued to the provider.
	TotalFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_fetches_total",
		Help: "The total number of per-year count queries sent to the provider.",
	})
	// TotalFetchErrors tracks queries that ended in any failure.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_fetch_errors_total",
		Help: "The total number of per-year queries that failed.",
	})
	// TotalBlocked tracks captcha/traffic-check responses.
	TotalBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_blocked_total",
		Help: "The total number of responses identified as provider blocks.",
	})
	// TotalParseMisses tracks responses where no count string was found.
	TotalParseMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_parse_misses_total",
		Help: "The total number of responses with no parseable result count.",
	})
	// TotalRetries tracks fetch attempts beyond the first per year.
	TotalRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_retries_total",
		Help: "The total number of retried per-year queries.",
	})
	// TotalYearsUpdated tracks years whose count was refreshed this run.
	TotalYearsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholartrend_years_updated_total",
		Help: "The total number of year rows updated with a fresh count.",
	})
)
