package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/simaogato/greenday-ledger/internal/metrics"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	transfers     *prometheus.CounterVec
	fraudWarnings prometheus.Counter
	freezes       prometheus.Counter
	accrualDays   prometheus.Counter
	records       *prometheus.CounterVec
	saves         *prometheus.CounterVec
	saveLatency   prometheus.Histogram
}

var _ metrics.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Transfer attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		fraudWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_warnings_total",
			Help:      "Transactions flagged as suspicious",
		}),
		freezes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_freezes_total",
			Help:      "Accounts frozen by the fraud window",
		}),
		accrualDays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accrual_days_total",
			Help:      "Simulated days of gain accrual applied",
		}),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_records_total",
				Help:      "Persisted records processed on load by kind and status",
			},
			[]string{"kind", "status"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_saves_total",
				Help:      "Snapshot saves by result",
			},
			[]string{"result"},
		),
		saveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_save_duration_seconds",
			Help:      "Snapshot save latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register registers all collectors with the given registerer.
func (pc *PrometheusCollector) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.transfers, pc.fraudWarnings, pc.freezes, pc.accrualDays,
		pc.records, pc.saves, pc.saveLatency,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RecordTransfer(kind, outcome string) {
	pc.transfers.WithLabelValues(kind, outcome).Inc()
}

func (pc *PrometheusCollector) RecordFraudWarning() { pc.fraudWarnings.Inc() }

func (pc *PrometheusCollector) RecordFreeze() { pc.freezes.Inc() }

func (pc *PrometheusCollector) RecordAccrualDays(days int) {
	if days > 0 {
		pc.accrualDays.Add(float64(days))
	}
}

func (pc *PrometheusCollector) RecordRecords(kind, status string, count int) {
	if count > 0 {
		pc.records.WithLabelValues(kind, status).Add(float64(count))
	}
}

func (pc *PrometheusCollector) RecordSave(success bool, duration time.Duration) {
	result := "ok"
	if !success {
		result = "error"
	}
	pc.saves.WithLabelValues(result).Inc()
	pc.saveLatency.Observe(duration.Seconds())
}
