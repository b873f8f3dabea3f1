// Package metrics exports folio activity as Prometheus metrics.
//
// folio runs as short lived commands, so metrics are written to a node
// exporter textfile instead of being served.
package metrics

import (
	"time"

	"github.com/etnz/folio"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the folio metrics.
type Metrics struct {
	Commands    *prometheus.CounterVec // labels: verb, status
	Events      *prometheus.CounterVec // labels: kind
	Holdings    *prometheus.GaugeVec   // labels: portfolio
	Trades      *prometheus.GaugeVec   // labels: portfolio
	Orders      *prometheus.GaugeVec   // labels: portfolio
	LastQuote   *prometheus.GaugeVec   // labels: sref
	SaveSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// New returns metrics registered in their own registry.
func New() *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_commands_total",
			Help: "Commands executed, by verb and status",
		}, []string{"verb", "status"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_events_total",
			Help: "Events emitted by quote evaluations",
		}, []string{"kind"}),
		Holdings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_holdings",
			Help: "Open holdings per portfolio",
		}, []string{"portfolio"}),
		Trades: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_trades",
			Help: "Closed trades per portfolio",
		}, []string{"portfolio"}),
		Orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_orders",
			Help: "Orders per portfolio",
		}, []string{"portfolio"}),
		LastQuote: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "folio_last_close",
			Help: "Last evaluated close price",
		}, []string{"sref"}),
		SaveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_save_duration_seconds",
			Help:    "Ledger save latency",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Commands, m.Events, m.Holdings, m.Trades, m.Orders, m.LastQuote, m.SaveSeconds)
	return m
}

// Registry returns the registry of the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveResults counts the command results.
func (m *Metrics) ObserveResults(results []folio.Result) {
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "failed"
		}
		m.Commands.WithLabelValues(r.Verb.String(), status).Inc()
	}
}

// ObserveQuote records the evaluated quote and its events.
func (m *Metrics) ObserveQuote(q folio.Quote, events []folio.Event) {
	m.LastQuote.WithLabelValues(string(q.SRef)).Set(q.Close.InexactFloat64())
	for _, e := range events {
		m.Events.WithLabelValues(e.Kind.String()).Inc()
	}
}

// ObserveLedger sets the ledger gauges.
func (m *Metrics) ObserveLedger(l *folio.Ledger) {
	for _, p := range l.Portfolios() {
		m.Holdings.WithLabelValues(p.Name).Set(float64(len(p.Holdings)))
		m.Trades.WithLabelValues(p.Name).Set(float64(len(p.Trades)))
		m.Orders.WithLabelValues(p.Name).Set(float64(len(p.Orders)))
	}
}

// ObserveSave records the duration of a save started at start.
func (m *Metrics) ObserveSave(start time.Time) {
	m.SaveSeconds.Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the metrics to filename, for the node exporter textfile
// collector. An empty filename does nothing.
func (m *Metrics) WriteTextfile(filename string) error {
	if filename == "" {
		return nil
	}
	return prometheus.WriteToTextfile(filename, m.registry)
}
