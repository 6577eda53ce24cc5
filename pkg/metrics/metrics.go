// Package metrics publishes the current tariff state and host activity to
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/sitariff/sitariff/pkg/types"
)

const (
	metricPrefix = "sitariff_"

	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds the collectors. A nil *Metrics discards every observation.
type Metrics struct {
	networkBlock  prometheus.Gauge
	blockActive   *prometheus.GaugeVec
	vtActive      prometheus.Gauge
	cheap         prometheus.Gauge
	expensive     prometheus.Gauge
	higherSeason  prometheus.Gauge
	holiday       prometheus.Gauge
	unitPrice     prometheus.Gauge
	revision      prometheus.Gauge
	pricesPresent prometheus.Gauge

	polls        prometheus.Counter
	pollLatency  prometheus.Histogram
	costs        *prometheus.CounterVec
	priceUpdates *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		networkBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "network_block",
			Help: "Network tariff block currently in effect (1-5)",
		}),
		blockActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "network_block_active",
				Help: "1 for the network tariff block currently in effect, 0 for the others",
			},
			[]string{"block"},
		),
		vtActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "vt_active",
			Help: "1 while the high energy tariff (VT) applies",
		}),
		cheap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "cheap_active",
			Help: "1 while one of the two lowest-rate network blocks (4, 5) applies",
		}),
		expensive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "expensive_active",
			Help: "1 while one of the two highest-rate network blocks (1, 2) applies",
		}),
		higherSeason: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "higher_season",
			Help: "1 during the higher season (November to February)",
		}),
		holiday: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "holiday",
			Help: "1 on Slovenian public holidays",
		}),
		unitPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "unit_price_eur_per_kwh",
			Help: "Total price per kWh currently in effect",
		}),
		pricesPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "prices_configured",
			Help: "1 once a complete price configuration is active",
		}),
		revision: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "config_revision",
			Help: "Revision of the active configuration snapshot",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "status_polls_total",
			Help: "Total status polls",
		}),
		pollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "status_poll_latency_seconds",
			Help:    "Status poll latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		costs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cost_calculations_total",
				Help: "Total cost calculations by result",
			},
			[]string{"result"},
		),
		priceUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_updates_total",
				Help: "Total price configuration updates by result",
			},
			[]string{"result"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "status_transitions_total",
				Help: "Total tariff status transitions by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(
		m.networkBlock,
		m.blockActive,
		m.vtActive,
		m.cheap,
		m.expensive,
		m.higherSeason,
		m.holiday,
		m.unitPrice,
		m.pricesPresent,
		m.revision,
		m.polls,
		m.pollLatency,
		m.costs,
		m.priceUpdates,
		m.transitions,
	)
	return m
}

// ObserveStatus publishes the classification and, when prices are configured,
// the unit price in effect.
func (m *Metrics) ObserveStatus(cl types.Classification, unitPrice decimal.NullDecimal) {
	if m == nil {
		return
	}
	m.networkBlock.Set(float64(cl.NetworkBlock))
	for _, b := range types.NetworkBlocks {
		m.blockActive.WithLabelValues(strconv.Itoa(int(b))).Set(boolGauge(b == cl.NetworkBlock))
	}
	m.vtActive.Set(boolGauge(cl.EnergyTariff == types.EnergyTariffVT))
	m.cheap.Set(boolGauge(cl.NetworkBlock.Cheap()))
	m.expensive.Set(boolGauge(cl.NetworkBlock.Expensive()))
	m.higherSeason.Set(boolGauge(cl.Season == types.SeasonHigher))
	m.holiday.Set(boolGauge(cl.IsHoliday))
	m.pricesPresent.Set(boolGauge(unitPrice.Valid))
	if unitPrice.Valid {
		m.unitPrice.Set(unitPrice.Decimal.InexactFloat64())
	}
}

// ObservePoll records one status poll.
func (m *Metrics) ObservePoll(d time.Duration) {
	if m == nil {
		return
	}
	m.polls.Inc()
	m.pollLatency.Observe(d.Seconds())
}

// SetRevision publishes the active configuration revision.
func (m *Metrics) SetRevision(rev uint64) {
	if m == nil {
		return
	}
	m.revision.Set(float64(rev))
}

// IncCost counts a cost calculation by result.
func (m *Metrics) IncCost(result string) {
	if m == nil {
		return
	}
	m.costs.WithLabelValues(result).Inc()
}

// IncPriceUpdate counts a price update by result.
func (m *Metrics) IncPriceUpdate(result string) {
	if m == nil {
		return
	}
	m.priceUpdates.WithLabelValues(result).Inc()
}

// IncTransition counts a status transition of the given kind (block,
// energy_tariff, season, holiday).
func (m *Metrics) IncTransition(kind string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind).Inc()
}

// ResultFor maps an operation error to a result label.
func ResultFor(err error) string {
	if err == nil {
		return ResultSuccess
	}
	if types.IsTariffError(err) {
		return ResultInvalid
	}
	return ResultError
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
