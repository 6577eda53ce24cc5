package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sitariff/sitariff/pkg/types"
)

func TestObserveStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())

	cl := types.Classification{
		Season:       types.SeasonHigher,
		DayType:      types.DayTypeWorkday,
		NetworkBlock: types.NetworkBlock1,
		EnergyTariff: types.EnergyTariffVT,
	}
	m.ObserveStatus(cl, decimal.NewNullDecimal(decimal.RequireFromString("0.14234")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.networkBlock))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blockActive.WithLabelValues("1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.blockActive.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.vtActive))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.cheap))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expensive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.higherSeason))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.holiday))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pricesPresent))
	assert.InDelta(t, 0.14234, testutil.ToFloat64(m.unitPrice), 1e-9)

	cl.NetworkBlock = types.NetworkBlock5
	cl.EnergyTariff = types.EnergyTariffMT
	cl.Season = types.SeasonLower
	cl.IsHoliday = true
	m.ObserveStatus(cl, decimal.NullDecimal{})

	assert.Equal(t, 5.0, testutil.ToFloat64(m.networkBlock))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.blockActive.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blockActive.WithLabelValues("5")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.vtActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cheap))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.expensive))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.higherSeason))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.holiday))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pricesPresent))
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePoll(10 * time.Millisecond)
	m.ObservePoll(20 * time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.polls))

	m.IncCost(ResultSuccess)
	m.IncCost(ResultInvalid)
	m.IncCost(ResultSuccess)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.costs.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.costs.WithLabelValues(ResultInvalid)))

	m.IncPriceUpdate(ResultError)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.priceUpdates.WithLabelValues(ResultError)))

	m.IncTransition("block")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("block")))

	m.SetRevision(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.revision))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStatus(types.Classification{NetworkBlock: types.NetworkBlock2}, decimal.NullDecimal{})
		m.ObservePoll(time.Second)
		m.SetRevision(1)
		m.IncCost(ResultSuccess)
		m.IncPriceUpdate(ResultSuccess)
		m.IncTransition("season")
	})
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultInvalid, ResultFor(types.NewError(types.ErrorKindInvalidConsumption, "consumptionKWH", "-1")))
	assert.Equal(t, ResultError, ResultFor(errors.New("failed to save settings")))
}

func TestRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
