package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

// Run refreshes the current status every poll interval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

// poll classifies now, publishes the result and logs any transition since
// the previous poll.
func (c *Controller) poll(ctx context.Context) {
	start := time.Now()
	defer func() {
		c.metrics.ObservePoll(time.Since(start))
	}()

	st, err := c.CurrentStatus(ctx, time.Time{})
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to refresh tariff status", slog.Any("error", err))
		return
	}

	var unitPrice decimal.NullDecimal
	if st.Breakdown != nil {
		unitPrice = decimal.NewNullDecimal(st.Breakdown.Total)
	}
	c.metrics.ObserveStatus(st.Classification, unitPrice)

	cl := st.Classification
	if c.last != nil {
		changed := transitions(*c.last, cl)
		for _, kind := range changed {
			c.metrics.IncTransition(kind)
		}
		if len(changed) > 0 {
			log.Ctx(ctx).InfoContext(
				ctx,
				"tariff status changed",
				slog.Any("changed", changed),
				slog.Int("networkBlock", int(cl.NetworkBlock)),
				slog.String("energyTariff", string(cl.EnergyTariff)),
				slog.String("season", string(cl.Season)),
				slog.String("dayType", string(cl.DayType)),
				slog.String("holidayName", cl.HolidayName),
			)
		}
	}
	c.last = &cl
}

// transitions lists what differs between two classifications.
func transitions(prev, cur types.Classification) []string {
	var out []string
	if prev.NetworkBlock != cur.NetworkBlock {
		out = append(out, "block")
	}
	if prev.EnergyTariff != cur.EnergyTariff {
		out = append(out, "energy_tariff")
	}
	if prev.Season != cur.Season {
		out = append(out, "season")
	}
	if prev.IsHoliday != cur.IsHoliday {
		out = append(out, "holiday")
	}
	return out
}
