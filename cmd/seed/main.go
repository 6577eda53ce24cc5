package main

import (
	"context"
	"fmt"
	"os"

	"github.com/levenlabs/go-lflag"

	"github.com/sitariff/sitariff/pkg/controller"
	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/storage"
	"github.com/sitariff/sitariff/pkg/types"
)

// seed writes the example prices and a supplier into the local Firestore
// emulator so the server has a complete configuration to serve.
func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	supplier := lflag.String("seed-supplier", "gen_i", "Supplier to store with the seeded prices")
	schedule := lflag.String("seed-schedule", types.DefaultSchedule, "Schedule variant to store")
	lflag.Configure()

	ctx := context.Background()
	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	log.Ctx(ctx).InfoContext(ctx, "seeding settings")

	c := controller.New(s, nil)
	if err := c.Load(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load settings", "error", err)
		os.Exit(1)
	}

	if _, err := c.UpdateSettings(ctx, controller.SettingsUpdate{
		Schedule: *schedule,
		Supplier: *supplier,
	}); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed settings", "error", err)
		os.Exit(1)
	}

	snap, err := c.UpdatePrices(ctx, types.DefaultPrices())
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed prices", "error", err)
		os.Exit(1)
	}

	for _, comp := range types.PriceComponents {
		v, _ := snap.Settings.Prices.Get(comp)
		fmt.Printf("Seeded %-13s %s EUR/kWh\n", comp, v.String())
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded settings successfully", "supplier", snap.Settings.Supplier, "schedule", snap.Settings.Schedule)
}
