// Package controller owns the live tariff configuration. It publishes an
// immutable snapshot of the settings that readers use without locking and
// serializes every change through storage.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/shopspring/decimal"

	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/metrics"
	"github.com/sitariff/sitariff/pkg/pricing"
	"github.com/sitariff/sitariff/pkg/storage"
	"github.com/sitariff/sitariff/pkg/tariff"
	"github.com/sitariff/sitariff/pkg/types"
)

// DefaultPollInterval is how often Run refreshes the current status.
const DefaultPollInterval = time.Minute

// ErrNotLoaded is returned by operations called before Load succeeded.
var ErrNotLoaded = errors.New("configuration not loaded")

// Snapshot is an immutable view of the active configuration.
type Snapshot struct {
	Settings types.Settings
	// Version is the settings version as stored.
	Version int
	// Revision increases by one every time a new snapshot is published.
	Revision   uint64
	Classifier *tariff.Classifier
	LoadedAt   time.Time
}

// PricesConfigured returns true if a complete price configuration is active.
func (s *Snapshot) PricesConfigured() bool {
	return s.Settings.Prices.Validate() == nil
}

// Controller serves the tariff operations from the active snapshot.
type Controller struct {
	storage storage.Database
	metrics *metrics.Metrics

	snapshot atomic.Pointer[Snapshot]
	// mu serializes writers so the stored settings and the snapshot agree
	mu sync.Mutex

	pollInterval    time.Duration
	defaultSchedule string
	now             func() time.Time

	// last is only touched by the Run goroutine
	last *types.Classification
}

// New returns a Controller backed by db. Metrics may be nil.
func New(db storage.Database, m *metrics.Metrics) *Controller {
	return &Controller{
		storage:         db,
		metrics:         m,
		pollInterval:    DefaultPollInterval,
		defaultSchedule: types.DefaultSchedule,
		now:             time.Now,
	}
}

// Configured returns a Controller configured from flags.
func Configured(db storage.Database, m *metrics.Metrics) *Controller {
	c := New(db, m)

	pollInterval := lflag.Duration("poll-interval", DefaultPollInterval, "How often to refresh the current tariff status")
	defaultSchedule := lflag.String("default-schedule", types.DefaultSchedule, "Schedule variant used until one is chosen in settings")

	lflag.Do(func() {
		if *pollInterval <= 0 {
			panic(fmt.Sprintf("poll-interval must be positive: %s", *pollInterval))
		}
		if _, err := tariff.Variant(*defaultSchedule); err != nil {
			panic(fmt.Sprintf("invalid default-schedule: %v", err))
		}
		c.pollInterval = *pollInterval
		c.defaultSchedule = *defaultSchedule
	})

	return c
}

// Snapshot returns the active snapshot or nil before Load.
func (c *Controller) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

func (c *Controller) current() (*Snapshot, error) {
	snap := c.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Load reads the settings from storage, migrates them to the current version
// and publishes them.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings, version, err := c.storage.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Schedule == "" {
		settings.Schedule = c.defaultSchedule
	}

	// Check for migration
	if version < types.CurrentSettingsVersion {
		log.Ctx(ctx).InfoContext(ctx, "migrating settings", slog.Int("oldVersion", version), slog.Int("newVersion", types.CurrentSettingsVersion))
		newSettings, changed, err := types.MigrateSettings(settings, version)
		if err != nil {
			return fmt.Errorf("failed to migrate settings: %w", err)
		}
		if changed {
			if err := c.storage.SetSettings(ctx, newSettings, types.CurrentSettingsVersion); err != nil {
				// keep serving the migrated settings, they will be saved with the next update
				log.Ctx(ctx).ErrorContext(ctx, "failed to save migrated settings", slog.Any("error", err))
			} else {
				log.Ctx(ctx).InfoContext(ctx, "saved migrated settings", slog.Int("oldVersion", version), slog.Int("newVersion", types.CurrentSettingsVersion))
				version = types.CurrentSettingsVersion
			}
		}
		settings = newSettings
	}

	snap, err := c.publish(settings, version)
	if err != nil {
		return err
	}
	if settings.Prices.IsSet() && !snap.PricesConfigured() {
		log.Ctx(ctx).WarnContext(ctx, "stored price configuration is incomplete", slog.Any("error", settings.Prices.Validate()))
	}
	log.Ctx(ctx).InfoContext(
		ctx,
		"loaded settings",
		slog.String("schedule", settings.Schedule),
		slog.String("supplier", settings.Supplier),
		slog.Bool("pricesConfigured", snap.PricesConfigured()),
		slog.Uint64("revision", snap.Revision),
	)
	return nil
}

// publish builds and swaps in a new snapshot. Callers hold mu.
func (c *Controller) publish(settings types.Settings, version int) (*Snapshot, error) {
	variant, err := tariff.Variant(settings.Schedule)
	if err != nil {
		return nil, err
	}
	var rev uint64 = 1
	if prev := c.snapshot.Load(); prev != nil {
		rev = prev.Revision + 1
	}
	snap := &Snapshot{
		Settings:   settings,
		Version:    version,
		Revision:   rev,
		Classifier: tariff.NewClassifier(variant, nil),
		LoadedAt:   c.now(),
	}
	c.snapshot.Store(snap)
	c.metrics.SetRevision(rev)
	return snap, nil
}

// save persists settings and publishes them. The active snapshot only changes
// once storage accepted the write.
func (c *Controller) save(ctx context.Context, settings types.Settings) (*Snapshot, error) {
	if _, err := tariff.Variant(settings.Schedule); err != nil {
		return nil, err
	}
	if err := c.storage.SetSettings(ctx, settings, types.CurrentSettingsVersion); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return c.publish(settings, types.CurrentSettingsVersion)
}

// UpdatePrices replaces the whole price configuration. Nothing changes unless
// all nine components are present and non-negative and storage accepted them.
func (c *Controller) UpdatePrices(ctx context.Context, prices types.PriceConfiguration) (*Snapshot, error) {
	snap, err := c.updatePrices(ctx, prices)
	c.metrics.IncPriceUpdate(metrics.ResultFor(err))
	return snap, err
}

func (c *Controller) updatePrices(ctx context.Context, prices types.PriceConfiguration) (*Snapshot, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.current()
	if err != nil {
		return nil, err
	}
	settings := cur.Settings
	settings.Prices = prices
	snap, err := c.save(ctx, settings)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to update prices", slog.Any("error", err))
		return nil, err
	}
	log.Ctx(ctx).InfoContext(ctx, "updated prices", slog.Uint64("revision", snap.Revision))
	return snap, nil
}

// SettingsUpdate changes the schedule variant and supplier. Empty fields keep
// their current value.
type SettingsUpdate struct {
	Schedule string `json:"schedule"`
	Supplier string `json:"supplier"`
}

// UpdateSettings changes the schedule variant or supplier.
func (c *Controller) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*Snapshot, error) {
	if upd.Schedule != "" {
		if _, err := tariff.Variant(upd.Schedule); err != nil {
			return nil, err
		}
	}
	if upd.Supplier != "" {
		if _, ok := types.LookupSupplier(upd.Supplier); !ok {
			return nil, types.NewError(types.ErrorKindUnknownSupplier, "supplier", upd.Supplier)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.current()
	if err != nil {
		return nil, err
	}
	settings := cur.Settings
	if upd.Schedule != "" {
		settings.Schedule = upd.Schedule
	}
	if upd.Supplier != "" {
		settings.Supplier = upd.Supplier
	}
	snap, err := c.save(ctx, settings)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to update settings", slog.Any("error", err))
		return nil, err
	}
	log.Ctx(ctx).InfoContext(
		ctx,
		"updated settings",
		slog.String("schedule", settings.Schedule),
		slog.String("supplier", settings.Supplier),
		slog.Uint64("revision", snap.Revision),
	)
	return snap, nil
}

// Revisions returns the most recent stored settings revisions.
func (c *Controller) Revisions(ctx context.Context, limit int) ([]types.SettingsRevision, error) {
	revs, err := c.storage.ListSettingsRevisions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings revisions: %w", err)
	}
	return revs, nil
}

// Status is the tariff state at an instant.
type Status struct {
	types.Classification
	SeasonInfo       types.SeasonInfo   `json:"seasonInfo"`
	BlockDescription string             `json:"blockDescription"`
	Cheap            bool               `json:"cheap"`
	Expensive        bool               `json:"expensive"`
	Schedule         string             `json:"schedule"`
	Supplier         string             `json:"supplier"`
	Revision         uint64             `json:"revision"`
	PricesConfigured bool               `json:"pricesConfigured"`
	Breakdown        *pricing.Breakdown `json:"breakdown,omitempty"`
}

// CurrentStatus classifies ts, or now if ts is zero, and adds the price
// breakdown when prices are configured.
func (c *Controller) CurrentStatus(ctx context.Context, ts time.Time) (Status, error) {
	snap, err := c.current()
	if err != nil {
		return Status{}, err
	}
	if ts.IsZero() {
		ts = c.now()
	}
	cl, err := snap.Classifier.Classify(ts)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		Classification:   cl,
		SeasonInfo:       cl.Season.Info(),
		BlockDescription: cl.NetworkBlock.Description(),
		Cheap:            cl.NetworkBlock.Cheap(),
		Expensive:        cl.NetworkBlock.Expensive(),
		Schedule:         snap.Classifier.Schedule().ID,
		Supplier:         snap.Settings.Supplier,
		Revision:         snap.Revision,
		PricesConfigured: snap.PricesConfigured(),
	}
	if st.PricesConfigured {
		b, err := pricing.NewBreakdown(cl, snap.Settings.Prices)
		if err != nil {
			return Status{}, err
		}
		b = b.Rounded()
		st.Breakdown = &b
	}
	return st, nil
}

// CalculateCost estimates the cost of consuming kwh at ts, or now if ts is
// zero.
func (c *Controller) CalculateCost(ctx context.Context, kwh decimal.Decimal, ts time.Time) (pricing.Estimate, error) {
	est, err := c.calculateCost(ctx, kwh, ts)
	c.metrics.IncCost(metrics.ResultFor(err))
	return est, err
}

func (c *Controller) calculateCost(ctx context.Context, kwh decimal.Decimal, ts time.Time) (pricing.Estimate, error) {
	snap, err := c.current()
	if err != nil {
		return pricing.Estimate{}, err
	}
	if ts.IsZero() {
		ts = c.now()
	}
	cl, err := snap.Classifier.Classify(ts)
	if err != nil {
		return pricing.Estimate{}, err
	}
	est, err := pricing.NewEstimate(cl, snap.Settings.Prices, kwh)
	if err != nil {
		return pricing.Estimate{}, err
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"calculated cost",
		slog.String("consumptionKWH", kwh.String()),
		slog.String("unitPrice", est.UnitPrice.String()),
		slog.String("cost", est.Cost.String()),
	)
	return est, nil
}

// Timeline returns the tariff periods of the local day containing day.
func (c *Controller) Timeline(ctx context.Context, day time.Time) ([]types.TariffPeriod, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		return nil, types.NewError(types.ErrorKindInvalidDate, "date", nil)
	}
	local := day.In(tariff.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tariff.Location)
	return snap.Classifier.Timeline(start, start.AddDate(0, 0, 1))
}
