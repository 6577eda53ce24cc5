package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitariff/sitariff/pkg/types"
)

func TestFirestoreProvider(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	// Use a random database for isolation
	randDB := fmt.Sprintf("test-db-%d", time.Now().UnixNano())
	f := &FirestoreProvider{
		projectID:      "test-project-id",
		database:       randDB,
		installationID: "test-installation",
	}

	ctx := context.Background()
	require.NoError(t, f.Init(ctx))
	defer f.Close()

	t.Run("Validate", func(t *testing.T) {
		require.NoError(t, f.Validate())
	})

	t.Run("Unconfigured", func(t *testing.T) {
		s, version, err := f.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, version)
		assert.False(t, s.Prices.IsSet())
	})

	t.Run("Settings", func(t *testing.T) {
		first := types.Settings{
			Schedule: "seven_interval",
			Supplier: "gen_i",
			Prices:   types.DefaultPrices(),
		}
		require.NoError(t, f.SetSettings(ctx, first, types.CurrentSettingsVersion))

		got, version, err := f.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.CurrentSettingsVersion, version)
		assert.Equal(t, first.Schedule, got.Schedule)
		assert.Equal(t, first.Supplier, got.Supplier)
		vt, err := got.Prices.Get(types.PriceComponentVT)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.1199").Equal(vt))

		second := first
		second.Schedule = "five_interval"
		require.NoError(t, f.SetSettings(ctx, second, types.CurrentSettingsVersion))

		revs, err := f.ListSettingsRevisions(ctx, 10)
		require.NoError(t, err)
		require.Len(t, revs, 2)
		assert.Equal(t, "five_interval", revs[0].Settings.Schedule)
		assert.Equal(t, "seven_interval", revs[1].Settings.Schedule)
		assert.False(t, revs[0].Timestamp.Before(revs[1].Timestamp))

		revs, err = f.ListSettingsRevisions(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, revs, 1)
	})

	t.Run("EmptyInstallationID", func(t *testing.T) {
		empty := &FirestoreProvider{client: f.client}
		_, _, err := empty.GetSettings(ctx)
		assert.ErrorIs(t, err, ErrEmptyInstallationID)
		assert.ErrorIs(t, empty.Validate(), ErrEmptyInstallationID)
	})
}
