package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/sitariff/sitariff/pkg/types"
)

var (
	ErrEmptyInstallationID = errors.New("installation ID cannot be empty")
)

// Database defines the interface for persisting the tariff settings.
type Database interface {
	// GetSettings returns the stored settings and their version. Settings
	// that were never saved are returned as the zero value with version 0.
	GetSettings(ctx context.Context) (types.Settings, int, error)
	// SetSettings replaces the stored settings and records a revision.
	SetSettings(ctx context.Context, settings types.Settings, version int) error
	// ListSettingsRevisions returns up to limit revisions, newest first.
	ListSettingsRevisions(ctx context.Context, limit int) ([]types.SettingsRevision, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore, memory)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		case "memory":
			p.Database = NewMemory()
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
