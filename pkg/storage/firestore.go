package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Each installation keeps its settings under
// installations/{id}/config/settings and an audit trail under
// installations/{id}/settings_revisions.
type FirestoreProvider struct {
	client         *firestore.Client
	projectID      string
	database       string
	installationID string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")
	installationID := lflag.String("installation-id", "default", "ID of the installation whose settings are stored")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database
		f.installationID = *installationID

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	if f.installationID == "" {
		return ErrEmptyInstallationID
	}
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) getCollection(name string) (*firestore.CollectionRef, error) {
	if f.installationID == "" {
		return nil, ErrEmptyInstallationID
	}
	return f.client.Collection("installations").Doc(f.installationID).Collection(name), nil
}

// GetSettings retrieves the settings from the "config/settings" document.
func (f *FirestoreProvider) GetSettings(ctx context.Context) (types.Settings, int, error) {
	coll, err := f.getCollection("config")
	if err != nil {
		return types.Settings{}, 0, err
	}
	doc, err := coll.Doc("settings").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// never configured
			return types.Settings{}, 0, nil
		}
		return types.Settings{}, 0, fmt.Errorf("failed to fetch settings doc: %w", err)
	}

	s, version, err := decodeSettingsDoc(doc)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode settings doc", slog.String("installationID", f.installationID), slog.Any("err", err))
		return types.Settings{}, 0, err
	}
	return s, version, nil
}

// SetSettings saves the settings to the "config/settings" document and appends
// a revision in the same transaction. The settings are stored as a JSON string
// so decimal prices keep their exact representation.
func (f *FirestoreProvider) SetSettings(ctx context.Context, settings types.Settings, version int) error {
	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	config, err := f.getCollection("config")
	if err != nil {
		return err
	}
	revisions, err := f.getCollection("settings_revisions")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(config.Doc("settings"), map[string]interface{}{
			"json":    string(jsonBytes),
			"version": version,
		}); err != nil {
			return err
		}
		return tx.Set(revisions.Doc(now.Format(time.RFC3339Nano)), map[string]interface{}{
			"json":      string(jsonBytes),
			"version":   version,
			"timestamp": now,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ListSettingsRevisions returns the most recent settings revisions, newest
// first.
func (f *FirestoreProvider) ListSettingsRevisions(ctx context.Context, limit int) ([]types.SettingsRevision, error) {
	coll, err := f.getCollection("settings_revisions")
	if err != nil {
		return nil, err
	}
	q := coll.OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var revs []types.SettingsRevision
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating settings revisions: %w", err)
		}

		s, version, err := decodeSettingsDoc(doc)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to decode settings revision", slog.String("revisionID", doc.Ref.ID), slog.String("installationID", f.installationID), slog.Any("err", err))
			return nil, fmt.Errorf("settings revision %s: %w", doc.Ref.ID, err)
		}
		rev := types.SettingsRevision{
			Version:  version,
			Settings: s,
		}
		if v, err := doc.DataAt("timestamp"); err == nil {
			if ts, ok := v.(time.Time); ok {
				rev.Timestamp = ts
			}
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

func decodeSettingsDoc(doc *firestore.DocumentSnapshot) (types.Settings, int, error) {
	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	val, err := doc.DataAt("json")
	if err != nil {
		return types.Settings{}, 0, fmt.Errorf("settings document missing 'json' field: %w", err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return types.Settings{}, 0, fmt.Errorf("settings 'json' field is not a string")
	}

	var s types.Settings
	if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
		return types.Settings{}, 0, fmt.Errorf("failed to unmarshal settings json: %w", err)
	}
	return s, version, nil
}
