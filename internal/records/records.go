// Package records opens the inventory record store selected in the
// configuration.
package records

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/erazemk/lekarna/internal/config"
	"github.com/erazemk/lekarna/internal/store"
	"github.com/erazemk/lekarna/internal/store/mongostore"
)

// Open returns the configured record store and a function releasing it. The
// sqlite backend keeps records in database next to the accounts.
func Open(ctx context.Context, cfg *config.Config, database *sql.DB) (store.Records, func(), error) {
	if cfg.Records.Backend != config.BackendMongo {
		return store.NewSQLRecords(database), func() {}, nil
	}

	client, err := mongostore.Connect(ctx, cfg.Records.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	records := mongostore.New(client.Database(cfg.Records.MongoDatabase), cfg.Calendar.Location)
	if err := records.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, nil, err
	}
	slog.Info("mongo records ready", "database", cfg.Records.MongoDatabase)

	return records, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("failed to disconnect from mongo", "error", err)
		}
	}, nil
}
