package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate checks the loaded configuration and resolves derived fields.
// Load calls it automatically; call it again after overriding fields.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch c.Records.Backend {
	case BackendSQLite:
	case BackendMongo:
		if c.Records.MongoURI == "" {
			return fmt.Errorf("records.mongo_uri is required for the %s backend", BackendMongo)
		}
		if c.Records.MongoDatabase == "" {
			return fmt.Errorf("records.mongo_database must not be empty")
		}
	default:
		return fmt.Errorf("records.backend must be %q or %q (got %q)", BackendSQLite, BackendMongo, c.Records.Backend)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %v)", c.Auth.TokenTTL)
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("auth.reset_token_ttl must be > 0 (got %v)", c.Auth.ResetTokenTTL)
	}
	switch c.Auth.ResetTokenDelivery {
	case DeliveryLog, DeliveryResponse:
	default:
		return fmt.Errorf("auth.reset_token_delivery must be %q or %q (got %q)", DeliveryLog, DeliveryResponse, c.Auth.ResetTokenDelivery)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	c.Calendar.Location = loc

	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("unknown level %q", l.Level)
	}
	return level, nil
}
