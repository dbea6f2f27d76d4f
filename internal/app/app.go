// Package app assembles stores and collaborators from a Config. The API
// server, the standalone worker and tandemctl share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tandem/internal/auth"
	"tandem/internal/categorize"
	"tandem/internal/config"
	"tandem/internal/db"
	"tandem/internal/llm"
	"tandem/internal/meals"
	"tandem/internal/pantry"
	"tandem/internal/storage"
)

// Stores are the persistence ports for one database.
type Stores struct {
	Users  auth.UserRepository
	Meals  meals.Repository
	Pantry pantry.Store

	close func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to the configured database and applies the schema.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:  auth.NewPostgresUserRepository(pool),
			Meals:  meals.NewPostgresRepository(pool),
			Pantry: pantry.NewPostgresStore(pool),
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:  auth.NewSQLiteUserRepository(conn),
			Meals:  meals.NewSQLiteRepository(conn),
			Pantry: pantry.NewSQLiteStore(conn),
			close:  func() { _ = conn.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

// NewCategorizer returns the LLM-backed categorizer for the configured
// provider, or the keyword table when no provider is set.
func NewCategorizer(ctx context.Context, cfg *config.Config, log *zap.Logger) (categorize.Categorizer, error) {
	var client llm.Client

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		gemini, err := llm.NewGeminiClient(ctx, cfg.LLM.GeminiKey, cfg.LLM.GeminiModel, log)
		if err != nil {
			return nil, err
		}
		client = gemini
	case config.ProviderLLaMA:
		client = llm.NewLLaMAClient(cfg.LLM.LLaMAKey, cfg.LLM.LLaMAModel, cfg.LLM.LLaMAURL, log)
	case config.ProviderNone, "":
		log.Info("no LLM provider configured, using keyword categorizer")
		return categorize.Keywords{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	log.Info("llm categorizer ready", zap.String("provider", cfg.LLM.Provider))
	return categorize.NewLLMCategorizer(client, cfg.Engine.CategorizerCacheSize, cfg.Engine.CategorizerTimeout, log)
}

// NewArchiver returns the receipt archive, or nil when no bucket is set.
func NewArchiver(ctx context.Context, cfg *config.Config, log *zap.Logger) (pantry.ReceiptArchiver, error) {
	if !cfg.R2.Enabled() {
		return nil, nil
	}
	client, err := storage.NewR2Client(ctx, cfg.R2)
	if err != nil {
		return nil, fmt.Errorf("r2 init failed: %w", err)
	}
	log.Info("receipt archive enabled", zap.String("bucket", cfg.R2.Bucket))
	return client, nil
}
