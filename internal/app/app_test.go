package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tandem/internal/categorize"
	"tandem/internal/config"
	"tandem/internal/meals"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
		LLM:        config.LLMConfig{Provider: config.ProviderNone},
		Engine:     config.DefaultEngineConfig(),
	}
}

func TestOpenStoresSQLite(t *testing.T) {
	ctx := context.Background()

	stores, err := OpenStores(ctx, testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer stores.Close()

	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	slots, err := stores.Meals.ListSlots(ctx, "hh-1", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, slots)

	items, err := stores.Pantry.List(ctx, "hh-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	exists, err := stores.Users.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Implements(t, (*meals.Repository)(nil), stores.Meals)
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "oracle"

	_, err := OpenStores(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewCategorizer(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	c, err := NewCategorizer(ctx, testConfig(), log)
	require.NoError(t, err)
	assert.IsType(t, categorize.Keywords{}, c)

	cfg := testConfig()
	cfg.LLM = config.LLMConfig{Provider: config.ProviderLLaMA, LLaMAKey: "key"}
	c, err = NewCategorizer(ctx, cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &categorize.LLMCategorizer{}, c)

	cfg.LLM = config.LLMConfig{Provider: config.ProviderGemini}
	_, err = NewCategorizer(ctx, cfg, log)
	assert.Error(t, err, "gemini without a key")
}

func TestNewArchiverDisabled(t *testing.T) {
	a, err := NewArchiver(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, a)
}
