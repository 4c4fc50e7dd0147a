package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricematrix/backend/config"
)

func testConfig(store config.StoreConfig) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Store:  store,
		LLM: config.LLMConfig{
			Backend:      "gemini",
			APIKey:       "test-key",
			ExtractModel: "gemini-2.5-pro",
			MatchModel:   "gemini-2.5-flash",
		},
		Scraper: config.ScraperConfig{MaxChars: 5000},
	}
}

func TestBuild_MemoryStore(t *testing.T) {
	components, err := Build(context.Background(), testConfig(config.StoreConfig{Driver: "memory"}))
	require.NoError(t, err)
	defer components.Close()

	assert.NotNil(t, components.Service)
	assert.Nil(t, components.db)

	products, err := components.Service.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestBuild_SQLiteStoreMigrates(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "prices.db") + "?_time_format=sqlite"
	components, err := Build(context.Background(), testConfig(config.StoreConfig{Driver: "sqlite", DSN: dsn, Migrate: true}))
	require.NoError(t, err)
	defer components.Close()

	require.NotNil(t, components.db)
	products, err := components.Service.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestBuildCatalog_NoLLMSettings(t *testing.T) {
	cfg := testConfig(config.StoreConfig{Driver: "memory"})
	cfg.LLM = config.LLMConfig{}

	components, err := BuildCatalog(cfg)
	require.NoError(t, err)
	defer components.Close()

	assert.Nil(t, components.Service)
	products, err := components.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), testConfig(config.StoreConfig{Driver: "mongo"}))
	assert.Error(t, err)

	cfg := testConfig(config.StoreConfig{Driver: "memory"})
	cfg.LLM.Backend = "openai"
	_, err = Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		assert.NotPanics(t, func() { SetupLogger(env) }, env)
	}
}
