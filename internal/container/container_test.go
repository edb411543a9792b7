package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorate/internal/config"
	"gorate/internal/errors"
)

func seededConfig() *config.Config {
	cfg := config.Default()
	cfg.Model.Seed = 7
	return cfg
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInit_NoSource(t *testing.T) {
	c, err := New(seededConfig())
	require.NoError(t, err)

	require.NoError(t, c.Init(context.Background()))
	assert.Nil(t, c.Source)
	assert.Nil(t, c.DB)
	require.NotNil(t, c.RateService)
	assert.Equal(t, 2000, c.RateService.Reference().Len())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestInit_EventsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	content := "created_at,kind\n" +
		"2025-03-01T09:00:00Z,herb\n" +
		"2025-03-02T09:00:00Z,herb\n" +
		"2025-03-02T10:00:00Z,wax\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := seededConfig()
	cfg.Source.EventsFile = path

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))

	streams, err := c.RateService.Streams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"herb", "wax"}, streams)

	summary, err := c.RateService.SummarizeStream(context.Background(), "herb")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Posterior.N)
}

func TestInit_MissingFile(t *testing.T) {
	cfg := seededConfig()
	cfg.Source.EventsFile = filepath.Join(t.TempDir(), "missing.csv")

	c, err := New(cfg)
	require.NoError(t, err)

	err = c.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSourceError, errors.GetCode(err))
}
