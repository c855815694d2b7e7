package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9200")
	t.Setenv("SEQUENCE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Sequence.Driver)
	assert.Equal(t, "skrm", cfg.Sequence.KeyPrefix)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "skrm", cfg.JWT.Issuer)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
}
