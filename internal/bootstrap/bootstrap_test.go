package bootstrap_test

import (
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/bootstrap"
	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	t.Run("configured level", func(t *testing.T) {
		logger, err := bootstrap.NewLogger(&config.Config{Log: config.Log{Level: "warn"}})
		require.NoError(t, err)

		assert.False(t, logger.Core().Enabled(zap.InfoLevel))
		assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	})

	t.Run("development mode logs debug", func(t *testing.T) {
		logger, err := bootstrap.NewLogger(&config.Config{Log: config.Log{Development: true}})
		require.NoError(t, err)

		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := bootstrap.NewLogger(&config.Config{Log: config.Log{Level: "loud"}})
		assert.Error(t, err)
	})
}
