package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name        string
		level       string
		environment string
		wantLevel   zapcore.Level
		expectedErr bool
	}{
		{name: "development debug", level: "debug", environment: "development", wantLevel: zapcore.DebugLevel},
		{name: "production info", level: "info", environment: "production", wantLevel: zapcore.InfoLevel},
		{name: "invalid level", level: "loud", environment: "development", expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := NewLogger(tc.level, tc.environment)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.wantLevel))
			assert.False(t, logger.Core().Enabled(tc.wantLevel-1))
		})
	}
}
