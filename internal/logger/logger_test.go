package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: "warn", want: zapcore.WarnLevel},
		{level: "bogus", want: zapcore.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			cleanup, err := InitLogger(tc.level)
			require.NoError(t, err)
			defer cleanup()

			assert.True(t, zap.L().Core().Enabled(tc.want))
			if tc.want > zapcore.DebugLevel {
				assert.False(t, zap.L().Core().Enabled(tc.want-1))
			}
		})
	}
}
