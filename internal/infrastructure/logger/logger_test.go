package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigs(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "stdout", dev.Output)
	assert.NotEmpty(t, dev.TimeFormat)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, dev.Level, prod.Level)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"default", DefaultConfig()},
		{"production", ProductionConfig()},
		{"stderr debug", &Config{Level: "debug", Format: "json", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exo.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("form created", zap.String("form_id", "f-1"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "form created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "f-1", entry["form_id"])
	assert.Contains(t, entry, "caller")
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)

	l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core, nil)
	require.NoError(t, err)
	l.Info("ignored by both")
	l.Warn("only the extra core sees this")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "only the extra core sees this", recorded.All()[0].Message)
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		l, err := NewForEnvironment(env)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
