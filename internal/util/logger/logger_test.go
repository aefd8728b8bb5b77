package logger

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	Install(DefaultConfig())

	Logger("test").Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "component=test")
}

func TestInstall_ComponentLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	cfg := DefaultConfig()
	cfg.ParseLevels("core/eventbus=debug,warn")
	Install(cfg)

	// LazyLogger 派生的组件 logger 使用组件级别
	log.Logger("core/eventbus").Debug("bus detail")
	log.Logger("demo").Info("demo info")
	log.Logger("demo").Warn("demo warn")

	output := buf.String()
	assert.Contains(t, output, "bus detail")
	assert.NotContains(t, output, "demo info")
	assert.Contains(t, output, "demo warn")
}

func TestSetLevel_Dynamic(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	Install(DefaultConfig())
	l := Logger("dyn")

	l.Debug("hidden")
	SetLevel("dyn", slog.LevelDebug)
	l.Debug("visible")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "visible")

	SetGlobalLevel(slog.LevelError)
	l.Warn("suppressed")
	assert.NotContains(t, buf.String(), "suppressed")
}

func TestInstall_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	Install(cfg)

	Logger("json").Info("hello")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), "expected JSON output, got %q", line)
	assert.Contains(t, line, `"level":"info"`)
	assert.Contains(t, line, `"ts"`)
}

func TestConfig_ParseLevels(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		def       slog.Level
		subsystem string
		want      slog.Level
	}{
		{"default only", "debug", slog.LevelDebug, "x", slog.LevelDebug},
		{"subsystem override", "x=error,info", slog.LevelInfo, "x", slog.LevelError},
		{"unknown level ignored", "x=loud,warn", slog.LevelWarn, "x", slog.LevelWarn},
		{"whitespace", " x = debug , error ", slog.LevelError, "x", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ParseLevels(tt.input)
			assert.Equal(t, tt.def, cfg.DefaultLevel)
			assert.Equal(t, tt.want, cfg.LevelForSubsystem(tt.subsystem))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "demo=debug,error")
	t.Setenv(EnvFormat, "JSON")
	t.Setenv(EnvAddSource, "1")

	cfg := ConfigFromEnv()
	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("demo"))
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}
