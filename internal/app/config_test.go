package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		want    *Config
		wantErr string
	}{
		{
			name: "defaults",
			in:   Config{WorkspacePath: "ws"},
			want: &Config{WorkspacePath: "ws", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "normalizes case",
			in:   Config{WorkspacePath: "ws", LogFormat: "JSON", LogLevel: "Debug"},
			want: &Config{WorkspacePath: "ws", LogFormat: "json", LogLevel: "debug"},
		},
		{name: "missing workspace", in: Config{}, wantErr: "WorkspacePath is a required configuration field"},
		{name: "bad format", in: Config{WorkspacePath: "ws", LogFormat: "xml"}, wantErr: "invalid log format 'xml'"},
		{name: "bad level", in: Config{WorkspacePath: "ws", LogLevel: "trace"}, wantErr: "invalid log level 'trace'"},
		{name: "bad API permission", in: Config{WorkspacePath: "ws", APIPermissions: "read,admin"}, wantErr: "invalid API permission 'admin'"},
		{name: "bad port", in: Config{WorkspacePath: "ws", HealthcheckPort: 70000}, wantErr: "invalid http port 70000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STEPPROXY_WORKSPACE", "/env/ws")
	t.Setenv("STEPPROXY_HTTP_PORT", "8081")

	cfg := Config{WorkspacePath: "flag", LogLevel: "warn"}
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "/env/ws", cfg.WorkspacePath)
	assert.Equal(t, 8081, cfg.HealthcheckPort)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.TrustPermissionsHeader)

	t.Setenv("STEPPROXY_API_PERMISSIONS", "configure")
	t.Setenv("STEPPROXY_TRUST_PERMISSIONS_HEADER", "true")
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "configure", cfg.APIPermissions)
	assert.True(t, cfg.TrustPermissionsHeader)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv("STEPPROXY_HTTP_PORT", "eighty")
	assert.ErrorContains(t, ApplyEnv(&Config{}), "parse env")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestNewLogger_TextHasNoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	newLogger("info", "text", &buf).Info("hello", "k", "v")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "k=v")
	assert.NotContains(t, buf.String(), "\x1b[")
}
