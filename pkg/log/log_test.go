package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "error", want: LogLevelError},
		{input: "warn", want: LogLevelWarn},
		{input: "info", want: LogLevelInfo},
		{input: "debug", want: LogLevelDebug},
		{input: "trace", want: LogLevelTrace},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "", 0, LogLevelWarn)

	logger.Error("boom")
	logger.Warn("careful")
	logger.Info("ignored")
	logger.Debug("ignored")

	output := buf.String()
	assert.Contains(t, output, "[error] boom")
	assert.Contains(t, output, "[warn] careful")
	assert.NotContains(t, output, "ignored")
}

func TestLogger_SetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "", 0, LogLevelError)

	logger.Debug("before")
	logger.SetLevel(LogLevelDebug)
	logger.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "[debug] after")
}
