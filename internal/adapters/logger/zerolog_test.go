package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{" Debug ", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.in), "in=%q", tc.in)
	}
}

func TestZeroLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(zerolog.DebugLevel, &buf)
	ctx := context.Background()

	l.Info(ctx, "import finished", map[string]interface{}{"trades": 3})
	out := buf.String()
	assert.Contains(t, out, `"message":"import finished"`)
	assert.Contains(t, out, `"trades":3`)
	assert.Contains(t, out, `"level":"info"`)

	buf.Reset()
	l.Error(ctx, errors.New("boom"), "save failed")
	out = buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestZeroLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(zerolog.WarnLevel, &buf)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "hidden too")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestZeroLogger_NilFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(zerolog.InfoLevel, &buf)

	l.Info(context.Background(), "no fields")
	l.Info(context.Background(), "nil fields", nil)
	assert.Contains(t, buf.String(), "no fields")
	assert.Contains(t, buf.String(), "nil fields")
}
