package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		level    string
		contains string
		wantErr  bool
	}{
		{name: "json default", format: "", level: "", contains: `"msg":"hello"`},
		{name: "json debug", format: "json", level: "debug", contains: `"level":"INFO"`},
		{name: "text", format: "text", level: "info", contains: "msg=hello"},
		{name: "console", format: "console", level: "info", contains: "hello"},
		{name: "unknown format", format: "xml", wantErr: true},
		{name: "bad slog level", format: "json", level: "loud", wantErr: true},
		{name: "bad zerolog level", format: "console", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&buf, tt.format, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			log.Info(context.Background(), "hello")
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	log.Info(context.Background(), "quiet")
	assert.Empty(t, buf.String())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "text", "info")
	require.NoError(t, err)

	ctx := WithLogger(context.Background(), log.With("request_id", "r-1"))
	FromContext(ctx).Info(ctx, "from ctx")

	assert.Contains(t, buf.String(), "request_id=r-1")
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	log := FromContext(context.Background())
	assert.IsType(t, Nop{}, log)
	assert.NotPanics(t, func() {
		log.Error(context.Background(), "dropped", "k", "v")
		log.With("a", 1).Info(context.Background(), "dropped")
	})
}
