package diagnostics

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogUsesSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	Diagnostic{
		Severity: Err,
		Code:     "MUX.FAILED",
		Summary:  "mux failed",
		Evidence: map[string]any{"video_s": 2.5},
	}.Log(l)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "MUX.FAILED", got["code"])
	assert.Equal(t, "mux failed", got["message"])
	assert.Equal(t, 2.5, got["video_s"])
}
