package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Output: &buf})

	l.Info("skipped", nil)
	l.Warn("kept", map[string]any{"k": 1})

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "k=1")
}

func TestLogger_JSONWithBaseFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, App: "livestock-ledger", Output: &buf})

	l.With(map[string]any{"sale_id": "s-1"}).Error("update failed", map[string]any{"err": errors.New("boom")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "livestock-ledger", entry["app"])
	assert.Equal(t, "s-1", entry["sale_id"])
	assert.Equal(t, "boom", entry["err"])
	assert.Equal(t, "error", entry["level"])
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Info, ParseLevel("nonsense"))
	assert.Equal(t, FormatJSON, ParseFormat(" json "))
	assert.Equal(t, FormatText, ParseFormat(""))
}
