package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")
	defer InitWithWriter(&buf, "INFO", "text")

	Debug("should not appear")
	Info("should not appear either")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")
	defer InitWithWriter(&buf, "INFO", "text")

	Info("request handled", KeyProcedure, "READ", KeyXID, uint32(42))

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "request handled", record["msg"])
	assert.Equal(t, "READ", record[KeyProcedure])
	assert.Equal(t, float64(42), record[KeyXID])
}

func TestInvalidSettingsIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	SetLevel("LOUD")
	SetFormat("xml")

	Info("still works")
	assert.Contains(t, buf.String(), "still works")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
}

func TestLogContextRoundtrip(t *testing.T) {
	lc := NewLogContext("192.0.2.9")
	lc.XID = 7
	lc.Procedure = "LOOKUP"

	ctx := WithContext(context.Background(), lc)
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, uint32(7), got.XID)
	assert.Equal(t, "LOOKUP", got.Procedure)
	assert.Equal(t, "192.0.2.9", got.ClientIP)

	assert.Nil(t, FromContext(context.Background()))
	assert.Nil(t, FromContext(nil))
}

func TestLogContextFields(t *testing.T) {
	lc := NewLogContext("192.0.2.9")
	lc.XID = 42
	lc.Procedure = "WRITE"
	lc.AuthFlavor = 1
	lc.UID = 1000
	lc.GID = 1000

	fields := lc.Fields()
	assert.Contains(t, fields, KeyXID)
	assert.Contains(t, fields, KeyUID)
	assert.Contains(t, fields, uint32(1000))

	var none *LogContext
	assert.Nil(t, none.Fields())
}
