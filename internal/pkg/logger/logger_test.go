package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, fn func()) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	fn()

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogEmitsStructuredJSON(t *testing.T) {
	entry := captureLog(t, func() {
		Info("settings saved", "client_id", "client-1", "version", 2)
	})

	require.NotNil(t, entry)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "settings saved", entry["msg"])
	assert.Equal(t, "client-1", entry["client_id"])
	assert.Equal(t, "2", entry["version"])
}

func TestLogLevelFiltering(t *testing.T) {
	SetLevel(WARN)
	t.Cleanup(func() { SetLevel(INFO) })

	entry := captureLog(t, func() {
		Info("should be dropped")
	})
	assert.Nil(t, entry)
}

func TestEmailFieldsAreRedacted(t *testing.T) {
	entry := captureLog(t, func() {
		Info("email generated", "recipient_email", "jane.doe@example.com")
	})

	require.NotNil(t, entry)
	assert.Equal(t, "ja***@example.com", entry["recipient_email"])
}

func TestEmbeddedEmailsAreRedacted(t *testing.T) {
	entry := captureLog(t, func() {
		Warn("delivery issue", "detail", "bounce for jane.doe@example.com on attempt 2")
	})

	require.NotNil(t, entry)
	assert.Equal(t, "bounce for ja***@example.com on attempt 2", entry["detail"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane.doe@example.com", "ja***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"prospect-1234", "prospect-1234"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactEmail(tt.in), tt.in)
	}
}
