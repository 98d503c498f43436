package audit_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/grants/internal/audit"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := audit.NewLogger("grants", &buf)

	event := logger.Log(audit.ActionRevokeAuthorization, "u1", "a1", "tokens=2", nil)
	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.True(t, event.Success)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["log_type"])
	assert.Equal(t, event.ID, line["id"])
	assert.Equal(t, "authorization.revoke", line["action"])
	assert.Equal(t, "u1", line["user"])
	assert.Equal(t, "a1", line["target"])
	assert.Equal(t, true, line["success"])
	assert.NotContains(t, line, "error")
}

func TestLogger_LogFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := audit.NewLogger("grants", &buf)

	event := logger.Log(audit.ActionRevokeAuthorization, "u1", "a1", "", errors.New("db down"))
	assert.False(t, event.Success)
	assert.Equal(t, "db down", event.Error)
	assert.Contains(t, buf.String(), `"error":"db down"`)
}
