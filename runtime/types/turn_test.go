package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Candidate", RoleUser.Label())
	assert.Equal(t, "Interviewer", RoleAssistant.Label())
	assert.Equal(t, "system", Role("system").Label())
}

func TestTurnJSON(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(NewTurn(RoleUser, "hello", at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hello","timestamp":"2026-01-02T03:04:05Z"}`, string(data))
}
