package conversation

import (
	"testing"
	"time"

	"github.com/AltairaLabs/interviewkit/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RecordUpdatesHistoryPhaseAndFacts(t *testing.T) {
	s := NewState(nil)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Greet("Hello, please introduce yourself.", at)
	filled := s.Record("I am Taro", "Q2", at.Add(time.Second))

	turns := s.History().Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, types.RoleAssistant, turns[0].Role)
	assert.Equal(t, types.RoleUser, turns[1].Role)
	assert.Equal(t, "I am Taro", turns[1].Content)
	assert.Equal(t, "Q2", turns[2].Content)
	assert.Equal(t, PhaseIntroduction, s.Phase())
	assert.Equal(t, []FactKind{FactName}, filled)
	assert.Equal(t, "Taro", s.Facts().Value(FactName))
	assert.Equal(t, []string{"Hello, please introduce yourself.", "Q2"}, s.History().Questions())
}

func TestState_PhaseAdvancesWithUserTurns(t *testing.T) {
	s := NewState([]Rule{})
	for i := 0; i < 3; i++ {
		s.Record("answer", "question", time.Now())
	}
	assert.Equal(t, PhaseExperience, s.Phase())
	assert.Equal(t, 3, s.History().UserTurns())
}

func TestState_Reset(t *testing.T) {
	s := NewState(nil)
	s.Greet("hi", time.Now())
	s.Record("I am Taro", "next", time.Now())

	s.Reset()
	assert.Zero(t, s.History().Len())
	assert.Empty(t, s.Facts().Known())
	assert.Equal(t, PhaseIntroduction, s.Phase())
}

func TestHistory_TurnsIsACopy(t *testing.T) {
	var h History
	h.Append(types.NewTurn(types.RoleUser, "a", time.Now()))

	turns := h.Turns()
	turns[0].Content = "b"
	assert.Equal(t, "a", h.Turns()[0].Content)
}
