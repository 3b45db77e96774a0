package errors_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	pkgerrors "github.com/AltairaLabs/interviewkit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := pkgerrors.New("interviewer", "Converse", cause)

	assert.Equal(t, "interviewer", err.Component)
	assert.Equal(t, "Converse", err.Operation)
	assert.Equal(t, pkgerrors.KindUnknown, err.Kind)
	assert.Equal(t, 0, err.StatusCode)
	assert.Nil(t, err.Details)
	assert.Equal(t, cause, err.Cause)
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ContextualError
		want string
	}{
		{"basic", pkgerrors.New("turn", "Start", fmt.Errorf("busy")), "[turn] Start: busy"},
		{"no cause", pkgerrors.New("devices", "OpenMicrophone", nil), "[devices] OpenMicrophone"},
		{
			"status",
			pkgerrors.New("interviewer", "Converse", fmt.Errorf("bad gateway")).WithStatusCode(502),
			"[interviewer] Converse (status 502): bad gateway",
		},
		{"status no cause", pkgerrors.New("usage", "Check", nil).WithStatusCode(403), "[usage] Check (status 403)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := pkgerrors.New("statestore", "SaveTranscript", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	wrapped := fmt.Errorf("outer: %w", err)
	var ce *pkgerrors.ContextualError
	require.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "SaveTranscript", ce.Operation)
}

func TestWithDetails(t *testing.T) {
	err := pkgerrors.New("turn", "Submit", nil).WithDetails(map[string]any{"bytes": 12})

	assert.Equal(t, 12, err.Details["bytes"])
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, pkgerrors.KindUnknown, pkgerrors.KindOf(nil))
	assert.Equal(t, pkgerrors.KindUnknown, pkgerrors.KindOf(io.EOF))

	network := pkgerrors.New("interviewer", "Converse", io.EOF).WithKind(pkgerrors.KindNetwork)
	assert.Equal(t, pkgerrors.KindNetwork, pkgerrors.KindOf(network))
	assert.Equal(t, pkgerrors.KindNetwork, pkgerrors.KindOf(fmt.Errorf("turn failed: %w", network)))

	outer := pkgerrors.New("turn", "Submit", network)
	assert.Equal(t, pkgerrors.KindNetwork, pkgerrors.KindOf(outer), "kind is found below a kindless wrapper")
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		kind  pkgerrors.Kind
		fatal bool
	}{
		{pkgerrors.KindDevice, true},
		{pkgerrors.KindUsage, true},
		{pkgerrors.KindCapture, false},
		{pkgerrors.KindPayload, false},
		{pkgerrors.KindNetwork, false},
		{pkgerrors.KindPlayback, false},
		{pkgerrors.KindPersistence, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := pkgerrors.New("test", "op", nil).WithKind(tt.kind)
			assert.Equal(t, tt.fatal, pkgerrors.IsFatal(err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "network", pkgerrors.KindNetwork.String())
	assert.Equal(t, "kind(99)", pkgerrors.Kind(99).String())
}
