package turn

import (
	"context"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/providers/interviewer"
)

type commandKind int

const (
	kindStart commandKind = iota
	kindStop
)

type command struct {
	kind  commandKind
	ctx   context.Context //nolint:containedctx // caller context for collaborator calls
	reply chan error
}

type chunkMsg struct {
	generation uint64
	chunk      audio.Chunk
}

type captureErrorMsg struct {
	generation uint64
	session    uint64
	err        error
}

type responseMsg struct {
	generation  uint64
	session     uint64
	resp        *interviewer.Response
	err         error
	clip        *audio.Clip
	synthesized bool
}

type playbackDoneMsg struct {
	generation uint64
	id         uint64
	err        error
}
