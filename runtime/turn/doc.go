// Package turn implements the turn orchestrator: the state machine that
// sequences recording, the conversation endpoint round trip, reply playback
// and the next recording session.
//
// # States
//
//	Idle --Start--> Recording --silence--> Processing --reply with audio--> Playing
//	                    ^                       |                              |
//	                    +------ no audio / error+------------ ended / error ---+
//
// Stop returns to Idle from any state.
//
// # Concurrency
//
// All state is owned by the goroutine running Run. Start, Stop, device
// callbacks, endpoint completions and playback completions are posted to its
// inbox; the level ticker and the silence countdown are selected on
// directly. Results carry the generation and recording session they were
// started under and are dropped when either no longer matches, so a reply
// arriving after Stop changes nothing.
package turn
