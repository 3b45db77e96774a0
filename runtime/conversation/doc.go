// Package conversation holds the per-session conversation state of an
// interview: the append-only history, the phase derived from it and the
// write-once candidate fact sheet.
//
// Fact extraction is heuristic. Rules are tried in order and the first rule
// that yields a value fills its slot; a filled slot is never overwritten. It
// is not a parser and makes no correctness claims.
package conversation
