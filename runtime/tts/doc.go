// Package tts provides speech synthesis for interviewer replies that arrive
// without audio.
//
// The conversation endpoint normally returns speech with each reply. When it
// does not and a Service is configured, the turn loop synthesizes the reply
// text itself. A synthesis failure is never fatal: the reply is then treated
// as text-only and recording resumes directly.
package tts
