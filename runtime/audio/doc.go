// Package audio provides the capture-side building blocks of the interview
// turn loop: level metering, voice activity monitoring, the utterance buffer,
// the recording session controller and the playback controller.
//
// # Architecture
//
// The device layer pushes raw 16-bit PCM chunks tagged with the recording
// session that produced them. The turn loop feeds those chunks to a Recorder,
// which keeps only chunks from the current session, and samples a LevelMeter
// on a fixed interval. A Monitor classifies each sample and decides when the
// silence countdown is armed or cancelled.
//
// None of the types in this package start goroutines. They are owned by a
// single event loop and are not safe for concurrent use unless noted.
//
// # Usage Example
//
//	rec := audio.NewRecorder(mic)
//	mon, _ := audio.NewMonitor(audio.DefaultMonitorConfig())
//
//	id, _ := rec.StartSession(ctx, onChunk, onError)
//	// on every chunk: rec.Accept(chunk, busy)
//	// on every tick:
//	obs := mon.Observe(rec.Level(), rec.Buffered(), time.Now())
//	if obs.Decision == audio.DecisionArm {
//	    // start the silence countdown
//	}
package audio
