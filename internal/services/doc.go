// Package services defines shared utilities consumed by the transcription
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode identifiers, pipeline steps, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the pipeline's error taxonomy (fetch, conversion, engine,
//     persistence, notification).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
