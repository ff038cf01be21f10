// Package store persists transcripts, library items, and session queues in
// SQLite.
//
// The Store manages database connections, schema initialization, transcript
// upserts keyed on (podcast_name, episode_title), library membership, and the
// per-session transcription worklist including its startup recovery pass
// (in_progress items reset to pending, success items pruned).
//
// Transcripts are the durable archive; queue rows are transient session state.
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package store
