// Package pipeline implements the resumable, checkpointed batch engine
// that drives corpus items through expensive external calls.
//
// The engine is two chained stages: analysis produces a structured
// summary of each item, and embedding turns completed analyses into
// vectors. Each (item, stage) pair carries a persistent status record
// (pending, processing, completed, failed) keyed to the item's content
// fingerprint, so only new, changed, or previously failed items cost an
// external call on later runs.
//
// Processing is sequential with a fixed pacing delay to respect rate
// limits. Transient failures retry with exponential backoff; validation
// failures are recorded immediately. A per-stage checkpoint is flushed
// every few items and on interrupt, so a restarted process resumes
// where the last one stopped instead of repeating work.
package pipeline
