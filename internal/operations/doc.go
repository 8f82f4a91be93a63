// Package operations runs the feature pipeline as an ordered sequence
// of named stages. Each stage gets a context carrying the run id, a
// trace span and timed structured logging; the first stage error
// aborts the run.
package operations
