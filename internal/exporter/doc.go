// Package exporter persists assembled feature tables as CSV, gob and
// xlsx artifacts. Writes are atomic: output lands in a temporary file
// in the target directory and is renamed into place, so a crashed run
// never leaves a truncated artifact behind.
package exporter
