// Package storage is the optional persistence layer: an evaluation run log
// and the alert-suppression keys used by the notifier. Computed per-date
// statuses are never stored; they are recomputed from the snapshot on every
// evaluation.
package storage
