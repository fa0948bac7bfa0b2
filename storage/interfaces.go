package storage

import "anc-co2-tracker/models"

// RunWriter is the interface any storage backend for finalized runs must
// satisfy.
type RunWriter interface {
	WriteRun(out *models.RunOutput) error
	Close() error
}
