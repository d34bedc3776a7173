package ports

import "time"

// Registration outcomes reported to RegistrationMetrics.
const (
	OutcomeCreated       = "created"
	OutcomeDeduplicated  = "deduplicated"
	OutcomeModelNotFound = "model_not_found"
	OutcomeDuplicate     = "duplicate_version"
	OutcomeIngestError   = "ingest_error"
	OutcomeStorageError  = "storage_error"
	OutcomeValidation    = "validation_error"
	OutcomeInternalError = "internal_error"
)

// RegistrationMetrics records register_version outcomes.
type RegistrationMetrics interface {
	ObserveRegistration(outcome string, ingestedBytes int64, elapsed time.Duration)
}

// NoopMetrics implements RegistrationMetrics without emitting anything.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRegistration(string, int64, time.Duration) {}
