package repository

// Store is the interface for persisting and managing analysis metadata.
// It embeds multiple smaller repository interfaces to separate concerns.
type Store interface {
	ReferenceRepository // Embeds reference data operations (definition in reference.go)
	JobLedger           // Embeds job lifecycle operations (definition in job.go)
	ResultRepository    // Embeds result output operations (definition in result.go)

	// Close releases resources (such as database connections) used by the store.
	Close() error
}
