// Package inmemory provides an in-memory implementation of the Store interface.
// It keeps all reference data, jobs and results in maps within memory, suitable
// for testing and scenarios where persistence is not required.
package inmemory

import (
	"sync"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
)

// Verify that InMemoryStore implements all embedded interfaces of repository.Store.
var _ repository.Store = (*InMemoryStore)(nil)

type patternKey struct {
	SfID   int
	Adduct int
}

// InMemoryStore is an in-memory implementation of the Store interface.
// It holds all reference, job and result data in in-memory maps.
type InMemoryStore struct {
	formulaDBs  map[int]*model.FormulaDatabase
	formulas    []*model.Formula
	aggFormulas map[int]*model.AggregateFormula
	datasets    map[int]*model.Dataset
	coordinates map[int][]*model.Coordinate
	jobTypes    map[int]*model.JobType
	jobs        map[int64]*model.Job
	nextJobID   int64
	resultData  []*model.ResultDatum
	resultStats []*model.ResultStat
	patterns    map[patternKey]*model.IsotopePattern
	mu          sync.RWMutex // Mutex to protect concurrent access to maps.
}

// NewInMemoryStore creates and initializes a new instance of InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		formulaDBs:  make(map[int]*model.FormulaDatabase),
		aggFormulas: make(map[int]*model.AggregateFormula),
		datasets:    make(map[int]*model.Dataset),
		coordinates: make(map[int][]*model.Coordinate),
		jobTypes:    make(map[int]*model.JobType),
		jobs:        make(map[int64]*model.Job),
		patterns:    make(map[patternKey]*model.IsotopePattern),
	}
}

// Close releases resources used by the store.
// As an in-memory store, it holds no external resources, so this method always returns nil.
func (r *InMemoryStore) Close() error {
	return nil
}
