package inmemory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
)

// SaveFormulaDatabase persists a formula database entry.
// It returns an error if an entry with the same ID already exists.
func (r *InMemoryStore) SaveFormulaDatabase(ctx context.Context, db *model.FormulaDatabase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formulaDBs[db.ID]; exists {
		return fmt.Errorf("formula database with ID %d already exists", db.ID)
	}
	cloned := *db
	r.formulaDBs[db.ID] = &cloned
	return nil
}

// FindFormulaDatabaseByName finds a formula database by its name.
func (r *InMemoryStore) FindFormulaDatabaseByName(ctx context.Context, name string) (*model.FormulaDatabase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, db := range r.formulaDBs {
		if db.Name == name {
			cloned := *db
			return &cloned, nil
		}
	}
	return nil, repository.ErrFormulaDatabaseNotFound
}

// SaveFormulas appends the given formulas.
func (r *InMemoryStore) SaveFormulas(ctx context.Context, formulas []*model.Formula) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range formulas {
		cloned := *f
		r.formulas = append(r.formulas, &cloned)
	}
	return nil
}

// FindFormulasBySumFormula returns every formula recorded under a sum formula
// in insertion order.
func (r *InMemoryStore) FindFormulasBySumFormula(ctx context.Context, sumFormula string) ([]*model.Formula, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formulas := make([]*model.Formula, 0)
	for _, f := range r.formulas {
		if f.SumFormula == sumFormula {
			cloned := *f
			formulas = append(formulas, &cloned)
		}
	}
	return formulas, nil
}

// SaveAggregateFormulas persists the given aggregate formulas keyed by ID.
func (r *InMemoryStore) SaveAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, af := range formulas {
		cloned := *af
		cloned.Members = append(model.MemberList(nil), af.Members...)
		r.aggFormulas[af.ID] = &cloned
	}
	return nil
}

// FindAggregateFormulaByID finds an aggregate formula by its ID.
func (r *InMemoryStore) FindAggregateFormulaByID(ctx context.Context, id int) (*model.AggregateFormula, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	af, ok := r.aggFormulas[id]
	if !ok {
		return nil, repository.ErrAggregateFormulaNotFound
	}
	cloned := *af
	cloned.Members = append(model.MemberList(nil), af.Members...)
	return &cloned, nil
}

// FindAggregateFormulaBySumFormula finds the aggregate formula of a sum formula.
func (r *InMemoryStore) FindAggregateFormulaBySumFormula(ctx context.Context, sumFormula string) (*model.AggregateFormula, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, af := range r.aggFormulas {
		if af.SumFormula == sumFormula {
			cloned := *af
			cloned.Members = append(model.MemberList(nil), af.Members...)
			return &cloned, nil
		}
	}
	return nil, repository.ErrAggregateFormulaNotFound
}

// SaveDataset persists a dataset together with its coordinates.
func (r *InMemoryStore) SaveDataset(ctx context.Context, ds *model.Dataset, coords []*model.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[ds.ID]; exists {
		return fmt.Errorf("dataset with ID %d already exists", ds.ID)
	}

	clonedDS := *ds
	r.datasets[ds.ID] = &clonedDS

	clonedCoords := make([]*model.Coordinate, len(coords))
	for i, c := range coords {
		cloned := *c
		clonedCoords[i] = &cloned
	}
	r.coordinates[ds.ID] = clonedCoords
	return nil
}

// UpdateDatasetStatus updates the processing status of a dataset.
func (r *InMemoryStore) UpdateDatasetStatus(ctx context.Context, datasetID int, status model.DatasetStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, ok := r.datasets[datasetID]
	if !ok {
		return repository.ErrDatasetNotFound
	}
	ds.Status = status
	return nil
}

// FindDatasetByID finds a dataset by its ID.
func (r *InMemoryStore) FindDatasetByID(ctx context.Context, id int) (*model.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, repository.ErrDatasetNotFound
	}
	cloned := *ds
	return &cloned, nil
}

// FindCoordinatesByDataset returns the coordinates of a dataset ordered by
// spectrum index.
func (r *InMemoryStore) FindCoordinatesByDataset(ctx context.Context, datasetID int) ([]*model.Coordinate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coords := make([]*model.Coordinate, 0, len(r.coordinates[datasetID]))
	for _, c := range r.coordinates[datasetID] {
		cloned := *c
		coords = append(coords, &cloned)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Index < coords[j].Index })
	return coords, nil
}

// SaveJobType registers a job type, replacing any previous description.
func (r *InMemoryStore) SaveJobType(ctx context.Context, jt *model.JobType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cloned := *jt
	r.jobTypes[jt.Code] = &cloned
	return nil
}

// ReplaceFormulaDatabases atomically replaces all formula database entries.
func (r *InMemoryStore) ReplaceFormulaDatabases(ctx context.Context, dbs []*model.FormulaDatabase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[int]*model.FormulaDatabase, len(dbs))
	for _, db := range dbs {
		cloned := *db
		next[db.ID] = &cloned
	}
	r.formulaDBs = next
	return nil
}

// ReplaceFormulas atomically replaces all formulas.
func (r *InMemoryStore) ReplaceFormulas(ctx context.Context, formulas []*model.Formula) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]*model.Formula, 0, len(formulas))
	for _, f := range formulas {
		cloned := *f
		next = append(next, &cloned)
	}
	r.formulas = next
	return nil
}

// ReplaceAggregateFormulas atomically replaces all aggregate formulas.
func (r *InMemoryStore) ReplaceAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[int]*model.AggregateFormula, len(formulas))
	for _, af := range formulas {
		cloned := *af
		cloned.Members = append(model.MemberList(nil), af.Members...)
		next[af.ID] = &cloned
	}
	r.aggFormulas = next
	return nil
}

// ReplaceDatasets atomically replaces all datasets.
func (r *InMemoryStore) ReplaceDatasets(ctx context.Context, datasets []*model.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[int]*model.Dataset, len(datasets))
	for _, ds := range datasets {
		cloned := *ds
		next[ds.ID] = &cloned
	}
	r.datasets = next
	return nil
}

// ReplaceCoordinates atomically replaces all coordinates.
func (r *InMemoryStore) ReplaceCoordinates(ctx context.Context, coords []*model.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[int][]*model.Coordinate)
	for _, c := range coords {
		cloned := *c
		next[c.DatasetID] = append(next[c.DatasetID], &cloned)
	}
	r.coordinates = next
	return nil
}

// ReplaceJobTypes atomically replaces all job types.
func (r *InMemoryStore) ReplaceJobTypes(ctx context.Context, types []*model.JobType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[int]*model.JobType, len(types))
	for _, jt := range types {
		cloned := *jt
		next[jt.Code] = &cloned
	}
	r.jobTypes = next
	return nil
}

// ReplacePatterns atomically replaces the whole isotope pattern set.
func (r *InMemoryStore) ReplacePatterns(ctx context.Context, patterns []*model.IsotopePattern) error {
	if err := model.CheckPatternUniqueness(patterns); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[patternKey]*model.IsotopePattern, len(patterns))
	for _, p := range patterns {
		cloned := *p
		cloned.Peaks = append(model.PeakList(nil), p.Peaks...)
		next[patternKey{SfID: p.SfID, Adduct: p.Adduct}] = &cloned
	}
	r.patterns = next
	return nil
}

// FindPattern finds the isotope pattern of a (sum formula, adduct) pair.
func (r *InMemoryStore) FindPattern(ctx context.Context, sfID, adduct int) (*model.IsotopePattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patterns[patternKey{SfID: sfID, Adduct: adduct}]
	if !ok {
		return nil, repository.ErrPatternNotFound
	}
	cloned := *p
	cloned.Peaks = append(model.PeakList(nil), p.Peaks...)
	return &cloned, nil
}

// FindAllPatterns returns every stored isotope pattern.
func (r *InMemoryStore) FindAllPatterns(ctx context.Context) ([]*model.IsotopePattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]*model.IsotopePattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		cloned := *p
		cloned.Peaks = append(model.PeakList(nil), p.Peaks...)
		patterns = append(patterns, &cloned)
	}
	// Sort for deterministic iteration order.
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].SfID != patterns[j].SfID {
			return patterns[i].SfID < patterns[j].SfID
		}
		return patterns[i].Adduct < patterns[j].Adduct
	})
	return patterns, nil
}
