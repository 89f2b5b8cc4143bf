package repository

import (
	"context"
	"errors"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// ErrDatasetNotFound is the error returned when a Dataset is not found.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrFormulaDatabaseNotFound is the error returned when a FormulaDatabase is not found.
var ErrFormulaDatabaseNotFound = errors.New("formula database not found")

// ErrAggregateFormulaNotFound is the error returned when an AggregateFormula is not found.
var ErrAggregateFormulaNotFound = errors.New("aggregate formula not found")

// ErrPatternNotFound is the error returned when an IsotopePattern is not found.
var ErrPatternNotFound = errors.New("isotope pattern not found")

// ReferenceRepository defines operations over the reference data that analysis
// jobs consume: formula databases, aggregated formulas, datasets with their
// pixel coordinates, job type codes, and precomputed isotope patterns.
type ReferenceRepository interface {
	// SaveFormulaDatabase persists a new formula source database record.
	SaveFormulaDatabase(ctx context.Context, db *model.FormulaDatabase) error

	// FindFormulaDatabaseByName finds a formula source database by its name.
	FindFormulaDatabaseByName(ctx context.Context, name string) (*model.FormulaDatabase, error)

	// SaveFormulas persists a batch of molecular formula records.
	SaveFormulas(ctx context.Context, formulas []*model.Formula) error

	// FindFormulasBySumFormula finds every formula row recorded under a sum
	// formula, across source databases.
	FindFormulasBySumFormula(ctx context.Context, sumFormula string) ([]*model.Formula, error)

	// SaveAggregateFormulas persists a batch of aggregated formula groups.
	SaveAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error

	// FindAggregateFormulaByID finds an aggregated formula group by its ID.
	FindAggregateFormulaByID(ctx context.Context, id int) (*model.AggregateFormula, error)

	// FindAggregateFormulaBySumFormula finds the aggregated formula group of a
	// sum formula.
	FindAggregateFormulaBySumFormula(ctx context.Context, sumFormula string) (*model.AggregateFormula, error)

	// SaveDataset persists a new Dataset together with its pixel coordinates.
	// The coordinate rows become queryable by spectrum index.
	SaveDataset(ctx context.Context, ds *model.Dataset, coords []*model.Coordinate) error

	// UpdateDatasetStatus transitions a dataset to the given lifecycle status.
	UpdateDatasetStatus(ctx context.Context, datasetID int, status model.DatasetStatus) error

	// FindDatasetByID finds a Dataset by its ID.
	FindDatasetByID(ctx context.Context, id int) (*model.Dataset, error)

	// FindCoordinatesByDataset loads all pixel coordinates of a dataset,
	// ordered by spectrum index.
	FindCoordinatesByDataset(ctx context.Context, datasetID int) ([]*model.Coordinate, error)

	// SaveJobType persists a job type code with its description.
	SaveJobType(ctx context.Context, jt *model.JobType) error

	// ReplaceFormulaDatabases atomically replaces the formula database table
	// with the given set. Used by bulk reference loads.
	ReplaceFormulaDatabases(ctx context.Context, dbs []*model.FormulaDatabase) error

	// ReplaceFormulas atomically replaces the formula table with the given set.
	ReplaceFormulas(ctx context.Context, formulas []*model.Formula) error

	// ReplaceAggregateFormulas atomically replaces the aggregated formula table
	// with the given set.
	ReplaceAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error

	// ReplaceDatasets atomically replaces the dataset table with the given set.
	// Coordinates are replaced separately via ReplaceCoordinates.
	ReplaceDatasets(ctx context.Context, datasets []*model.Dataset) error

	// ReplaceCoordinates atomically replaces the coordinate table with the
	// given set.
	ReplaceCoordinates(ctx context.Context, coords []*model.Coordinate) error

	// ReplaceJobTypes atomically replaces the job type table with the given set.
	ReplaceJobTypes(ctx context.Context, types []*model.JobType) error

	// ReplacePatterns atomically replaces the entire isotope pattern table with
	// the given set. Either all patterns are stored or the previous contents
	// remain untouched.
	ReplacePatterns(ctx context.Context, patterns []*model.IsotopePattern) error

	// FindPattern finds the isotope pattern for a formula-adduct combination.
	FindPattern(ctx context.Context, sfID, adduct int) (*model.IsotopePattern, error)

	// FindAllPatterns loads every stored isotope pattern.
	FindAllPatterns(ctx context.Context) ([]*model.IsotopePattern, error)
}
