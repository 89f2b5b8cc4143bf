package sql

import (
	"context"
	"fmt"
	"sort"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	tx "github.com/molspect/imsbase/pkg/ims/core/tx"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// --- ReferenceRepository implementation ---

func (r *SQLStore) SaveFormulaDatabase(ctx context.Context, db *model.FormulaDatabase) error {
	const op = "SQLStore.SaveFormulaDatabase"
	entity := fromDomainFormulaDatabase(db)

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save formula database '%s'", db.Name), err, true)
	}
	return nil
}

func (r *SQLStore) FindFormulaDatabaseByName(ctx context.Context, name string) (*model.FormulaDatabase, error) {
	const op = "SQLStore.FindFormulaDatabaseByName"
	var entity FormulaDatabaseEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entity, map[string]interface{}{"db": name}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrFormulaDatabaseNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find formula database '%s'", name), err, true)
	}

	if entity.Name == "" {
		return nil, repository.ErrFormulaDatabaseNotFound
	}

	return toDomainFormulaDatabase(&entity), nil
}

func (r *SQLStore) SaveFormulas(ctx context.Context, formulas []*model.Formula) error {
	const op = "SQLStore.SaveFormulas"
	if len(formulas) == 0 {
		return nil
	}

	entities := make([]*FormulaEntity, len(formulas))
	for i, f := range formulas {
		entities[i] = fromDomainFormula(f)
	}

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entities, "CREATE", FormulaEntity{}.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save %d formulas", len(formulas)), err, true)
	}
	return nil
}

func (r *SQLStore) FindFormulasBySumFormula(ctx context.Context, sumFormula string) ([]*model.Formula, error) {
	const op = "SQLStore.FindFormulasBySumFormula"
	var entities []FormulaEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQuery(ctx, &entities, map[string]interface{}{"sf": sumFormula})
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.Formula{}, nil
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find formulas for sum formula '%s'", sumFormula), err, true)
	}

	formulas := make([]*model.Formula, len(entities))
	for i := range entities {
		formulas[i] = toDomainFormula(&entities[i])
	}
	return formulas, nil
}

func (r *SQLStore) SaveAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error {
	const op = "SQLStore.SaveAggregateFormulas"
	if len(formulas) == 0 {
		return nil
	}

	entities := make([]*AggregateFormulaEntity, len(formulas))
	for i, af := range formulas {
		entities[i] = fromDomainAggregateFormula(af)
	}

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entities, "CREATE", AggregateFormulaEntity{}.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save %d aggregate formulas", len(formulas)), err, true)
	}
	return nil
}

func (r *SQLStore) FindAggregateFormulaByID(ctx context.Context, id int) (*model.AggregateFormula, error) {
	const op = "SQLStore.FindAggregateFormulaByID"
	var entities []AggregateFormulaEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"id": id}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrAggregateFormulaNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find aggregate formula %d", id), err, true)
	}

	if len(entities) == 0 {
		return nil, repository.ErrAggregateFormulaNotFound
	}

	af, err := toDomainAggregateFormula(&entities[0])
	if err != nil {
		return nil, exception.NewStoreError(op, fmt.Sprintf("corrupt aggregate formula %d", id), err, false)
	}
	return af, nil
}

func (r *SQLStore) FindAggregateFormulaBySumFormula(ctx context.Context, sumFormula string) (*model.AggregateFormula, error) {
	const op = "SQLStore.FindAggregateFormulaBySumFormula"
	var entities []AggregateFormulaEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"sf": sumFormula}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrAggregateFormulaNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find aggregate formula for sum formula '%s'", sumFormula), err, true)
	}

	if len(entities) == 0 {
		return nil, repository.ErrAggregateFormulaNotFound
	}

	af, err := toDomainAggregateFormula(&entities[0])
	if err != nil {
		return nil, exception.NewStoreError(op, fmt.Sprintf("corrupt aggregate formula for sum formula '%s'", sumFormula), err, false)
	}
	return af, nil
}

// SaveDataset persists the dataset together with its coordinates. When no
// transaction is active on the context, one is started so the dataset row and
// its coordinate rows commit together.
func (r *SQLStore) SaveDataset(ctx context.Context, ds *model.Dataset, coords []*model.Coordinate) error {
	if _, ok := tx.FromContext(ctx); ok {
		return r.saveDatasetInTx(ctx, ds, coords)
	}
	return tx.Run(ctx, r.TxManager, func(ctx context.Context) error {
		return r.saveDatasetInTx(ctx, ds, coords)
	})
}

func (r *SQLStore) saveDatasetInTx(ctx context.Context, ds *model.Dataset, coords []*model.Coordinate) error {
	const op = "SQLStore.SaveDataset"

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	entity := fromDomainDataset(ds)
	if _, err := executor.ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil); err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save dataset %d", ds.ID), err, true)
	}

	if len(coords) == 0 {
		return nil
	}

	coordEntities := make([]*CoordinateEntity, len(coords))
	for i, c := range coords {
		coordEntities[i] = fromDomainCoordinate(c)
	}
	if _, err := executor.ExecuteUpdate(ctx, coordEntities, "CREATE", CoordinateEntity{}.TableName(), nil); err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save %d coordinates for dataset %d", len(coords), ds.ID), err, true)
	}
	return nil
}

func (r *SQLStore) UpdateDatasetStatus(ctx context.Context, datasetID int, status model.DatasetStatus) error {
	const op = "SQLStore.UpdateDatasetStatus"

	// Existence is checked with a read rather than through affected rows:
	// updating to the already-current status reports zero changed rows on
	// some backends.
	if _, err := r.FindDatasetByID(ctx, datasetID); err != nil {
		return err
	}

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	entity := &DatasetEntity{Status: status}
	_, err = executor.ExecuteUpdate(
		ctx,
		entity,
		"UPDATE",
		entity.TableName(),
		map[string]interface{}{"dataset_id": datasetID},
	)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to update status of dataset %d", datasetID), err, true)
	}
	return nil
}

func (r *SQLStore) FindDatasetByID(ctx context.Context, id int) (*model.Dataset, error) {
	const op = "SQLStore.FindDatasetByID"
	var entities []DatasetEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"dataset_id": id}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrDatasetNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find dataset %d", id), err, true)
	}

	if len(entities) == 0 {
		return nil, repository.ErrDatasetNotFound
	}

	return toDomainDataset(&entities[0]), nil
}

func (r *SQLStore) FindCoordinatesByDataset(ctx context.Context, datasetID int) ([]*model.Coordinate, error) {
	const op = "SQLStore.FindCoordinatesByDataset"
	var entities []CoordinateEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQuery(ctx, &entities, map[string]interface{}{"dataset_id": datasetID})
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.Coordinate{}, nil
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find coordinates of dataset %d", datasetID), err, true)
	}

	coords := make([]*model.Coordinate, len(entities))
	for i, entity := range entities {
		coords[i] = toDomainCoordinate(&entity)
	}
	// Sorted in Go: "index" is a reserved word on some backends, so the rows
	// are not ordered with an ORDER BY clause.
	sort.Slice(coords, func(i, j int) bool { return coords[i].Index < coords[j].Index })

	return coords, nil
}

func (r *SQLStore) SaveJobType(ctx context.Context, jt *model.JobType) error {
	const op = "SQLStore.SaveJobType"
	entity := fromDomainJobType(jt)

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	// Re-registering a job type replaces its description.
	_, err = executor.ExecuteUpsert(ctx, entity, entity.TableName(), []string{"type"}, []string{"description"})
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save job type %d", jt.Code), err, true)
	}
	return nil
}

// replaceAll clears a table and runs an insert callback within one
// transaction, so bulk replaces either fully commit or leave the previous
// contents untouched. When a transaction is already active on the context it
// participates in it instead of opening its own.
func (r *SQLStore) replaceAll(ctx context.Context, op, tableName string, deleteModel interface{}, insert func(ctx context.Context, executor tx.Executor) error) error {
	replace := func(ctx context.Context) error {
		executor, err := r.getTxExecutor(ctx)
		if err != nil {
			return err
		}

		if _, err := executor.ExecuteUpdate(ctx, deleteModel, "DELETE", tableName, nil); err != nil {
			if isTableNotExistError(err) {
				return exception.NewStoreError(op, fmt.Sprintf("table %s does not exist", tableName), err, false)
			}
			return exception.NewStoreError(op, fmt.Sprintf("failed to clear %s", tableName), err, true)
		}
		return insert(ctx, executor)
	}

	if _, ok := tx.FromContext(ctx); ok {
		return replace(ctx)
	}
	return tx.Run(ctx, r.TxManager, replace)
}

// insertChunked writes the entities in chunks to keep individual INSERT
// statements bounded.
func insertChunked[E any](ctx context.Context, executor tx.Executor, op, tableName string, entities []*E, chunkSize int) error {
	for i := 0; i < len(entities); i += chunkSize {
		end := i + chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		chunk := entities[i:end]
		if _, err := executor.ExecuteUpdate(ctx, chunk, "CREATE", tableName, nil); err != nil {
			return exception.NewStoreError(op, fmt.Sprintf("failed to bulk insert into %s (chunk start index %d)", tableName, i), err, true)
		}
		logger.Debugf("%s: wrote %d rows into %s (chunk start index %d)", op, len(chunk), tableName, i)
	}
	return nil
}

func (r *SQLStore) ReplaceFormulaDatabases(ctx context.Context, dbs []*model.FormulaDatabase) error {
	const op = "SQLStore.ReplaceFormulaDatabases"
	entities := make([]*FormulaDatabaseEntity, len(dbs))
	for i, db := range dbs {
		entities[i] = fromDomainFormulaDatabase(db)
	}
	return r.replaceAll(ctx, op, FormulaDatabaseEntity{}.TableName(), &FormulaDatabaseEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, FormulaDatabaseEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) ReplaceFormulas(ctx context.Context, formulas []*model.Formula) error {
	const op = "SQLStore.ReplaceFormulas"
	entities := make([]*FormulaEntity, len(formulas))
	for i, f := range formulas {
		entities[i] = fromDomainFormula(f)
	}
	return r.replaceAll(ctx, op, FormulaEntity{}.TableName(), &FormulaEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, FormulaEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) ReplaceAggregateFormulas(ctx context.Context, formulas []*model.AggregateFormula) error {
	const op = "SQLStore.ReplaceAggregateFormulas"
	entities := make([]*AggregateFormulaEntity, len(formulas))
	for i, af := range formulas {
		entities[i] = fromDomainAggregateFormula(af)
	}
	return r.replaceAll(ctx, op, AggregateFormulaEntity{}.TableName(), &AggregateFormulaEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, AggregateFormulaEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) ReplaceDatasets(ctx context.Context, datasets []*model.Dataset) error {
	const op = "SQLStore.ReplaceDatasets"
	entities := make([]*DatasetEntity, len(datasets))
	for i, ds := range datasets {
		entities[i] = fromDomainDataset(ds)
	}
	return r.replaceAll(ctx, op, DatasetEntity{}.TableName(), &DatasetEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, DatasetEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) ReplaceCoordinates(ctx context.Context, coords []*model.Coordinate) error {
	const op = "SQLStore.ReplaceCoordinates"
	entities := make([]*CoordinateEntity, len(coords))
	for i, c := range coords {
		entities[i] = fromDomainCoordinate(c)
	}
	return r.replaceAll(ctx, op, CoordinateEntity{}.TableName(), &CoordinateEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, CoordinateEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) ReplaceJobTypes(ctx context.Context, types []*model.JobType) error {
	const op = "SQLStore.ReplaceJobTypes"
	entities := make([]*JobTypeEntity, len(types))
	for i, jt := range types {
		entities[i] = fromDomainJobType(jt)
	}
	return r.replaceAll(ctx, op, JobTypeEntity{}.TableName(), &JobTypeEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, JobTypeEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

// ReplacePatterns atomically replaces the isotope pattern table. The
// (sf_id, adduct) uniqueness of the incoming set is verified first.
func (r *SQLStore) ReplacePatterns(ctx context.Context, patterns []*model.IsotopePattern) error {
	const op = "SQLStore.ReplacePatterns"

	if err := model.CheckPatternUniqueness(patterns); err != nil {
		return err
	}

	entities := make([]*IsotopePatternEntity, len(patterns))
	for i, p := range patterns {
		entities[i] = fromDomainIsotopePattern(p)
	}
	return r.replaceAll(ctx, op, IsotopePatternEntity{}.TableName(), &IsotopePatternEntity{}, func(ctx context.Context, executor tx.Executor) error {
		return insertChunked(ctx, executor, op, IsotopePatternEntity{}.TableName(), entities, r.bulkChunkSize)
	})
}

func (r *SQLStore) FindPattern(ctx context.Context, sfID, adduct int) (*model.IsotopePattern, error) {
	const op = "SQLStore.FindPattern"
	var entities []IsotopePatternEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"sf_id": sfID, "adduct": adduct}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrPatternNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find isotope pattern (sf_id=%d, adduct=%d)", sfID, adduct), err, true)
	}

	if len(entities) == 0 {
		return nil, repository.ErrPatternNotFound
	}

	p, err := toDomainIsotopePattern(&entities[0])
	if err != nil {
		return nil, exception.NewStoreError(op, fmt.Sprintf("corrupt isotope pattern (sf_id=%d, adduct=%d)", sfID, adduct), err, false)
	}
	return p, nil
}

func (r *SQLStore) FindAllPatterns(ctx context.Context) ([]*model.IsotopePattern, error) {
	const op = "SQLStore.FindAllPatterns"
	var entities []IsotopePatternEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQuery(ctx, &entities, nil)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.IsotopePattern{}, nil
		}
		return nil, exception.NewStoreError(op, "failed to load isotope patterns", err, true)
	}

	patterns := make([]*model.IsotopePattern, len(entities))
	for i := range entities {
		p, err := toDomainIsotopePattern(&entities[i])
		if err != nil {
			return nil, exception.NewStoreError(op, fmt.Sprintf("corrupt isotope pattern (sf_id=%d, adduct=%d)", entities[i].SfID, entities[i].Adduct), err, false)
		}
		patterns[i] = p
	}

	return patterns, nil
}
