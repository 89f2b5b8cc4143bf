package sql

import (
	"context"
	"fmt"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

// --- ResultRepository implementation ---
//
// Result tables are append-only: rows are inserted and queried, never updated
// or deleted through this interface.

func (r *SQLStore) AppendResultData(ctx context.Context, data []*model.ResultDatum) error {
	const op = "SQLStore.AppendResultData"
	if len(data) == 0 {
		return nil
	}

	entities := make([]*ResultDatumEntity, len(data))
	for i, d := range data {
		entities[i] = fromDomainResultDatum(d)
	}

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entities, "CREATE", ResultDatumEntity{}.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to append %d result rows for job %d", len(data), data[0].JobID), err, true)
	}
	return nil
}

func (r *SQLStore) AppendResultStats(ctx context.Context, stats []*model.ResultStat) error {
	const op = "SQLStore.AppendResultStats"
	if len(stats) == 0 {
		return nil
	}

	entities := make([]*ResultStatEntity, len(stats))
	for i, s := range stats {
		entities[i] = fromDomainResultStat(s)
	}

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entities, "CREATE", ResultStatEntity{}.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to append %d stat rows for job %d", len(stats), stats[0].JobID), err, true)
	}
	return nil
}

func (r *SQLStore) FindResultDataByJob(ctx context.Context, jobID int64) ([]*model.ResultDatum, error) {
	const op = "SQLStore.FindResultDataByJob"
	return r.findResultData(ctx, op, map[string]interface{}{"job_id": jobID})
}

func (r *SQLStore) FindResultDataByJobAndParam(ctx context.Context, jobID int64, param int) ([]*model.ResultDatum, error) {
	const op = "SQLStore.FindResultDataByJobAndParam"
	return r.findResultData(ctx, op, map[string]interface{}{"job_id": jobID, "param": param})
}

func (r *SQLStore) FindResultData(ctx context.Context, jobID int64, param, peak, adduct int) ([]*model.ResultDatum, error) {
	const op = "SQLStore.FindResultData"
	return r.findResultData(ctx, op, map[string]interface{}{
		"job_id": jobID,
		"param":  param,
		"peak":   peak,
		"adduct": adduct,
	})
}

func (r *SQLStore) findResultData(ctx context.Context, op string, query map[string]interface{}) ([]*model.ResultDatum, error) {
	var entities []ResultDatumEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQuery(ctx, &entities, query)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.ResultDatum{}, nil
		}
		return nil, exception.NewStoreError(op, "failed to load result data", err, true)
	}

	data := make([]*model.ResultDatum, len(entities))
	for i := range entities {
		data[i] = toDomainResultDatum(&entities[i])
	}
	return data, nil
}

func (r *SQLStore) FindResultStatsByJob(ctx context.Context, jobID int64) ([]*model.ResultStat, error) {
	const op = "SQLStore.FindResultStatsByJob"
	return r.findResultStats(ctx, op, map[string]interface{}{"job_id": jobID})
}

func (r *SQLStore) FindResultStatsByFormula(ctx context.Context, formulaID int) ([]*model.ResultStat, error) {
	const op = "SQLStore.FindResultStatsByFormula"
	return r.findResultStats(ctx, op, map[string]interface{}{"formula_id": formulaID})
}

func (r *SQLStore) FindResultStatsByJobAndFormula(ctx context.Context, jobID int64, formulaID int) ([]*model.ResultStat, error) {
	const op = "SQLStore.FindResultStatsByJobAndFormula"
	return r.findResultStats(ctx, op, map[string]interface{}{"job_id": jobID, "formula_id": formulaID})
}

func (r *SQLStore) findResultStats(ctx context.Context, op string, query map[string]interface{}) ([]*model.ResultStat, error) {
	var entities []ResultStatEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQuery(ctx, &entities, query)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.ResultStat{}, nil
		}
		return nil, exception.NewStoreError(op, "failed to load result stats", err, true)
	}

	stats := make([]*model.ResultStat, len(entities))
	for i := range entities {
		stats[i] = toDomainResultStat(&entities[i])
	}
	return stats, nil
}
