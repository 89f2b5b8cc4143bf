package inmemory

import (
	"context"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// AppendResultData appends per-spectrum result rows. Rows are never updated
// or removed.
func (r *InMemoryStore) AppendResultData(ctx context.Context, data []*model.ResultDatum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range data {
		cloned := *d
		r.resultData = append(r.resultData, &cloned)
	}
	return nil
}

// AppendResultStats appends per-formula statistic rows.
func (r *InMemoryStore) AppendResultStats(ctx context.Context, stats []*model.ResultStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range stats {
		cloned := *s
		r.resultStats = append(r.resultStats, &cloned)
	}
	return nil
}

// FindResultDataByJob returns the result rows of a job in insertion order.
func (r *InMemoryStore) FindResultDataByJob(ctx context.Context, jobID int64) ([]*model.ResultDatum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := make([]*model.ResultDatum, 0)
	for _, d := range r.resultData {
		if d.JobID == jobID {
			cloned := *d
			data = append(data, &cloned)
		}
	}
	return data, nil
}

// FindResultDataByJobAndParam returns the result rows of one formula parameter
// of a job in insertion order.
func (r *InMemoryStore) FindResultDataByJobAndParam(ctx context.Context, jobID int64, param int) ([]*model.ResultDatum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := make([]*model.ResultDatum, 0)
	for _, d := range r.resultData {
		if d.JobID == jobID && d.Param == param {
			cloned := *d
			data = append(data, &cloned)
		}
	}
	return data, nil
}

// FindResultData returns the rows of one (job, param, peak, adduct)
// combination in insertion order.
func (r *InMemoryStore) FindResultData(ctx context.Context, jobID int64, param, peak, adduct int) ([]*model.ResultDatum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := make([]*model.ResultDatum, 0)
	for _, d := range r.resultData {
		if d.JobID == jobID && d.Param == param && d.Peak == peak && d.Adduct == adduct {
			cloned := *d
			data = append(data, &cloned)
		}
	}
	return data, nil
}

// FindResultStatsByJob returns the statistic rows of a job in insertion order.
func (r *InMemoryStore) FindResultStatsByJob(ctx context.Context, jobID int64) ([]*model.ResultStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]*model.ResultStat, 0)
	for _, s := range r.resultStats {
		if s.JobID == jobID {
			cloned := *s
			stats = append(stats, &cloned)
		}
	}
	return stats, nil
}

// FindResultStatsByJobAndFormula returns the statistic rows of one formula
// within a job in insertion order.
func (r *InMemoryStore) FindResultStatsByJobAndFormula(ctx context.Context, jobID int64, formulaID int) ([]*model.ResultStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]*model.ResultStat, 0)
	for _, s := range r.resultStats {
		if s.JobID == jobID && s.FormulaID == formulaID {
			cloned := *s
			stats = append(stats, &cloned)
		}
	}
	return stats, nil
}

// FindResultStatsByFormula returns the statistic rows of a formula across all
// jobs in insertion order.
func (r *InMemoryStore) FindResultStatsByFormula(ctx context.Context, formulaID int) ([]*model.ResultStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]*model.ResultStat, 0)
	for _, s := range r.resultStats {
		if s.FormulaID == formulaID {
			cloned := *s
			stats = append(stats, &cloned)
		}
	}
	return stats, nil
}
