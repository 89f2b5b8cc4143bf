package repository

import (
	"context"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// ResultRepository defines append-only operations over job output: raw
// per-pixel data rows and aggregated statistics rows. Results are never
// updated in place; re-running a job appends rows under a new job ID.
type ResultRepository interface {
	// AppendResultData persists a batch of raw result rows for a job.
	AppendResultData(ctx context.Context, data []*model.ResultDatum) error

	// AppendResultStats persists a batch of aggregated statistics rows for a job.
	AppendResultStats(ctx context.Context, stats []*model.ResultStat) error

	// FindResultDataByJob loads all raw result rows recorded for a job.
	FindResultDataByJob(ctx context.Context, jobID int64) ([]*model.ResultDatum, error)

	// FindResultDataByJobAndParam loads the raw result rows of a job restricted
	// to one parameter set.
	FindResultDataByJobAndParam(ctx context.Context, jobID int64, param int) ([]*model.ResultDatum, error)

	// FindResultData loads the raw result rows of one (job, param, peak,
	// adduct) combination, the finest-grained keyed read of the data table.
	FindResultData(ctx context.Context, jobID int64, param, peak, adduct int) ([]*model.ResultDatum, error)

	// FindResultStatsByJob loads all statistics rows recorded for a job.
	FindResultStatsByJob(ctx context.Context, jobID int64) ([]*model.ResultStat, error)

	// FindResultStatsByJobAndFormula loads the statistics rows of one formula
	// within a job, one per adduct-parameter combination.
	FindResultStatsByJobAndFormula(ctx context.Context, jobID int64, formulaID int) ([]*model.ResultStat, error)

	// FindResultStatsByFormula loads all statistics rows recorded for a formula
	// across jobs.
	FindResultStatsByFormula(ctx context.Context, formulaID int) ([]*model.ResultStat, error)
}
