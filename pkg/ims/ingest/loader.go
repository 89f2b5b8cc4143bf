package ingest

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// Loader bulk-loads reference tables from delimited record streams. Every
// stream is parsed fully before anything is written; a single malformed
// record aborts the load with zero rows committed. A successful load replaces
// the previous contents of the target table.
type Loader struct {
	store     repository.ReferenceRepository
	recorder  metrics.MetricRecorder
	delimiter byte
	quote     byte
}

// NewLoader creates a Loader writing into the given reference store.
func NewLoader(store repository.ReferenceRepository, recorder metrics.MetricRecorder, ingestCfg config.IngestConfig) *Loader {
	delimiter := byte(DefaultDelimiter)
	if ingestCfg.Delimiter != "" {
		delimiter = ingestCfg.Delimiter[0]
	}
	quote := byte(DefaultQuote)
	if ingestCfg.Quote != "" {
		quote = ingestCfg.Quote[0]
	}
	return &Loader{
		store:     store,
		recorder:  recorder,
		delimiter: delimiter,
		quote:     quote,
	}
}

// Load reads delimited records from src and replaces the contents of the
// target table with them. It returns the number of rows committed.
func (l *Loader) Load(ctx context.Context, target Target, src io.Reader) (int, error) {
	const op = "Loader.Load"

	records, err := NewRecordReader(src, l.delimiter, l.quote).ReadAll()
	if err != nil {
		return 0, exception.NewStoreError(op, fmt.Sprintf("failed to parse %s load stream", target), err, false)
	}

	var count int
	switch target {
	case TargetFormulaDatabases:
		count, err = convertAndReplace(ctx, records, rowToFormulaDatabase, l.store.ReplaceFormulaDatabases)
	case TargetFormulas:
		count, err = convertAndReplace(ctx, records, rowToFormula, l.store.ReplaceFormulas)
	case TargetAggregateFormulas:
		count, err = convertAndReplace(ctx, records, rowToAggregateFormula, l.store.ReplaceAggregateFormulas)
	case TargetDatasets:
		count, err = convertAndReplace(ctx, records, rowToDataset, l.store.ReplaceDatasets)
	case TargetCoordinates:
		count, err = convertAndReplace(ctx, records, rowToCoordinate, l.store.ReplaceCoordinates)
	case TargetJobTypes:
		count, err = convertAndReplace(ctx, records, rowToJobType, l.store.ReplaceJobTypes)
	case TargetPatterns:
		count, err = convertAndReplace(ctx, records, rowToIsotopePattern, l.store.ReplacePatterns)
	default:
		return 0, exception.NewStoreErrorf(op, "unknown load target %d", int(target))
	}
	if err != nil {
		return 0, exception.NewStoreError(op, fmt.Sprintf("bulk load into %s failed", target), err, false)
	}

	if l.recorder != nil {
		l.recorder.RecordBulkLoad(ctx, target.TableName(), count)
	}
	logger.Infof("Bulk load into %s completed: %d rows.", target, count)
	return count, nil
}

// convertAndReplace converts every record before a single row is written, so
// a malformed record leaves the store untouched.
func convertAndReplace[T any](
	ctx context.Context,
	records []Record,
	convert func(fields []string, line int) (*T, error),
	replace func(ctx context.Context, rows []*T) error,
) (int, error) {
	rows := make([]*T, 0, len(records))
	for _, record := range records {
		row, err := convert(record.Fields, record.Line)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	if err := replace(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LoaderParams defines the dependencies required to construct a Loader.
type LoaderParams struct {
	fx.In
	Store    repository.Store
	Recorder metrics.MetricRecorder `optional:"true"`
	Cfg      *config.Config
}

// NewLoaderProvider creates the Loader for Fx.
func NewLoaderProvider(p LoaderParams) *Loader {
	if p.Recorder == nil {
		p.Recorder = metrics.NewNoOpMetricRecorder()
	}
	return NewLoader(p.Store, p.Recorder, p.Cfg.IMSBase.Ingest)
}

// Module provides the bulk loader to Fx.
var Module = fx.Options(
	fx.Provide(NewLoaderProvider),
)
