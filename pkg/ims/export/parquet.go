// Package export writes job results out of the store as Parquet objects on a
// storage backend (local filesystem or GCS).
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/molspect/imsbase/pkg/ims/adapter/storage"
	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// resultDatumRow is the Parquet schema for per-spectrum result rows.
type resultDatumRow struct {
	JobID    int64   `parquet:"name=job_id, type=INT64"`
	Param    int32   `parquet:"name=param, type=INT32"`
	Adduct   int32   `parquet:"name=adduct, type=INT32"`
	Peak     int32   `parquet:"name=peak, type=INT32"`
	Spectrum int32   `parquet:"name=spectrum, type=INT32"`
	Value    float64 `parquet:"name=value, type=DOUBLE"`
}

// resultStatRow is the Parquet schema for per-formula statistic rows. The
// stats payload is carried as its JSON encoding (schema-on-read).
type resultStatRow struct {
	JobID     int64  `parquet:"name=job_id, type=INT64"`
	FormulaID int32  `parquet:"name=formula_id, type=INT32"`
	Adduct    int32  `parquet:"name=adduct, type=INT32"`
	Param     int32  `parquet:"name=param, type=INT32"`
	Stats     string `parquet:"name=stats, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Exporter exports the results of a job to a storage backend as Parquet files.
type Exporter struct {
	store    repository.ResultRepository
	resolver storage.StorageConnectionResolver
	cfg      config.ExportConfig
}

// NewExporter creates an Exporter reading from the given result store.
func NewExporter(store repository.ResultRepository, resolver storage.StorageConnectionResolver, cfg config.ExportConfig) *Exporter {
	return &Exporter{store: store, resolver: resolver, cfg: cfg}
}

// ExportJob writes all result rows and statistic rows of a job as two Parquet
// objects and returns the object names. Partitions that fail are aggregated
// into a single error; successfully written objects stay in place.
func (e *Exporter) ExportJob(ctx context.Context, jobID int64) ([]string, error) {
	const op = "Exporter.ExportJob"

	conn, err := e.resolver.ResolveStorageConnection(ctx, e.cfg.StorageRef)
	if err != nil {
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to resolve storage connection '%s'", e.cfg.StorageRef), err, false)
	}

	data, err := e.store.FindResultDataByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	stats, err := e.store.FindResultStatsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	dataRows := make([]resultDatumRow, len(data))
	for i, d := range data {
		dataRows[i] = resultDatumRow{
			JobID:    d.JobID,
			Param:    int32(d.Param),
			Adduct:   int32(d.Adduct),
			Peak:     int32(d.Peak),
			Spectrum: int32(d.Spectrum),
			Value:    d.Value,
		}
	}
	statRows := make([]resultStatRow, len(stats))
	for i, s := range stats {
		payload, err := json.Marshal(s.Stats)
		if err != nil {
			return nil, exception.NewStoreError(op, fmt.Sprintf("failed to encode stats payload for job %d", jobID), err, false)
		}
		statRows[i] = resultStatRow{
			JobID:     s.JobID,
			FormulaID: int32(s.FormulaID),
			Adduct:    int32(s.Adduct),
			Param:     int32(s.Param),
			Stats:     string(payload),
		}
	}

	var multiErr error
	var objects []string

	suffix := fmt.Sprintf("%s_%s.parquet", time.Now().Format("20060102150405"), uuid.NewString()[:8])
	jobDir := filepath.Join(e.cfg.Directory, fmt.Sprintf("job_%d", jobID))

	if name, err := writeParquetObject(ctx, conn, filepath.Join(jobDir, "data_"+suffix), dataRows, new(resultDatumRow)); err != nil {
		multiErr = multierror.Append(multiErr, err)
	} else if name != "" {
		objects = append(objects, name)
	}
	if name, err := writeParquetObject(ctx, conn, filepath.Join(jobDir, "stats_"+suffix), statRows, new(resultStatRow)); err != nil {
		multiErr = multierror.Append(multiErr, err)
	} else if name != "" {
		objects = append(objects, name)
	}

	if multiErr != nil {
		return objects, multiErr
	}
	logger.Infof("Exported job %d results: %d data rows, %d stat rows.", jobID, len(dataRows), len(statRows))
	return objects, nil
}

// writeParquetObject serializes rows into a Parquet buffer and uploads it.
// Empty row sets are skipped and produce no object.
func writeParquetObject[T any](ctx context.Context, conn storage.StorageConnection, objectName string, rows []T, prototype *T) (string, error) {
	const op = "export.writeParquetObject"

	if len(rows) == 0 {
		logger.Debugf("%s: no rows for %s, skipping.", op, objectName)
		return "", nil
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, prototype, int64(len(rows)))
	if err != nil {
		return "", exception.NewStoreError(op, fmt.Sprintf("failed to create Parquet writer for %s", objectName), err, false)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return "", exception.NewStoreError(op, fmt.Sprintf("failed to write Parquet row for %s", objectName), err, false)
		}
	}

	if err := stopWriter(pw, objectName); err != nil {
		return "", err
	}

	if err := conn.Upload(ctx, "", objectName, buf, "application/octet-stream"); err != nil {
		return "", exception.NewStoreError(op, fmt.Sprintf("failed to upload %s", objectName), err, true)
	}
	logger.Debugf("%s: uploaded %d bytes to %s.", op, buf.Len(), objectName)
	return objectName, nil
}

// stopWriter finalizes the Parquet stream, converting library panics into
// errors.
func stopWriter(pw *writer.ParquetWriter, objectName string) (err error) {
	const op = "Exporter.stopWriter"
	defer func() {
		if r := recover(); r != nil {
			err = exception.NewStoreErrorf(op, "Parquet writer panicked during WriteStop for %s: %v", objectName, r)
		}
	}()
	if stopErr := pw.WriteStop(); stopErr != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to finalize Parquet stream for %s", objectName), stopErr, false)
	}
	return nil
}
