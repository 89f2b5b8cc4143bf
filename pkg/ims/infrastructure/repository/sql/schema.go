package sql

import (
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// FormulaDatabaseEntity is a schema model used for persistence.
type FormulaDatabaseEntity struct {
	ID   int    `gorm:"column:db_id;primaryKey"`
	Name string `gorm:"column:db"`
}

func (FormulaDatabaseEntity) TableName() string {
	return "formula_dbs"
}

// FormulaEntity is a schema model used for persistence.
type FormulaEntity struct {
	DBID       int    `gorm:"column:db_id"`
	ExternalID string `gorm:"column:id"`
	SfID       int    `gorm:"column:sf_id"`
	Name       string `gorm:"column:name"`
	SumFormula string `gorm:"column:sf"`
}

func (FormulaEntity) TableName() string {
	return "formulas"
}

// AggregateFormulaEntity is a schema model used for persistence.
// The member columns are parallel JSON arrays; length equality across the
// three is guaranteed by the domain constructor.
type AggregateFormulaEntity struct {
	ID         int              `gorm:"column:id;primaryKey"`
	SumFormula string           `gorm:"column:sf"`
	DBIDs      model.IntList    `gorm:"column:db_ids"`
	SubstIDs   model.StringList `gorm:"column:subst_ids"`
	Names      model.StringList `gorm:"column:names"`
}

func (AggregateFormulaEntity) TableName() string {
	return "agg_formulas"
}

// DatasetEntity is a schema model used for persistence.
type DatasetEntity struct {
	ID       int                 `gorm:"column:dataset_id;primaryKey"`
	Name     string              `gorm:"column:dataset"`
	Filename string              `gorm:"column:filename"`
	Rows     int                 `gorm:"column:nrows"`
	Cols     int                 `gorm:"column:ncols"`
	Status   model.DatasetStatus `gorm:"column:status"`
	Metadata model.Document      `gorm:"column:metadata"`
}

func (DatasetEntity) TableName() string {
	return "datasets"
}

// CoordinateEntity is a schema model used for persistence.
type CoordinateEntity struct {
	DatasetID int `gorm:"column:dataset_id"`
	Index     int `gorm:"column:index"`
	X         int `gorm:"column:x"`
	Y         int `gorm:"column:y"`
}

func (CoordinateEntity) TableName() string {
	return "coordinates"
}

// JobTypeEntity is a schema model used for persistence.
type JobTypeEntity struct {
	Code        int    `gorm:"column:type;primaryKey"`
	Description string `gorm:"column:description"`
}

func (JobTypeEntity) TableName() string {
	return "job_types"
}

// JobEntity is a schema model used for persistence.
type JobEntity struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Type       int            `gorm:"column:type"`
	FormulaID  int            `gorm:"column:formula_id"`
	DatasetID  int            `gorm:"column:dataset_id"`
	Done       bool           `gorm:"column:done"`
	State      model.JobState `gorm:"column:state"`
	Status     string         `gorm:"column:status"`
	TasksDone  int            `gorm:"column:tasks_done"`
	TasksTotal int            `gorm:"column:tasks_total"`
	Start      time.Time      `gorm:"column:start"`
	Finish     *time.Time     `gorm:"column:finish"`
	Version    int            `gorm:"column:version"`
}

func (JobEntity) TableName() string {
	return "jobs"
}

// ResultDatumEntity is a schema model used for persistence.
type ResultDatumEntity struct {
	JobID    int64   `gorm:"column:job_id"`
	Param    int     `gorm:"column:param"`
	Adduct   int     `gorm:"column:adduct"`
	Peak     int     `gorm:"column:peak"`
	Spectrum int     `gorm:"column:spectrum"`
	Value    float64 `gorm:"column:value"`
}

func (ResultDatumEntity) TableName() string {
	return "job_result_data"
}

// ResultStatEntity is a schema model used for persistence.
type ResultStatEntity struct {
	JobID     int64              `gorm:"column:job_id"`
	FormulaID int                `gorm:"column:formula_id"`
	Adduct    int                `gorm:"column:adduct"`
	Param     int                `gorm:"column:param"`
	Stats     model.StatsPayload `gorm:"column:stats"`
}

func (ResultStatEntity) TableName() string {
	return "job_result_stats"
}

// IsotopePatternEntity is a schema model used for persistence.
// peaks and ints are parallel JSON arrays; length equality is guaranteed by
// the domain constructor.
type IsotopePatternEntity struct {
	SfID   int             `gorm:"column:sf_id"`
	Adduct int             `gorm:"column:adduct"`
	Peaks  model.FloatList `gorm:"column:peaks"`
	Ints   model.FloatList `gorm:"column:ints"`
}

func (IsotopePatternEntity) TableName() string {
	return "mz_peaks"
}
