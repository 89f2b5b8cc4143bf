package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

// JobState represents the lifecycle state of an analysis job.
type JobState string

const (
	JobStatePending   JobState = "PENDING"
	JobStateRunning   JobState = "RUNNING"
	JobStateDone      JobState = "DONE"
	JobStateFailed    JobState = "FAILED"
	JobStateCancelled JobState = "CANCELLED"
)

// String returns the string representation of the JobState.
func (s JobState) String() string {
	return string(s)
}

// IsTerminal checks if the JobState represents a terminal state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateDone, JobStateFailed, JobStateCancelled:
		return true
	default:
		return false
	}
}

// DatasetStatus represents the stage of a dataset's lifecycle.
type DatasetStatus string

const (
	// DatasetStatusNew means the dataset is just saved to the store.
	DatasetStatusNew DatasetStatus = "NEW"
	// DatasetStatusQueued means the dataset is queued for processing.
	DatasetStatusQueued DatasetStatus = "QUEUED"
	// DatasetStatusStarted means processing is in progress.
	DatasetStatusStarted DatasetStatus = "STARTED"
	// DatasetStatusFinished means processing finished successfully (the most common state).
	DatasetStatusFinished DatasetStatus = "FINISHED"
	// DatasetStatusFailed means an error occurred during processing.
	DatasetStatusFailed DatasetStatus = "FAILED"
	// DatasetStatusIndexing means derived records are being rebuilt after a metadata change.
	DatasetStatusIndexing DatasetStatus = "INDEXING"
	// DatasetStatusDeleted means the dataset has been logically deleted.
	DatasetStatusDeleted DatasetStatus = "DELETED"
)

// String returns the DatasetStatus as a string.
func (s DatasetStatus) String() string {
	return string(s)
}

// FormulaDatabase identifies a source database of molecular formulas (e.g., HMDB).
type FormulaDatabase struct {
	ID   int
	Name string
}

// Formula is a single molecular formula record from a source database.
// ExternalID is the identifier of the molecule within its source database.
type Formula struct {
	DBID       int
	ExternalID string
	SfID       int
	Name       string
	SumFormula string
}

// FormulaGroupMember links one source molecule into an aggregated formula group.
type FormulaGroupMember struct {
	DBID    int    `json:"db_id"`
	SubstID string `json:"subst_id"`
	Name    string `json:"name"`
}

// AggregateFormula groups all molecules sharing the same sum formula.
// Members replaces the positional db_ids/subst_ids/names arrays of the wire
// format: length equality across the three is enforced at construction.
type AggregateFormula struct {
	ID         int
	SumFormula string
	Members    MemberList
}

// NewAggregateFormula builds an AggregateFormula from parallel source columns.
// The three slices must have equal length; otherwise an error is returned.
func NewAggregateFormula(id int, sumFormula string, dbIDs []int, substIDs, names []string) (*AggregateFormula, error) {
	if len(dbIDs) != len(substIDs) || len(substIDs) != len(names) {
		return nil, exception.NewStoreErrorf("model",
			"aggregate formula %d (%s): mismatched member columns: db_ids=%d subst_ids=%d names=%d",
			id, sumFormula, len(dbIDs), len(substIDs), len(names))
	}
	members := make(MemberList, len(dbIDs))
	for i := range dbIDs {
		members[i] = FormulaGroupMember{DBID: dbIDs[i], SubstID: substIDs[i], Name: names[i]}
	}
	return &AggregateFormula{ID: id, SumFormula: sumFormula, Members: members}, nil
}

// Dataset describes one imaging acquisition: a grid of Rows x Cols spectra.
type Dataset struct {
	ID       int
	Name     string
	Filename string
	Rows     int
	Cols     int
	Status   DatasetStatus
	Metadata Document
}

// SpectrumCount returns the number of acquisition points in the dataset grid.
func (d *Dataset) SpectrumCount() int {
	return d.Rows * d.Cols
}

// Coordinate maps one spectrum index of a dataset to its (x, y) pixel position.
type Coordinate struct {
	DatasetID int
	Index     int
	X         int
	Y         int
}

// JobType describes a category of analysis work (e.g., formula extraction).
type JobType struct {
	Code        int
	Description string
}

// Job is one unit of analysis work over a formula and a dataset.
// TasksDone advances monotonically towards TasksTotal; State tracks the
// explicit lifecycle while Done remains the legacy boolean kept consistent
// with it (Done is true exactly when State is DONE).
type Job struct {
	ID         int64
	Type       int
	FormulaID  int
	DatasetID  int
	Done       bool
	State      JobState
	Status     string
	TasksDone  int
	TasksTotal int
	Start      time.Time
	Finish     *time.Time
	Version    int
}

// NewJob creates a Job in the PENDING state with zero progress.
func NewJob(jobType, formulaID, datasetID, tasksTotal int) *Job {
	return &Job{
		Type:       jobType,
		FormulaID:  formulaID,
		DatasetID:  datasetID,
		Done:       false,
		State:      JobStatePending,
		TasksDone:  0,
		TasksTotal: tasksTotal,
		Start:      time.Now(),
	}
}

// Snapshot returns an immutable view of the job's progress fields.
func (j *Job) Snapshot() JobSnapshot {
	return JobSnapshot{
		ID:         j.ID,
		Done:       j.Done,
		State:      j.State,
		Status:     j.Status,
		TasksDone:  j.TasksDone,
		TasksTotal: j.TasksTotal,
		Start:      j.Start,
		Finish:     j.Finish,
	}
}

// JobSnapshot is a read-only view of a job's progress, returned by status queries.
type JobSnapshot struct {
	ID         int64
	Done       bool
	State      JobState
	Status     string
	TasksDone  int
	TasksTotal int
	Start      time.Time
	Finish     *time.Time
}

// DebugString returns a debug string representation of the snapshot.
func (s JobSnapshot) DebugString() string {
	finish := "nil"
	if s.Finish != nil {
		finish = s.Finish.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("&{ID:%d Done:%t State:%s Status:%s TasksDone:%d TasksTotal:%d Start:%s Finish:%s}",
		s.ID, s.Done, s.State, s.Status, s.TasksDone, s.TasksTotal, s.Start.Format(time.RFC3339Nano), finish)
}

// ResultDatum is one raw per-pixel sample produced by a job:
// the measured value for a given parameter, adduct and peak at one spectrum.
type ResultDatum struct {
	JobID    int64
	Param    int
	Adduct   int
	Peak     int
	Spectrum int
	Value    float64
}

// ResultStat is one aggregated statistics record produced by a job for a formula.
type ResultStat struct {
	JobID     int64
	FormulaID int
	Adduct    int
	Param     int
	Stats     StatsPayload
}

// PeakSample is one (m/z, intensity) pair of a predicted isotope pattern.
type PeakSample struct {
	Mz        float64 `json:"mz"`
	Intensity float64 `json:"int"`
}

// IsotopePattern holds the precomputed centroided peaks for one (sf_id, adduct) ion.
// Peaks replaces the positional peaks/ints arrays of the wire format: length
// equality is enforced at construction, and there is at most one pattern per ion.
type IsotopePattern struct {
	SfID   int
	Adduct int
	Peaks  PeakList
}

// NewIsotopePattern builds an IsotopePattern from parallel m/z and intensity columns.
// The two slices must have equal length; otherwise an error is returned.
func NewIsotopePattern(sfID, adduct int, mzs, ints []float64) (*IsotopePattern, error) {
	if len(mzs) != len(ints) {
		return nil, exception.NewStoreErrorf("model",
			"isotope pattern (sf_id=%d, adduct=%d): mismatched peak columns: peaks=%d ints=%d",
			sfID, adduct, len(mzs), len(ints))
	}
	peaks := make(PeakList, len(mzs))
	for i := range mzs {
		peaks[i] = PeakSample{Mz: mzs[i], Intensity: ints[i]}
	}
	return &IsotopePattern{SfID: sfID, Adduct: adduct, Peaks: peaks}, nil
}

// IonPeak is one flattened peak of an isotope pattern, used for m/z-ordered iteration.
type IonPeak struct {
	SfID      int
	Adduct    int
	PeakIndex int
	Mz        float64
}

// IonPeaks flattens a set of isotope patterns into individual peaks ordered by m/z.
func IonPeaks(patterns []*IsotopePattern) []IonPeak {
	var out []IonPeak
	for _, p := range patterns {
		for i, sample := range p.Peaks {
			out = append(out, IonPeak{SfID: p.SfID, Adduct: p.Adduct, PeakIndex: i, Mz: sample.Mz})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mz < out[j].Mz })
	return out
}

// CheckPatternUniqueness verifies that no (sf_id, adduct) combination appears twice.
func CheckPatternUniqueness(patterns []*IsotopePattern) error {
	type ion struct{ sfID, adduct int }
	seen := make(map[ion]struct{}, len(patterns))
	for _, p := range patterns {
		key := ion{p.SfID, p.Adduct}
		if _, ok := seen[key]; ok {
			return exception.NewStoreErrorf("model",
				"duplicate formula-adduct combination: sf_id=%d adduct=%d", p.SfID, p.Adduct)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// NewID generates a new unique identifier for non-numeric keys (e.g., worker identities).
func NewID() string {
	return uuid.NewString()
}
