package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// Target identifies the reference table a bulk load writes into.
type Target int

const (
	TargetFormulaDatabases Target = iota
	TargetFormulas
	TargetAggregateFormulas
	TargetDatasets
	TargetCoordinates
	TargetJobTypes
	TargetPatterns
)

var targetTables = map[Target]string{
	TargetFormulaDatabases:  "formula_dbs",
	TargetFormulas:          "formulas",
	TargetAggregateFormulas: "agg_formulas",
	TargetDatasets:          "datasets",
	TargetCoordinates:       "coordinates",
	TargetJobTypes:          "job_types",
	TargetPatterns:          "mz_peaks",
}

// TableName returns the table the target loads into.
func (t Target) TableName() string {
	if name, ok := targetTables[t]; ok {
		return name
	}
	return "unknown"
}

func (t Target) String() string {
	return t.TableName()
}

// ParseTarget resolves a table name to its load target.
func ParseTarget(name string) (Target, error) {
	for t, table := range targetTables {
		if table == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown load target %q", name)
}

// --- field parsing helpers ---

func parseIntField(fields []string, idx, line int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(fields[idx]))
	if err != nil {
		return 0, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not an integer", idx+1, fields[idx])}
	}
	return v, nil
}

func parseFloatField(fields []string, idx, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
	if err != nil {
		return 0, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not a number", idx+1, fields[idx])}
	}
	return v, nil
}

// normalizeArray accepts JSON arrays ("[1,2]") and brace-style array literals
// ("{1,2}") and returns JSON form.
func normalizeArray(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "["):
		return s, true
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return "[" + s[1:len(s)-1] + "]", true
	default:
		return "", false
	}
}

func parseIntArrayField(fields []string, idx, line int) ([]int, error) {
	raw, ok := normalizeArray(fields[idx])
	if !ok {
		return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not an array", idx+1, fields[idx])}
	}
	var out []int
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not an integer array", idx+1, fields[idx])}
	}
	return out, nil
}

func parseFloatArrayField(fields []string, idx, line int) ([]float64, error) {
	raw, ok := normalizeArray(fields[idx])
	if !ok {
		return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not an array", idx+1, fields[idx])}
	}
	var out []float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not a numeric array", idx+1, fields[idx])}
	}
	return out, nil
}

func parseStringArrayField(fields []string, idx, line int) ([]string, error) {
	s := strings.TrimSpace(fields[idx])
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not a string array", idx+1, fields[idx])}
		}
		return out, nil
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		inner := s[1 : len(s)-1]
		if inner == "" {
			return []string{}, nil
		}
		parts := strings.Split(inner, ",")
		out := make([]string, len(parts))
		for i, p := range parts {
			out[i] = strings.Trim(strings.TrimSpace(p), `"`)
		}
		return out, nil
	}
	return nil, &RecordError{Line: line, Message: fmt.Sprintf("field %d: %q is not an array", idx+1, fields[idx])}
}

func checkArity(fields []string, want, line int) error {
	if len(fields) != want {
		return &RecordError{Line: line, Message: fmt.Sprintf("expected %d fields, got %d", want, len(fields))}
	}
	return nil
}

// --- row converters, one per target ---

func rowToFormulaDatabase(fields []string, line int) (*model.FormulaDatabase, error) {
	if err := checkArity(fields, 2, line); err != nil {
		return nil, err
	}
	id, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	return &model.FormulaDatabase{ID: id, Name: fields[1]}, nil
}

func rowToFormula(fields []string, line int) (*model.Formula, error) {
	if err := checkArity(fields, 5, line); err != nil {
		return nil, err
	}
	dbID, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	sfID, err := parseIntField(fields, 2, line)
	if err != nil {
		return nil, err
	}
	return &model.Formula{
		DBID:       dbID,
		ExternalID: fields[1],
		SfID:       sfID,
		Name:       fields[3],
		SumFormula: fields[4],
	}, nil
}

func rowToAggregateFormula(fields []string, line int) (*model.AggregateFormula, error) {
	if err := checkArity(fields, 5, line); err != nil {
		return nil, err
	}
	id, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	dbIDs, err := parseIntArrayField(fields, 2, line)
	if err != nil {
		return nil, err
	}
	substIDs, err := parseStringArrayField(fields, 3, line)
	if err != nil {
		return nil, err
	}
	names, err := parseStringArrayField(fields, 4, line)
	if err != nil {
		return nil, err
	}
	af, err := model.NewAggregateFormula(id, fields[1], dbIDs, substIDs, names)
	if err != nil {
		return nil, &RecordError{Line: line, Message: err.Error()}
	}
	return af, nil
}

func rowToDataset(fields []string, line int) (*model.Dataset, error) {
	if err := checkArity(fields, 7, line); err != nil {
		return nil, err
	}
	id, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	rows, err := parseIntField(fields, 3, line)
	if err != nil {
		return nil, err
	}
	cols, err := parseIntField(fields, 4, line)
	if err != nil {
		return nil, err
	}
	var metadata model.Document
	if raw := strings.TrimSpace(fields[6]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return nil, &RecordError{Line: line, Message: fmt.Sprintf("field 7: %q is not a JSON document", fields[6])}
		}
	}
	return &model.Dataset{
		ID:       id,
		Name:     fields[1],
		Filename: fields[2],
		Rows:     rows,
		Cols:     cols,
		Status:   model.DatasetStatus(fields[5]),
		Metadata: metadata,
	}, nil
}

func rowToCoordinate(fields []string, line int) (*model.Coordinate, error) {
	if err := checkArity(fields, 4, line); err != nil {
		return nil, err
	}
	datasetID, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	index, err := parseIntField(fields, 1, line)
	if err != nil {
		return nil, err
	}
	x, err := parseIntField(fields, 2, line)
	if err != nil {
		return nil, err
	}
	y, err := parseIntField(fields, 3, line)
	if err != nil {
		return nil, err
	}
	return &model.Coordinate{DatasetID: datasetID, Index: index, X: x, Y: y}, nil
}

func rowToJobType(fields []string, line int) (*model.JobType, error) {
	if err := checkArity(fields, 2, line); err != nil {
		return nil, err
	}
	code, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	return &model.JobType{Code: code, Description: fields[1]}, nil
}

func rowToIsotopePattern(fields []string, line int) (*model.IsotopePattern, error) {
	if err := checkArity(fields, 4, line); err != nil {
		return nil, err
	}
	sfID, err := parseIntField(fields, 0, line)
	if err != nil {
		return nil, err
	}
	adduct, err := parseIntField(fields, 1, line)
	if err != nil {
		return nil, err
	}
	mzs, err := parseFloatArrayField(fields, 2, line)
	if err != nil {
		return nil, err
	}
	ints, err := parseFloatArrayField(fields, 3, line)
	if err != nil {
		return nil, err
	}
	p, err := model.NewIsotopePattern(sfID, adduct, mzs, ints)
	if err != nil {
		return nil, &RecordError{Line: line, Message: err.Error()}
	}
	return p, nil
}
