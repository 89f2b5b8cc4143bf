package sql

import (
	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// --- Mapper functions ---

func fromDomainFormulaDatabase(db *model.FormulaDatabase) *FormulaDatabaseEntity {
	if db == nil {
		return nil
	}
	return &FormulaDatabaseEntity{
		ID:   db.ID,
		Name: db.Name,
	}
}

func toDomainFormulaDatabase(entity *FormulaDatabaseEntity) *model.FormulaDatabase {
	if entity == nil {
		return nil
	}
	return &model.FormulaDatabase{
		ID:   entity.ID,
		Name: entity.Name,
	}
}

func fromDomainFormula(f *model.Formula) *FormulaEntity {
	if f == nil {
		return nil
	}
	return &FormulaEntity{
		DBID:       f.DBID,
		ExternalID: f.ExternalID,
		SfID:       f.SfID,
		Name:       f.Name,
		SumFormula: f.SumFormula,
	}
}

func toDomainFormula(entity *FormulaEntity) *model.Formula {
	if entity == nil {
		return nil
	}
	return &model.Formula{
		DBID:       entity.DBID,
		ExternalID: entity.ExternalID,
		SfID:       entity.SfID,
		Name:       entity.Name,
		SumFormula: entity.SumFormula,
	}
}

// fromDomainAggregateFormula flattens the member structs back into the
// parallel column arrays of the persisted layout.
func fromDomainAggregateFormula(af *model.AggregateFormula) *AggregateFormulaEntity {
	if af == nil {
		return nil
	}
	entity := &AggregateFormulaEntity{
		ID:         af.ID,
		SumFormula: af.SumFormula,
		DBIDs:      make(model.IntList, len(af.Members)),
		SubstIDs:   make(model.StringList, len(af.Members)),
		Names:      make(model.StringList, len(af.Members)),
	}
	for i, m := range af.Members {
		entity.DBIDs[i] = m.DBID
		entity.SubstIDs[i] = m.SubstID
		entity.Names[i] = m.Name
	}
	return entity
}

func toDomainAggregateFormula(entity *AggregateFormulaEntity) (*model.AggregateFormula, error) {
	if entity == nil {
		return nil, nil
	}
	return model.NewAggregateFormula(entity.ID, entity.SumFormula, entity.DBIDs, entity.SubstIDs, entity.Names)
}

func fromDomainDataset(ds *model.Dataset) *DatasetEntity {
	if ds == nil {
		return nil
	}
	return &DatasetEntity{
		ID:       ds.ID,
		Name:     ds.Name,
		Filename: ds.Filename,
		Rows:     ds.Rows,
		Cols:     ds.Cols,
		Status:   ds.Status,
		Metadata: ds.Metadata,
	}
}

func toDomainDataset(entity *DatasetEntity) *model.Dataset {
	if entity == nil {
		return nil
	}
	return &model.Dataset{
		ID:       entity.ID,
		Name:     entity.Name,
		Filename: entity.Filename,
		Rows:     entity.Rows,
		Cols:     entity.Cols,
		Status:   entity.Status,
		Metadata: entity.Metadata,
	}
}

func fromDomainCoordinate(c *model.Coordinate) *CoordinateEntity {
	if c == nil {
		return nil
	}
	return &CoordinateEntity{
		DatasetID: c.DatasetID,
		Index:     c.Index,
		X:         c.X,
		Y:         c.Y,
	}
}

func toDomainCoordinate(entity *CoordinateEntity) *model.Coordinate {
	if entity == nil {
		return nil
	}
	return &model.Coordinate{
		DatasetID: entity.DatasetID,
		Index:     entity.Index,
		X:         entity.X,
		Y:         entity.Y,
	}
}

func fromDomainJobType(jt *model.JobType) *JobTypeEntity {
	if jt == nil {
		return nil
	}
	return &JobTypeEntity{
		Code:        jt.Code,
		Description: jt.Description,
	}
}

func fromDomainJob(j *model.Job) *JobEntity {
	if j == nil {
		return nil
	}
	return &JobEntity{
		ID:         j.ID,
		Type:       j.Type,
		FormulaID:  j.FormulaID,
		DatasetID:  j.DatasetID,
		Done:       j.Done,
		State:      j.State,
		Status:     j.Status,
		TasksDone:  j.TasksDone,
		TasksTotal: j.TasksTotal,
		Start:      j.Start,
		Finish:     j.Finish,
		Version:    j.Version,
	}
}

func toDomainJob(entity *JobEntity) *model.Job {
	if entity == nil {
		return nil
	}
	return &model.Job{
		ID:         entity.ID,
		Type:       entity.Type,
		FormulaID:  entity.FormulaID,
		DatasetID:  entity.DatasetID,
		Done:       entity.Done,
		State:      entity.State,
		Status:     entity.Status,
		TasksDone:  entity.TasksDone,
		TasksTotal: entity.TasksTotal,
		Start:      entity.Start,
		Finish:     entity.Finish,
		Version:    entity.Version,
	}
}

func fromDomainResultDatum(d *model.ResultDatum) *ResultDatumEntity {
	if d == nil {
		return nil
	}
	return &ResultDatumEntity{
		JobID:    d.JobID,
		Param:    d.Param,
		Adduct:   d.Adduct,
		Peak:     d.Peak,
		Spectrum: d.Spectrum,
		Value:    d.Value,
	}
}

func toDomainResultDatum(entity *ResultDatumEntity) *model.ResultDatum {
	if entity == nil {
		return nil
	}
	return &model.ResultDatum{
		JobID:    entity.JobID,
		Param:    entity.Param,
		Adduct:   entity.Adduct,
		Peak:     entity.Peak,
		Spectrum: entity.Spectrum,
		Value:    entity.Value,
	}
}

func fromDomainResultStat(s *model.ResultStat) *ResultStatEntity {
	if s == nil {
		return nil
	}
	return &ResultStatEntity{
		JobID:     s.JobID,
		FormulaID: s.FormulaID,
		Adduct:    s.Adduct,
		Param:     s.Param,
		Stats:     s.Stats,
	}
}

func toDomainResultStat(entity *ResultStatEntity) *model.ResultStat {
	if entity == nil {
		return nil
	}
	return &model.ResultStat{
		JobID:     entity.JobID,
		FormulaID: entity.FormulaID,
		Adduct:    entity.Adduct,
		Param:     entity.Param,
		Stats:     entity.Stats,
	}
}

// fromDomainIsotopePattern flattens the peak samples back into the parallel
// peaks/ints column arrays of the persisted layout.
func fromDomainIsotopePattern(p *model.IsotopePattern) *IsotopePatternEntity {
	if p == nil {
		return nil
	}
	entity := &IsotopePatternEntity{
		SfID:   p.SfID,
		Adduct: p.Adduct,
		Peaks:  make(model.FloatList, len(p.Peaks)),
		Ints:   make(model.FloatList, len(p.Peaks)),
	}
	for i, sample := range p.Peaks {
		entity.Peaks[i] = sample.Mz
		entity.Ints[i] = sample.Intensity
	}
	return entity
}

func toDomainIsotopePattern(entity *IsotopePatternEntity) (*model.IsotopePattern, error) {
	if entity == nil {
		return nil, nil
	}
	return model.NewIsotopePattern(entity.SfID, entity.Adduct, entity.Peaks, entity.Ints)
}
