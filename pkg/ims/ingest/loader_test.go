package ingest_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/infrastructure/repository/inmemory"
	"github.com/molspect/imsbase/pkg/ims/ingest"
)

func newTestLoader(store repository.Store) *ingest.Loader {
	return ingest.NewLoader(store, nil, config.IngestConfig{Delimiter: ";", Quote: "@"})
}

func TestParseTarget(t *testing.T) {
	target, err := ingest.ParseTarget("formula_dbs")
	require.NoError(t, err)
	assert.Equal(t, ingest.TargetFormulaDatabases, target)

	target, err = ingest.ParseTarget("mz_peaks")
	require.NoError(t, err)
	assert.Equal(t, ingest.TargetPatterns, target)

	_, err = ingest.ParseTarget("no_such_table")
	require.Error(t, err)
}

func TestLoader_LoadFormulaDatabases(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	count, err := loader.Load(ctx, ingest.TargetFormulaDatabases, strings.NewReader("1;HMDB\n2;ChEBI\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	db, err := store.FindFormulaDatabaseByName(ctx, "HMDB")
	require.NoError(t, err)
	assert.Equal(t, 1, db.ID)
}

func TestLoader_LoadFormulas(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	input := "1;HMDB0001;10;glucose;C6H12O6\n2;CHEBI0002;10;fructose;C6H12O6\n1;HMDB0003;11;alanine;C3H7NO2\n"
	count, err := loader.Load(ctx, ingest.TargetFormulas, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	formulas, err := store.FindFormulasBySumFormula(ctx, "C6H12O6")
	require.NoError(t, err)
	require.Len(t, formulas, 2)
	assert.Equal(t, "HMDB0001", formulas[0].ExternalID)
	assert.Equal(t, "fructose", formulas[1].Name)
}

func TestLoader_LoadReplacesPriorContents(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	_, err := loader.Load(ctx, ingest.TargetFormulaDatabases, strings.NewReader("1;HMDB\n"))
	require.NoError(t, err)

	count, err := loader.Load(ctx, ingest.TargetFormulaDatabases, strings.NewReader("2;ChEBI\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.FindFormulaDatabaseByName(ctx, "HMDB")
	assert.ErrorIs(t, err, repository.ErrFormulaDatabaseNotFound)

	db, err := store.FindFormulaDatabaseByName(ctx, "ChEBI")
	require.NoError(t, err)
	assert.Equal(t, 2, db.ID)
}

func TestLoader_MalformedRecordAbortsWholeLoad(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	count, err := loader.Load(ctx, ingest.TargetFormulaDatabases,
		strings.NewReader("1;HMDB\nnot-a-number;ChEBI\n3;LipidMaps\n"))
	require.Error(t, err)
	assert.Equal(t, 0, count)

	// Nothing was committed, including the rows before the malformed one.
	_, err = store.FindFormulaDatabaseByName(ctx, "HMDB")
	assert.ErrorIs(t, err, repository.ErrFormulaDatabaseNotFound)
}

func TestLoader_MalformedRecordReportsStreamLine(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)

	// The bad record sits on line 4 of the stream, after a blank line.
	_, err := loader.Load(context.Background(), ingest.TargetFormulaDatabases,
		strings.NewReader("1;HMDB\n\n2;ChEBI\nnot-a-number;LipidMaps\n"))
	require.Error(t, err)
	var recordErr *ingest.RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 4, recordErr.Line)
}

func TestLoader_WrongArityAborts(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)

	_, err := loader.Load(context.Background(), ingest.TargetCoordinates,
		strings.NewReader("1;0;10;20\n1;1;11\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 4 fields")
}

func TestLoader_LoadAggregateFormulas(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	// String-array fields accept both JSON and brace-style literals.
	input := "1;C6H12O6;[1,2];{HMDB0001,CHEBI0002};{glucose,fructose}\n"

	count, err := loader.Load(ctx, ingest.TargetAggregateFormulas, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	af, err := store.FindAggregateFormulaByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "C6H12O6", af.SumFormula)
	require.Len(t, af.Members, 2)
	assert.Equal(t, "HMDB0001", af.Members[0].SubstID)
	assert.Equal(t, "fructose", af.Members[1].Name)
}

func TestLoader_AggregateFormulaMismatchedArraysAborts(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)

	_, err := loader.Load(context.Background(), ingest.TargetAggregateFormulas,
		strings.NewReader("1;C6H12O6;[1,2];{HMDB0001};{glucose,fructose}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched member columns")
}

func TestLoader_LoadPatterns(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	count, err := loader.Load(ctx, ingest.TargetPatterns,
		strings.NewReader("10;1;{100.5,101.5};{1.0,0.3}\n10;2;[102.5];[1.0]\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	p, err := store.FindPattern(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, p.Peaks, 2)
	assert.Equal(t, 100.5, p.Peaks[0].Mz)
}

func TestLoader_DuplicatePatternAborts(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	_, err := loader.Load(ctx, ingest.TargetPatterns,
		strings.NewReader("10;1;{100.5};{1.0}\n10;1;{200.5};{0.5}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate formula-adduct combination")

	_, err = store.FindPattern(ctx, 10, 1)
	assert.ErrorIs(t, err, repository.ErrPatternNotFound)
}

func TestLoader_LoadDatasetsWithMetadata(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	loader := newTestLoader(store)
	ctx := context.Background()

	input := "1;brain slice;brain.imzML;40;30;FINISHED;@{\"polarity\":\"positive\"}@\n"
	count, err := loader.Load(ctx, ingest.TargetDatasets, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ds, err := store.FindDatasetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "brain slice", ds.Name)
	assert.Equal(t, 1200, ds.SpectrumCount())
	assert.Equal(t, "positive", ds.Metadata["polarity"])
}
