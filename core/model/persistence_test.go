package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

type fittedThing struct {
	BaseEstimator
	Columns []string
}

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())
	e.SetFitted()
	assert.True(t, e.IsFitted())
	e.Reset()
	assert.False(t, e.IsFitted())
}

func TestSaveLoadWriter(t *testing.T) {
	in := &fittedThing{Columns: []string{"a", "b_na"}}
	in.SetFitted()

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(in, &buf))

	var out fittedThing
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.True(t, out.IsFitted())
	assert.Equal(t, in.Columns, out.Columns)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thing.gob")
	in := &fittedThing{Columns: []string{"x"}}
	in.SetFitted()

	require.NoError(t, SaveModel(in, path))

	var out fittedThing
	require.NoError(t, LoadModel(&out, path))
	assert.True(t, out.IsFitted())
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "parent escape", input: "../../etc/passwd", wantErr: true},
		{name: "leading parent", input: "../data/train.csv", wantErr: true},
		{name: "escape after clean", input: "models/../../a.gob", wantErr: true},
		{name: "dot segment", input: "models/./a.gob", want: filepath.Join("models", "a.gob")},
		{name: "inner parent resolved", input: "models/tmp/../a.gob", want: filepath.Join("models", "a.gob")},
		{name: "dots in file name", input: "data..v2.csv", want: "data..v2.csv"},
		{name: "dots in absolute name", input: "/tmp/a..b.json", want: filepath.Clean("/tmp/a..b.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPath(tt.input)
			if tt.wantErr {
				var valErr *errors.ValidationError
				assert.True(t, errors.As(err, &valErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	var out fittedThing
	err := LoadModel(&out, filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}
