package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

func TestProcessDatasetResponseScenario(t *testing.T) {
	logger := captureLogs(t)
	ds := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3}),
		frame.NewString("y", []string{"a", "b", "a"}, nil),
	)

	res, err := ProcessDataset(ds, WithResponse("y"))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 0}, res.Response)
	assert.False(t, res.Features.Has("y"))
	assert.Equal(t, []string{"x"}, res.Features.Names())
	assert.True(t, logger.ContainsField(log.ErrorTypeKey, "DataConversionWarning"), "string response is reported as converted")
}

func TestProcessDatasetNumericResponse(t *testing.T) {
	logger := captureLogs(t)
	ds := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2}),
		frame.NewNumeric("price", []float64{10.5, 20.5}),
	)
	res, err := ProcessDataset(ds, WithResponse("price"))
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 20.5}, res.Response)
	assert.False(t, logger.ContainsField(log.ErrorTypeKey, "DataConversionWarning"))
}

func TestProcessDatasetResponseMissingCode(t *testing.T) {
	ds := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3}),
		frame.NewString("y", []string{"b", "", "a"}, []bool{true, false, true}),
	)
	res, err := ProcessDataset(ds, WithResponse("y"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, 0}, res.Response)
}

func TestProcessDatasetFullPipeline(t *testing.T) {
	ds := frame.MustNew(
		frame.NewString("id", []string{"r1", "r2", "r3", "r4"}, nil),
		frame.NewNumeric("age", []float64{30, math.NaN(), 50, 40}),
		frame.NewString("city", []string{"tokyo", "osaka", "tokyo", ""}, []bool{true, true, true, false}),
		frame.NewString("model", []string{"m1", "m2", "m3", "m4"}, nil),
		frame.NewNumeric("noise", []float64{9, 9, 9, 9}),
		frame.NewNumeric("target", []float64{1, 0, 1, 0}),
	)

	res, err := ProcessDataset(ds,
		WithResponse("target"),
		WithSkip("noise"),
		WithIgnore("id"),
		WithMaxCategories(3),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"id",
		"age", "model", "age_na",
		"city_osaka", "city_tokyo", "city_nan",
	}, res.Features.Names())

	// ignore 列は変換されない
	assert.Equal(t, frame.String, column(t, res.Features, "id").Kind())
	assert.Equal(t, []float64{30, 40, 50, 40}, column(t, res.Features, "age").Floats())
	assert.Equal(t, []float64{1, 2, 3, 4}, column(t, res.Features, "model").Floats())
	assert.Equal(t, []float64{0, 0, 0, 1}, column(t, res.Features, "city_nan").Floats())
	assert.Equal(t, ImputationRecord{"age": 40}, res.Imputation)
	assert.Equal(t, []float64{1, 0, 1, 0}, res.Response)

	// 入力は変更されない
	assert.Equal(t, 6, ds.NumCols())
	assert.True(t, column(t, ds, "age").IsNull(1))

	numeric, err := res.Features.Select(res.Features.Names()[1:]...)
	require.NoError(t, err)
	_, err = numeric.ToDense()
	assert.NoError(t, err)
}

func TestProcessDatasetNAPruning(t *testing.T) {
	build := func() *frame.Dataset {
		return frame.MustNew(
			frame.NewNumeric("a", []float64{1, math.NaN(), 3}),
			frame.NewNumeric("b", []float64{math.NaN(), 5, 6}),
		)
	}

	t.Run("empty record keeps every _na column", func(t *testing.T) {
		res, err := ProcessDataset(build())
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "a_na", "b_na"}, res.Features.Names())
	})

	t.Run("non-empty record drops _na of newly added keys", func(t *testing.T) {
		record := ImputationRecord{"a": 0}
		res, err := ProcessDataset(build(), WithImputation(record))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "a_na"}, res.Features.Names())
		assert.Equal(t, []float64{1, 0, 3}, column(t, res.Features, "a").Floats())
		assert.Equal(t, []float64{5.5, 5, 6}, column(t, res.Features, "b").Floats())
		assert.Equal(t, ImputationRecord{"a": 0, "b": 5.5}, record, "record is extended in place")
	})
}

func TestProcessDatasetFreshRecordPerCall(t *testing.T) {
	first, err := ProcessDataset(frame.MustNew(frame.NewNumeric("a", []float64{math.NaN(), 1})))
	require.NoError(t, err)
	second, err := ProcessDataset(frame.MustNew(frame.NewNumeric("b", []float64{math.NaN(), 1})))
	require.NoError(t, err)

	assert.Equal(t, ImputationRecord{"a": 1}, first.Imputation)
	assert.Equal(t, ImputationRecord{"b": 1}, second.Imputation)
	assert.Nil(t, first.Response)
}

func TestProcessDatasetHook(t *testing.T) {
	ds := frame.MustNew(frame.NewNumeric("x", []float64{1, 2}))

	t.Run("mutates before built-in steps", func(t *testing.T) {
		res, err := ProcessDataset(ds, WithPreprocess(func(work *frame.Dataset) error {
			return work.Set(frame.NewString("label", []string{"p", "q"}, nil))
		}))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2}, column(t, res.Features, "label").Floats())
	})

	t.Run("error aborts", func(t *testing.T) {
		_, err := ProcessDataset(ds, WithPreprocess(func(*frame.Dataset) error {
			return errors.New("boom")
		}))
		var modelErr *errors.ModelError
		require.True(t, errors.As(err, &modelErr))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		_, err := ProcessDataset(ds, WithPreprocess(func(*frame.Dataset) error {
			panic("hook exploded")
		}))
		var panicErr *errors.PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, "hook exploded", panicErr.PanicValue)
	})
}

func TestProcessDatasetValidation(t *testing.T) {
	ds := frame.MustNew(frame.NewNumeric("x", []float64{1}))

	tests := []struct {
		name string
		opt  Option
	}{
		{"unknown response", WithResponse("y")},
		{"unknown skip", WithSkip("nope")},
		{"unknown ignore", WithIgnore("nope")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessDataset(ds, tt.opt)
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}

func TestProcessDatasetLogger(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	ds := frame.MustNew(frame.NewNumeric("x", []float64{1, 2}))

	_, err := ProcessDataset(ds, WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("dataset processed"))
	assert.True(t, logger.ContainsField(log.SamplesKey, 2.0))
}

func TestSplitRows(t *testing.T) {
	ds := frame.MustNew(frame.NewNumeric("x", []float64{1, 2, 3}))

	head, tail, err := SplitRows(ds, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, column(t, head, "x").Floats())
	assert.Equal(t, []float64{3}, column(t, tail, "x").Floats())

	head, tail, err = SplitRows(ds, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, head.NumRows())
	assert.Equal(t, 3, tail.NumRows())

	_, _, err = SplitRows(ds, 4)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}
