package preprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

func TestNumericalizeColumn(t *testing.T) {
	tests := []struct {
		name          string
		maxCategories int
		wantNumeric   bool
	}{
		{"no limit", NoMaxCategories, true},
		{"above limit", 1, true},
		{"at limit", 2, false},
		{"below limit", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := frame.MustNew(frame.NewString("s", []string{"b", "a", ""}, []bool{true, true, false}))
			require.NoError(t, NumericalizeColumn(ds, "s", tt.maxCategories))

			c := column(t, ds, "s")
			if !tt.wantNumeric {
				assert.Equal(t, frame.String, c.Kind())
				return
			}
			assert.Equal(t, frame.Numeric, c.Kind())
			assert.Equal(t, []float64{2, 1, 0}, c.Floats(), "code+1 with 0 for missing")
		})
	}
}

func TestNumericalizeColumnCategoricalAndDatetime(t *testing.T) {
	logger := captureLogs(t)
	d0 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := frame.MustNew(
		frame.NewCategorical("c", []int{1, 0, frame.MissingCode}, []string{"z", "a"}, true),
		frame.NewDatetime("d", []time.Time{d0, d1, {}}, []bool{true, true, false}),
		frame.NewNumeric("n", []float64{1, 2, 3}),
	)

	for _, name := range ds.Names() {
		require.NoError(t, NumericalizeColumn(ds, name, NoMaxCategories))
	}

	assert.Equal(t, []float64{2, 1, 0}, column(t, ds, "c").Floats(), "categorical keeps its category order")
	assert.Equal(t, []float64{2, 1, 0}, column(t, ds, "d").Floats(), "datetime categories are chronological")
	assert.Equal(t, []float64{1, 2, 3}, column(t, ds, "n").Floats())
	assert.True(t, logger.ContainsField(log.ErrorTypeKey, "DataConversionWarning"))
	assert.True(t, logger.ContainsMessage("column 'd' converted from"))

	err := NumericalizeColumn(ds, "missing", NoMaxCategories)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestOneHot(t *testing.T) {
	ds := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3}),
		frame.NewString("color", []string{"red", "blue", ""}, []bool{true, true, false}),
		frame.NewBool("flag", []bool{true, false, true}),
		frame.NewCategorical("size", []int{0, 1, 0}, []string{"S", "M"}, true),
	)

	out, err := OneHot(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"x", "flag",
		"color_blue", "color_red", "color_nan",
		"size_S", "size_M", "size_nan",
	}, out.Names())
	assert.Equal(t, []float64{0, 1, 0}, column(t, out, "color_blue").Floats())
	assert.Equal(t, []float64{1, 0, 0}, column(t, out, "color_red").Floats())
	assert.Equal(t, []float64{0, 0, 1}, column(t, out, "color_nan").Floats())
	assert.Equal(t, []float64{0, 0, 0}, column(t, out, "size_nan").Floats())

	_, err = out.ToDense()
	assert.NoError(t, err)
}

func TestOneHotNameCollision(t *testing.T) {
	ds := frame.MustNew(
		frame.NewNumeric("c_a", []float64{1}),
		frame.NewString("c", []string{"a"}, nil),
	)
	_, err := OneHot(ds)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}
