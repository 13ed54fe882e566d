package frame

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		NewNumeric("price", []float64{10, math.NaN(), 30}),
		NewString("color", []string{"red", "", "blue"}, []bool{true, false, true}),
		NewBool("sold", []bool{true, false, true}),
	)
	require.NoError(t, err)
	return ds
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ds := sampleDataset(t)
		r, c := ds.Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 3, c)
		assert.Equal(t, []string{"price", "color", "sold"}, ds.Names())
	})

	t.Run("row mismatch", func(t *testing.T) {
		_, err := New(NewNumeric("a", []float64{1, 2}), NewNumeric("b", []float64{1}))
		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 1, dimErr.Got)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := New(NewNumeric("a", []float64{1}), NewNumeric("a", []float64{2}))
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})
}

func TestColumnNulls(t *testing.T) {
	ds := sampleDataset(t)

	price, ok := ds.Column("price")
	require.True(t, ok)
	assert.Equal(t, 1, price.NullCount())
	assert.True(t, price.IsNull(1))

	color, _ := ds.Column("color")
	assert.Equal(t, 1, color.NullCount())
	label, ok := color.Label(1)
	assert.False(t, ok)
	assert.Empty(t, label)

	cat := NewCategorical("c", []int{0, 5, -1, 1}, []string{"a", "b"}, true)
	assert.Equal(t, []int{0, MissingCode, MissingCode, 1}, cat.Codes())
	assert.True(t, math.IsNaN(cat.Float(1)))
}

func TestDistinctLabels(t *testing.T) {
	s := NewString("s", []string{"b", "a", "b", "c"}, nil)
	assert.Equal(t, []string{"a", "b", "c"}, s.DistinctLabels())

	n := NewNumeric("n", []float64{10, 2, math.NaN(), 2})
	assert.Equal(t, []string{"2", "10"}, n.DistinctLabels())

	d1 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	d := NewDatetime("d", []time.Time{d1, d0}, nil)
	labels := d.DistinctLabels()
	require.Len(t, labels, 2)
	assert.True(t, strings.HasPrefix(labels[0], "2022-12-31"))
}

func TestSetDropSelect(t *testing.T) {
	ds := sampleDataset(t)

	require.NoError(t, ds.Set(NewNumeric("price", []float64{1, 2, 3})))
	assert.Equal(t, []string{"price", "color", "sold"}, ds.Names(), "replace keeps position")

	require.NoError(t, ds.Set(NewNumeric("qty", []float64{4, 5, 6})))
	assert.Equal(t, "qty", ds.Names()[3])

	assert.Error(t, ds.Set(NewNumeric("bad", []float64{1})))

	require.NoError(t, ds.Drop("color", "sold"))
	assert.Equal(t, []string{"price", "qty"}, ds.Names())

	err := ds.Drop("missing")
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))

	sel, err := ds.Select("qty")
	require.NoError(t, err)
	assert.Equal(t, []string{"qty"}, sel.Names())
}

func TestCloneIsIndependent(t *testing.T) {
	ds := sampleDataset(t)
	cp := ds.Clone()
	require.NoError(t, cp.Set(NewNumeric("price", []float64{0, 0, 0})))

	price, _ := ds.Column("price")
	assert.Equal(t, 10.0, price.Float(0))
}

func TestSliceRows(t *testing.T) {
	ds := sampleDataset(t)

	head, err := ds.SliceRows(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, head.NumRows())

	tail, err := ds.SliceRows(2, 3)
	require.NoError(t, err)
	c, _ := tail.Column("color")
	label, _ := c.Label(0)
	assert.Equal(t, "blue", label)

	_, err = ds.SliceRows(2, 5)
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	a := MustNew(NewNumeric("a", []float64{1, 2}))
	b := MustNew(NewNumeric("b", []float64{3, 4}))
	empty := MustNew()

	out, err := Concat(a, empty, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Names())

	_, err = Concat(a, MustNew(NewNumeric("c", []float64{1})))
	assert.Error(t, err)
}

func TestToDense(t *testing.T) {
	ds := MustNew(
		NewNumeric("x", []float64{1.5, 2.5}),
		NewBool("flag", []bool{true, false}),
	)
	m, err := ds.ToDense()
	require.NoError(t, err)
	assert.Equal(t, 1.5, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(1, 1))

	_, err = sampleDataset(t).ToDense()
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestCSVRoundTrip(t *testing.T) {
	in := "id,name,score,active\n1,alice,3.5,true\n2,,NA,false\n3,carol,1,TRUE\n"

	ds, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score", "active"}, ds.Names())

	kinds := map[string]Kind{}
	for _, c := range ds.Columns() {
		kinds[c.Name()] = c.Kind()
	}
	assert.Equal(t, map[string]Kind{"id": Numeric, "name": String, "score": Numeric, "active": Bool}, kinds)

	score, _ := ds.Column("score")
	assert.True(t, score.IsNull(1))
	name, _ := ds.Column("name")
	assert.True(t, name.IsNull(1))

	var buf bytes.Buffer
	require.NoError(t, ds.WriteCSV(&buf))
	assert.Equal(t, "id,name,score,active\n1,alice,3.5,true\n2,,,false\n3,carol,1,true\n", buf.String())
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
