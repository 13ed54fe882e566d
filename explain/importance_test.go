package explain

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

const eps = 1e-9

// sampleTree は2回分割する5ノードの木
//
//	0: f[split]  imp=0.5  w=10
//	├ 1: leaf    imp=0    w=4
//	└ 2: f[next] imp=0.48 w=6
//	  ├ 3: leaf  imp=0    w=3
//	  └ 4: leaf  imp=0.4  w=3
func sampleTree(split, next int) *DecisionTree {
	return &DecisionTree{
		ChildrenLeft:         []int{1, Undefined, 3, Undefined, Undefined},
		ChildrenRight:        []int{2, Undefined, 4, Undefined, Undefined},
		Feature:              []int{split, Undefined, next, Undefined, Undefined},
		Threshold:            []float64{1.5, Undefined, 0.5, Undefined, Undefined},
		Impurity:             []float64{0.5, 0, 0.48, 0, 0.4},
		WeightedNNodeSamples: []float64{10, 4, 6, 3, 3},
		NFeatures:            3,
	}
}

func leafOnly(weight float64) *DecisionTree {
	return &DecisionTree{
		ChildrenLeft:         []int{Undefined},
		ChildrenRight:        []int{Undefined},
		Feature:              []int{Undefined},
		Impurity:             []float64{0.3},
		WeightedNNodeSamples: []float64{weight},
		NFeatures:            2,
	}
}

func captureLogs(t *testing.T) *log.TestLogger {
	t.Helper()
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() {
		_ = log.SetupLoggerWithWriter("info", io.Discard, false)
	})
	return provider.Logger()
}

func TestTreeFeatureImportance(t *testing.T) {
	tree := sampleTree(0, 1)

	raw, err := TreeFeatureImportance(tree, false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.212, 0.168, 0}, raw, eps)

	norm, err := TreeFeatureImportance(tree, true)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.212 / 0.38, 0.168 / 0.38, 0}, norm, eps)
}

func TestTreeFeatureImportanceTelescoping(t *testing.T) {
	tree := sampleTree(0, 1)
	raw, err := TreeFeatureImportance(tree, false)
	require.NoError(t, err)

	leaves := 0.0
	for n := range tree.Feature {
		if tree.IsLeaf(n) {
			leaves += tree.Impurity[n] * tree.WeightedNNodeSamples[n]
		}
	}
	want := (tree.Impurity[0]*tree.WeightedNNodeSamples[0] - leaves) / tree.WeightedNNodeSamples[0]

	sum := 0.0
	for _, v := range raw {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, want, sum, eps)
}

func TestTreeFeatureImportanceSharedFeature(t *testing.T) {
	raw, err := TreeFeatureImportance(sampleTree(2, 2), false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0.38}, raw, eps)
}

func TestTreeFeatureImportanceZeroVector(t *testing.T) {
	imp, err := TreeFeatureImportance(leafOnly(5), true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, imp)
}

func TestTreeFeatureImportanceDegenerate(t *testing.T) {
	logger := captureLogs(t)

	for _, w := range []float64{0, -1} {
		imp, err := TreeFeatureImportance(leafOnly(w), true)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, imp)
	}
	assert.True(t, logger.ContainsField(log.ErrorTypeKey, "DegenerateImportanceWarning"))
}

func TestTreeFeatureImportanceInvalid(t *testing.T) {
	t.Run("child out of range", func(t *testing.T) {
		tree := sampleTree(0, 1)
		tree.ChildrenRight[2] = 9
		_, err := TreeFeatureImportance(tree, true)
		var treeErr *errors.InvalidTreeError
		require.True(t, errors.As(err, &treeErr))
		assert.Equal(t, 2, treeErr.Node)
		assert.Equal(t, "children_right", treeErr.Field)
	})

	t.Run("negative child on split", func(t *testing.T) {
		tree := sampleTree(0, 1)
		tree.ChildrenLeft[0] = -1
		_, err := TreeFeatureImportance(tree, true)
		var treeErr *errors.InvalidTreeError
		assert.True(t, errors.As(err, &treeErr))
	})

	t.Run("child points back to an ancestor", func(t *testing.T) {
		tree := sampleTree(0, 1)
		tree.ChildrenLeft[2] = 0
		_, err := TreeFeatureImportance(tree, true)
		var treeErr *errors.InvalidTreeError
		require.True(t, errors.As(err, &treeErr))
		assert.Equal(t, 2, treeErr.Node)
		assert.Contains(t, treeErr.Reason, "must come after their parent")
	})

	t.Run("feature out of range", func(t *testing.T) {
		tree := sampleTree(0, 3)
		_, err := TreeFeatureImportance(tree, true)
		var treeErr *errors.InvalidTreeError
		require.True(t, errors.As(err, &treeErr))
		assert.Equal(t, "feature", treeErr.Field)
	})

	t.Run("length mismatch", func(t *testing.T) {
		tree := sampleTree(0, 1)
		tree.Impurity = tree.Impurity[:4]
		_, err := TreeFeatureImportance(tree, true)
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := TreeFeatureImportance(&DecisionTree{NFeatures: 1}, true)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("NaN impurity", func(t *testing.T) {
		tree := sampleTree(0, 1)
		tree.Impurity[3] = math.NaN()
		_, err := TreeFeatureImportance(tree, true)
		var numErr *errors.NumericalInstabilityError
		assert.True(t, errors.As(err, &numErr))
	})
}

func TestEnsembleSingleTreeEqualsTree(t *testing.T) {
	tree := sampleTree(0, 1)
	ens, err := NewEnsemble([]*DecisionTree{tree}, nil)
	require.NoError(t, err)

	for _, normalize := range []bool{true, false} {
		want, err := TreeFeatureImportance(tree, normalize)
		require.NoError(t, err)
		got, err := ens.FeatureImportance(normalize)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, eps)
	}
}

func TestEnsembleFeatureImportance(t *testing.T) {
	ens, err := NewEnsemble([]*DecisionTree{sampleTree(0, 1), sampleTree(2, 0)}, []string{"a", "b", "c"})
	require.NoError(t, err)

	imp, err := EnsembleFeatureImportance(ens, true)
	require.NoError(t, err)

	hi, lo := 0.212/0.38, 0.168/0.38
	assert.InDeltaSlice(t, []float64{(hi + lo) / 2, lo / 2, hi / 2}, imp, eps)
}

func TestEnsembleFeatureImportanceParallelMatchesSequential(t *testing.T) {
	var trees []*DecisionTree
	for i := 0; i < 3*parallelThreshold; i++ {
		trees = append(trees, sampleTree(i%3, (i+1)%3))
	}
	ens, err := NewEnsemble(trees, nil)
	require.NoError(t, err)

	got, err := ens.FeatureImportance(false)
	require.NoError(t, err)

	want := make([]float64, 3)
	for _, tree := range trees {
		imp, err := TreeFeatureImportance(tree, false)
		require.NoError(t, err)
		for j := range want {
			want[j] += imp[j] / float64(len(trees))
		}
	}
	assert.InDeltaSlice(t, want, got, eps)
}

func TestEnsembleErrors(t *testing.T) {
	_, err := NewEnsemble(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = EnsembleFeatureImportance(&Ensemble{NFeatures: 3}, true)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	other := sampleTree(0, 1)
	other.NFeatures = 4
	_, err = EnsembleFeatureImportance(&Ensemble{Trees: []*DecisionTree{sampleTree(0, 1), other}, NFeatures: 3}, true)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	bad := sampleTree(0, 1)
	bad.ChildrenLeft[0] = 7
	_, err = EnsembleFeatureImportance(&Ensemble{Trees: []*DecisionTree{sampleTree(0, 1), bad}, NFeatures: 3}, true)
	var treeErr *errors.InvalidTreeError
	assert.True(t, errors.As(err, &treeErr))

	_, err = NewEnsemble([]*DecisionTree{sampleTree(0, 1)}, []string{"only-one"})
	assert.True(t, errors.As(err, &dimErr))
}

func TestRank(t *testing.T) {
	scores := Rank([]float64{0.2, 0.5, 0.2, 0.1}, []string{"a", "b"})

	got := make([]string, len(scores))
	for i, s := range scores {
		got[i] = s.Name
	}
	assert.Equal(t, []string{"b", "a", "f2", "f3"}, got)
	assert.Equal(t, 0, scores[1].Index)
	assert.Equal(t, 2, scores[2].Index)
}

func TestFeatureImportanceTable(t *testing.T) {
	ens, err := NewEnsemble([]*DecisionTree{sampleTree(0, 1)}, nil)
	require.NoError(t, err)

	table, err := FeatureImportanceTable(ens, []string{"YearMade", "ProductSize", "Enclosure"})
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "YearMade", table[0].Name)
	assert.Equal(t, "ProductSize", table[1].Name)
	assert.Equal(t, "Enclosure", table[2].Name)

	_, err = FeatureImportanceTable(ens, []string{"a"})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
