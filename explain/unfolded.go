package explain

import (
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// Unfolded はアンサンブル全体と木ごとの特徴量重要度
type Unfolded struct {
	// Names は特徴量名（インデックス順）
	Names []string
	// Aggregate は正規化したアンサンブル全体の重要度（インデックス順）
	Aggregate []float64
	// PerTree は 特徴量 × 木 の行列。各列は正規化した木1本の重要度
	PerTree *mat.Dense
	// Ranked は Aggregate の降順
	Ranked []FeatureScore
}

// UnfoldedFeatureImportance はアンサンブル全体の重要度と木ごとの重要度を並べて返す
// names の長さは NFeatures と一致しなければならない
func UnfoldedFeatureImportance(e *Ensemble, names []string) (*Unfolded, error) {
	if e == nil {
		return nil, errors.NewModelError("UnfoldedFeatureImportance", "no trees", errors.ErrEmptyData)
	}
	if len(names) != e.NFeatures {
		return nil, errors.NewDimensionError("UnfoldedFeatureImportance", e.NFeatures, len(names), 1)
	}

	perTree, err := perTreeImportance(e, true)
	if err != nil {
		return nil, err
	}
	aggregate, err := EnsembleFeatureImportance(e, true)
	if err != nil {
		return nil, err
	}

	var m *mat.Dense
	if e.NFeatures > 0 {
		m = mat.NewDense(e.NFeatures, len(perTree), nil)
		for j, imp := range perTree {
			m.SetCol(j, imp)
		}
	}

	return &Unfolded{
		Names:     append([]string(nil), names...),
		Aggregate: aggregate,
		PerTree:   m,
		Ranked:    Rank(aggregate, names),
	}, nil
}

// NumTrees は木の本数を返す
func (u *Unfolded) NumTrees() int {
	if u.PerTree == nil {
		return 0
	}
	_, c := u.PerTree.Dims()
	return c
}

// Spread は特徴量ごとの木間の重要度の標準偏差をインデックス順に返す
// 木が1本の場合は全て0
func (u *Unfolded) Spread() []float64 {
	out := make([]float64, len(u.Aggregate))
	if u.NumTrees() < 2 {
		return out
	}
	for i := range out {
		out[i] = stat.StdDev(mat.Row(nil, i, u.PerTree), nil)
	}
	return out
}

// Dataset は cols, imp, imp_0 ... imp_{k-1} 列を持つテーブルを imp の降順で返す
func (u *Unfolded) Dataset() (*frame.Dataset, error) {
	n := len(u.Ranked)
	k := u.NumTrees()

	names := make([]string, n)
	agg := make([]float64, n)
	trees := make([][]float64, k)
	for j := range trees {
		trees[j] = make([]float64, n)
	}
	for row, s := range u.Ranked {
		names[row] = s.Name
		agg[row] = s.Importance
		for j := 0; j < k; j++ {
			trees[j][row] = u.PerTree.At(s.Index, j)
		}
	}

	cols := []*frame.Column{
		frame.NewString("cols", names, nil),
		frame.NewNumeric("imp", agg),
	}
	for j, v := range trees {
		cols = append(cols, frame.NewNumeric("imp_"+strconv.Itoa(j), v))
	}
	return frame.New(cols...)
}
