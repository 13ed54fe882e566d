// Package explain は学習済みの決定木・アンサンブルから不純度減少に基づく特徴量重要度を計算する
//
// 木はノード配列（左右の子、分割特徴量、閾値、不純度、重み付きサンプル数）で表し、
// ルートはインデックス0とする。葉ノードの分割特徴量は負の値（Undefined）。
//
// 使用例:
//
//	ens, err := explain.LoadEnsembleFile("forest.json")
//	imp, err := ens.FeatureImportance(true)
//	for _, s := range explain.Rank(imp, ens.FeatureNames) {
//	    fmt.Println(s.Name, s.Importance)
//	}
package explain

import (
	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// Undefined は葉ノードの分割特徴量と子ノードを示す値
// 負の特徴量インデックスは全て葉として扱う
const Undefined = -2

// DecisionTree は学習済み決定木のノード配列
//
// 全ての配列は同じ長さ（ノード数）を持つ。葉ノードでは Feature が負で、
// ChildrenLeft / ChildrenRight は参照されない。
type DecisionTree struct {
	ChildrenLeft         []int
	ChildrenRight        []int
	Feature              []int
	Threshold            []float64
	Impurity             []float64
	WeightedNNodeSamples []float64
	NFeatures            int
}

// NodeCount はノード数を返す
func (t *DecisionTree) NodeCount() int {
	return len(t.Feature)
}

// IsLeaf はノードが葉かどうかを返す
func (t *DecisionTree) IsLeaf(node int) bool {
	return t.Feature[node] < 0
}

// Validate は木の構造を検証する
//
// 配列長の不一致は DimensionError、ノードが無い場合は ErrEmptyData、
// 分割ノードの子や特徴量が範囲外、または子が親より前を指す場合は InvalidTreeError、
// 不純度や重みに NaN / Inf がある場合は NumericalInstabilityError を返す。
func (t *DecisionTree) Validate() error {
	if t == nil {
		return errors.NewValueError("DecisionTree.Validate", "tree is nil")
	}
	n := len(t.Feature)
	if n == 0 {
		return errors.NewModelError("DecisionTree.Validate", "tree has no nodes", errors.ErrEmptyData)
	}
	if t.NFeatures < 0 {
		return errors.NewValidationError("n_features", "must be non-negative", t.NFeatures)
	}

	lengths := []int{len(t.ChildrenLeft), len(t.ChildrenRight), len(t.Impurity), len(t.WeightedNNodeSamples)}
	if t.Threshold != nil {
		lengths = append(lengths, len(t.Threshold))
	}
	for _, l := range lengths {
		if l != n {
			return errors.NewDimensionError("DecisionTree.Validate", n, l, 0)
		}
	}

	for node, f := range t.Feature {
		if f < 0 {
			continue
		}
		if f >= t.NFeatures {
			return errors.NewInvalidTreeError(node, "feature", f, t.NFeatures)
		}
		if l := t.ChildrenLeft[node]; l < 0 || l >= n {
			return errors.NewInvalidTreeError(node, "children_left", l, n)
		}
		if r := t.ChildrenRight[node]; r < 0 || r >= n {
			return errors.NewInvalidTreeError(node, "children_right", r, n)
		}
		// 子ノードは親より後に追加されるので、番号は必ず親より大きい。そうでなければ循環している
		if l, r := t.ChildrenLeft[node], t.ChildrenRight[node]; l <= node || r <= node {
			return errors.NewInvalidTreeErrorf(node, "children (%d, %d) must come after their parent", l, r)
		}
	}

	if err := errors.CheckNumericalStability("tree.impurity", t.Impurity); err != nil {
		return err
	}
	return errors.CheckNumericalStability("tree.weighted_n_node_samples", t.WeightedNNodeSamples)
}
