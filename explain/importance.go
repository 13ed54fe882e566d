package explain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/eclyon/core/parallel"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// parallelThreshold を超える本数の木は並列に計算する
const parallelThreshold = 8

// TreeFeatureImportance は1本の木の不純度減少に基づく特徴量重要度を計算する
//
// 分割ノード n ごとに imp[n]*w[n] - imp[l]*w[l] - imp[r]*w[r] をその特徴量に加算し、
// ルートの重み付きサンプル数で割る。normalize が true で合計が正なら合計で割る。
// 負の値は切り詰めない。
//
// ルートの重みが0以下の場合は全て0のベクトルを返し、DegenerateImportanceWarning を発生させる。
func TreeFeatureImportance(tree *DecisionTree, normalize bool) ([]float64, error) {
	if err := tree.Validate(); err != nil {
		return nil, err
	}

	importance := make([]float64, tree.NFeatures)
	root := tree.WeightedNNodeSamples[0]
	if root <= 0 {
		errors.Warn(errors.NewDegenerateImportanceWarning(root, tree.NFeatures))
		return importance, nil
	}

	w := tree.WeightedNNodeSamples
	imp := tree.Impurity
	for n, f := range tree.Feature {
		if f < 0 {
			continue
		}
		l, r := tree.ChildrenLeft[n], tree.ChildrenRight[n]
		importance[f] += imp[n]*w[n] - imp[l]*w[l] - imp[r]*w[r]
	}
	floats.Scale(1/root, importance)

	if normalize {
		normalizeInPlace(importance)
	}
	return importance, nil
}

// normalizeInPlace は合計が正の場合に限り合計で割る
func normalizeInPlace(v []float64) {
	if s := floats.Sum(v); s > 0 {
		floats.Scale(1/s, v)
	}
}

// Ensemble は同じ特徴量空間を共有する決定木の集合
type Ensemble struct {
	Trees        []*DecisionTree
	NFeatures    int
	FeatureNames []string
}

// NewEnsemble は木の集合から Ensemble を作成する
// NFeatures は最初の木から取る。names は空でもよい
func NewEnsemble(trees []*DecisionTree, names []string) (*Ensemble, error) {
	if len(trees) == 0 {
		return nil, errors.NewModelError("NewEnsemble", "no trees", errors.ErrEmptyData)
	}
	e := &Ensemble{Trees: trees, NFeatures: trees[0].NFeatures, FeatureNames: names}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate は全ての木を検証し、特徴量数が揃っていることを確認する
func (e *Ensemble) Validate() error {
	if len(e.Trees) == 0 {
		return errors.NewModelError("Ensemble.Validate", "no trees", errors.ErrEmptyData)
	}
	if len(e.FeatureNames) > 0 && len(e.FeatureNames) != e.NFeatures {
		return errors.NewDimensionError("Ensemble.Validate", e.NFeatures, len(e.FeatureNames), 1)
	}
	for i, t := range e.Trees {
		if t == nil {
			return errors.NewValueError("Ensemble.Validate", fmt.Sprintf("tree %d is nil", i))
		}
		if t.NFeatures != e.NFeatures {
			return errors.NewDimensionError("Ensemble.Validate", e.NFeatures, t.NFeatures, 1)
		}
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
	}
	return nil
}

// FeatureImportance はアンサンブル全体の特徴量重要度を返す
func (e *Ensemble) FeatureImportance(normalize bool) ([]float64, error) {
	return EnsembleFeatureImportance(e, normalize)
}

// EnsembleFeatureImportance は木ごとの重要度の要素ごとの平均を返す
//
// 各木の重要度は TreeFeatureImportance(tree, normalize) で計算し、等しい重みで平均する。
// normalize が true の場合は平均を再び正規化する。1本だけの場合はその木の重要度と一致する。
func EnsembleFeatureImportance(e *Ensemble, normalize bool) ([]float64, error) {
	perTree, err := perTreeImportance(e, normalize)
	if err != nil {
		return nil, err
	}

	mean := make([]float64, e.NFeatures)
	for _, imp := range perTree {
		floats.Add(mean, imp)
	}
	floats.Scale(1/float64(len(perTree)), mean)
	if normalize {
		normalizeInPlace(mean)
	}
	return mean, nil
}

// perTreeImportance は木ごとの重要度をアンサンブルの順に返す
// 木の数が parallelThreshold を超える場合は並列に計算する
func perTreeImportance(e *Ensemble, normalize bool) ([][]float64, error) {
	if e == nil || len(e.Trees) == 0 {
		return nil, errors.NewModelError("EnsembleFeatureImportance", "no trees", errors.ErrEmptyData)
	}
	for _, t := range e.Trees {
		if t != nil && t.NFeatures != e.NFeatures {
			return nil, errors.NewDimensionError("EnsembleFeatureImportance", e.NFeatures, t.NFeatures, 1)
		}
	}

	k := len(e.Trees)
	results := make([][]float64, k)
	errs := make([]error, k)
	parallel.ParallelizeWithThreshold(k, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			results[i], errs[i] = TreeFeatureImportance(e.Trees[i], normalize)
		}
	})

	for i, err := range errs {
		if err != nil {
			nodes := 0
			if e.Trees[i] != nil {
				nodes = e.Trees[i].NodeCount()
			}
			log.GetLoggerWithName("explain").Error("tree importance failed",
				err,
				log.TreeIndexKey, i,
				log.NodesKey, nodes,
			)
			return nil, errors.Wrapf(err, "tree %d", i)
		}
	}

	log.GetLoggerWithName("explain").Debug("per-tree importance computed",
		log.OperationKey, log.OperationImportance,
		log.TreesKey, k,
		log.FeaturesKey, e.NFeatures,
	)
	return results, nil
}

// FeatureScore は名前付きの特徴量重要度
type FeatureScore struct {
	Index      int
	Name       string
	Importance float64
}

// Rank は重要度の降順に並べた一覧を返す
// 同じ重要度の場合は特徴量インデックスの昇順。names が足りない場合は "f<i>" を使う
func Rank(importance []float64, names []string) []FeatureScore {
	scores := make([]FeatureScore, len(importance))
	for i, v := range importance {
		name := fmt.Sprintf("f%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		scores[i] = FeatureScore{Index: i, Name: name, Importance: v}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Importance > scores[b].Importance
	})
	return scores
}

// FeatureImportanceTable は正規化したアンサンブルの重要度を列名付きで降順に返す
// names の長さは NFeatures と一致しなければならない
func FeatureImportanceTable(e *Ensemble, names []string) ([]FeatureScore, error) {
	if e == nil {
		return nil, errors.NewModelError("FeatureImportanceTable", "no trees", errors.ErrEmptyData)
	}
	if len(names) != e.NFeatures {
		return nil, errors.NewDimensionError("FeatureImportanceTable", e.NFeatures, len(names), 1)
	}
	imp, err := EnsembleFeatureImportance(e, true)
	if err != nil {
		return nil, err
	}
	return Rank(imp, names), nil
}
