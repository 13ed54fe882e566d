package explain

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/eclyon/core/model"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// JSONEnsemble は学習済みフォレストの JSON 表現
// scikit-learn の estimators_[i].tree_ の配列をそのまま書き出した形式
type JSONEnsemble struct {
	NFeatures    int        `json:"n_features"`
	FeatureNames []string   `json:"feature_names,omitempty"`
	Estimators   []JSONTree `json:"estimators"`
}

// JSONTree は1本の木のノード配列
type JSONTree struct {
	ChildrenLeft         []int     `json:"children_left"`
	ChildrenRight        []int     `json:"children_right"`
	Feature              []int     `json:"feature"`
	Threshold            []float64 `json:"threshold,omitempty"`
	Impurity             []float64 `json:"impurity"`
	WeightedNNodeSamples []float64 `json:"weighted_n_node_samples"`
}

// LoadEnsemble は JSON からアンサンブルを読み込み、全ての木を検証する
func LoadEnsemble(r io.Reader) (*Ensemble, error) {
	var doc JSONEnsemble
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse ensemble JSON")
	}
	return doc.Ensemble()
}

// LoadEnsembleFile はファイルからアンサンブルを読み込む
func LoadEnsembleFile(path string) (*Ensemble, error) {
	clean, err := model.CleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(clean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ensemble file")
	}
	defer f.Close()

	ens, err := LoadEnsemble(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", clean)
	}
	log.GetLoggerWithName("explain").Info("ensemble loaded",
		"path", clean,
		log.TreesKey, len(ens.Trees),
		log.FeaturesKey, ens.NFeatures,
	)
	return ens, nil
}

// Ensemble は JSON 表現を Ensemble に変換する
func (doc *JSONEnsemble) Ensemble() (*Ensemble, error) {
	trees := make([]*DecisionTree, len(doc.Estimators))
	for i, t := range doc.Estimators {
		trees[i] = &DecisionTree{
			ChildrenLeft:         t.ChildrenLeft,
			ChildrenRight:        t.ChildrenRight,
			Feature:              t.Feature,
			Threshold:            t.Threshold,
			Impurity:             t.Impurity,
			WeightedNNodeSamples: t.WeightedNNodeSamples,
			NFeatures:            doc.NFeatures,
		}
	}
	if len(trees) == 0 {
		return nil, errors.NewModelError("LoadEnsemble", "no estimators", errors.ErrEmptyData)
	}
	e := &Ensemble{Trees: trees, NFeatures: doc.NFeatures, FeatureNames: doc.FeatureNames}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// EncodeEnsemble は Ensemble を LoadEnsemble で読める JSON として書き出す
func EncodeEnsemble(w io.Writer, e *Ensemble) error {
	doc := JSONEnsemble{NFeatures: e.NFeatures, FeatureNames: e.FeatureNames}
	for _, t := range e.Trees {
		doc.Estimators = append(doc.Estimators, JSONTree{
			ChildrenLeft:         t.ChildrenLeft,
			ChildrenRight:        t.ChildrenRight,
			Feature:              t.Feature,
			Threshold:            t.Threshold,
			Impurity:             t.Impurity,
			WeightedNNodeSamples: t.WeightedNNodeSamples,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "failed to encode ensemble")
}
