package preprocessing

import (
	"io"

	"github.com/YuminosukeSato/eclyon/core/model"
	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// Processor は学習データで数値化の状態（カテゴリテンプレート、補完レコード、出力列）を学習し、
// 推論データに同じ変換を適用する
//
// 使用例:
//
//	p := preprocessing.NewProcessor(preprocessing.WithResponse("SalePrice"))
//	train, err := p.FitTransform(trainDS)
//	valid, err := p.Transform(validDS)
type Processor struct {
	model.BaseEstimator

	Response      string
	Skip          []string
	Ignore        []string
	MaxCategories int

	// Categories は学習時の Categorical 列ごとのカテゴリ一覧
	Categories map[string][]string
	// Imputation は学習時に確定した補完レコード
	Imputation ImputationRecord
	// Columns は学習時の出力列の順序
	Columns []string

	hook   Hook
	logger log.Logger
}

// NewProcessor は新しい Processor を作成する
// WithImputation で渡したレコードは学習時の初期値として使われる
func NewProcessor(opts ...Option) *Processor {
	o := newProcessOptions(opts)
	return &Processor{
		Response:      o.response,
		Skip:          o.skip,
		Ignore:        o.ignore,
		MaxCategories: o.maxCategories,
		Imputation:    o.record,
		hook:          o.hook,
		logger:        o.logger,
	}
}

func (p *Processor) getLogger() log.Logger {
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("preprocessing")
	}
	return p.logger.With(log.ModelNameKey, "Processor")
}

// Fit は学習データから変換の状態を学習する
func (p *Processor) Fit(ds *frame.Dataset) error {
	_, err := p.FitTransform(ds)
	return err
}

// FitTransform は学習と変換を同時に行い、学習データの変換結果を返す
func (p *Processor) FitTransform(ds *frame.Dataset) (*Result, error) {
	p.Reset()

	cats := StringsToCategorical(ds)
	categories := make(map[string][]string)
	for _, c := range cats.Columns() {
		switch c.Kind() {
		case frame.Categorical:
			categories[c.Name()] = c.Categories()
		case frame.Datetime:
			// Datetime 列も時刻順のカテゴリとして数値化されるので、推論時に同じコードになるよう記録する
			if c.Name() != p.Response && !contains(p.Ignore, c.Name()) {
				categories[c.Name()] = c.DistinctLabels()
			}
		}
	}

	res, err := process(cats, processOptions{
		response:      p.Response,
		skip:          p.Skip,
		ignore:        p.Ignore,
		record:        p.Imputation.Clone(),
		hook:          p.hook,
		maxCategories: p.MaxCategories,
		logger:        p.getLogger(),
	})
	if err != nil {
		return nil, err
	}

	p.Categories = categories
	p.Imputation = res.Imputation
	p.Columns = res.Features.Names()
	p.SetFitted()

	p.getLogger().Info("processor fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, len(p.Columns),
	)
	return res, nil
}

// Transform は学習時と同じカテゴリコード・補完値で ds を変換する
//
// 出力列は学習時の列順に揃える。学習時に無かったダミー列は削除し、
// 推論データに現れなかった列は 0 で埋める。目的変数の列が無い場合 Response は nil になる。
// 補完レコードは変更されない。
func (p *Processor) Transform(ds *frame.Dataset) (*Result, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Processor", "Transform")
	}

	work := ds.Clone()
	applyCategoryMap(work, p.Categories)

	o := processOptions{
		skip:          present(work, p.Skip),
		ignore:        present(work, p.Ignore),
		record:        p.Imputation.Clone(),
		hook:          p.hook,
		maxCategories: p.MaxCategories,
		logger:        p.getLogger(),
	}
	if p.Response != "" && work.Has(p.Response) {
		o.response = p.Response
	}

	res, err := process(work, o)
	if err != nil {
		return nil, err
	}

	aligned, err := p.align(res.Features)
	if err != nil {
		return nil, err
	}

	p.getLogger().Info("dataset transformed",
		log.OperationKey, log.OperationTransform,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, aligned.NumRows(),
	)
	return &Result{Features: aligned, Response: res.Response, Imputation: p.Imputation.Clone()}, nil
}

func (p *Processor) align(features *frame.Dataset) (*frame.Dataset, error) {
	n := features.NumRows()
	cols := make([]*frame.Column, 0, len(p.Columns))
	var filled []string
	for _, name := range p.Columns {
		if c, ok := features.Column(name); ok {
			cols = append(cols, c)
			continue
		}
		filled = append(filled, name)
		cols = append(cols, frame.NewNumeric(name, make([]float64, n)))
	}
	if len(filled) > 0 {
		p.getLogger().Debug("columns absent at inference filled with zero", "columns", filled)
	}
	return frame.New(cols...)
}

// Save は学習済みの状態を gob で書き出す。フックは保存されない
func (p *Processor) Save(w io.Writer) error {
	if !p.IsFitted() {
		return errors.NewNotFittedError("Processor", "Save")
	}
	return model.SaveModelToWriter(p, w)
}

// Load は Save で書き出した状態を読み込む
func (p *Processor) Load(r io.Reader) error {
	return model.LoadModelFromReader(p, r)
}

func present(ds *frame.Dataset, names []string) []string {
	var out []string
	for _, n := range names {
		if ds.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

var (
	_ model.Fitter      = (*Processor)(nil)
	_ model.Persistable = (*Processor)(nil)
)

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
