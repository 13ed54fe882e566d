package preprocessing

import (
	"time"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// Hook は組み込みの処理より前に作業用データセットを変更する呼び出し側の関数
type Hook func(ds *frame.Dataset) error

// Option は ProcessDataset と Processor の設定を行う関数
type Option func(*processOptions)

type processOptions struct {
	response      string
	skip          []string
	ignore        []string
	record        ImputationRecord
	hook          Hook
	maxCategories int
	logger        log.Logger
}

func newProcessOptions(opts []Option) processOptions {
	o := processOptions{maxCategories: NoMaxCategories}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("preprocessing")
	}
	return o
}

// WithResponse は目的変数の列を指定する
func WithResponse(name string) Option {
	return func(o *processOptions) {
		o.response = name
	}
}

// WithSkip は特徴量から完全に除外する列を指定する
func WithSkip(names ...string) Option {
	return func(o *processOptions) {
		o.skip = append(o.skip, names...)
	}
}

// WithIgnore は処理せずに結果の先頭へそのまま戻す列を指定する
func WithIgnore(names ...string) Option {
	return func(o *processOptions) {
		o.ignore = append(o.ignore, names...)
	}
}

// WithImputation は既存の補完レコードを渡す。レコードはその場で拡張される
func WithImputation(record ImputationRecord) Option {
	return func(o *processOptions) {
		o.record = record
	}
}

// WithPreprocess は組み込み処理の前に実行するフックを設定する
func WithPreprocess(hook Hook) Option {
	return func(o *processOptions) {
		o.hook = hook
	}
}

// WithMaxCategories はダミー列に展開するカテゴリ数の上限を設定する
// 上限を超える列は整数コードになる
func WithMaxCategories(n int) Option {
	return func(o *processOptions) {
		o.maxCategories = n
	}
}

// WithLogger はロガーを設定する
func WithLogger(logger log.Logger) Option {
	return func(o *processOptions) {
		o.logger = logger
	}
}

// Result は ProcessDataset の結果
type Result struct {
	// Features は全て数値の特徴量テーブル（ignore 列が先頭に付く）
	Features *frame.Dataset
	// Response は目的変数。WithResponse を指定しなかった場合は nil
	Response []float64
	// Imputation は更新された補完レコード
	Imputation ImputationRecord
}

// ProcessDataset は混在型のデータセットを数値の特徴量テーブルと目的変数に変換する
//
// 処理順序:
//  1. ignore 列を取り分ける
//  2. フックを実行する（エラーや panic は処理を中断する）
//  3. 目的変数を取り出す。数値でなければカテゴリコード（欠損は -1）にする
//  4. skip 列と目的変数の列を削除する
//  5. 残りの全列に FixMissing を適用する
//  6. 残りの全列に NumericalizeColumn を適用する
//  7. 残った非数値列を OneHot で展開する
//  8. ignore 列を先頭に戻す
//
// 空でない補完レコードを渡した場合、この呼び出しで新たに追加されたキーの "_na" 列は削除される。
// 空のレコード（または未指定）の場合は何も削除しない。
//
// 入力のデータセットは変更しない。
func ProcessDataset(ds *frame.Dataset, opts ...Option) (*Result, error) {
	o := newProcessOptions(opts)
	return process(ds, o)
}

func process(ds *frame.Dataset, o processOptions) (*Result, error) {
	start := time.Now()
	logger := o.logger

	for _, name := range o.ignore {
		if !ds.Has(name) {
			return nil, errors.NewValidationError("ignore", "column not found", name)
		}
	}

	// 1. ignore
	work := ds.Clone()
	ignored, err := work.Select(o.ignore...)
	if err != nil {
		return nil, err
	}
	if err := work.Drop(o.ignore...); err != nil {
		return nil, err
	}

	// 2. hook
	if o.hook != nil {
		err := errors.SafeExecute("ProcessDataset.preprocess", func() error {
			return o.hook(work)
		})
		if err != nil {
			return nil, errors.NewModelError("ProcessDataset", "preprocess hook failed", err)
		}
	}

	// 3. response
	drop := append([]string(nil), o.skip...)
	var response []float64
	if o.response != "" {
		col, ok := work.Column(o.response)
		if !ok {
			return nil, errors.NewValidationError("response", "column not found", o.response)
		}
		response = responseValues(col)
		drop = append(drop, o.response)
	}

	// 4. skip
	for _, name := range drop {
		if !work.Has(name) {
			return nil, errors.NewValidationError("skip", "column not found", name)
		}
	}
	if err := work.Drop(drop...); err != nil {
		return nil, err
	}

	// 5. missing values
	record := o.record
	if record == nil {
		record = ImputationRecord{}
	}
	initial := record.Clone()
	for _, name := range work.Names() {
		if err := FixMissing(work, name, record); err != nil {
			return nil, err
		}
	}
	if len(initial) > 0 {
		var added []string
		for name := range record {
			if _, ok := initial[name]; !ok && work.Has(name+NASuffix) {
				added = append(added, name+NASuffix)
			}
		}
		if err := work.Drop(added...); err != nil {
			return nil, err
		}
	}

	// 6. numericalize
	for _, name := range work.Names() {
		if err := NumericalizeColumn(work, name, o.maxCategories); err != nil {
			return nil, err
		}
	}

	// 7. one-hot
	features, err := OneHot(work)
	if err != nil {
		return nil, err
	}

	// 8. ignore 列を先頭に戻す
	features, err = frame.Concat(ignored, features)
	if err != nil {
		return nil, errors.Wrap(err, "ProcessDataset")
	}

	logger.Info("dataset processed",
		log.OperationKey, log.OperationProcess,
		log.SamplesKey, features.NumRows(),
		log.FeaturesKey, features.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &Result{Features: features, Response: response, Imputation: record}, nil
}

// responseValues は目的変数を数値ベクトルにする
// 数値列はそのまま、それ以外はカテゴリコード（オフセットなし、欠損は -1）
func responseValues(col *frame.Column) []float64 {
	if col.IsNumeric() {
		return col.Floats()
	}
	errors.Warn(errors.NewDataConversionWarning(col.Name(), col.Kind().String(), "category codes",
		"non-numeric response is encoded as category codes (missing = -1)"))
	codes := asCategorical(col).Codes()
	out := make([]float64, len(codes))
	for i, code := range codes {
		out[i] = float64(code)
	}
	return out
}
