package preprocessing

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// NASuffix は欠損フラグ列の接尾辞
const NASuffix = "_na"

// ImputationRecord は列名から補完値への対応
//
// 学習時の呼び出しで作成・拡張し、推論時の呼び出しに同じものを渡すことで
// 同じ補完値が使われる。並行して変更してはならない。
type ImputationRecord map[string]float64

// Clone はコピーを返す。nil の場合は空のレコードを返す
func (r ImputationRecord) Clone() ImputationRecord {
	out := make(ImputationRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FixMissing は数値列の欠損値を補完する（ds と record をその場で変更する）
//
// 列に欠損があるか、record に列名が含まれる場合に限り:
//   - "<name>_na" 真偽値列（元の値が欠損だった行が true）を追加または置換する
//   - record の値、無ければ観測値の中央値で欠損を埋める
//   - 使った補完値を record に保存する
//
// 数値でない列は変更しない。同じ record に対して冪等。
func FixMissing(ds *frame.Dataset, name string, record ImputationRecord) error {
	col, ok := ds.Column(name)
	if !ok {
		return errors.Wrapf(errors.ErrColumnNotFound, "FixMissing: %q", name)
	}
	if record == nil {
		return errors.NewValidationError("record", "imputation record must not be nil", nil)
	}
	if !col.IsNumeric() {
		return nil
	}

	missing := col.NullCount()
	filler, known := record[name]
	if missing == 0 && !known {
		return nil
	}

	flags := make([]bool, col.Len())
	for i := range flags {
		flags[i] = col.IsNull(i)
	}
	if err := ds.Set(frame.NewBool(name+NASuffix, flags)); err != nil {
		return err
	}

	if !known {
		filler = median(col.Floats())
	}
	if col.Kind() == frame.Numeric && missing > 0 {
		values := col.Floats()
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = filler
			}
		}
		if err := ds.Set(frame.NewNumeric(name, values)); err != nil {
			return err
		}
	}
	record[name] = filler

	log.GetLoggerWithName("preprocessing").Debug("missing values filled",
		log.OperationKey, log.OperationFixMissing,
		log.ColumnKey, name,
		log.MissingKey, missing,
		log.FillValueKey, filler,
	)
	return nil
}

// median は NaN を除いた値の中央値を返す。偶数個の場合は中央2値の平均
// 観測値が無い場合は NaN
func median(values []float64) float64 {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	n := len(observed)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(observed)
	if n%2 == 1 {
		return observed[n/2]
	}
	return (observed[n/2-1] + observed[n/2]) / 2
}
