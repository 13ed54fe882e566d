// Package frame は列名と型タグを持つ矩形データセットを提供する
//
// Dataset は前処理パイプラインの入出力となる表で、列の型（数値・真偽値・文字列・
// カテゴリ・日時）を明示的なメタデータとして保持する。
package frame

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// Dataset は同じ行数を持つ一意な名前の列の順序付き集合
type Dataset struct {
	cols  []*Column
	index map[string]int
}

// New は列からデータセットを作成する
//
// 列はコピーされる。行数が揃っていない場合は DimensionError、
// 列名が重複している場合は ValidationError を返す。
func New(cols ...*Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, dup := ds.index[c.Name()]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name())
		}
		if len(ds.cols) > 0 && c.Len() != ds.NumRows() {
			return nil, errors.NewDimensionError("frame.New", ds.NumRows(), c.Len(), 0)
		}
		ds.index[c.Name()] = len(ds.cols)
		ds.cols = append(ds.cols, c.Clone())
	}
	return ds, nil
}

// MustNew は New と同じだがエラー時に panic する。テストや固定データ向け
func MustNew(cols ...*Column) *Dataset {
	ds, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return ds
}

// NumRows は行数を返す
func (d *Dataset) NumRows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

// NumCols は列数を返す
func (d *Dataset) NumCols() int { return len(d.cols) }

// Dims は (行数, 列数) を返す
func (d *Dataset) Dims() (int, int) { return d.NumRows(), d.NumCols() }

// Names は列名を順序通りに返す
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name()
	}
	return names
}

// Has は列が存在するかどうかを返す
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column は列を返す。返された列は読み取り専用として扱うこと
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Columns は列を順序通りに返す
func (d *Dataset) Columns() []*Column {
	return append([]*Column(nil), d.cols...)
}

// Set は同名の列があれば同じ位置で置き換え、なければ末尾に追加する
func (d *Dataset) Set(c *Column) error {
	if len(d.cols) > 0 && c.Len() != d.NumRows() {
		return errors.NewDimensionError("Dataset.Set", d.NumRows(), c.Len(), 0)
	}
	if i, ok := d.index[c.Name()]; ok {
		d.cols[i] = c
		return nil
	}
	d.index[c.Name()] = len(d.cols)
	d.cols = append(d.cols, c)
	return nil
}

// Drop は指定した列を削除する。存在しない列があれば何も削除せずエラーを返す
func (d *Dataset) Drop(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !d.Has(n) {
			return errors.Wrapf(errors.ErrColumnNotFound, "drop %q", n)
		}
		drop[n] = true
	}

	kept := make([]*Column, 0, len(d.cols))
	for _, c := range d.cols {
		if !drop[c.Name()] {
			kept = append(kept, c)
		}
	}
	d.cols = kept
	d.reindex()
	return nil
}

// Select は指定した列だけを指定順に持つ新しいデータセットを返す
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, errors.Wrapf(errors.ErrColumnNotFound, "select %q", n)
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Clone はディープコピーを返す
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{cols: make([]*Column, len(d.cols)), index: make(map[string]int, len(d.cols))}
	for i, c := range d.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name()] = i
	}
	return out
}

// SliceRows は [from, to) 行のコピーを返す
func (d *Dataset) SliceRows(from, to int) (*Dataset, error) {
	n := d.NumRows()
	if from < 0 || to > n || from > to {
		return nil, errors.NewValidationError("rows", fmt.Sprintf("range must satisfy 0 <= from <= to <= %d", n), [2]int{from, to})
	}
	out := &Dataset{cols: make([]*Column, len(d.cols)), index: make(map[string]int, len(d.cols))}
	for i, c := range d.cols {
		out.cols[i] = c.Slice(from, to)
		out.index[c.Name()] = i
	}
	return out, nil
}

// Concat は各データセットの列を順に横に並べた新しいデータセットを返す
// 列のないデータセットは無視する
func Concat(parts ...*Dataset) (*Dataset, error) {
	var cols []*Column
	rows := -1
	for _, p := range parts {
		if p.NumCols() == 0 {
			continue
		}
		if rows >= 0 && p.NumRows() != rows {
			return nil, errors.NewDimensionError("frame.Concat", rows, p.NumRows(), 0)
		}
		rows = p.NumRows()
		cols = append(cols, p.cols...)
	}
	return New(cols...)
}

// ToDense は全列を行列に変換する
//
// 数値として扱えない列（String, Categorical, Datetime）がある場合は ValueError を返す。
func (d *Dataset) ToDense() (*mat.Dense, error) {
	r, c := d.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Dataset.ToDense", "empty data", errors.ErrEmptyData)
	}
	for _, col := range d.cols {
		if !col.IsNumeric() {
			return nil, errors.NewValueError("Dataset.ToDense",
				fmt.Sprintf("column %q is %s, not numeric", col.Name(), col.Kind()))
		}
	}

	out := mat.NewDense(r, c, nil)
	for j, col := range d.cols {
		for i := 0; i < r; i++ {
			out.Set(i, j, col.Float(i))
		}
	}
	return out, nil
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.cols))
	for i, c := range d.cols {
		d.index[c.Name()] = i
	}
}

// String はデータセットの簡易表現を返す
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(rows=%d, cols=%v)", d.NumRows(), d.Names())
}
