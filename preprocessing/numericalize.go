package preprocessing

import (
	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// NoMaxCategories はカテゴリ数の上限を設けないことを表す
// この場合、全ての非数値列が整数コードに変換される
const NoMaxCategories = -1

// NumericalizeColumn は非数値列を整数コード列に置き換える（ds をその場で変更する）
//
// maxCategories が NoMaxCategories、またはカテゴリ数が maxCategories を超える場合、
// 列は code+1 の Numeric 列になる（0 は欠損または未知の値）。
// それ以外の非数値列は OneHot のためにそのまま残す。数値列は変更しない。
func NumericalizeColumn(ds *frame.Dataset, name string, maxCategories int) error {
	col, ok := ds.Column(name)
	if !ok {
		return errors.Wrapf(errors.ErrColumnNotFound, "NumericalizeColumn: %q", name)
	}
	if col.IsNumeric() {
		return nil
	}

	cat := asCategorical(col)
	n := len(cat.Categories())
	if maxCategories != NoMaxCategories && n <= maxCategories {
		return nil
	}

	if col.Kind() == frame.Datetime {
		errors.Warn(errors.NewDataConversionWarning(name, col.Kind().String(), "numeric",
			"datetime is replaced by its chronological category code"))
	}

	codes := cat.Codes()
	values := make([]float64, len(codes))
	for i, code := range codes {
		values[i] = float64(code + 1)
	}

	log.GetLoggerWithName("preprocessing").Debug("column numericalized",
		log.OperationKey, log.OperationNumericalize,
		log.ColumnKey, name,
		log.ColumnKindKey, col.Kind().String(),
		log.CategoriesKey, n,
	)
	return ds.Set(frame.NewNumeric(name, values))
}

// OneHot は非数値列をダミー列に展開したデータセットを返す
//
// 各非数値列は "<name>_<category>" の 0/1 列と、欠損を示す "<name>_nan" 列になる。
// 数値列が元の順序で先に並び、その後に各ダミー列のまとまりが列順に続く。
func OneHot(ds *frame.Dataset) (*frame.Dataset, error) {
	var plain, dummies []*frame.Column
	for _, c := range ds.Columns() {
		if c.IsNumeric() {
			plain = append(plain, c)
			continue
		}
		dummies = append(dummies, dummyColumns(asCategorical(c))...)
	}

	out, err := frame.New(append(plain, dummies...)...)
	if err != nil {
		return nil, errors.Wrap(err, "OneHot")
	}
	return out, nil
}

func dummyColumns(cat *frame.Column) []*frame.Column {
	categories := cat.Categories()
	codes := cat.Codes()

	blocks := make([][]float64, len(categories)+1)
	for k := range blocks {
		blocks[k] = make([]float64, len(codes))
	}
	nanIdx := len(categories)
	for i, code := range codes {
		if code == frame.MissingCode {
			blocks[nanIdx][i] = 1
			continue
		}
		blocks[code][i] = 1
	}

	cols := make([]*frame.Column, 0, len(blocks))
	for k, category := range categories {
		cols = append(cols, frame.NewNumeric(cat.Name()+"_"+category, blocks[k]))
	}
	return append(cols, frame.NewNumeric(cat.Name()+"_nan", blocks[nanIdx]))
}
