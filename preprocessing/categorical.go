package preprocessing

import (
	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// StringsToCategorical は全ての String 列を順序付き Categorical 列に変換したコピーを返す
// カテゴリは辞書順に並ぶ
func StringsToCategorical(ds *frame.Dataset) *frame.Dataset {
	out := ds.Clone()
	for _, c := range out.Columns() {
		if c.Kind() != frame.String {
			continue
		}
		// 行数は変わらないので Set は失敗しない
		_ = out.Set(asCategorical(c))
	}
	return out
}

// ApplyCategories は template の Categorical 列と同名の列を、template と同じカテゴリ・順序で
// 再コード化する（ds をその場で変更する）
//
// template に存在しない値は欠損（コード -1）になり、UnseenCategoryWarning が発生する。
// これにより学習データと推論データで同じ値が同じコードを持つ。
func ApplyCategories(ds, template *frame.Dataset) {
	categories := make(map[string][]string)
	for _, tc := range template.Columns() {
		if tc.Kind() == frame.Categorical {
			categories[tc.Name()] = tc.Categories()
		}
	}
	applyCategoryMap(ds, categories)
}

func applyCategoryMap(ds *frame.Dataset, categories map[string][]string) {
	for _, c := range ds.Columns() {
		cats, ok := categories[c.Name()]
		if !ok {
			continue
		}
		recoded, unseen, count := recode(c, cats)
		_ = ds.Set(recoded)
		if count > 0 {
			errors.Warn(errors.NewUnseenCategoryWarning(c.Name(), unseen, count))
		}
	}
}

// recode は列の値を categories のインデックスに変換する
// categories に無い値は MissingCode とし、その値（重複なし）と行数を返す
func recode(c *frame.Column, categories []string) (*frame.Column, []string, int) {
	index := make(map[string]int, len(categories))
	for i, cat := range categories {
		index[cat] = i
	}

	codes := make([]int, c.Len())
	var unseen []string
	seen := map[string]bool{}
	count := 0
	for i := range codes {
		label, ok := c.Label(i)
		if !ok {
			codes[i] = frame.MissingCode
			continue
		}
		code, known := index[label]
		if !known {
			code = frame.MissingCode
			count++
			if !seen[label] {
				seen[label] = true
				unseen = append(unseen, label)
			}
		}
		codes[i] = code
	}
	return frame.NewCategorical(c.Name(), codes, categories, true), unseen, count
}

// asCategorical は非数値列を Categorical 列として返す
// Categorical 列はそのまま、String / Datetime 列は DistinctLabels の順をカテゴリとする
func asCategorical(c *frame.Column) *frame.Column {
	if c.Kind() == frame.Categorical {
		return c
	}
	out, _, _ := recode(c, c.DistinctLabels())
	return out
}
