package frame

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Kind は列の型タグ
// 型は値の検査ではなく、この列メタデータで管理する
type Kind int

const (
	// Numeric は float64 の列（欠損は NaN）
	Numeric Kind = iota
	// Bool は真偽値の列（欠損なし）
	Bool
	// String は文字列の列（欠損は valid マスクで表す）
	String
	// Categorical はカテゴリコードの列（欠損はコード -1）
	Categorical
	// Datetime は日時の列（欠損は valid マスクで表す）
	Datetime
)

// MissingCode は Categorical 列で欠損を表すコード
const MissingCode = -1

// String はKindの文字列表現を返す
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Column は名前付きの1列
//
// 値の格納先は Kind によって決まる。コンストラクタは渡されたスライスをコピーするので、
// 呼び出し側のデータが後から変更されても列には影響しない。
type Column struct {
	name string
	kind Kind

	nums  []float64
	bools []bool
	strs  []string
	times []time.Time
	valid []bool

	codes      []int
	categories []string
	ordered    bool
}

// NewNumeric は数値列を作成する。NaN は欠損として扱う
func NewNumeric(name string, values []float64) *Column {
	return &Column{name: name, kind: Numeric, nums: append([]float64(nil), values...)}
}

// NewBool は真偽値列を作成する
func NewBool(name string, values []bool) *Column {
	return &Column{name: name, kind: Bool, bools: append([]bool(nil), values...)}
}

// NewString は文字列列を作成する。valid が nil の場合は全て有効
func NewString(name string, values []string, valid []bool) *Column {
	return &Column{name: name, kind: String, strs: append([]string(nil), values...), valid: validMask(len(values), valid)}
}

// NewDatetime は日時列を作成する。valid が nil の場合は全て有効
func NewDatetime(name string, values []time.Time, valid []bool) *Column {
	return &Column{name: name, kind: Datetime, times: append([]time.Time(nil), values...), valid: validMask(len(values), valid)}
}

// NewCategorical はカテゴリ列を作成する
//
// codes は categories へのインデックスで、MissingCode は欠損を表す。
// 範囲外のコードも欠損として扱う。
func NewCategorical(name string, codes []int, categories []string, ordered bool) *Column {
	c := &Column{
		name:       name,
		kind:       Categorical,
		codes:      make([]int, len(codes)),
		categories: append([]string(nil), categories...),
		ordered:    ordered,
	}
	for i, code := range codes {
		if code < 0 || code >= len(categories) {
			code = MissingCode
		}
		c.codes[i] = code
	}
	return c
}

func validMask(n int, valid []bool) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = valid == nil || (i < len(valid) && valid[i])
	}
	return mask
}

// Name は列名を返す
func (c *Column) Name() string { return c.name }

// Kind は列の型タグを返す
func (c *Column) Kind() Kind { return c.kind }

// Ordered はカテゴリ列が順序付きかどうかを返す
func (c *Column) Ordered() bool { return c.ordered }

// IsNumeric は数値として扱える列（Numeric または Bool）かどうかを返す
func (c *Column) IsNumeric() bool {
	return c.kind == Numeric || c.kind == Bool
}

// Len は行数を返す
func (c *Column) Len() int {
	switch c.kind {
	case Numeric:
		return len(c.nums)
	case Bool:
		return len(c.bools)
	case String:
		return len(c.strs)
	case Datetime:
		return len(c.times)
	case Categorical:
		return len(c.codes)
	}
	return 0
}

// IsNull は i 行目が欠損かどうかを返す
func (c *Column) IsNull(i int) bool {
	switch c.kind {
	case Numeric:
		return math.IsNaN(c.nums[i])
	case String, Datetime:
		return !c.valid[i]
	case Categorical:
		return c.codes[i] == MissingCode
	}
	return false
}

// NullCount は欠損値の数を返す
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// Float は i 行目の数値を返す
//
// Bool は 0/1、Categorical はコード（欠損は NaN）、Datetime は Unix 秒を返す。
// String 列では NaN を返す。
func (c *Column) Float(i int) float64 {
	switch c.kind {
	case Numeric:
		return c.nums[i]
	case Bool:
		if c.bools[i] {
			return 1
		}
		return 0
	case Categorical:
		if c.codes[i] == MissingCode {
			return math.NaN()
		}
		return float64(c.codes[i])
	case Datetime:
		if !c.valid[i] {
			return math.NaN()
		}
		return float64(c.times[i].Unix())
	}
	return math.NaN()
}

// Floats は列全体を Float で変換したコピーを返す
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Bools は Bool 列の値のコピーを返す。他の型では nil
func (c *Column) Bools() []bool {
	if c.kind != Bool {
		return nil
	}
	return append([]bool(nil), c.bools...)
}

// Codes は Categorical 列のコードのコピーを返す。他の型では nil
func (c *Column) Codes() []int {
	if c.kind != Categorical {
		return nil
	}
	return append([]int(nil), c.codes...)
}

// Categories は Categorical 列のカテゴリ一覧のコピーを返す。他の型では nil
func (c *Column) Categories() []string {
	if c.kind != Categorical {
		return nil
	}
	return append([]string(nil), c.categories...)
}

// Time は Datetime 列の i 行目と有効フラグを返す
func (c *Column) Time(i int) (time.Time, bool) {
	if c.kind != Datetime {
		return time.Time{}, false
	}
	return c.times[i], c.valid[i]
}

// Label は i 行目の値の文字列表現を返す。欠損なら ok=false
func (c *Column) Label(i int) (label string, ok bool) {
	if c.IsNull(i) {
		return "", false
	}
	switch c.kind {
	case Numeric:
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64), true
	case Bool:
		return strconv.FormatBool(c.bools[i]), true
	case String:
		return c.strs[i], true
	case Datetime:
		return c.times[i].Format(time.RFC3339Nano), true
	case Categorical:
		return c.categories[c.codes[i]], true
	}
	return "", false
}

// Labels は全行の Label と有効マスクを返す
func (c *Column) Labels() ([]string, []bool) {
	labels := make([]string, c.Len())
	valid := make([]bool, c.Len())
	for i := range labels {
		labels[i], valid[i] = c.Label(i)
	}
	return labels, valid
}

// DistinctLabels は欠損以外の値の重複なし一覧をソートして返す
//
// Datetime は時刻順、Numeric は数値順、それ以外は辞書順でソートする。
// Categorical 列ではカテゴリ定義の順序をそのまま返す。
func (c *Column) DistinctLabels() []string {
	if c.kind == Categorical {
		return c.Categories()
	}

	seen := make(map[string]int)
	var idx []int
	for i := 0; i < c.Len(); i++ {
		label, ok := c.Label(i)
		if !ok {
			continue
		}
		if _, dup := seen[label]; !dup {
			seen[label] = i
			idx = append(idx, i)
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		switch c.kind {
		case Numeric:
			return c.nums[i] < c.nums[j]
		case Datetime:
			return c.times[i].Before(c.times[j])
		case Bool:
			return !c.bools[i] && c.bools[j]
		}
		return c.strs[i] < c.strs[j]
	})

	out := make([]string, len(idx))
	for k, i := range idx {
		out[k], _ = c.Label(i)
	}
	return out
}

// Rename は名前を変えたコピーを返す
func (c *Column) Rename(name string) *Column {
	cp := c.Clone()
	cp.name = name
	return cp
}

// Clone は列のディープコピーを返す
func (c *Column) Clone() *Column {
	return c.Slice(0, c.Len())
}

// Slice は [from, to) 行のコピーを返す
func (c *Column) Slice(from, to int) *Column {
	cp := &Column{name: c.name, kind: c.kind, ordered: c.ordered}
	switch c.kind {
	case Numeric:
		cp.nums = append([]float64(nil), c.nums[from:to]...)
	case Bool:
		cp.bools = append([]bool(nil), c.bools[from:to]...)
	case String:
		cp.strs = append([]string(nil), c.strs[from:to]...)
		cp.valid = append([]bool(nil), c.valid[from:to]...)
	case Datetime:
		cp.times = append([]time.Time(nil), c.times[from:to]...)
		cp.valid = append([]bool(nil), c.valid[from:to]...)
	case Categorical:
		cp.codes = append([]int(nil), c.codes[from:to]...)
		cp.categories = append([]string(nil), c.categories...)
	}
	return cp
}
