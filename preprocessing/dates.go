package preprocessing

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

// dateLayouts は文字列の日付を解釈するときに順に試すレイアウト
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
}

var dateSuffix = regexp.MustCompile(`(?i)date$`)

// DateAttributes は AddDateColumns が追加する列の接尾辞（追加順）
var DateAttributes = []string{
	"Year", "Month", "Day",
	"Dayofweek", "Dayofyear",
	"Is_month_start", "Is_month_end",
	"Is_quarter_start", "Is_quarter_end",
	"Is_year_start", "Is_year_end",
	"Elapsed",
}

// ParseDate は dateLayouts を順に試して文字列を時刻として解釈する
// オフセットの無い値は UTC、オフセット付きの値はそのオフセットのまま返すので、
// 暦の属性は書かれた日付（壁時計の時刻）から計算される
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DatePrefix は派生列の接頭辞を返す。末尾の "date"（大文字小文字を区別しない）を取り除いた列名
func DatePrefix(field string) string {
	return dateSuffix.ReplaceAllString(field, "")
}

// AddDateColumns は日付列から暦の属性列を派生させたコピーを返す
//
// 各 field について Year, Month, Day, Dayofweek（月曜=0）, Dayofyear, Is_* の真偽値列,
// Elapsed（Unix 秒）を DatePrefix(field) を接頭辞として末尾に追加する。
// String 列は日付として解釈し、解釈できない値があれば ParseError を返す。
// 欠損値は数値属性が NaN、真偽値属性が false になる。
//
// drop が true の場合は元の列を削除する。false の場合、元の列は Datetime 列に置き換わる。
func AddDateColumns(ds *frame.Dataset, fields []string, drop bool) (*frame.Dataset, error) {
	out := ds.Clone()
	logger := log.GetLoggerWithName("preprocessing")

	for _, field := range fields {
		col, ok := out.Column(field)
		if !ok {
			return nil, errors.Wrapf(errors.ErrColumnNotFound, "AddDateColumns: %q", field)
		}

		dt, err := toDatetime(col)
		if err != nil {
			return nil, errors.Wrapf(err, "AddDateColumns: field %q", field)
		}
		if err := out.Set(dt); err != nil {
			return nil, err
		}

		prefix := DatePrefix(field)
		for _, c := range dateAttributeColumns(dt, prefix) {
			if err := out.Set(c); err != nil {
				return nil, err
			}
		}

		logger.Debug("date field expanded",
			log.OperationKey, log.OperationExpandDates,
			log.ColumnKey, field,
			log.MissingKey, dt.NullCount(),
		)
	}

	if drop {
		if err := out.Drop(fields...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toDatetime(col *frame.Column) (*frame.Column, error) {
	switch col.Kind() {
	case frame.Datetime:
		return col, nil
	case frame.String, frame.Categorical:
		n := col.Len()
		times := make([]time.Time, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			label, ok := col.Label(i)
			if !ok || strings.TrimSpace(label) == "" {
				continue
			}
			t, parsed := ParseDate(label)
			if !parsed {
				return nil, errors.NewParseError(col.Name(), i, label, "datetime")
			}
			times[i], valid[i] = t, true
		}
		return frame.NewDatetime(col.Name(), times, valid), nil
	default:
		return nil, errors.NewValueError("AddDateColumns",
			"column "+col.Name()+" is "+col.Kind().String()+", expected datetime or string")
	}
}

func dateAttributeColumns(dt *frame.Column, prefix string) []*frame.Column {
	n := dt.Len()
	nums := make(map[string][]float64, 6)
	flags := make(map[string][]bool, 6)
	for _, attr := range DateAttributes {
		if strings.HasPrefix(attr, "Is_") {
			flags[attr] = make([]bool, n)
		} else {
			nums[attr] = make([]float64, n)
		}
	}

	for i := 0; i < n; i++ {
		t, ok := dt.Time(i)
		if !ok {
			for _, v := range nums {
				v[i] = math.NaN()
			}
			continue
		}

		monthEnd := t.AddDate(0, 0, 1).Day() == 1
		month := t.Month()
		nums["Year"][i] = float64(t.Year())
		nums["Month"][i] = float64(month)
		nums["Day"][i] = float64(t.Day())
		nums["Dayofweek"][i] = float64((int(t.Weekday()) + 6) % 7)
		nums["Dayofyear"][i] = float64(t.YearDay())
		nums["Elapsed"][i] = float64(t.Unix())
		flags["Is_month_start"][i] = t.Day() == 1
		flags["Is_month_end"][i] = monthEnd
		flags["Is_quarter_start"][i] = t.Day() == 1 && (month-1)%3 == 0
		flags["Is_quarter_end"][i] = monthEnd && month%3 == 0
		flags["Is_year_start"][i] = t.Day() == 1 && month == time.January
		flags["Is_year_end"][i] = t.Day() == 31 && month == time.December
	}

	cols := make([]*frame.Column, 0, len(DateAttributes))
	for _, attr := range DateAttributes {
		if v, ok := flags[attr]; ok {
			cols = append(cols, frame.NewBool(prefix+attr, v))
			continue
		}
		cols = append(cols, frame.NewNumeric(prefix+attr, nums[attr]))
	}
	return cols
}
