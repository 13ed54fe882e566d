// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// pandas / scikit-learnの警告・例外システムにインスパイアされており、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("eclyon-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、UnseenCategoryWarningなどのカスタム警告の処理方法を制御できます。
//
// pkg/log が登録する zerolog への転送は解除され、以降の警告は handler だけが受け取ります。
// zerolog への転送に戻すには、再度 SetZerologWarnFunc を呼びます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
	zerologWarnFunc = nil
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// 設定されている間は SetWarningHandler のハンドラより優先されます。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DataConversionWarning はデータの型が暗黙的に変換された場合に発生する警告です。
type DataConversionWarning struct {
	Column   string
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("column '%s' converted from %s to %s. Reason: %s", w.Column, w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromType: from, ToType: to, Reason: reason}
}

// DegenerateImportanceWarning はルートノードの重み付きサンプル数が0以下で、
// 特徴量重要度が計算できない場合の警告です。結果は全て0のベクトルになります。
type DegenerateImportanceWarning struct {
	RootWeight float64
	NFeatures  int
}

func (w *DegenerateImportanceWarning) Error() string {
	return fmt.Sprintf("root weighted sample count is %g; feature importance set to zero for %d features", w.RootWeight, w.NFeatures)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateImportanceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("root_weight", w.RootWeight).
		Int("n_features", w.NFeatures).
		Str("type", "DegenerateImportanceWarning")
}

// NewDegenerateImportanceWarning は新しいDegenerateImportanceWarningを作成します。
func NewDegenerateImportanceWarning(rootWeight float64, nFeatures int) *DegenerateImportanceWarning {
	return &DegenerateImportanceWarning{RootWeight: rootWeight, NFeatures: nFeatures}
}

// UnseenCategoryWarning はテンプレートに存在しないカテゴリが推論データに現れた場合の警告です。
// 該当する値は欠損カテゴリとして扱われます。
type UnseenCategoryWarning struct {
	Column string
	Values []string // 未知の値（重複なし、最大10件）
	Count  int      // 未知の値を持つ行数
}

func (w *UnseenCategoryWarning) Error() string {
	return fmt.Sprintf("column '%s': %d rows hold categories unseen in the template %v; mapped to missing", w.Column, w.Count, w.Values)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnseenCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Strs("values", w.Values).
		Int("count", w.Count).
		Str("type", "UnseenCategoryWarning")
}

// NewUnseenCategoryWarning は新しいUnseenCategoryWarningを作成します。
func NewUnseenCategoryWarning(column string, values []string, count int) *UnseenCategoryWarning {
	if len(values) > 10 {
		values = values[:10]
	}
	return &UnseenCategoryWarning{Column: column, Values: values, Count: count}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError は未学習の状態で `Transform` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("eclyon: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("eclyon: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// `ValueError`よりも具体的なバリデーションロジックの失敗を示します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("eclyon: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("eclyon: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はモデルや前処理パイプラインに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eclyon: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("eclyon: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// InvalidTreeError は決定木のノード構造が壊れている場合のエラーです。
// 範囲外の子ノードインデックスや特徴量インデックスを検出した時点で返されます。
type InvalidTreeError struct {
	Node   int    // 問題のあるノード
	Field  string // "children_left", "children_right", "feature" など
	Index  int    // 範囲外の値
	Limit  int    // 許容される上限（排他的）
	Reason string
}

func (e *InvalidTreeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("eclyon: invalid tree: node %d: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("eclyon: invalid tree: node %d: %s index %d out of range [0, %d)", e.Node, e.Field, e.Index, e.Limit)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidTreeError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("node", e.Node).
		Str("field", e.Field).
		Int("index", e.Index).
		Int("limit", e.Limit).
		Str("reason", e.Reason).
		Str("type", "InvalidTreeError")
}

// NewInvalidTreeError は範囲外インデックスによるInvalidTreeErrorを作成し、スタックトレースを付与します。
func NewInvalidTreeError(node int, field string, index, limit int) error {
	err := &InvalidTreeError{Node: node, Field: field, Index: index, Limit: limit}
	return errors.WithStack(err)
}

// NewInvalidTreeErrorf は任意の理由によるInvalidTreeErrorを作成します。
func NewInvalidTreeErrorf(node int, format string, args ...interface{}) error {
	err := &InvalidTreeError{Node: node, Index: -1, Limit: -1, Reason: fmt.Sprintf(format, args...)}
	return errors.WithStack(err)
}

// ParseError は列の値を期待する型として解釈できなかった場合のエラーです。
// 日付列の展開時に日付として解釈できない文字列があった場合などに返されます。
type ParseError struct {
	Column string
	Row    int
	Value  string
	Target string // "datetime" など
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("eclyon: cannot parse %q as %s in column '%s' (row %d)", e.Value, e.Target, e.Column, e.Row)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ParseError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Int("row", e.Row).
		Str("value", e.Value).
		Str("target", e.Target).
		Str("type", "ParseError")
}

// NewParseError は新しいParseErrorを作成し、スタックトレースを付与します。
func NewParseError(column string, row int, value, target string) error {
	err := &ParseError{Column: column, Row: row, Value: value, Target: target}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf はフォーマット文字列から新しいエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrColumnNotFound は指定した列がデータセットに存在しない場合のエラーです。
	ErrColumnNotFound = New("column not found")
)
