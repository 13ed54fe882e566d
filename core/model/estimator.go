package model

import (
	"io"

	"github.com/YuminosukeSato/eclyon/frame"
)

// Fitter はデータセットから状態を学習する型のインターフェース
type Fitter interface {
	// Fit はデータセットから変換に必要な状態を学習する
	Fit(ds *frame.Dataset) error

	// IsFitted は学習済みかどうかを返す
	IsFitted() bool
}

// Persistable は学習済みの状態を保存・復元できる型のインターフェース
type Persistable interface {
	// Save は状態を w に書き出す
	Save(w io.Writer) error

	// Load は r から状態を読み込む
	Load(r io.Reader) error
}
