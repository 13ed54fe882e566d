package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// CleanPath はファイルパスを正規化し、正規化後も ".." 要素が残るパスを拒否する
// "data..v2.csv" のように名前の一部に ".." を含むだけのパスは受け付ける
func CleanPath(filename string) (string, error) {
	clean := filepath.Clean(filename)
	for _, elem := range strings.Split(filepath.ToSlash(clean), "/") {
		if elem == ".." {
			return "", errors.NewValidationError("path", "path traversal detected", filename)
		}
	}
	return clean, nil
}

// SaveModel はモデルをファイルに保存する
//
// パラメータ:
//   - model: 保存するモデル（BaseEstimatorを埋め込んだ構造体）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	p := preprocessing.NewProcessor(preprocessing.WithResponse("SalePrice"))
//	// ... p.Fit(train) ...
//	err := model.SaveModel(p, "processor.gob")
func SaveModel(model interface{}, filename string) error {
	path, err := CleanPath(filename)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はファイルからモデルを読み込む
//
// パラメータ:
//   - model: 読み込み先のモデル（BaseEstimatorを埋め込んだ構造体のポインタ）
//   - filename: 読み込み元のファイルパス
func LoadModel(model interface{}, filename string) error {
	path, err := CleanPath(filename)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
