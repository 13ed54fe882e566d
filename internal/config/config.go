// Package config はコマンドラインツールのパイプライン設定を読み込む
//
// 設定は YAML ファイルから読み込み、ECLYON_* 環境変数で上書きする。
// カレントディレクトリの .env があれば先に環境変数として読み込む。
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
	"github.com/YuminosukeSato/eclyon/preprocessing"
)

// EnvPrefix は上書きに使う環境変数の接頭辞
const EnvPrefix = "ECLYON_"

// Pipeline は process コマンドの設定
type Pipeline struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	Response   string   `yaml:"response"`
	Skip       []string `yaml:"skip"`
	Ignore     []string `yaml:"ignore"`
	DateFields []string `yaml:"dateFields"`
	KeepDates  bool     `yaml:"keepDates"`

	// MaxCategories 以下のカテゴリ数の列はダミー列に展開する。0 以下は上限なし
	MaxCategories int `yaml:"maxCategories"`
	// ValidRows が正なら末尾の行を検証用に分け、学習データで学習した変換を適用する
	ValidRows   int    `yaml:"validRows"`
	ValidOutput string `yaml:"validOutput"`
	// Processor が空でなければ学習済みの Processor を gob で保存する
	Processor string `yaml:"processor"`

	LogLevel   string `yaml:"logLevel"`
	LogConsole bool   `yaml:"logConsole"`
}

// Default はデフォルト設定を返す
func Default() Pipeline {
	return Pipeline{LogLevel: "info"}
}

// LoadDotEnv はファイルが存在すれば .env を読み込む。既存の環境変数は上書きしない
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.Wrap(err, "failed to load .env")
	}
	return nil
}

// Load は path の YAML を読み込み（空なら Default）、環境変数で上書きして検証する
func Load(path string) (Pipeline, error) {
	cfg, err := Read(path)
	if err != nil {
		return Pipeline{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Pipeline{}, err
	}
	return cfg, nil
}

// Read は Load と同じだが検証しない。コマンドラインフラグで上書きしてから Validate を呼ぶ
func Read(path string) (Pipeline, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Pipeline{}, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Pipeline{}, err
	}
	return cfg, nil
}

func (c *Pipeline) applyEnv() error {
	c.Input = getEnvOrDefault("INPUT", c.Input)
	c.Output = getEnvOrDefault("OUTPUT", c.Output)
	c.Response = getEnvOrDefault("RESPONSE", c.Response)
	c.ValidOutput = getEnvOrDefault("VALID_OUTPUT", c.ValidOutput)
	c.Processor = getEnvOrDefault("PROCESSOR", c.Processor)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.Skip = getListOrDefault("SKIP", c.Skip)
	c.Ignore = getListOrDefault("IGNORE", c.Ignore)
	c.DateFields = getListOrDefault("DATE_FIELDS", c.DateFields)

	var err error
	if c.MaxCategories, err = getIntOrDefault("MAX_CATEGORIES", c.MaxCategories); err != nil {
		return err
	}
	if c.ValidRows, err = getIntOrDefault("VALID_ROWS", c.ValidRows); err != nil {
		return err
	}
	if c.KeepDates, err = getBoolOrDefault("KEEP_DATES", c.KeepDates); err != nil {
		return err
	}
	if c.LogConsole, err = getBoolOrDefault("LOG_CONSOLE", c.LogConsole); err != nil {
		return err
	}
	return nil
}

// Validate は設定の整合性を検証する
func (c *Pipeline) Validate() error {
	if c.Input == "" {
		return errors.NewValidationError("input", "input CSV path is required", c.Input)
	}
	if c.ValidRows < 0 {
		return errors.NewValidationError("validRows", "must be non-negative", c.ValidRows)
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ProcessOptions は設定を preprocessing のオプションに変換する
func (c *Pipeline) ProcessOptions() []preprocessing.Option {
	maxCats := preprocessing.NoMaxCategories
	if c.MaxCategories > 0 {
		maxCats = c.MaxCategories
	}
	opts := []preprocessing.Option{preprocessing.WithMaxCategories(maxCats)}
	if c.Response != "" {
		opts = append(opts, preprocessing.WithResponse(c.Response))
	}
	if len(c.Skip) > 0 {
		opts = append(opts, preprocessing.WithSkip(c.Skip...))
	}
	if len(c.Ignore) > 0 {
		opts = append(opts, preprocessing.WithIgnore(c.Ignore...))
	}
	return opts
}

func getEnvOrDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		return v
	}
	return defaultValue
}

func getListOrDefault(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.NewValidationError(EnvPrefix+key, "must be an integer", v)
	}
	return n, nil
}

func getBoolOrDefault(key string, defaultValue bool) (bool, error) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, errors.NewValidationError(EnvPrefix+key, "must be a boolean", v)
	}
	return b, nil
}
