// Package viz は特徴量重要度と決定木の描画を提供する
//
// 描画設定はグローバルな状態ではなく Config として明示的に渡す。
package viz

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/eclyon/explain"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// Config は描画の文字サイズと出力サイズ
type Config struct {
	// Small は目盛りラベルの文字サイズ
	Small vg.Length
	// Medium は軸ラベルの文字サイズ
	Medium vg.Length
	// Big はタイトルの文字サイズ
	Big vg.Length

	Width  vg.Length
	Height vg.Length
	// BarColor は棒の色
	BarColor color.Color
}

// DefaultConfig はデフォルトの描画設定を返す
func DefaultConfig() Config {
	return Config{
		Small:    vg.Points(10),
		Medium:   vg.Points(12),
		Big:      vg.Points(14),
		Width:    8 * vg.Inch,
		Height:   6 * vg.Inch,
		BarColor: color.RGBA{R: 31, G: 119, B: 180, A: 255},
	}
}

// ImportanceChart は特徴量重要度の横棒グラフを作成する
// scores は Rank の結果を想定し、先頭（最も重要な特徴量）が一番上に描かれる
func ImportanceChart(scores []explain.FeatureScore, cfg Config) (*plot.Plot, error) {
	if len(scores) == 0 {
		return nil, errors.NewModelError("ImportanceChart", "no scores", errors.ErrEmptyData)
	}

	n := len(scores)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, s := range scores {
		// 下から上へ描かれるので逆順に並べる
		values[n-1-i] = s.Importance
		names[n-1-i] = s.Name
	}

	p := plot.New()
	p.Title.Text = "Feature importance"
	p.X.Label.Text = "importance"
	applyFonts(p, cfg)

	bars, err := plotter.NewBarChart(values, barWidth(cfg, n))
	if err != nil {
		return nil, errors.Wrap(err, "ImportanceChart")
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	if cfg.BarColor != nil {
		bars.Color = cfg.BarColor
	}
	p.Add(bars, plotter.NewGrid())
	p.NominalY(names...)
	return p, nil
}

// SaveImportanceChart は横棒グラフを path に保存する。形式は拡張子（.png, .svg, .pdf など）で決まる
func SaveImportanceChart(scores []explain.FeatureScore, cfg Config, path string) error {
	p, err := ImportanceChart(scores, cfg)
	if err != nil {
		return err
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		d := DefaultConfig()
		w, h = d.Width, d.Height
	}
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "save chart to %s", path)
	}
	return nil
}

func applyFonts(p *plot.Plot, cfg Config) {
	if cfg.Big > 0 {
		p.Title.TextStyle.Font.Size = cfg.Big
	}
	if cfg.Medium > 0 {
		p.X.Label.TextStyle.Font.Size = cfg.Medium
		p.Y.Label.TextStyle.Font.Size = cfg.Medium
	}
	if cfg.Small > 0 {
		p.X.Tick.Label.Font.Size = cfg.Small
		p.Y.Tick.Label.Font.Size = cfg.Small
	}
}

// barWidth は棒の太さを出力の高さと本数から決める
func barWidth(cfg Config, n int) vg.Length {
	h := cfg.Height
	if h <= 0 {
		h = DefaultConfig().Height
	}
	w := h / vg.Length(n) * 0.6
	if w > vg.Points(20) {
		w = vg.Points(20)
	}
	if w < vg.Points(1) {
		w = vg.Points(1)
	}
	return w
}
