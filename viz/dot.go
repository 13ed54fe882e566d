package viz

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/eclyon/explain"
)

// DOTOption は TreeDOT の設定を行う関数
type DOTOption func(*dotOptions)

type dotOptions struct {
	size      float64
	ratio     float64
	precision int
}

// WithSize は graphviz の size 属性（インチ）を設定する。デフォルトは 10
func WithSize(size float64) DOTOption {
	return func(o *dotOptions) {
		o.size = size
	}
}

// WithRatio は graphviz の ratio 属性を設定する。デフォルトは 0.6
func WithRatio(ratio float64) DOTOption {
	return func(o *dotOptions) {
		o.ratio = ratio
	}
}

// WithPrecision は閾値と不純度の小数点以下の桁数を設定する。デフォルトは 0
func WithPrecision(precision int) DOTOption {
	return func(o *dotOptions) {
		o.precision = precision
	}
}

// TreeDOT は決定木を左から右に展開した graphviz DOT テキストを返す
//
// 分割ノードは "特徴量 ≤ 閾値"、不純度、重み付きサンプル数を表示し、
// 不純度が低いほど濃い色で塗る。names が足りない特徴量は "X[i]" と表示する。
func TreeDOT(tree *explain.DecisionTree, names []string, opts ...DOTOption) (string, error) {
	if err := tree.Validate(); err != nil {
		return "", err
	}
	o := dotOptions{size: 10, ratio: 0.6}
	for _, opt := range opts {
		opt(&o)
	}

	maxImpurity := 0.0
	for _, v := range tree.Impurity {
		if v > maxImpurity {
			maxImpurity = v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph Tree { size=%s; ratio=%s\n", formatFloat(o.size, -1), formatFloat(o.ratio, -1))
	b.WriteString("node [shape=box, style=\"filled, rounded\", color=\"black\", fontname=\"helvetica\"] ;\n")
	b.WriteString("edge [fontname=\"helvetica\"] ;\n")
	b.WriteString("rankdir=LR ;\n")

	for n := 0; n < tree.NodeCount(); n++ {
		var label []string
		if !tree.IsLeaf(n) {
			threshold := "?"
			if tree.Threshold != nil {
				threshold = formatFloat(tree.Threshold[n], o.precision)
			}
			label = append(label, fmt.Sprintf("%s &le; %s", html.EscapeString(featureName(names, tree.Feature[n])), threshold))
		}
		label = append(label,
			"impurity = "+formatFloat(tree.Impurity[n], o.precision),
			"samples = "+formatFloat(tree.WeightedNNodeSamples[n], o.precision),
		)
		fmt.Fprintf(&b, "%d [label=<%s>, fillcolor=\"%s\"] ;\n", n, strings.Join(label, "<br/>"), fillColor(tree.Impurity[n], maxImpurity))
	}

	for n := 0; n < tree.NodeCount(); n++ {
		if tree.IsLeaf(n) {
			continue
		}
		l, r := tree.ChildrenLeft[n], tree.ChildrenRight[n]
		if n == 0 {
			fmt.Fprintf(&b, "%d -> %d [labeldistance=2.5, labelangle=-45, headlabel=\"True\"] ;\n", n, l)
			fmt.Fprintf(&b, "%d -> %d [labeldistance=2.5, labelangle=45, headlabel=\"False\"] ;\n", n, r)
			continue
		}
		fmt.Fprintf(&b, "%d -> %d ;\n", n, l)
		fmt.Fprintf(&b, "%d -> %d ;\n", n, r)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func featureName(names []string, f int) string {
	if f < len(names) && names[f] != "" {
		return names[f]
	}
	return "X[" + strconv.Itoa(f) + "]"
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// fillColor は不純度が低いほど不透明なオレンジを返す
func fillColor(impurity, maxImpurity float64) string {
	alpha := 1.0
	if maxImpurity > 0 {
		alpha = 1 - impurity/maxImpurity
	}
	return fmt.Sprintf("#e58139%02x", int(alpha*255+0.5))
}
