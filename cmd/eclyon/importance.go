package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/eclyon/explain"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/viz"
)

type importanceFlags struct {
	names    []string
	top      int
	unfolded bool
	maxTrees int
	chart    string
}

func newImportanceCmd() *cobra.Command {
	flags := &importanceFlags{}
	cmd := &cobra.Command{
		Use:   "importance <forest.json>",
		Short: "rank features by mean impurity decrease over the ensemble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			ens, err := explain.LoadEnsembleFile(path)
			if err != nil {
				return err
			}
			return runImportance(cmd.OutOrStdout(), ens, flags)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&flags.names, "names", nil, "feature names (defaults to the names stored in the model)")
	f.IntVar(&flags.top, "top", 0, "show only the N most important features")
	f.BoolVar(&flags.unfolded, "unfolded", false, "also show per-tree importances")
	f.IntVar(&flags.maxTrees, "max-trees", 5, "per-tree columns shown with --unfolded")
	f.StringVar(&flags.chart, "chart", "", "save a bar chart (.png, .svg, .pdf)")
	return cmd
}

func runImportance(out io.Writer, ens *explain.Ensemble, flags *importanceFlags) error {
	names, err := featureNames(ens, flags.names)
	if err != nil {
		return err
	}

	if !flags.unfolded {
		scores, err := explain.FeatureImportanceTable(ens, names)
		if err != nil {
			return err
		}
		scores = topN(scores, flags.top)

		t := newTableWriter(out, table.Row{"#", "Feature", "Importance"})
		for i, s := range scores {
			t.AppendRow(table.Row{i + 1, s.Name, formatImportance(s.Importance)})
		}
		t.Render()
		return saveChart(scores, flags.chart)
	}

	u, err := explain.UnfoldedFeatureImportance(ens, names)
	if err != nil {
		return err
	}
	shown := u.NumTrees()
	if flags.maxTrees >= 0 && shown > flags.maxTrees {
		shown = flags.maxTrees
	}

	header := table.Row{"#", "Feature", "Importance", "Std"}
	for k := 0; k < shown; k++ {
		header = append(header, "tree "+strconv.Itoa(k))
	}
	t := newTableWriter(out, header)

	spread := u.Spread()
	scores := topN(u.Ranked, flags.top)
	for i, s := range scores {
		row := table.Row{i + 1, s.Name, formatImportance(s.Importance), formatImportance(spread[s.Index])}
		for k := 0; k < shown; k++ {
			row = append(row, formatImportance(u.PerTree.At(s.Index, k)))
		}
		t.AppendRow(row)
	}
	t.Render()
	return saveChart(scores, flags.chart)
}

// featureNames はフラグ、モデル、"f<i>" の順に特徴量名を決める
func featureNames(ens *explain.Ensemble, override []string) ([]string, error) {
	names := override
	if len(names) == 0 {
		names = ens.FeatureNames
	}
	if len(names) == 0 {
		names = make([]string, ens.NFeatures)
		for i := range names {
			names[i] = fmt.Sprintf("f%d", i)
		}
	}
	if len(names) != ens.NFeatures {
		return nil, errors.NewDimensionError("importance --names", ens.NFeatures, len(names), 1)
	}
	return names, nil
}

func topN(scores []explain.FeatureScore, n int) []explain.FeatureScore {
	if n > 0 && n < len(scores) {
		return scores[:n]
	}
	return scores
}

func formatImportance(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func saveChart(scores []explain.FeatureScore, path string) error {
	if path == "" {
		return nil
	}
	return viz.SaveImportanceChart(scores, viz.DefaultConfig(), path)
}
