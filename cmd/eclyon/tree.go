package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/eclyon/core/model"
	"github.com/YuminosukeSato/eclyon/explain"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/viz"
)

type treeFlags struct {
	index     int
	names     []string
	size      float64
	ratio     float64
	precision int
	out       string
}

func newTreeCmd() *cobra.Command {
	flags := &treeFlags{}
	cmd := &cobra.Command{
		Use:   "tree <forest.json>",
		Short: "render one tree of the ensemble as graphviz DOT",
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
			return runTree(cmd.OutOrStdout(), ens, flags)
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.index, "index", 0, "tree index in the ensemble")
	f.StringSliceVar(&flags.names, "names", nil, "feature names (defaults to the names stored in the model)")
	f.Float64Var(&flags.size, "size", 10, "graph size in inches")
	f.Float64Var(&flags.ratio, "ratio", 0.6, "graph aspect ratio")
	f.IntVar(&flags.precision, "precision", 0, "decimal places for thresholds and impurity")
	f.StringVarP(&flags.out, "output", "o", "", "write DOT to a file instead of stdout")
	return cmd
}

func runTree(out io.Writer, ens *explain.Ensemble, flags *treeFlags) error {
	if flags.index < 0 || flags.index >= len(ens.Trees) {
		return errors.NewValidationError("index", "tree index out of range", flags.index)
	}
	names := flags.names
	if len(names) == 0 {
		names = ens.FeatureNames
	}

	dot, err := viz.TreeDOT(ens.Trees[flags.index], names,
		viz.WithSize(flags.size),
		viz.WithRatio(flags.ratio),
		viz.WithPrecision(flags.precision),
	)
	if err != nil {
		return err
	}

	if flags.out == "" {
		_, err = io.WriteString(out, dot)
		return err
	}
	path, err := absPath(flags.out)
	if err == nil {
		path, err = model.CleanPath(path)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
		return errors.Wrap(err, "write DOT")
	}
	return nil
}
