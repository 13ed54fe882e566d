package main

import (
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/eclyon/core/model"
	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/internal/config"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
	"github.com/YuminosukeSato/eclyon/preprocessing"
)

func newProcessCmd(root *rootFlags) *cobra.Command {
	var cfg config.Pipeline
	cmd := &cobra.Command{
		Use:   "process [input.csv]",
		Short: "convert a mixed-type CSV into an all-numeric feature table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Read(root.configFile)
			if err != nil {
				return err
			}
			mergeFlags(cmd, &loaded, &cfg)
			if len(args) == 1 {
				loaded.Input = args[0]
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			for _, p := range []*string{&loaded.Input, &loaded.Output, &loaded.ValidOutput, &loaded.Processor} {
				if *p, err = absPath(*p); err != nil {
					return err
				}
			}
			return runProcess(cmd.OutOrStdout(), loaded)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Input, "input", "i", "", "input CSV")
	f.StringVarP(&cfg.Output, "output", "o", "", "output CSV (stdout when empty)")
	f.StringVarP(&cfg.Response, "response", "y", "", "response column")
	f.StringSliceVar(&cfg.Skip, "skip", nil, "columns to drop")
	f.StringSliceVar(&cfg.Ignore, "ignore", nil, "columns passed through untouched")
	f.StringSliceVar(&cfg.DateFields, "date", nil, "columns expanded into date attributes")
	f.BoolVar(&cfg.KeepDates, "keep-dates", false, "keep the source date columns")
	f.IntVar(&cfg.MaxCategories, "max-categories", 0, "one-hot encode categoricals with at most this many categories")
	f.IntVar(&cfg.ValidRows, "valid-rows", 0, "hold out the last N rows as a validation set")
	f.StringVar(&cfg.ValidOutput, "valid-output", "", "output CSV for the validation set")
	f.StringVar(&cfg.Processor, "processor", "", "save the fitted processor (gob)")
	return cmd
}

// mergeFlags は明示的に指定されたフラグだけで設定を上書きする
func mergeFlags(cmd *cobra.Command, dst, flags *config.Pipeline) {
	changed := cmd.Flags().Changed
	if changed("input") {
		dst.Input = flags.Input
	}
	if changed("output") {
		dst.Output = flags.Output
	}
	if changed("response") {
		dst.Response = flags.Response
	}
	if changed("skip") {
		dst.Skip = flags.Skip
	}
	if changed("ignore") {
		dst.Ignore = flags.Ignore
	}
	if changed("date") {
		dst.DateFields = flags.DateFields
	}
	if changed("keep-dates") {
		dst.KeepDates = flags.KeepDates
	}
	if changed("max-categories") {
		dst.MaxCategories = flags.MaxCategories
	}
	if changed("valid-rows") {
		dst.ValidRows = flags.ValidRows
	}
	if changed("valid-output") {
		dst.ValidOutput = flags.ValidOutput
	}
	if changed("processor") {
		dst.Processor = flags.Processor
	}
}

func runProcess(out io.Writer, cfg config.Pipeline) error {
	logger := log.GetLoggerWithName("cli")

	ds, err := readCSVFile(cfg.Input)
	if err != nil {
		return err
	}
	if len(cfg.DateFields) > 0 {
		if ds, err = preprocessing.AddDateColumns(ds, cfg.DateFields, !cfg.KeepDates); err != nil {
			return err
		}
	}

	train, valid := ds, (*frame.Dataset)(nil)
	if cfg.ValidRows > 0 {
		if train, valid, err = preprocessing.SplitRows(ds, ds.NumRows()-cfg.ValidRows); err != nil {
			return err
		}
	}

	p := preprocessing.NewProcessor(cfg.ProcessOptions()...)
	res, err := p.FitTransform(train)
	if err != nil {
		return err
	}
	if err := writeResult(out, cfg.Output, cfg.Response, res); err != nil {
		return err
	}

	var validRes *preprocessing.Result
	if valid != nil {
		if validRes, err = p.Transform(valid); err != nil {
			return err
		}
		if cfg.ValidOutput != "" {
			if err := writeResult(out, cfg.ValidOutput, cfg.Response, validRes); err != nil {
				return err
			}
		}
	}

	if cfg.Processor != "" {
		if err := model.SaveModel(p, cfg.Processor); err != nil {
			return errors.Wrap(err, "save processor")
		}
		logger.Info("processor saved", "path", cfg.Processor)
	}

	// CSV を標準出力に書いた場合は表を混ぜない
	if cfg.Output != "" {
		renderSummary(out, res, validRes)
	}
	return nil
}

func readCSVFile(path string) (*frame.Dataset, error) {
	clean, err := model.CleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(clean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input CSV")
	}
	defer f.Close()

	ds, err := frame.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", clean)
	}
	return ds, nil
}

// writeResult は特徴量と目的変数（あれば末尾の列）を CSV で書き出す。path が空なら stdout
func writeResult(stdout io.Writer, path, response string, res *preprocessing.Result) error {
	ds := res.Features.Clone()
	if response != "" && res.Response != nil {
		if err := ds.Set(frame.NewNumeric(response, res.Response)); err != nil {
			return err
		}
	}

	if path == "" {
		return ds.WriteCSV(stdout)
	}
	clean, err := model.CleanPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(clean)
	if err != nil {
		return errors.Wrap(err, "failed to create output CSV")
	}
	if err := ds.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderSummary(out io.Writer, train, valid *preprocessing.Result) {
	t := newTableWriter(out, table.Row{"Set", "Rows", "Features"})
	t.AppendRow(table.Row{"train", train.Features.NumRows(), train.Features.NumCols()})
	if valid != nil {
		t.AppendRow(table.Row{"valid", valid.Features.NumRows(), valid.Features.NumCols()})
	}
	t.Render()

	if len(train.Imputation) == 0 {
		return
	}
	names := make([]string, 0, len(train.Imputation))
	for name := range train.Imputation {
		names = append(names, name)
	}
	sort.Strings(names)

	t = newTableWriter(out, table.Row{"Column", "Filler"})
	for _, name := range names {
		t.AppendRow(table.Row{name, strconv.FormatFloat(train.Imputation[name], 'g', -1, 64)})
	}
	t.Render()
}
