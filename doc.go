// Package eclyon provides tabular preprocessing and tree-ensemble interpretation
// for Go, in the style of the classic structured-data workflow: turn a mixed-type
// table into an all-numeric feature matrix, fit a random forest elsewhere, then
// explain it by mean decrease in impurity.
//
// # Installation
//
//	go get github.com/YuminosukeSato/eclyon
//
// # Quick Start
//
// Preparing a training and a validation table with the same encoding:
//
//	package main
//
//	import (
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/eclyon/frame"
//	    "github.com/YuminosukeSato/eclyon/preprocessing"
//	)
//
//	func main() {
//	    f, err := os.Open("train.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer f.Close()
//
//	    ds, err := frame.ReadCSV(f)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ds, err = preprocessing.AddDateColumns(ds, []string{"saledate"}, true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    train, valid, err := preprocessing.SplitRows(ds, ds.NumRows()-12000)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p := preprocessing.NewProcessor(preprocessing.WithResponse("SalePrice"))
//	    trainRes, err := p.FitTransform(train)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    validRes, err := p.Transform(valid)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _, _ = trainRes, validRes
//	}
//
// Explaining a fitted forest exported as JSON:
//
//	ens, err := explain.LoadEnsembleFile("forest.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scores, err := explain.FeatureImportanceTable(ens, ens.FeatureNames)
//
// # Packages
//
//   - frame: column-typed datasets with CSV I/O
//   - preprocessing: date expansion, categorical encoding, imputation and the Processor
//   - explain: decision trees, ensembles and impurity-based feature importance
//   - viz: importance bar charts (gonum/plot) and graphviz DOT rendering
//   - core/model: estimator state and gob persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors and zerolog-backed logging
//
// The cmd/eclyon command wraps these packages as the process, importance and
// tree subcommands.
package eclyon
