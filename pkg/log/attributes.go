// Standard attribute keys for preprocessing and explainability operations.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "tree.index") so that log output can be filtered by prefix.

package log

// Operation context
const (
	// ComponentKey identifies which package is performing the operation.
	// Examples: "preprocessing", "explain", "viz"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values are the Operation* constants below.
	OperationKey = "ml.operation"

	// PhaseKey indicates the phase of the lifecycle ("training", "inference").
	PhaseKey = "ml.phase"

	// ModelNameKey identifies the type of the fitted object, e.g. "Processor".
	ModelNameKey = "model.name"
)

// Data shape
const (
	// SamplesKey indicates the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of columns or features.
	FeaturesKey = "data.features"

	// ColumnKey names the column an event refers to.
	ColumnKey = "data.column"

	// ColumnKindKey records the tagged kind of a column ("numeric", "categorical", ...).
	ColumnKindKey = "data.column_kind"

	// CategoriesKey records the number of distinct categories of a column.
	CategoriesKey = "data.categories"

	// MissingKey records how many values were missing.
	MissingKey = "data.missing"

	// FillValueKey records the value used to impute missing entries.
	FillValueKey = "data.fill_value"
)

// Tree ensembles
const (
	// TreesKey indicates the number of trees in an ensemble.
	TreesKey = "tree.count"

	// TreeIndexKey identifies a tree within an ensemble.
	TreeIndexKey = "tree.index"

	// NodesKey records the number of nodes of a tree.
	NodesKey = "tree.nodes"
)

// Performance and errors
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationProcess      = "process"
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationImportance   = "feature_importance"
	OperationExpandDates  = "expand_dates"
	OperationFixMissing   = "fix_missing"
	OperationNumericalize = "numericalize"
	OperationOneHot       = "one_hot"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)
