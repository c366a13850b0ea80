package schema

// Custom string types for type safety.
type (
	// FixMode controls how output basenames are decorated.
	FixMode string

	// ViewMode selects which result view a host application opens.
	ViewMode string

	// BlameExclusions is the policy for excluded-category blame lines.
	BlameExclusions string

	// PercentBase selects the metric that author percentages are computed over.
	PercentBase string

	// OutputFormat represents a requested output format.
	OutputFormat string

	// LineCategory classifies a single blame line.
	LineCategory string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// TaskState tracks the lifecycle of one repository analysis task.
	TaskState string
)

// All filename fix modes supported.
const (
	PrefixFix  FixMode = "prefix" // default
	PostfixFix FixMode = "postfix"
	NoFix      FixMode = "nofix"
)

// All view modes supported.
const (
	AutoView    ViewMode = "auto" // default
	DynamicView ViewMode = "dynamic-blame-history"
	NoneView    ViewMode = "none"
)

// All blame exclusion policies supported.
const (
	HideExclusions   BlameExclusions = "hide" // default
	ShowExclusions   BlameExclusions = "show"
	RemoveExclusions BlameExclusions = "remove"
)

// All percentage bases supported.
const (
	LinesBase   PercentBase = "lines" // default
	CommitsBase PercentBase = "commits"
)

// All output formats supported.
const (
	HTMLFormat    OutputFormat = "html" // default
	ExcelFormat   OutputFormat = "excel"
	JSONFormat    OutputFormat = "json"
	CSVFormat     OutputFormat = "csv"
	ParquetFormat OutputFormat = "parquet"
)

// All line categories supported.
const (
	CodeLine       LineCategory = "code"
	CommentLine    LineCategory = "comment"
	WhitespaceLine LineCategory = "whitespace"
	EmptyLine      LineCategory = "empty"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All repository task states.
const (
	PendingState   TaskState = "pending"
	RunningState   TaskState = "running"
	CompletedState TaskState = "completed"
	FailedState    TaskState = "failed"
)

// CopyMoveMax is the strongest copy/move detection level; 0 disables detection.
const CopyMoveMax = 4

// ValidFixModes lists all valid fix modes.
var ValidFixModes = map[FixMode]struct{}{
	PrefixFix:  {},
	PostfixFix: {},
	NoFix:      {},
}

// ValidViewModes lists all valid view modes.
var ValidViewModes = map[ViewMode]struct{}{
	AutoView:    {},
	DynamicView: {},
	NoneView:    {},
}

// ValidBlameExclusions lists all valid blame exclusion policies.
var ValidBlameExclusions = map[BlameExclusions]struct{}{
	HideExclusions:   {},
	ShowExclusions:   {},
	RemoveExclusions: {},
}

// ValidPercentBases lists all valid percentage bases.
var ValidPercentBases = map[PercentBase]struct{}{
	LinesBase:   {},
	CommitsBase: {},
}

// ValidOutputFormats lists all valid output formats.
var ValidOutputFormats = map[OutputFormat]struct{}{
	HTMLFormat:    {},
	ExcelFormat:   {},
	JSONFormat:    {},
	CSVFormat:     {},
	ParquetFormat: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// DefaultExtensions is the default set of tracked file extensions.
var DefaultExtensions = []string{
	"c", "cc", "cif", "cpp", "glsl", "h", "hh", "hpp",
	"java", "js", "py", "rb", "sql",
}
