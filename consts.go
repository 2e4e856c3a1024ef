package execlog

const (
	emptyString = ""

	// ErrorFileName receives error-severity lines only.
	ErrorFileName = "error.json"
	// CombinedFileName receives lines of every severity at or above Config.Level.
	CombinedFileName = "combined.json"
	// SnapshotFileName is overwritten with the aggregated buffer on each Flush.
	SnapshotFileName = "ExecutionLog.json"

	// UnknownFile and UnknownLine stand in for locations that could not be resolved.
	UnknownFile = "Unknown file"
	UnknownLine = "Unknown line"

	// GuardMessagePrefix prefixes the message logged for failures absorbed by Execute and Run.
	GuardMessagePrefix = "Oops! Something went wrong: "

	// EnvProduction disables the console mirror.
	EnvProduction  = "production"
	EnvDevelopment = "development"

	envPrefix      = "EXECLOG_"
	fileURIScheme  = "file://"
	summaryLayout  = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"
	maxChainDepth  = 50
	snapshotIndent = "  "
)

const (
	errMsgNilConfig      = "Logging config is nil."
	errMsgNilService     = "Logger service is nil."
	errMsgConfigInvalid  = "Logging configuration is invalid."
	errMsgWorkingDir     = "Unable to determine the working directory."
	errMsgLogDir         = "Unable to create the log directory."
	errMsgSinkOpen       = "Unable to open the log sink."
	errMsgSnapshotEncode = "Unable to encode the execution snapshot."
	errMsgSnapshotWrite  = "Unable to write the execution snapshot."
	errMsgSnapshotFailed = "Flush failed, pending entries were kept."
	errMsgConfigLoad     = "Unable to load logging configuration."
	errMsgNilAction      = "Action is nil."
	errMsgClosed         = "Logger service is closed."
)
