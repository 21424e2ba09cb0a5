package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldSequenceID  = "sequence_id"
	FieldDate        = "date"
	FieldAccountID   = "account_id"
	FieldAccountName = "account_name"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldBalance     = "balance"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpRecord   = "record"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSummary  = "summary"
	OpSnapshot = "snapshot"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
