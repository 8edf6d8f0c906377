package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldOwnerID         = "owner_id"
	FieldYear            = "year"
	FieldMonth           = "month"
	FieldCategory        = "category"
	FieldTransactionID   = "transaction_id"
	FieldTransactionType = "transaction_type"
	FieldAmount          = "amount"
	FieldBudgetID        = "budget_id"
	FieldShareID         = "share_id"
	FieldPriority        = "priority"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStorage     = "storage"
	ComponentAuth        = "auth"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSweeper     = "sweeper"
	ComponentLeaderboard = "leaderboard"
	ComponentShare       = "share"
	ComponentExport      = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpValidate = "validate"
	OpSweep    = "sweep"
	OpRefresh  = "refresh"
	OpExport   = "export"
)
