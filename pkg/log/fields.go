package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldRoute     = "route"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Tenant and entity
	FieldOrgID    = "org_id"
	FieldEntityID = "entity_id"
	FieldKind     = "kind"
	FieldSequence = "sequence"

	// Service
	FieldService = "service"

	// Database
	FieldSQL          = "sql"
	FieldRowsAffected = "rows"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
