package log

// Field names shared across log call sites so records stay greppable.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldBaseCurrency = "base_currency"
	FieldBackend      = "backend"
	FieldLedgerSize   = "ledger_size"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBackend = "backend"
)
