package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID  = "run_id"
	FieldDevice = "device"
	FieldAppID  = "app_id"

	// Process fields
	FieldComponent = "component"
	FieldPhase     = "phase"
	FieldStep      = "step"
	FieldScript    = "script"

	// Content fields
	FieldContentID = "content_id"
	FieldMediaType = "media_type"

	// Beacon fields
	FieldCategory    = "category"
	FieldContentType = "content_type"
	FieldElapsedMS   = "elapsed_ms"
	FieldMissing     = "missing"

	// Network fields
	FieldBaseURL    = "base_url"
	FieldStreamAddr = "stream_addr"
)
