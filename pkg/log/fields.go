package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Room coordination
	FieldRoomID   = "room_id"
	FieldClientID = "client_id"
	FieldMsgType  = "msg_type"

	// Service
	FieldService = "service"
)
