package enums

// Client to server events. COME_ONLINE and JOIN_CHAT are kept as two wire
// values for compatibility with older clients; both register presence.
const (
	SOCKET_EVENT_COME_ONLINE     = "come_online"
	SOCKET_EVENT_JOIN_CHAT       = "join_chat"
	SOCKET_EVENT_REQUEST_HISTORY = "request_history"
	SOCKET_EVENT_SEND_MESSAGE    = "send_message"
)

// Server to client events.
const (
	SOCKET_EVENT_HISTORY      = "history"
	SOCKET_EVENT_MESSAGE      = "message"
	SOCKET_EVENT_PRESENCE_SET = "presence_set"
	SOCKET_EVENT_SEND_FAILED  = "send_failed"
)
