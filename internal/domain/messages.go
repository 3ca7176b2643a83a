package domain

import "encoding/json"

// WebSocket message types from client.
const (
	MsgTypeSetName          = "set_name"
	MsgTypeSetPicture       = "set_picture"
	MsgTypeSetHost          = "set_host"
	MsgTypePlay             = "play"
	MsgTypePause            = "pause"
	MsgTypeSeek             = "seek"
	MsgTypeReportTimestamp  = "report_timestamp"
	MsgTypeChat             = "chat"
	MsgTypeJoinVideoChat    = "join_video_chat"
	MsgTypeLeaveVideoChat   = "leave_video_chat"
	MsgTypeJoinScreenShare  = "join_screen_share"
	MsgTypeLeaveScreenShare = "leave_screen_share"
	MsgTypeStartVBrowser    = "start_vbrowser"
	MsgTypeStopVBrowser     = "stop_vbrowser"
	MsgTypeChangeController = "change_controller"
	MsgTypeAskHost          = "ask_host"
	MsgTypeSignal           = "signal"
	MsgTypeSignalSS         = "signal_ss"
)

// WebSocket message types to client.
const (
	MsgTypeHostState   = "host_state"
	MsgTypeNameMap     = "name_map"
	MsgTypePictureMap  = "picture_map"
	MsgTypeTSMap       = "ts_map"
	MsgTypeChatHistory = "chat_history"
	MsgTypeChatMessage = "chat_message"
	MsgTypeRoster      = "roster"
	MsgTypeError       = "error"
)

// Error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type SetNameMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type SetPictureMessage struct {
	Type    string `json:"type"`
	Picture string `json:"picture"`
}

type SetHostMessage struct {
	Type  string `json:"type"`
	Video string `json:"video"`
}

type SeekMessage struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

type ReportTimestampMessage struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

type ChatSendMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type JoinScreenShareMessage struct {
	Type string `json:"type"`
	File bool   `json:"file"`
}

type ChangeControllerMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// SignalSendMessage carries an opaque peer-negotiation payload addressed
// to one other participant. Msg is forwarded verbatim, never inspected.
type SignalSendMessage struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Msg  json.RawMessage `json:"msg"`
}

type SignalSSSendMessage struct {
	Type   string          `json:"type"`
	To     string          `json:"to"`
	Sharer bool            `json:"sharer"`
	Msg    json.RawMessage `json:"msg"`
}

// Server -> Client messages

// HostStateMessage is the host-state projection: what is playing, where,
// and whether it is paused.
type HostStateMessage struct {
	Type    string  `json:"type"`
	Video   string  `json:"video"`
	VideoTS float64 `json:"video_ts"`
	Paused  bool    `json:"paused"`
}

type NameMapMessage struct {
	Type  string            `json:"type"`
	Names map[string]string `json:"names"`
}

type PictureMapMessage struct {
	Type     string            `json:"type"`
	Pictures map[string]string `json:"pictures"`
}

type TSMapMessage struct {
	Type       string             `json:"type"`
	Timestamps map[string]float64 `json:"timestamps"`
}

type ChatHistoryMessage struct {
	Type     string        `json:"type"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessageOut struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

type RosterMessage struct {
	Type         string        `json:"type"`
	Participants []Participant `json:"participants"`
}

// PlayNoticeMessage is broadcast to every participant except the one
// that pressed play.
type PlayNoticeMessage struct {
	Type  string `json:"type"`
	Video string `json:"video"`
}

type PauseNoticeMessage struct {
	Type string `json:"type"`
}

type SeekNoticeMessage struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

type SignalRelayMessage struct {
	Type string          `json:"type"`
	From string          `json:"from"`
	Msg  json.RawMessage `json:"msg"`
}

type SignalSSRelayMessage struct {
	Type   string          `json:"type"`
	From   string          `json:"from"`
	Sharer bool            `json:"sharer"`
	Msg    json.RawMessage `json:"msg"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
