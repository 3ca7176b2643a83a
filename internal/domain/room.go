package domain

// Participant is one connected member of a room. ID is the opaque
// connection id assigned by the transport; it is unique only for the
// lifetime of that connection.
type Participant struct {
	ID            string `json:"id"`
	IsVideoChat   bool   `json:"is_video_chat"`
	IsScreenShare bool   `json:"is_screen_share"`
	IsController  bool   `json:"is_controller"`
}

// ChatMessage is one entry of a room's bounded chat/event log. Control
// actions (host, play, pause, seek) are logged here alongside free-form
// chat; Cmd is empty for plain chat text. Msg holds the payload: a URI
// for host entries, chat text, or a formatted playback offset for
// play/pause/seek entries.
type ChatMessage struct {
	ID        string  `json:"id,omitempty"`
	Cmd       string  `json:"cmd,omitempty"`
	Msg       string  `json:"msg"`
	Timestamp string  `json:"timestamp"`
	VideoTS   float64 `json:"video_ts"`
}

// VBrowserSession is the stub record of a provisioned shared remote
// browser. Actual VM provisioning and teardown are external; the room
// only tracks the credential/host triple and boot time.
type VBrowserSession struct {
	BootTime int64  `json:"boot_time"`
	User     string `json:"user"`
	Pass     string `json:"pass"`
	Host     string `json:"host"`
}

// Snapshot is the persisted projection of a room. Roster and the
// per-participant timestamp map are connection-scoped and intentionally
// excluded.
type Snapshot struct {
	Video      string            `json:"video"`
	VideoTS    float64           `json:"video_ts"`
	Paused     bool              `json:"paused"`
	NameMap    map[string]string `json:"name_map,omitempty"`
	PictureMap map[string]string `json:"picture_map,omitempty"`
	Chat       []ChatMessage     `json:"chat,omitempty"`
	VBrowser   *VBrowserSession  `json:"vbrowser,omitempty"`
}
