package room

import (
	"time"

	"github.com/weiawesome/wes-io-party/internal/domain"
)

// Payload size guards. Oversized input is dropped silently: no state
// change, no broadcast, no notification to the sender.
const (
	MaxNameLength    = 100
	MaxPictureLength = 10000
	MaxHostLength    = 20000
	MaxChatLength    = 65536
)

// ChatHistoryLimit bounds the chat/event log to the most recent entries.
const ChatHistoryLimit = 50

// Video URI schemes that denote a participant-sourced content stream
// instead of a shared URL.
const (
	SchemeScreenShare = "screenshare://"
	SchemeFileShare   = "fileshare://"
	SchemeVBrowser    = "vbrowser://"
)

// Emitter delivers outbound events to the room's connections. The hub
// implements it; a message addressed to an unknown client id is dropped
// silently.
type Emitter interface {
	ToClient(clientID string, message interface{})
	Broadcast(message interface{})
	BroadcastExcept(clientID string, message interface{})
}

// Config holds per-room tunables.
type Config struct {
	HeartbeatInterval time.Duration
	VBrowserHost      string
	VBrowserUser      string
	VBrowserPass      string
}

// Room is the authoritative state coordinator for one watch session.
// All state is owned by a single event loop: commands, lifecycle events
// and heartbeat ticks run to completion one at a time, so none of the
// fields below need locking.
type Room struct {
	id  string
	out Emitter
	cfg Config

	video      string
	videoTS    float64
	paused     bool
	roster     []*domain.Participant
	chat       []domain.ChatMessage
	tsMap      map[string]float64
	nameMap    map[string]string
	pictureMap map[string]string
	vbrowser   *domain.VBrowserSession

	emptySince time.Time

	events chan func()
	done   chan struct{}

	now func() time.Time
}

// New creates a room, optionally hydrated from a persisted snapshot.
// Call Start to run its event loop.
func New(id string, out Emitter, cfg Config, snap *domain.Snapshot) *Room {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = time.Second
	}
	r := &Room{
		id:         id,
		out:        out,
		cfg:        cfg,
		tsMap:      make(map[string]float64),
		nameMap:    make(map[string]string),
		pictureMap: make(map[string]string),
		events:     make(chan func(), 64),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	// A room with no connections yet is already eligible for eviction.
	r.emptySince = r.now()
	if snap != nil {
		r.hydrate(snap)
	}
	return r
}

// ID returns the room's immutable identifier.
func (r *Room) ID() string {
	return r.id
}

// Start runs the room's event loop until Close.
func (r *Room) Start() {
	go r.run()
}

// Close stops the event loop. Commands posted after Close are dropped.
func (r *Room) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

func (r *Room) run() {
	ticker := time.NewTicker(r.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case fn := <-r.events:
			fn()
		case <-ticker.C:
			r.broadcastTimestamps()
		}
	}
}

// do posts a command to the event loop. It reports false when the room
// is closed.
func (r *Room) do(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// Connect adds a participant and sends it the current room state. It
// reports false when the room has already been closed; callers should
// fetch a fresh room from the registry and retry.
func (r *Room) Connect(clientID string) bool {
	return r.do(func() { r.connect(clientID) })
}

// Disconnect removes a participant.
func (r *Room) Disconnect(clientID string) {
	r.do(func() { r.disconnect(clientID) })
}

func (r *Room) SetName(clientID, name string) {
	r.do(func() { r.setName(clientID, name) })
}

func (r *Room) SetPicture(clientID, picture string) {
	r.do(func() { r.setPicture(clientID, picture) })
}

func (r *Room) SetHost(clientID, video string) {
	r.do(func() { r.requestHost(clientID, video) })
}

func (r *Room) Play(clientID string) {
	r.do(func() { r.play(clientID) })
}

func (r *Room) Pause(clientID string) {
	r.do(func() { r.pause(clientID) })
}

func (r *Room) Seek(clientID string, timestamp float64) {
	r.do(func() { r.seek(clientID, timestamp) })
}

func (r *Room) ReportTimestamp(clientID string, timestamp float64) {
	r.do(func() { r.reportTimestamp(clientID, timestamp) })
}

func (r *Room) Chat(clientID, content string) {
	r.do(func() { r.chatMessage(clientID, content) })
}

func (r *Room) JoinVideoChat(clientID string) {
	r.do(func() { r.setVideoChat(clientID, true) })
}

func (r *Room) LeaveVideoChat(clientID string) {
	r.do(func() { r.setVideoChat(clientID, false) })
}

func (r *Room) JoinScreenShare(clientID string, file bool) {
	r.do(func() { r.joinScreenShare(clientID, file) })
}

func (r *Room) LeaveScreenShare(clientID string) {
	r.do(func() { r.leaveScreenShare(clientID) })
}

func (r *Room) StartVBrowser(clientID string) {
	r.do(func() { r.startVBrowser(clientID) })
}

func (r *Room) StopVBrowser(clientID string) {
	r.do(func() { r.stopVBrowser(clientID) })
}

func (r *Room) ChangeController(clientID, targetID string) {
	r.do(func() { r.changeController(targetID) })
}

func (r *Room) AskHost(clientID string) {
	r.do(func() { r.askHost(clientID) })
}

func (r *Room) Signal(clientID, to string, msg []byte) {
	r.do(func() { r.relaySignal(clientID, to, msg) })
}

func (r *Room) SignalSS(clientID, to string, sharer bool, msg []byte) {
	r.do(func() { r.relaySignalSS(clientID, to, sharer, msg) })
}

// Snapshot returns the persistable projection of the room. It reports
// false when the room is already closed.
func (r *Room) Snapshot() (domain.Snapshot, bool) {
	reply := make(chan domain.Snapshot, 1)
	if !r.do(func() { reply <- r.snapshot() }) {
		return domain.Snapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-r.done:
		return domain.Snapshot{}, false
	}
}

// EmptySince reports when the roster last became empty. ok is false if
// the room has connected participants or is closed.
func (r *Room) EmptySince() (time.Time, bool) {
	reply := make(chan time.Time, 1)
	if !r.do(func() { reply <- r.emptySince }) {
		return time.Time{}, false
	}
	select {
	case t := <-reply:
		return t, !t.IsZero()
	case <-r.done:
		return time.Time{}, false
	}
}
