package room

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/weiawesome/wes-io-party/internal/domain"
	"github.com/weiawesome/wes-io-party/pkg/log"
)

// Chat log command tags.
const (
	CmdHost  = "host"
	CmdPlay  = "play"
	CmdPause = "pause"
	CmdSeek  = "seek"
)

func (r *Room) connect(clientID string) {
	r.roster = append(r.roster, &domain.Participant{ID: clientID})
	r.emptySince = time.Time{}

	r.out.ToClient(clientID, r.hostState())
	r.out.ToClient(clientID, &domain.NameMapMessage{Type: domain.MsgTypeNameMap, Names: r.nameMap})
	r.out.ToClient(clientID, &domain.PictureMapMessage{Type: domain.MsgTypePictureMap, Pictures: r.pictureMap})
	r.out.ToClient(clientID, &domain.TSMapMessage{Type: domain.MsgTypeTSMap, Timestamps: r.tsMap})
	r.out.ToClient(clientID, &domain.ChatHistoryMessage{Type: domain.MsgTypeChatHistory, Messages: r.chat})
	r.broadcastRoster()

	l := log.L()
	l.Debug().Str(log.FieldRoomID, r.id).Str(log.FieldClientID, clientID).Msg("participant connected")
}

func (r *Room) disconnect(clientID string) {
	idx := -1
	for i, p := range r.roster {
		if p.ID == clientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	removed := r.roster[idx]
	r.roster = append(r.roster[:idx], r.roster[idx+1:]...)
	r.broadcastRoster()

	if removed.IsScreenShare {
		// The content source is gone, reset the room to idle.
		r.setHost(clientID, "")
	}

	if len(r.roster) == 0 {
		r.emptySince = r.now()
	}

	l := log.L()
	l.Debug().Str(log.FieldRoomID, r.id).Str(log.FieldClientID, clientID).Msg("participant disconnected")
}

func (r *Room) setName(clientID, name string) {
	if name == "" || len(name) > MaxNameLength {
		return
	}
	r.nameMap[clientID] = name
	r.out.Broadcast(&domain.NameMapMessage{Type: domain.MsgTypeNameMap, Names: r.nameMap})
}

func (r *Room) setPicture(clientID, picture string) {
	if len(picture) > MaxPictureLength {
		return
	}
	r.pictureMap[clientID] = picture
	r.out.Broadcast(&domain.PictureMapMessage{Type: domain.MsgTypePictureMap, Pictures: r.pictureMap})
}

// requestHost is the participant-facing host change. It is rejected
// while a screen or file share is active; arbitration is first-come,
// there is no preemption.
func (r *Room) requestHost(clientID, video string) {
	if len(video) > MaxHostLength {
		return
	}
	if r.sharer() != nil {
		return
	}
	r.setHost(clientID, video)
}

// setHost is the central arbitration action: it replaces the content
// source and fully resets playback, even when re-entering the same
// video.
func (r *Room) setHost(clientID, video string) {
	r.video = video
	r.videoTS = 0
	r.paused = false
	r.tsMap = make(map[string]float64)

	r.out.Broadcast(&domain.TSMapMessage{Type: domain.MsgTypeTSMap, Timestamps: r.tsMap})
	r.out.Broadcast(r.hostState())

	if video != "" {
		r.addChatMessage(domain.ChatMessage{ID: clientID, Cmd: CmdHost, Msg: video})
	}

	l := log.L()
	l.Info().Str(log.FieldRoomID, r.id).Str(log.FieldClientID, clientID).Str("video", video).Msg("host changed")
}

func (r *Room) play(clientID string) {
	r.paused = false
	r.out.BroadcastExcept(clientID, &domain.PlayNoticeMessage{Type: domain.MsgTypePlay, Video: r.video})
	r.addChatMessage(domain.ChatMessage{ID: clientID, Cmd: CmdPlay, Msg: formatTS(r.tsMap[clientID])})
}

func (r *Room) pause(clientID string) {
	r.paused = true
	r.out.BroadcastExcept(clientID, &domain.PauseNoticeMessage{Type: domain.MsgTypePause})
	r.addChatMessage(domain.ChatMessage{ID: clientID, Cmd: CmdPause, Msg: formatTS(r.tsMap[clientID])})
}

func (r *Room) seek(clientID string, timestamp float64) {
	r.videoTS = timestamp
	r.out.BroadcastExcept(clientID, &domain.SeekNoticeMessage{Type: domain.MsgTypeSeek, Timestamp: timestamp})
	r.addChatMessage(domain.ChatMessage{ID: clientID, Cmd: CmdSeek, Msg: formatTS(timestamp)})
}

// reportTimestamp records a participant's self-reported playback offset.
// The authoritative position only moves forward here; it is propagated
// to others by the periodic heartbeat, not per report.
func (r *Room) reportTimestamp(clientID string, timestamp float64) {
	if timestamp > r.videoTS {
		r.videoTS = timestamp
	}
	r.tsMap[clientID] = timestamp
}

func (r *Room) chatMessage(clientID, content string) {
	if len(content) > MaxChatLength {
		return
	}
	r.addChatMessage(domain.ChatMessage{ID: clientID, Msg: content})
}

// addChatMessage stamps, appends, truncates to the most recent entries
// and broadcasts the stamped message.
func (r *Room) addChatMessage(msg domain.ChatMessage) {
	msg.Timestamp = r.now().UTC().Format(time.RFC3339)
	msg.VideoTS = r.tsMap[msg.ID]
	r.chat = append(r.chat, msg)
	if len(r.chat) > ChatHistoryLimit {
		r.chat = r.chat[len(r.chat)-ChatHistoryLimit:]
	}
	r.out.Broadcast(&domain.ChatMessageOut{Type: domain.MsgTypeChatMessage, Message: msg})
}

func (r *Room) setVideoChat(clientID string, on bool) {
	if p := r.participant(clientID); p != nil {
		p.IsVideoChat = on
	}
	r.broadcastRoster()
}

func (r *Room) joinScreenShare(clientID string, file bool) {
	if r.sharer() != nil {
		return
	}
	scheme := SchemeScreenShare
	if file {
		scheme = SchemeFileShare
	}
	r.setHost(clientID, scheme+clientID)
	if p := r.participant(clientID); p != nil {
		p.IsScreenShare = true
	}
	r.broadcastRoster()
}

// leaveScreenShare always resets the room to idle, even when the caller
// was not the active sharer.
func (r *Room) leaveScreenShare(clientID string) {
	if p := r.participant(clientID); p != nil {
		p.IsScreenShare = false
	}
	r.setHost(clientID, "")
	r.broadcastRoster()
}

func (r *Room) startVBrowser(clientID string) {
	r.vbrowser = &domain.VBrowserSession{
		BootTime: r.now().UnixMilli(),
		User:     r.cfg.VBrowserUser,
		Pass:     r.cfg.VBrowserPass,
		Host:     r.cfg.VBrowserHost,
	}
	for _, p := range r.roster {
		p.IsController = p.ID == clientID
	}
	r.setHost(clientID, SchemeVBrowser+r.vbrowser.User+":"+r.vbrowser.Pass+"@"+r.vbrowser.Host)
	r.broadcastRoster()
}

func (r *Room) stopVBrowser(clientID string) {
	r.vbrowser = nil
	for _, p := range r.roster {
		p.IsController = false
	}
	r.setHost(clientID, "")
}

func (r *Room) changeController(targetID string) {
	if r.participant(targetID) == nil {
		return
	}
	for _, p := range r.roster {
		p.IsController = p.ID == targetID
	}
	r.broadcastRoster()
}

func (r *Room) askHost(clientID string) {
	r.out.ToClient(clientID, r.hostState())
}

// relaySignal forwards an opaque peer-negotiation payload to one
// participant. An unknown target is absorbed by the transport.
func (r *Room) relaySignal(clientID, to string, msg []byte) {
	r.out.ToClient(to, &domain.SignalRelayMessage{
		Type: domain.MsgTypeSignal,
		From: clientID,
		Msg:  json.RawMessage(msg),
	})
}

func (r *Room) relaySignalSS(clientID, to string, sharer bool, msg []byte) {
	r.out.ToClient(to, &domain.SignalSSRelayMessage{
		Type:   domain.MsgTypeSignalSS,
		From:   clientID,
		Sharer: sharer,
		Msg:    json.RawMessage(msg),
	})
}

// broadcastTimestamps is the heartbeat: the only path by which
// individual playback positions become visible to other participants.
func (r *Room) broadcastTimestamps() {
	r.out.Broadcast(&domain.TSMapMessage{Type: domain.MsgTypeTSMap, Timestamps: r.tsMap})
}

func (r *Room) broadcastRoster() {
	r.out.Broadcast(&domain.RosterMessage{Type: domain.MsgTypeRoster, Participants: r.rosterCopy()})
}

func (r *Room) hostState() *domain.HostStateMessage {
	return &domain.HostStateMessage{
		Type:    domain.MsgTypeHostState,
		Video:   r.video,
		VideoTS: r.videoTS,
		Paused:  r.paused,
	}
}

func (r *Room) participant(clientID string) *domain.Participant {
	for _, p := range r.roster {
		if p.ID == clientID {
			return p
		}
	}
	return nil
}

func (r *Room) sharer() *domain.Participant {
	for _, p := range r.roster {
		if p.IsScreenShare {
			return p
		}
	}
	return nil
}

func (r *Room) rosterCopy() []domain.Participant {
	out := make([]domain.Participant, len(r.roster))
	for i, p := range r.roster {
		out[i] = *p
	}
	return out
}

func formatTS(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}
