package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-io-party/internal/domain"
	"github.com/weiawesome/wes-io-party/internal/hub"
	"github.com/weiawesome/wes-io-party/internal/room"
	"github.com/weiawesome/wes-io-party/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades participant connections and routes their decoded
// commands to the right room. Anyone holding a room id may connect:
// participant identity is the connection id and nothing more.
type WSHandler struct {
	hub      *hub.Hub
	registry *room.Registry
	wsCfg    hub.Config
}

func NewWSHandler(h *hub.Hub, registry *room.Registry, wsCfg hub.Config) *WSHandler {
	return &WSHandler{
		hub:      h,
		registry: registry,
		wsCfg:    wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		http.Error(w, "room_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), roomID, h.hub, conn, h.wsCfg)
	h.hub.Register(client)

	rm := h.registry.GetOrCreate(r.Context(), roomID)
	if !rm.Connect(client.ID) {
		// The room was evicted between lookup and connect; the next
		// lookup creates a fresh one.
		rm = h.registry.GetOrCreate(r.Context(), roomID)
		rm.Connect(client.ID)
	}

	go client.WritePump()
	go func() {
		client.ReadPump(func(c *hub.Client, message []byte) {
			h.handleMessage(rm, c, message)
		})
		rm.Disconnect(client.ID)
	}()
}

func (h *WSHandler) handleMessage(rm *room.Room, c *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	switch base.Type {
	case domain.MsgTypeSetName:
		var msg domain.SetNameMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid set_name message"))
			return
		}
		rm.SetName(c.ID, msg.Name)

	case domain.MsgTypeSetPicture:
		var msg domain.SetPictureMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid set_picture message"))
			return
		}
		rm.SetPicture(c.ID, msg.Picture)

	case domain.MsgTypeSetHost:
		var msg domain.SetHostMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid set_host message"))
			return
		}
		rm.SetHost(c.ID, msg.Video)

	case domain.MsgTypePlay:
		rm.Play(c.ID)

	case domain.MsgTypePause:
		rm.Pause(c.ID)

	case domain.MsgTypeSeek:
		var msg domain.SeekMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid seek message"))
			return
		}
		rm.Seek(c.ID, msg.Timestamp)

	case domain.MsgTypeReportTimestamp:
		var msg domain.ReportTimestampMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid report_timestamp message"))
			return
		}
		rm.ReportTimestamp(c.ID, msg.Timestamp)

	case domain.MsgTypeChat:
		var msg domain.ChatSendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid chat message"))
			return
		}
		rm.Chat(c.ID, msg.Content)

	case domain.MsgTypeJoinVideoChat:
		rm.JoinVideoChat(c.ID)

	case domain.MsgTypeLeaveVideoChat:
		rm.LeaveVideoChat(c.ID)

	case domain.MsgTypeJoinScreenShare:
		var msg domain.JoinScreenShareMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join_screen_share message"))
			return
		}
		rm.JoinScreenShare(c.ID, msg.File)

	case domain.MsgTypeLeaveScreenShare:
		rm.LeaveScreenShare(c.ID)

	case domain.MsgTypeStartVBrowser:
		rm.StartVBrowser(c.ID)

	case domain.MsgTypeStopVBrowser:
		rm.StopVBrowser(c.ID)

	case domain.MsgTypeChangeController:
		var msg domain.ChangeControllerMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid change_controller message"))
			return
		}
		rm.ChangeController(c.ID, msg.ClientID)

	case domain.MsgTypeAskHost:
		rm.AskHost(c.ID)

	case domain.MsgTypeSignal:
		var msg domain.SignalSendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid signal message"))
			return
		}
		rm.Signal(c.ID, msg.To, msg.Msg)

	case domain.MsgTypeSignalSS:
		var msg domain.SignalSSSendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid signal_ss message"))
			return
		}
		rm.SignalSS(c.ID, msg.To, msg.Sharer, msg.Msg)

	default:
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}
