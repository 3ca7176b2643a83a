package room

import "github.com/weiawesome/wes-io-party/internal/domain"

// snapshot builds the persistable projection of the room. Roster and
// the timestamp map are connection-scoped and excluded on purpose.
func (r *Room) snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Video:   r.video,
		VideoTS: r.videoTS,
		Paused:  r.paused,
	}
	if len(r.nameMap) > 0 {
		snap.NameMap = make(map[string]string, len(r.nameMap))
		for k, v := range r.nameMap {
			snap.NameMap[k] = v
		}
	}
	if len(r.pictureMap) > 0 {
		snap.PictureMap = make(map[string]string, len(r.pictureMap))
		for k, v := range r.pictureMap {
			snap.PictureMap[k] = v
		}
	}
	if len(r.chat) > 0 {
		snap.Chat = append([]domain.ChatMessage(nil), r.chat...)
	}
	if r.vbrowser != nil {
		vb := *r.vbrowser
		snap.VBrowser = &vb
	}
	return snap
}

// hydrate applies a previously persisted snapshot. The host-state triple
// is overwritten unconditionally; optional fields only when present, so
// a partial snapshot leaves defaults in place.
func (r *Room) hydrate(snap *domain.Snapshot) {
	r.video = snap.Video
	r.videoTS = snap.VideoTS
	r.paused = snap.Paused
	if snap.Chat != nil {
		r.chat = append([]domain.ChatMessage(nil), snap.Chat...)
	}
	if snap.NameMap != nil {
		r.nameMap = make(map[string]string, len(snap.NameMap))
		for k, v := range snap.NameMap {
			r.nameMap[k] = v
		}
	}
	if snap.PictureMap != nil {
		r.pictureMap = make(map[string]string, len(snap.PictureMap))
		for k, v := range snap.PictureMap {
			r.pictureMap[k] = v
		}
	}
	if snap.VBrowser != nil {
		vb := *snap.VBrowser
		r.vbrowser = &vb
	}
}
