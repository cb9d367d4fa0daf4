package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
	"esphome-go/internal/entity"
	"esphome-go/internal/store"
)

// deviceView is a device as served by the API.
type deviceView struct {
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	State    string        `json:"state"`
	Info     *device.Info  `json:"info,omitempty"`
	Stats    statsView     `json:"stats"`
	Entities int           `json:"entities"`
	Record   *store.Device `json:"record,omitempty"`
}

type statsView struct {
	Connected         bool       `json:"connected"`
	FramesRx          uint64     `json:"frames_rx"`
	FramesTx          uint64     `json:"frames_tx"`
	MessagesRx        uint64     `json:"messages_rx"`
	MessagesTx        uint64     `json:"messages_tx"`
	PingsSent         uint64     `json:"pings_sent"`
	Connects          uint64     `json:"connects"`
	Reconnects        uint64     `json:"reconnects"`
	HandshakeFailures uint64     `json:"handshake_failures"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
}

// entityView is an entity as served by the API.
type entityView struct {
	Key               uint32         `json:"key"`
	Kind              api.EntityKind `json:"kind"`
	ObjectID          string         `json:"object_id"`
	Name              string         `json:"name"`
	Icon              string         `json:"icon,omitempty"`
	Category          string         `json:"category,omitempty"`
	DisabledByDefault bool           `json:"disabled_by_default,omitempty"`
	State             any            `json:"state"`
	Formatted         string         `json:"formatted"`
}

type commandRequest struct {
	Command string `json:"command"`
}

func newStatsView(st device.Stats) statsView {
	v := statsView{
		Connected:         st.Connected,
		FramesRx:          st.FramesRx,
		FramesTx:          st.FramesTx,
		MessagesRx:        st.MessagesRx,
		MessagesTx:        st.MessagesTx,
		PingsSent:         st.PingsSent,
		Connects:          st.Connects,
		Reconnects:        st.Reconnects,
		HandshakeFailures: st.HandshakeFailures,
	}
	if !st.LastActivity.IsZero() {
		v.LastActivity = &st.LastActivity
	}
	return v
}

func newEntityView(e entity.Entity) entityView {
	info := e.Info()
	v := entityView{
		Key:               e.Key(),
		Kind:              e.Kind(),
		ObjectID:          info.ObjectID,
		Name:              info.Name,
		Icon:              info.Icon,
		DisabledByDefault: info.DisabledByDefault,
		State:             e.StateValue(),
		Formatted:         e.FormattedState(),
	}
	if info.EntityCategory != api.EntityCategoryNone {
		v.Category = info.EntityCategory.String()
	}
	return v
}

func (s *Server) deviceView(name string, n node) deviceView {
	v := deviceView{
		Name:    name,
		Address: n.Address(),
		State:   n.State().String(),
		Stats:   newStatsView(n.Stats()),
	}
	if info, ok := n.Info(); ok {
		v.Info = &info
	}
	if reg := n.Registry(); reg != nil {
		v.Entities = reg.Len()
	}
	if s.store != nil {
		if rec, err := s.store.GetDevice(n.Address()); err == nil {
			v.Record = rec
		}
	}
	return v
}

func (s *Server) handleAPIListDevices(w http.ResponseWriter, r *http.Request) {
	views := make([]deviceView, 0, len(s.nodes))
	for _, name := range s.nodeNames() {
		views = append(views, s.deviceView(name, s.nodes[name]))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAPIGetDevice(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	n, ok := s.nodes[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, "device not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deviceView(name, n))
}

// registry returns the registry of the named device, writing an error
// response when there is none.
func (s *Server) registry(w http.ResponseWriter, name string) (*entity.Registry, bool) {
	n, ok := s.nodes[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, "device not found")
		return nil, false
	}
	reg := n.Registry()
	if reg == nil {
		s.writeError(w, http.StatusServiceUnavailable, "device not connected")
		return nil, false
	}
	return reg, true
}

func (s *Server) handleAPIListEntities(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registry(w, r.PathValue("name"))
	if !ok {
		return
	}
	sorted := reg.Sorted()
	views := make([]entityView, 0, len(sorted))
	for _, e := range sorted {
		views = append(views, newEntityView(e))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) lookupEntity(w http.ResponseWriter, r *http.Request) (entity.Entity, bool) {
	reg, ok := s.registry(w, r.PathValue("name"))
	if !ok {
		return nil, false
	}
	e, ok := reg.ByObjectID(api.EntityKind(r.PathValue("kind")), r.PathValue("object_id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "entity not found")
		return nil, false
	}
	return e, true
}

func (s *Server) handleAPIGetEntity(w http.ResponseWriter, r *http.Request) {
	if e, ok := s.lookupEntity(w, r); ok {
		s.writeJSON(w, http.StatusOK, newEntityView(e))
	}
}

func (s *Server) handleAPIEntityCommand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookupEntity(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if !s.decodeBody(w, r, 1<<16, &req) {
		return
	}

	if err := entity.Execute(e, req.Command); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, entity.ErrReadOnly):
			status = http.StatusMethodNotAllowed
		case errors.Is(err, entity.ErrInvalidValue):
			status = http.StatusBadRequest
		case errors.Is(err, device.ErrNotConnected), errors.Is(err, entity.ErrNoSender):
			status = http.StatusServiceUnavailable
		}
		s.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleAPIListInventory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []*store.Device{})
		return
	}
	devices, err := s.store.ListDevices()
	if err != nil {
		s.logger.Error("list devices", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleAPIDeleteInventory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "device not found")
		return
	}
	address := r.PathValue("address")
	if _, err := s.store.GetDevice(address); errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err := s.store.DeleteDevice(address); err != nil {
		s.logger.Error("delete device", "err", err, "address", address)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writeJSON encode failed", "err", err)
	}
}
