package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"esphome-go/internal/automation"
)

const maxScriptBody = 1 << 20

type saveAutomationRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LuaCode     string   `json:"lua_code"`
	Enabled     bool     `json:"enabled"`
	Devices     []string `json:"devices"`
}

func (req *saveAutomationRequest) applyTo(script *automation.Script) {
	script.Meta = automation.ScriptMeta{
		Name:        req.Name,
		Description: req.Description,
		Enabled:     req.Enabled,
		Devices:     req.Devices,
	}
	script.LuaCode = req.LuaCode
}

// automationView is a script plus whether its VM is running.
type automationView struct {
	*automation.Script
	Running bool `json:"running"`
}

func (s *Server) automationView(script *automation.Script) automationView {
	v := automationView{Script: script}
	if s.autoEngine != nil {
		v.Running = slices.Contains(s.autoEngine.Running(), script.ID)
	}
	return v
}

// scripts returns the script manager, answering 503 when there is none.
func (s *Server) scripts(w http.ResponseWriter) (*automation.Manager, bool) {
	if s.scriptMgr == nil {
		s.writeError(w, http.StatusServiceUnavailable, "automations not available")
		return nil, false
	}
	return s.scriptMgr, true
}

// decodeBody reads a JSON body of at most limit bytes into v, answering 400
// on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// saveScript stores script, restarts or stops its VM to match the enabled
// flag and writes the resulting view.
func (s *Server) saveScript(w http.ResponseWriter, mgr *automation.Manager, script *automation.Script, status int) {
	saved, err := mgr.Save(script)
	if err != nil {
		s.logger.Error("save script", "id", script.ID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if s.autoEngine != nil {
		if saved.Meta.Enabled {
			if err := s.autoEngine.ReloadScript(saved.ID); err != nil {
				s.logger.Error("reload script", "id", saved.ID, "err", err)
			}
		} else {
			s.autoEngine.StopScript(saved.ID)
		}
	}
	s.writeJSON(w, status, s.automationView(saved))
}

func (s *Server) handleAPIListAutomations(w http.ResponseWriter, r *http.Request) {
	if s.scriptMgr == nil {
		s.writeJSON(w, http.StatusOK, []automationView{})
		return
	}
	scripts, err := s.scriptMgr.List()
	if err != nil {
		s.logger.Error("list scripts", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	views := make([]automationView, 0, len(scripts))
	for _, script := range scripts {
		views = append(views, s.automationView(script))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAPIGetAutomation(w http.ResponseWriter, r *http.Request) {
	if s.scriptMgr == nil {
		s.writeError(w, http.StatusNotFound, "script not found")
		return
	}
	script, err := s.scriptMgr.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "script not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.automationView(script))
}

func (s *Server) handleAPICreateAutomation(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.scripts(w)
	if !ok {
		return
	}
	var req saveAutomationRequest
	if !s.decodeBody(w, r, maxScriptBody, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	script := &automation.Script{}
	req.applyTo(script)
	s.saveScript(w, mgr, script, http.StatusCreated)
}

func (s *Server) handleAPIUpdateAutomation(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.scripts(w)
	if !ok {
		return
	}
	existing, err := mgr.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "script not found")
		return
	}
	var req saveAutomationRequest
	if !s.decodeBody(w, r, maxScriptBody, &req) {
		return
	}
	if req.Name == "" {
		req.Name = existing.Meta.Name
	}
	req.applyTo(existing)
	s.saveScript(w, mgr, existing, http.StatusOK)
}

func (s *Server) handleAPIToggleAutomation(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.scripts(w)
	if !ok {
		return
	}
	script, err := mgr.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "script not found")
		return
	}
	script.Meta.Enabled = !script.Meta.Enabled
	s.saveScript(w, mgr, script, http.StatusOK)
}

func (s *Server) handleAPIDeleteAutomation(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.scripts(w)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if s.autoEngine != nil {
		s.autoEngine.StopScript(id)
	}
	if err := mgr.Delete(id); errors.Is(err, automation.ErrScriptNotFound) {
		s.writeError(w, http.StatusNotFound, "script not found")
		return
	} else if err != nil {
		s.logger.Error("delete script", "id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAPIRunAutomation runs a saved script once. The id "_inline" runs
// the lua_code of the request body instead.
func (s *Server) handleAPIRunAutomation(w http.ResponseWriter, r *http.Request) {
	if s.autoEngine == nil {
		s.writeError(w, http.StatusServiceUnavailable, "automation engine not available")
		return
	}
	id := r.PathValue("id")
	if id != "_inline" {
		s.writeJSON(w, http.StatusOK, s.autoEngine.RunScript(id))
		return
	}
	var req struct {
		LuaCode string `json:"lua_code"`
	}
	if !s.decodeBody(w, r, maxScriptBody, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.autoEngine.RunLuaCode(req.LuaCode))
}
