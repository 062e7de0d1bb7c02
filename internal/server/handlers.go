package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ubastic/JDfund/internal/fetch"
	"github.com/Ubastic/JDfund/internal/settings"
	"github.com/Ubastic/JDfund/internal/version"
)

type errorResponse struct {
	Error string `json:"error"`
}

type settingsResponse struct {
	Settings settings.Settings `json:"settings"`
}

type toggleRequest struct {
	Platform string `json:"platform"`
}

type bgColorRequest struct {
	Color string `json:"color"`
}

type fetchRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Body   string `json:"body,omitempty"`
}

type fetchResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.gw.GetSettings()})
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var next settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied, err := s.gw.SaveSettings(r.Context(), next)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: applied})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied, err := s.gw.TogglePlatform(r.Context(), req.Platform)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: applied})
}

func (s *Server) handleBGColor(w http.ResponseWriter, r *http.Request) {
	var req bgColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied, err := s.gw.SetBGColor(r.Context(), req.Color)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: applied})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body []byte
	if req.Body != "" {
		body = []byte(req.Body)
	}

	result, err := s.gw.Fetch(r.Context(), req.Method, req.URL, body)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, fetchResponse{Status: result.StatusCode, Body: result.Body})
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	// Termination is immediate and unconditional; the response above is
	// best-effort.
	s.gw.Quit()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"version": version.String(),
	}
	if s.sup != nil {
		stats := s.sup.Stats()
		status["feed"] = map[string]any{
			"state":            string(stats.State),
			"attempts":         stats.Attempts,
			"reconnects":       stats.Reconnects,
			"frames_forwarded": stats.FramesForwarded,
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// statusFor maps core errors to HTTP status codes: caller misuse is 400,
// persistence trouble is 500, upstream fetch trouble is 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, settings.ErrUnknownField),
		errors.Is(err, fetch.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, settings.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
