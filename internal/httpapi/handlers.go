package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rbright/predicweb/internal/appliance"
	"github.com/rbright/predicweb/internal/backend"
	"github.com/rbright/predicweb/internal/macros"
	"github.com/rbright/predicweb/internal/route"
)

const listMacrosCommand = "list_macros"

// Macro is one entry of GET /api/macros.
type Macro struct {
	Name  string `json:"name"`
	Slot  string `json:"slot"`
	Label string `json:"label"`
}

// handleCommand keeps the functions.php shape: the raw daemon reply as the body.
func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	command := r.FormValue("command")
	if strings.TrimSpace(command) == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing command parameter"))
		return
	}

	reply, err := s.gateway.Dispatch(r.Context(), command)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if command == listMacrosCommand {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write([]byte(reply))
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.gateway.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleStatusRaw(w http.ResponseWriter, r *http.Request) {
	report, err := s.gateway.GetStatus(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeText(w, report)
}

func (s *server) handleConfig(w http.ResponseWriter, r *http.Request) {
	text, err := s.gateway.GetConfig(r.PathValue("resource"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeText(w, text)
}

func (s *server) handleInputs(w http.ResponseWriter, r *http.Request) {
	inputs, err := s.gateway.Inputs()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputs)
}

func (s *server) handlePresetSets(w http.ResponseWriter, r *http.Request) {
	s.handlePresets(w, r, s.gateway.ListPresetSets)
}

func (s *server) handlePresetOptions(w http.ResponseWriter, r *http.Request) {
	s.handlePresets(w, r, s.gateway.ListPresetOptions)
}

func (s *server) handlePresets(w http.ResponseWriter, r *http.Request, list func(string) ([]string, error)) {
	property := strings.TrimSpace(r.URL.Query().Get("property"))
	if property == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing property parameter"))
		return
	}
	names, err := list(property)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *server) handleMacros(w http.ResponseWriter, r *http.Request) {
	names, err := s.gateway.ListMacros()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]Macro, 0, len(names))
	for _, name := range names {
		out = append(out, Macro{Name: name, Slot: macros.Slot(name), Label: macros.Label(name)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleAmp(w http.ResponseWriter, r *http.Request) {
	state, err := s.gateway.AmpliStatus()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

func (s *server) handleSpeaker(w http.ResponseWriter, r *http.Request) {
	name, err := s.gateway.Loudspeaker()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ecasound, err := s.gateway.UsesEcasound()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loudspeaker": name, "ecasound": ecasound})
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Warn("request failed",
			"request_id", RequestID(r.Context()),
			"path", r.URL.Path,
			"status", code,
			"error", err.Error(),
		)
	}
	writeError(w, code, err)
}

// StatusCode maps gateway errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, route.ErrInvalidURL), errors.Is(err, appliance.ErrUnknownResource):
		return http.StatusBadRequest
	case errors.Is(err, appliance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrConnect), errors.Is(err, backend.ErrExchange):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
