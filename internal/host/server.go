// Package host is the reference Flow Host: a thin HTTP adapter that
// renders engine views as JSON and forwards user actions back into the
// engine. All flow logic stays in the engine; the host only maps
// transport concerns (routing, status codes, message text).
package host

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpatil/bankflow/pkg/api"
)

// Server exposes a flow engine over HTTP.
type Server struct {
	engine api.Engine
}

// NewHandler builds the HTTP handler for the given engine.
func NewHandler(engine api.Engine) http.Handler {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Post("/sessions", s.startSession)
	r.Get("/sessions/{id}", s.getView)
	r.Put("/sessions/{id}/fields/{field}", s.updateField)
	r.Post("/sessions/{id}/submit", s.submit)
	r.Post("/sessions/{id}/back", s.goBack)
	r.Post("/sessions/{id}/reset", s.reset)
	r.Post("/sessions/{id}/navigate", s.navigate)
	return r
}

type fieldRequest struct {
	Value string `json:"value"`
}

type navigateRequest struct {
	Path string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// viewResponse decorates the engine view with its display path and the
// toast message for the last action, both host-side concerns.
type viewResponse struct {
	*api.View
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusCreated, view, "")
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, "")
}

func (s *Server) updateField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	view, err := s.engine.UpdateField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "field"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, "")
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The pre-submit step only selects the toast text. If the view fails
	// here, Submit below reports the real error; the toast stays empty.
	var fromStep api.StepID
	if from, err := s.engine.View(r.Context(), id); err == nil {
		fromStep = from.Step
	}

	view, err := s.engine.Submit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, toastFor(fromStep, view))
}

func (s *Server) goBack(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GoBack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, "")
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, "")
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	step, ok := StepFor(req.Path)
	if !ok {
		step = api.StepNotFound
	}

	view, err := s.engine.Navigate(r.Context(), chi.URLParam(r, "id"), step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, http.StatusOK, view, "")
}

// toastFor maps the submit result to the human-readable notification the
// reference client shows.
func toastFor(from api.StepID, view *api.View) string {
	switch {
	case from == api.StepLogin && view.Step == api.StepOTPEntry:
		return "OTP Sent"
	case from == api.StepOTPEntry && view.Step == api.StepAccountSelection:
		return "Login Successful"
	case from == api.StepPINEntry && view.Step == api.StepMainMenu:
		return "PIN Verified"
	case from == api.StepPINEntry && view.Step == api.StepLocked:
		return "Account Locked"
	case from == api.StepPINEntry && view.Step == api.StepPINEntry:
		return "Incorrect PIN"
	case from == api.StepSendMoneyConfirm && view.Step == api.StepSendMoneyComplete:
		return "Transfer Successful"
	}
	return ""
}

func writeView(w http.ResponseWriter, status int, view *api.View, message string) {
	writeJSON(w, status, viewResponse{
		View:    view,
		Path:    PathFor(view.Step),
		Message: message,
	})
}

func writeError(w http.ResponseWriter, err error) {
	var verr *api.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.Is(err, api.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrOperationInFlight):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrSessionLocked):
		writeJSON(w, http.StatusLocked, errorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrTerminalStep):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
