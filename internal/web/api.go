package web

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"unitconv/internal/convert"
	"unitconv/internal/service"

	"github.com/gorilla/mux"
)

type categoryResponse struct {
	Name        string   `json:"name"`
	Units       []string `json:"units"`
	Description string   `json:"description,omitempty"`
	Common      []string `json:"common_conversions,omitempty"`
}

type historyEntryResponse struct {
	Category  string    `json:"category"`
	Value     float64   `json:"value"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Result    float64   `json:"result"`
	Formatted string    `json:"formatted"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

type convertResponse struct {
	Result    float64              `json:"result"`
	Formatted string               `json:"formatted"`
	Display   string               `json:"display"`
	Entry     historyEntryResponse `json:"entry"`
}

type askRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("write json error: %v", err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write json error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	if service.IsUserError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func toEntryResponse(e service.HistoryEntry) historyEntryResponse {
	return historyEntryResponse{
		Category:  e.Category,
		Value:     e.Value,
		From:      e.FromUnit,
		To:        e.ToUnit,
		Result:    e.Result,
		Formatted: e.Formatted,
		CreatedAt: e.CreatedAt,
	}
}

func toConvertResponse(res service.Result) convertResponse {
	return convertResponse{
		Result:    res.Entry.Result,
		Formatted: res.Entry.Formatted,
		Display:   res.Display,
		Entry:     toEntryResponse(res.Entry),
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	var out []categoryResponse
	for _, cat := range convert.Categories() {
		units, _ := convert.Units(cat)
		out = append(out, categoryResponse{
			Name:        string(cat),
			Units:       units,
			Description: convert.Describe(cat),
			Common:      convert.CommonConversions(cat),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listUnits(w http.ResponseWriter, r *http.Request) {
	cat, err := convert.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	units, _ := convert.Units(cat)
	writeJSON(w, http.StatusOK, categoryResponse{Name: string(cat), Units: units})
}

func (s *Server) apiConvert(w http.ResponseWriter, r *http.Request) {
	var req service.ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	res, err := s.conv.Convert(r.Context(), sessionFrom(r), req)
	if err != nil {
		writeError(w, statusFor(err), service.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, toConvertResponse(res))
}

func (s *Server) apiAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	res, err := s.conv.Ask(r.Context(), sessionFrom(r), req.Query)
	if err != nil {
		writeError(w, statusFor(err), service.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, toConvertResponse(res))
}

func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.conv.History(r.Context(), sessionFrom(r))
	if err != nil {
		log.Printf("history list error session=%s: %v", sessionFrom(r), err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) apiClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.conv.ClearHistory(r.Context(), sessionFrom(r)); err != nil {
		log.Printf("history clear error session=%s: %v", sessionFrom(r), err)
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) {
	sess, ok, err := s.conv.Session(r.Context(), sessionFrom(r))
	if err != nil {
		log.Printf("session load error session=%s: %v", sessionFrom(r), err)
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt, LastSeen: sess.LastSeen})
}
