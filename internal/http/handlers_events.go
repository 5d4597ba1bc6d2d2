package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	accountID, err := requireAccountQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.store.ListEvents(r.Context(), accountID)
	if err != nil {
		slog.ErrorContext(r.Context(), "list events", "account_id", accountID, "error", err)
		writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []core.CashFlowEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event core.CashFlowEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if event.AccountID == "" {
		writeError(w, http.StatusBadRequest, "missing accountId")
		return
	}
	if err := event.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}

	// The account must exist before we attach events to it.
	if _, err := s.store.GetAccount(r.Context(), event.AccountID); err != nil {
		writeStoreError(w, err)
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		slog.ErrorContext(r.Context(), "create event", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var event core.CashFlowEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event.ID = existing.ID
	event.AccountID = existing.AccountID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	if err := event.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}

	if err := s.store.UpdateEvent(r.Context(), event); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
