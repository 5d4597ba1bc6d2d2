package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
)

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	accountID, err := requireAccountQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshots, err := s.store.ListSnapshots(r.Context(), accountID)
	if err != nil {
		slog.ErrorContext(r.Context(), "list snapshots", "account_id", accountID, "error", err)
		writeStoreError(w, err)
		return
	}
	if snapshots == nil {
		snapshots = []core.BalanceSnapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// handleUpsertSnapshot records a balance correction. A snapshot for an
// existing (account, date) replaces the previous one.
func (s *Server) handleUpsertSnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot core.BalanceSnapshot
	if err := decodeJSON(r, &snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if snapshot.AccountID == "" {
		writeError(w, http.StatusBadRequest, "missing accountId")
		return
	}
	if snapshot.Source == "" {
		snapshot.Source = core.SourceManual
	}
	if err := snapshot.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}

	if _, err := s.store.GetAccount(r.Context(), snapshot.AccountID); err != nil {
		writeStoreError(w, err)
		return
	}

	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	snapshot.CreatedAt = time.Now().UTC()

	if err := s.store.UpsertSnapshot(r.Context(), snapshot); err != nil {
		slog.ErrorContext(r.Context(), "upsert snapshot", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSnapshot(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
