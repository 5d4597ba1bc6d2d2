package http

import (
	"log/slog"
	"net/http"

	"saldo/internal/services"
	"saldo/internal/storage"
)

// handleSeedSampleData fills an account with demonstration events and an
// opening balance.
func (s *Server) handleSeedSampleData(w http.ResponseWriter, r *http.Request) {
	accountID, err := requireAccountQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetAccount(r.Context(), accountID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err := services.SeedSampleData(r.Context(), s.store, accountID); err != nil {
		slog.ErrorContext(r.Context(), "seed sample data", "account_id", accountID, "error", err)
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportState(w http.ResponseWriter, r *http.Request) {
	env, err := s.store.ExportState(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "export state", "error", err)
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="saldo-export.json"`)
	writeJSON(w, http.StatusOK, env)
}

// handleImportState replaces the whole dataset with the posted envelope.
func (s *Server) handleImportState(w http.ResponseWriter, r *http.Request) {
	var env storage.Envelope
	if err := decodeJSON(r, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.store.ImportState(r.Context(), env); err != nil {
		slog.ErrorContext(r.Context(), "import state", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
