package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list accounts", "error", err)
		writeStoreError(w, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.store.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if err := decodeJSON(r, &account); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := account.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Currency == "" {
		account.Currency = "EUR"
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.store.CreateAccount(r.Context(), account); err != nil {
		slog.ErrorContext(r.Context(), "create account", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var account core.Account
	if err := decodeJSON(r, &account); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	if err := account.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}

	if err := s.store.UpdateAccount(r.Context(), account); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
