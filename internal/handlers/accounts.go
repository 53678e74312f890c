package handlers

import (
	"net/http"

	"newsroom/internal/models"
	"newsroom/internal/store"
)

// Accounts groups the administrator-only account management handlers.
type Accounts struct {
	accounts *store.AccountStore
}

// NewAccounts creates an Accounts handler group.
func NewAccounts(accounts *store.AccountStore) *Accounts {
	return &Accounts{accounts: accounts}
}

type accountRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Password string      `json:"password,omitempty"`
}

// List returns accounts matching the q and role query parameters,
// name ascending.
func (h *Accounts) List(w http.ResponseWriter, r *http.Request) {
	var role *models.Role
	if raw, err := queryInt16(r, "role"); err != nil {
		respondError(w, err)
		return
	} else if raw != nil {
		v := models.Role(*raw)
		role = &v
	}

	items, err := h.accounts.Search(r.URL.Query().Get("q"), role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns one account.
func (h *Accounts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	a, err := h.accounts.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if a == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Create inserts an account. The store allocates the identity and hashes
// the password.
func (h *Accounts) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.accounts.Create(&models.Account{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update modifies an account's name, email and role.
func (h *Accounts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	a := &models.Account{ID: id, Name: req.Name, Email: req.Email, Role: req.Role}
	if err := h.accounts.Update(a); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.accounts.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes an account unless it has authored articles.
func (h *Accounts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.accounts.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ResetTwoFA clears an account's TOTP enrollment so the holder can set
// it up again.
func (h *Accounts) ResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt16(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.accounts.ResetTOTP(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
