package handler

import (
	"net/http"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// StoreStatusRequest is the body of PUT /admin/stores/{storeId}/status.
type StoreStatusRequest struct {
	Status string `json:"status"`
}

// UserRoleRequest is the body of PUT /admin/users/{userId}/role.
type UserRoleRequest struct {
	Role string `json:"role"`
}

// AdminListStores handles GET /admin/stores.
func (s *Server) AdminListStores(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stores, total, err := s.stores.ListStores(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(stores, total, params, storeToResponse))
}

// AdminSetStoreStatus handles PUT /admin/stores/{storeId}/status.
func (s *Server) AdminSetStoreStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "storeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body StoreStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.stores.SetStatus(r.Context(), id, domain.StoreStatus(body.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storeToResponse(updated))
}

// AdminListUsers handles GET /admin/users.
func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	users, total, err := s.auth.ListUsers(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(users, total, params, userToResponse))
}

// AdminSetUserRole handles PUT /admin/users/{userId}/role.
func (s *Server) AdminSetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body UserRoleRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.auth.SetRole(r.Context(), id, domain.Role(body.Role))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(updated))
}
