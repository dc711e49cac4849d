package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/handler"
)

func TestAdminListStores_200(t *testing.T) {
	api := newTestAPI()
	api.stores.listStores = func(_ context.Context, p domain.PaginationParams) ([]domain.Store, int64, error) {
		assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 1}, p)
		return []domain.Store{{ID: storeID, Subdomain: "mi-tienda"}}, 3, nil
	}

	rec := api.do(t, http.MethodGet, "/admin/stores?page=2&limit=1", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[handler.ListResponse[handler.Store]](t, rec)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, handler.Pagination{
		Page: 2, Limit: 1, Total: 3, TotalPages: 3, HasNextPage: true, HasPreviousPage: true,
	}, resp.Pagination)
}

func TestAdminRoutes_403_RevokesMerchantSession(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/admin/users", merchantToken, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, []string{merchantToken}, api.auth.loggedOut)

	// The revoked token no longer works anywhere.
	rec = api.do(t, http.MethodGet, storePath(""), merchantToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_401_Anonymous(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/admin/stores", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, api.auth.loggedOut)
}

func TestAdminSetStoreStatus_200(t *testing.T) {
	api := newTestAPI()
	target := uuid.New()
	api.stores.setStatus = func(_ context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
		assert.Equal(t, target, id)
		return domain.Store{ID: id, Status: status}, nil
	}

	rec := api.do(t, http.MethodPut, "/admin/stores/"+target.String()+"/status", adminToken,
		jsonBody(t, handler.StoreStatusRequest{Status: "suspended"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "suspended", decode[handler.Store](t, rec).Status)
}

func TestAdminSetUserRole_200(t *testing.T) {
	api := newTestAPI()
	api.auth.setRole = func(_ context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
		assert.Equal(t, merchant.ID, id)
		return domain.User{ID: id, Role: role}, nil
	}

	rec := api.do(t, http.MethodPut, "/admin/users/"+merchant.ID.String()+"/role", adminToken,
		jsonBody(t, handler.UserRoleRequest{Role: "admin"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode[handler.User](t, rec).Role)
}

func TestAdminListUsers_200(t *testing.T) {
	api := newTestAPI()
	api.auth.listUsers = func(context.Context, domain.PaginationParams) ([]domain.User, int64, error) {
		return []domain.User{merchant, admin}, 2, nil
	}

	rec := api.do(t, http.MethodGet, "/admin/users", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.ListResponse[handler.User]](t, rec).Data, 2)
}
