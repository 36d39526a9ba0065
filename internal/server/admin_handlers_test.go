package server

import (
	"fmt"
	"net/http"
	"testing"

	"reclaimit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "pleb@campus.edu", "CS21-0040", models.RoleUser)
	token := ts.tokenFor(t, user)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/api/admin/items"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodDelete, "/api/admin/items/found/1"},
		{http.MethodPatch, "/api/admin/users/1/toggle-status"},
	}
	for _, p := range paths {
		resp, _ := ts.doJSON(t, p.method, p.path, nil, token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", p.method, p.path)
	}
}

func TestGetDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0010", models.RoleAdmin)
	reporter := ts.seedUser(t, "reporter@campus.edu", "CS21-0041", models.RoleUser)

	ts.seedLostItem(t, reporter.ID, "Calculator")
	ts.seedFoundItem(t, reporter.ID, "Notebook")
	ts.seedFoundItem(t, reporter.ID, "Pen Drive")

	resp, body := ts.doJSON(t, http.MethodGet, "/api/admin/stats", nil, ts.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_users"])
	assert.Equal(t, float64(1), stats["total_lost"])
	assert.Equal(t, float64(2), stats["total_found"])
	assert.Equal(t, float64(0), stats["pending_claims"])
}

func TestListAllItems(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0011", models.RoleAdmin)
	reporter := ts.seedUser(t, "reporter@campus.edu", "CS21-0042", models.RoleUser)

	ts.seedLostItem(t, reporter.ID, "History Textbook")
	ts.seedFoundItem(t, reporter.ID, "Water Bottle")

	token := ts.tokenFor(t, admin)

	resp, body := ts.doJSON(t, http.MethodGet, "/api/admin/items", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])

	resp, body = ts.doJSON(t, http.MethodGet, "/api/admin/items?search=textbook", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}

func TestAdminDeleteItem(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0012", models.RoleAdmin)
	reporter := ts.seedUser(t, "reporter@campus.edu", "CS21-0043", models.RoleUser)
	item := ts.seedFoundItem(t, reporter.ID, "Abandoned Umbrella")

	token := ts.tokenFor(t, admin)

	resp, _ := ts.doJSON(t, http.MethodDelete,
		fmt.Sprintf("/api/admin/items/found/%d", item.ID), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.doJSON(t, http.MethodGet,
		fmt.Sprintf("/api/items/found/%d", item.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.doJSON(t, http.MethodDelete, "/api/admin/items/found/9999", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0013", models.RoleAdmin)
	ts.seedUser(t, "dave@campus.edu", "CS21-0044", models.RoleUser)
	ts.seedUser(t, "erin@campus.edu", "CS21-0045", models.RoleUser)

	token := ts.tokenFor(t, admin)

	resp, body := ts.doJSON(t, http.MethodGet, "/api/admin/users", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	users := body["users"].([]any)
	for _, u := range users {
		assert.Nil(t, u.(map[string]any)["password"])
	}

	resp, body = ts.doJSON(t, http.MethodGet, "/api/admin/users?search=erin", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}

func TestGetUserDetail(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0015", models.RoleAdmin)
	reporter := ts.seedUser(t, "busy@campus.edu", "CS21-0047", models.RoleUser)

	ts.seedLostItem(t, reporter.ID, "Lab Coat")
	ts.seedFoundItem(t, reporter.ID, "Spectacles")
	ts.seedFoundItem(t, reporter.ID, "Charger")

	token := ts.tokenFor(t, admin)

	resp, body := ts.doJSON(t, http.MethodGet,
		fmt.Sprintf("/api/admin/users/%d", reporter.ID), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user := body["user"].(map[string]any)
	assert.Equal(t, "busy@campus.edu", user["email"])

	activity := body["activity"].(map[string]any)
	assert.Equal(t, float64(1), activity["lost_reported"])
	assert.Equal(t, float64(2), activity["found_reported"])
	assert.Equal(t, float64(0), activity["pending_claims"])

	resp, _ = ts.doJSON(t, http.MethodGet, "/api/admin/users/9999", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleUserStatus(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@campus.edu", "AD00-0014", models.RoleAdmin)
	other := ts.seedUser(t, "target@campus.edu", "CS21-0046", models.RoleUser)

	token := ts.tokenFor(t, admin)
	path := fmt.Sprintf("/api/admin/users/%d/toggle-status", other.ID)

	resp, body := ts.doJSON(t, http.MethodPatch, path, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blocked", body["user"].(map[string]any)["status"])

	resp, body = ts.doJSON(t, http.MethodPatch, path, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["user"].(map[string]any)["status"])

	t.Run("AdminTargetRefused", func(t *testing.T) {
		resp, _ := ts.doJSON(t, http.MethodPatch,
			fmt.Sprintf("/api/admin/users/%d/toggle-status", admin.ID), nil, token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
