package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/config"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository/jsonstore"
	"github.com/almnar0/almeshkat25/internal/router"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		Origin:        "http://localhost:3000",
	}
}

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	st := store.NewMemory()
	users := jsonstore.NewUserRepo(st)
	require.NoError(t, service.EnsureAdmin(context.Background(),
		users, "Admin", "admin@example.com", "admin123"))
	return router.New(zerolog.Nop(), st, testConfig())
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func registerUser(t *testing.T, h http.Handler, name, email, role string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tok, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestHealthz(t *testing.T) {
	h := newAPI(t)
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	h := newAPI(t)

	tok := registerUser(t, h, "Client", "client@example.com", models.RoleClient)

	rec := do(t, h, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user, _ := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "client@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	rec = do(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "client@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode(t, rec)["error"])
}

func TestSeededAdminCanLogIn(t *testing.T) {
	h := newAPI(t)
	tok := login(t, h, "admin@example.com", "admin123")

	rec := do(t, h, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user, _ := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, models.RoleAdmin, user["role"])
}

func TestRoleGates(t *testing.T) {
	h := newAPI(t)
	adminTok := login(t, h, "admin@example.com", "admin123")
	clientTok := registerUser(t, h, "Client", "client@example.com", models.RoleClient)
	techTok := registerUser(t, h, "Tech", "tech@example.com", models.RoleTechnician)

	// Activity logs: admin only.
	rec := do(t, h, http.MethodGet, "/api/activity-logs", clientTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/activity-logs", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// User listing: admin only.
	rec = do(t, h, http.MethodGet, "/api/users", techTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/users", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Device creation: admin or technician, not client.
	dev := map[string]string{"name": "Projector", "type": "projector"}
	rec = do(t, h, http.MethodPost, "/api/devices", clientTok, dev)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/devices", techTok, dev)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTicketFlowOverHTTP(t *testing.T) {
	h := newAPI(t)
	adminTok := login(t, h, "admin@example.com", "admin123")
	clientTok := registerUser(t, h, "Client", "client@example.com", models.RoleClient)
	strangerTok := registerUser(t, h, "Stranger", "stranger@example.com", models.RoleClient)
	techTok := registerUser(t, h, "Tech", "tech@example.com", models.RoleTechnician)

	rec := do(t, h, http.MethodPost, "/api/tickets", clientTok, map[string]any{
		"serviceType": "repair",
		"title":       "Projector will not power on",
		"description": "The lab projector stopped working this morning.",
		"location":    "Lab 2",
		"priority":    "urgent",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ticket, _ := decode(t, rec)["ticket"].(map[string]any)
	id, _ := ticket["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "new", ticket["status"])

	// Another client cannot see it.
	rec = do(t, h, http.MethodGet, "/api/tickets/"+id, strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Assignment is an admin action.
	techMe := do(t, h, http.MethodGet, "/api/auth/me", techTok, nil)
	techUser, _ := decode(t, techMe)["user"].(map[string]any)
	techID, _ := techUser["id"].(string)

	rec = do(t, h, http.MethodPost, "/api/tickets/"+id+"/assign", techTok,
		map[string]string{"technicianId": techID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tickets/"+id+"/assign", adminTok,
		map[string]string{"technicianId": techID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ticket, _ = decode(t, rec)["ticket"].(map[string]any)
	assert.Equal(t, "assigned", ticket["status"])

	// The technician moves it along and the client rates it.
	rec = do(t, h, http.MethodPatch, "/api/tickets/"+id, techTok,
		map[string]string{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPatch, "/api/tickets/"+id, techTok,
		map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tickets/"+id+"/rate", clientTok,
		map[string]any{"rating": 5, "comment": "fast and friendly"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The technician sees the notifications the flow produced.
	rec = do(t, h, http.MethodGet, "/api/notifications", techTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// List view: the client sees exactly their ticket, with a total header.
	rec = do(t, h, http.MethodGet, "/api/tickets", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
}

func TestLoginRateLimit(t *testing.T) {
	h := newAPI(t)

	bad := map[string]string{"email": "admin@example.com", "password": "nope"}
	for i := 0; i < 5; i++ {
		rec := do(t, h, http.MethodPost, "/api/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code, fmt.Sprintf("attempt %d", i+1))
	}
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode(t, rec)["error"])
}

func TestValidationErrorShape(t *testing.T) {
	h := newAPI(t)
	clientTok := registerUser(t, h, "Client", "client@example.com", models.RoleClient)

	rec := do(t, h, http.MethodPost, "/api/tickets", clientTok, map[string]any{
		"serviceType": "", "title": "hi", "description": "short", "location": "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation", body["error"])
	fields, _ := body["fields"].(map[string]any)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")
}
