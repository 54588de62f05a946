package api

import (
	"net/http"
	"testing"

	"github.com/ctfplayground/backend/internal/domain"
)

func TestAdminLoginEndpoint(t *testing.T) {
	router, services := testRouter(t)
	setupAdmin(t, services)

	w := doRequest(t, router, http.MethodPost, "/admin/login", "", map[string]string{
		"email":    "jury@example.org",
		"password": "hunter22",
	})
	assertStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	if !ok || user["role"] != "sudo" {
		t.Errorf("user = %v, want sudo role", body["user"])
	}

	w = doRequest(t, router, http.MethodPost, "/admin/login", "", map[string]string{
		"email":    "jury@example.org",
		"password": "wrong",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestAdminRoutesRejectTeamTokens(t *testing.T) {
	router, services := testRouter(t)
	teamToken, _ := setupTeam(t, services, "Sneaky Team")

	w := doRequest(t, router, http.MethodPost, "/admin/registerTeam", teamToken, domain.RegisterTeamRequest{
		TeamName: "Phantom Team",
		Leader:   domain.Member{Name: "X", Email: "x@example.org"},
	})
	assertStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodGet, "/admin/challenges", teamToken, nil)
	assertStatus(t, w, http.StatusForbidden)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	router, _ := testRouter(t)

	w := doRequest(t, router, http.MethodGet, "/admin/teams", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestSudoTokenOnTeamRoutes(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)

	// sudo is a superset of user, so the catalog is readable
	w := doRequest(t, router, http.MethodGet, "/challenges", adminToken, nil)
	assertStatus(t, w, http.StatusOK)
}

func TestAdminRegisterTeamEndpoint(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)

	w := doRequest(t, router, http.MethodPost, "/admin/registerTeam", adminToken, domain.RegisterTeamRequest{
		TeamName: "Provisioned Team",
		Leader:   domain.Member{Name: "Leader", Email: "leader@example.org"},
	})
	assertStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	if body["teamId"] == nil || body["password"] == nil {
		t.Fatalf("credentials missing: %v", body)
	}

	// Duplicate name rejected
	w = doRequest(t, router, http.MethodPost, "/admin/registerTeam", adminToken, domain.RegisterTeamRequest{
		TeamName: "Provisioned Team",
		Leader:   domain.Member{Name: "Other", Email: "other@example.org"},
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestAdminListTeamsEndpoint(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)
	setupTeam(t, services, "Visible To Admin")

	w := doRequest(t, router, http.MethodGet, "/admin/teams", adminToken, nil)
	assertStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	teams, ok := body["teams"].([]any)
	if !ok || len(teams) != 1 {
		t.Fatalf("teams = %v, want one entry", body["teams"])
	}
	team := teams[0].(map[string]any)
	if team["teamName"] != "Visible To Admin" {
		t.Errorf("teamName = %v", team["teamName"])
	}
	if _, leaked := team["passwordHash"]; leaked {
		t.Error("password hash leaked in admin team list")
	}
}

func TestAdminChallengeLifecycle(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)

	// Create
	w := doRequest(t, router, http.MethodPost, "/admin/challenges", adminToken, domain.CreateChallengeRequest{
		Name:        "lifecycle",
		Author:      "jury",
		Description: "full cycle",
		Category:    domain.CategoryPwn,
		Value:       200,
		Flag:        "flag{v1}",
	})
	assertStatus(t, w, http.StatusCreated)
	challengeID := decodeBody(t, w)["challenge"].(map[string]any)["id"].(string)

	// Admin listing includes the flag
	w = doRequest(t, router, http.MethodGet, "/admin/challenges", adminToken, nil)
	assertStatus(t, w, http.StatusOK)
	listed := decodeBody(t, w)["challenges"].([]any)[0].(map[string]any)
	if listed["flag"] != "flag{v1}" {
		t.Errorf("admin listing flag = %v, want flag{v1}", listed["flag"])
	}

	// Update
	w = doRequest(t, router, http.MethodPut, "/admin/challenges/"+challengeID, adminToken, map[string]any{
		"value": 350,
	})
	assertStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["challenge"].(map[string]any)["value"]; got != float64(350) {
		t.Errorf("value = %v, want 350", got)
	}

	// Toggle visibility
	w = doRequest(t, router, http.MethodPatch, "/admin/challenges/toggleVisibility", adminToken, map[string]any{
		"challengeId": challengeID,
		"visible":     false,
	})
	assertStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["challenge"].(map[string]any)["visible"]; got != false {
		t.Errorf("visible = %v, want false", got)
	}

	// Delete requires the admin password again
	w = doRequest(t, router, http.MethodDelete, "/admin/challenges/"+challengeID, adminToken, map[string]string{
		"password": "wrong",
	})
	assertStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodDelete, "/admin/challenges/"+challengeID, adminToken, map[string]string{
		"password": "hunter22",
	})
	assertStatus(t, w, http.StatusOK)

	// Gone afterwards
	w = doRequest(t, router, http.MethodDelete, "/admin/challenges/"+challengeID, adminToken, map[string]string{
		"password": "hunter22",
	})
	assertStatus(t, w, http.StatusNotFound)
}

func TestAdminCreateChallengeValidation(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)

	// Unknown category
	w := doRequest(t, router, http.MethodPost, "/admin/challenges", adminToken, map[string]any{
		"name":        "bad-cat",
		"author":      "jury",
		"description": "x",
		"category":    "cooking",
		"value":       100,
		"flag":        "flag{x}",
	})
	assertStatus(t, w, http.StatusBadRequest)

	// Missing fields
	w = doRequest(t, router, http.MethodPost, "/admin/challenges", adminToken, map[string]any{
		"name": "incomplete",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestAdminToggleVisibilityUnknownChallenge(t *testing.T) {
	router, services := testRouter(t)
	adminToken := setupAdmin(t, services)

	w := doRequest(t, router, http.MethodPatch, "/admin/challenges/toggleVisibility", adminToken, map[string]any{
		"challengeId": "no-such-id",
		"visible":     true,
	})
	assertStatus(t, w, http.StatusNotFound)
}
