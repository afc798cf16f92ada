// Package mockapi provides a local stand-in for the Noosh API: the
// delegation endpoints plus the project and spec actions, with optional
// latency and failure injection. Used by cmd/mockapi for local runs and by
// package tests.
package mockapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Server is a configurable mock of the Noosh API surface the load driver
// consumes.
type Server struct {
	mux       *http.ServeMux
	projectID atomic.Int64
	specID    atomic.Int64

	// Latency is added to every response when non-zero.
	Latency time.Duration
	// FailSpecTypes makes the spec-types lookup return 500, exercising the
	// best-effort skip path.
	FailSpecTypes atomic.Bool
	// SubjectInToken controls whether issued session tokens carry a userId
	// claim. When false, clients must fall back to the account endpoint.
	SubjectInToken atomic.Bool

	// Fixture values issued by the delegation endpoints.
	DelegateClientID     string
	DelegateClientSecret string
	SubjectID            string
}

// NewServer creates a mock server with all endpoints registered.
func NewServer() *Server {
	s := &Server{
		mux:                  http.NewServeMux(),
		DelegateClientID:     "wg-client-1",
		DelegateClientSecret: "wg-secret-1",
		SubjectID:            "88271",
	}
	s.SubjectInToken.Store(true)
	s.projectID.Store(700000)
	s.specID.Store(900000)
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/oauth2jwtauth/oauth/token", s.handleToken)
	s.mux.HandleFunc("/oauth2jwtauth/workgroup/oauth-client-detail", s.handleClientDetail)
	s.mux.HandleFunc("/accountresource/api/account", s.handleAccount)
	s.mux.HandleFunc("/nooshenterprise/noosh/cloud/api/project/createProject", s.handleCreateProject)
	s.mux.HandleFunc("/specresource/spec/types", s.handleSpecTypes)
	s.mux.HandleFunc("/specresource/product/getProductDetail", s.handleProductDetail)
	s.mux.HandleFunc("/nooshenterprise/noosh/cloud/api/spec/create", s.handleCreateSpec)
}

func (s *Server) delay() {
	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "client_credentials":
		if r.PostForm.Get("client_id") == "" || r.PostForm.Get("client_secret") == "" {
			writeJSONError(w, http.StatusUnauthorized, "invalid_client")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "delegator-token",
			"token_type":   "bearer",
			"expires_in":   300,
		})
	case "password":
		if r.PostForm.Get("client_id") != s.DelegateClientID ||
			r.PostForm.Get("client_secret") != s.DelegateClientSecret {
			writeJSONError(w, http.StatusUnauthorized, "invalid_client")
			return
		}
		if r.PostForm.Get("username") == "" || r.PostForm.Get("password") == "" {
			writeJSONError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		subject := ""
		if s.SubjectInToken.Load() {
			subject = s.SubjectID
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": s.mintSessionToken(r.PostForm.Get("username"), subject),
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	default:
		writeJSONError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}

// mintSessionToken builds a compact JWT-shaped token. The signature is a
// placeholder; the load driver reads the payload without verifying.
func (s *Server) mintSessionToken(username, subject string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims := map[string]any{"sub": username}
	if subject != "" {
		claims["userId"] = subject
	}
	payload, _ := json.Marshal(claims)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("mock"))
}

func (s *Server) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var body struct {
		WorkgroupID string `json:"workgroupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WorkgroupID == "" {
		writeJSONError(w, http.StatusBadRequest, "workgroupId required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clientId":        s.DelegateClientID,
		"clientSecretRaw": s.DelegateClientSecret,
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   s.SubjectID,
		"userName": "mockuser",
	})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var body struct {
		ProjectName string `json:"projectName"`
		Domain      string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProjectName == "" {
		writeJSONError(w, http.StatusBadRequest, "projectName required")
		return
	}
	id := s.projectID.Add(1)
	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"projectId":           fmt.Sprintf("%d", id),
			"redirectExternalUrl": fmt.Sprintf("https://%s/project/%d", body.Domain, id),
		},
	})
}

func (s *Server) handleSpecTypes(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if s.FailSpecTypes.Load() {
		writeJSONError(w, http.StatusInternalServerError, "spec types unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": []map[string]any{
			{"specTypeId": "5006606", "name": "Smart Form"},
		},
	})
}

func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specTypeId": r.URL.Query().Get("specTypeId"),
		"customFields": []map[string]any{
			{"name": "SITE_DESIGN_TYPE_7", "type": "select"},
			{"name": "QUANTITY1", "type": "number"},
		},
	})
}

func (s *Server) handleCreateSpec(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !hasBearer(r) {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var body struct {
		TypeID    string `json:"typeId"`
		ProjectID string `json:"projectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TypeID == "" || body.ProjectID == "" {
		writeJSONError(w, http.StatusBadRequest, "typeId and projectId required")
		return
	}
	id := s.specID.Add(1)
	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"specId": fmt.Sprintf("%d", id),
		},
	})
}

func hasBearer(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
