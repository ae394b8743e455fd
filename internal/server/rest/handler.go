package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// MsgInternal is the body of every 500 response.
const MsgInternal = "An unexpected error occurred."

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	if problem := validateRegister(req); problem != nil {
		writeJSON(w, http.StatusBadRequest, problem)
		return
	}

	res, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", res.UserName)
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	if problem := validateLogin(req); problem != nil {
		writeJSON(w, http.StatusBadRequest, problem)
		return
	}

	res, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleAddRole(w http.ResponseWriter, r *http.Request) {
	var req services.AssignRoleRequest
	if !s.decode(w, r, &req) {
		return
	}
	if problem := validateAssignRole(req); problem != nil {
		writeJSON(w, http.StatusBadRequest, problem)
		return
	}

	if err := s.auth.AssignRole(r.Context(), req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Role assigned", "user_id", req.UserID, "role", req.Role)
	w.WriteHeader(http.StatusOK)
}

type claimResponse struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type meResponse struct {
	Claims    []claimResponse `json:"claims"`
	Issuer    string          `json:"issuer"`
	Audience  []string        `json:"audience"`
	IssuedAt  time.Time       `json:"issuedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp := meResponse{
		Claims:    make([]claimResponse, 0, len(token.Claims)),
		Issuer:    token.Issuer,
		Audience:  token.Audience,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	}
	for _, c := range token.Claims {
		resp.Claims = append(resp.Claims, claimResponse{Type: c.Type, Value: c.Value})
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into dst. On failure it writes a validation
// problem and returns false.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, newProblem(map[string][]string{
			"$": {"The request body is not valid JSON."},
		}))
		return false
	}
	return true
}

// writeError maps service rejections to 400 with their message. Anything
// else is logged and reported as a generic 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *services.AuthError
	if errors.As(err, &ae) {
		writeJSON(w, http.StatusBadRequest, ae.Message)
		return
	}

	s.logger.Error(r.Context(), "request failed",
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, MsgInternal)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
