package httpapi

import (
	"net/http"

	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the register/login payload: the user plus a freshly issued
// bearer token.
type authResponse struct {
	User      userJSON `json:"user"`
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
}

func (s *HTTPServer) authResponse(user *models.User, token string) authResponse {
	return authResponse{
		User:      toUserJSON(user),
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: s.tokens.ValiditySeconds(),
	}
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, token, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, s.authResponse(user, token))
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.authResponse(user, token))
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Me(r.Context(), callerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserJSON(user))
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.Refresh(r.Context(), callerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":      token,
		"token_type": "bearer",
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), callerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageJSON{Message: "Successfully logged out"})
}
