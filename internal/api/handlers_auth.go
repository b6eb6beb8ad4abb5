package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/api/validate"
	"github.com/machi-events/eventfinder/internal/auth"
	"github.com/machi-events/eventfinder/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	gate  *auth.Gate
}

func NewAuthHandler(users *services.UserService, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{users: users, gate: gate}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var in credentials
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	if err := dec.Decode(&in); err != nil {
		return in, err
	}
	in.Username = strings.TrimSpace(in.Username)
	return in, nil
}

// Register handles POST /api/auth/register. Success logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCredentials(w, r)
	if err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Credentials(in.Username, in.Password); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	u, err := h.users.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := h.gate.Login(w, u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCredentials(w, r)
	if err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("username", in.Username); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.NonEmpty("password", in.Password); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	u, err := h.users.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := h.gate.Login(w, u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// Logout handles POST /api/auth/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Logout(w, r)
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me behind RequireUser.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "not authenticated")
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
