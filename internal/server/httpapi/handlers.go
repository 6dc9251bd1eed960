package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	netmail "net/mail"
	"net/http"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/mail"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
)

type handlers struct {
	svc    AuthProvider
	logger logging.Logger
}

// userPayload is the wire shape of a user record. The password hash never
// crosses the transport boundary.
type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type authResultPayload struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}

func validEmail(s string) bool {
	addr, err := netmail.ParseAddress(s)
	return err == nil && addr.Address == s
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *credentialsRequest) validate(w http.ResponseWriter) bool {
	if !validEmail(c.Email) {
		writeBadRequest(w, "Invalid email address")
		return false
	}
	if c.Password == "" {
		writeBadRequest(w, "Password is required")
		return false
	}
	return true
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) || !req.validate(w) {
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResultPayload{User: toUserPayload(result.User), Token: result.Token})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) || !req.validate(w) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResultPayload{User: toUserPayload(result.User), Token: result.Token})
}

func (h *handlers) verifyLocalToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &req) {
		return
	}

	check := h.svc.VerifySession(r.Context(), req.Token)
	resp := struct {
		IsAuthed bool         `json:"isAuthed"`
		User     *userPayload `json:"user,omitempty"`
		Token    string       `json:"token,omitempty"`
	}{IsAuthed: check.Authed}
	if check.Authed {
		payload := toUserPayload(check.User)
		resp.User = &payload
		resp.Token = check.Token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeBadRequest(w, "Invalid email address")
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "Token is required")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "Password is required")
		return
	}

	result, err := h.svc.CompleteReset(r.Context(), req.Token, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResultPayload{User: toUserPayload(result.User), Token: result.Token})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), claimsFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func (h *handlers) listAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), claimsFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}
	writeJSON(w, http.StatusOK, map[string][]userPayload{"users": payload})
}

func (h *handlers) adminLoginAs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeBadRequest(w, "User id is required")
		return
	}

	result, err := h.svc.LoginAs(r.Context(), claimsFromContext(r.Context()), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResultPayload{User: toUserPayload(result.User), Token: result.Token})
}

func (h *handlers) getEmailTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgencyName string `json:"agencyName"`
		AgencyLogo string `json:"agencyLogo"`
	}
	// The branding overrides are optional and so is the body itself.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	previews, err := h.svc.EmailPreviews(r.Context(), claimsFromContext(r.Context()), mail.Branding{
		AgencyName: req.AgencyName,
		AgencyLogo: req.AgencyLogo,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]mail.TemplatePreview{"templates": previews})
}
