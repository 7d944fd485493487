package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campuspub/publication-portal/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Store   *RoleStore
	secure  bool
}

func NewHandler(service *Service, store *RoleStore, secureCookies bool) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
		Store:       store,
		secure:      secureCookies,
	}
}

type userPayload struct {
	ID                 string `json:"id,omitempty"`
	Username           string `json:"username"`
	Email              string `json:"email,omitempty"`
	Role               Role   `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Store.SignIn(r.Context(), account); err != nil {
		h.Logger.Error("failed to establish session", "error", err, "user_id", account.ID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tokens := h.Service.RememberTokens()
	if dto.Remember && tokens.Enabled() {
		token, err := tokens.Generate(account.ID, account.Username)
		if err != nil {
			h.Logger.Error("failed to issue remember token", "error", err, "user_id", account.ID)
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     RememberCookie,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(tokens.TTL()),
				HttpOnly: true,
				Secure:   h.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	role := account.Role()
	h.Logger.Info("login succeeded", "user_id", account.ID, "role", role)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"role":    role,
		"user": userPayload{
			ID:                 account.ID,
			Username:           account.Username,
			Email:              account.Email,
			Role:               role,
			MustChangePassword: account.MustChangePassword,
		},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SignOut(r.Context()); err != nil {
		h.Logger.Error("failed to destroy session", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// Me reports the signed-in user, or 401 when there is no session. The 401 is
// the expected "no session" probe answer, not a failure.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := h.Store.CurrentUser(r.Context())
	if u == nil {
		h.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Unauthorized",
		})
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": userPayload{
			Username: u.Username,
			Role:     u.Role,
		},
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Register(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u := h.Store.CurrentUser(r.Context())
	if u == nil {
		h.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Unauthorized",
		})
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(r.Context(), u.Username, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password updated",
	})
}

func (h *Handler) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	u := h.Store.CurrentUser(r.Context())
	if u == nil {
		h.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Unauthorized",
		})
		return
	}

	var dto RegisterEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.Service.RegisterEvent(r.Context(), u.ID, dto.EventID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	message := "Already registered"
	if added {
		message = "Registered for event"
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": added,
		"message": message,
	})
}

// ResumeMiddleware re-establishes an expired session from a valid remember
// cookie before any guard runs.
func (h *Handler) ResumeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Store.CurrentUser(r.Context()) == nil {
			if cookie, err := r.Cookie(RememberCookie); err == nil && cookie.Value != "" {
				account, err := h.Service.ResumeFromToken(r.Context(), cookie.Value)
				if err == nil {
					if err := h.Store.SignIn(r.Context(), account); err != nil {
						h.Logger.Error("failed to resume session", "error", err)
					}
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
