package fastlap

import (
	"context"
	"net/http"
	"strings"
)

type AuthHandler struct {
	*BaseHandler

	accountManager *AccountManager
}

func NewAuthHandler(baseHandler *BaseHandler, accountManager *AccountManager) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    baseHandler,
		accountManager: accountManager,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (ah *AuthHandler) hasAdmin(w http.ResponseWriter, r *http.Request) {
	hasAdmin, err := ah.accountManager.HasAdmin()

	if err != nil {
		ah.respondError(w, r, err)
		return
	}

	ah.respondJSON(w, http.StatusOK, map[string]bool{"has_admin": hasAdmin})
}

func (ah *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var credentials credentialsRequest

	if !ah.decodeBody(w, r, &credentials) {
		return
	}

	account, err := ah.accountManager.Register(credentials.Username, credentials.Password)

	if err != nil {
		ah.respondError(w, r, err)
		return
	}

	session, err := ah.accountManager.Login(credentials.Username, credentials.Password)

	if err != nil {
		ah.respondError(w, r, err)
		return
	}

	ah.respondJSON(w, http.StatusOK, map[string]string{
		"token":    session.Token,
		"username": account.Username,
	})
}

func (ah *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var credentials credentialsRequest

	if !ah.decodeBody(w, r, &credentials) {
		return
	}

	session, err := ah.accountManager.Login(credentials.Username, credentials.Password)

	if err != nil {
		ah.respondError(w, r, err)
		return
	}

	ah.respondJSON(w, http.StatusOK, map[string]string{
		"token":    session.Token,
		"username": session.Username,
	})
}

func (ah *AuthHandler) check(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	ah.respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"username":      session.Username,
	})
}

func (ah *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	if err := ah.accountManager.Logout(session.Token); err != nil {
		ah.respondError(w, r, err)
		return
	}

	ah.respondJSON(w, http.StatusOK, map[string]string{"message": "Abgemeldet"})
}

type sessionContextKey struct{}

func SessionFromContext(ctx context.Context) *AdminSession {
	session, _ := ctx.Value(sessionContextKey{}).(*AdminSession)

	return session
}

// RequireAdmin rejects requests without a valid bearer token and stores the
// session on the request context for downstream handlers.
func (ah *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token := strings.TrimPrefix(header, "Bearer ")

		if header == "" || token == header {
			ah.respondDetail(w, http.StatusUnauthorized, "Nicht angemeldet")
			return
		}

		session, err := ah.accountManager.Validate(token)

		if err != nil {
			ah.respondError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, session)))
	})
}
