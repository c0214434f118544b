package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/go-chi/chi/v5"
)

// Auth guards routes with bearer tokens. A nil verifier disables every check,
// which is how the services run without AUTH_TOKEN_KEY.
type Auth struct {
	verifier token.Maker
}

func NewAuth(verifier token.Maker) *Auth {
	return &Auth{verifier: verifier}
}

func (a *Auth) Enabled() bool {
	return a != nil && a.verifier != nil
}

// PayloadMiddleware 解析 token payload, 解析失敗不中斷, 只是不設置 context
func (a *Auth) PayloadMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		payload, ok := a.checkAuthPayload(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) checkAuthPayload(r *http.Request) (*token.Payload, bool) {
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		return nil, false
	}
	if strings.ToLower(fields[0]) != constants.AuthorizationTypeBearer {
		return nil, false
	}

	payload, err := a.verifier.VertifyToken(fields[1])
	if err != nil {
		return nil, false
	}
	return payload, true
}

// RequireCustomer admits the customer named by the URL param, or an admin.
func (a *Auth) RequireCustomer(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			payload := GetTokenPayload(r.Context())
			if payload == nil {
				response.Error(w, apperr.New(apperr.KindUnauthenticated, "unauthenticated"))
				return
			}
			customerID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || !(token.IsAdmin(payload) || token.IsCustomer(payload, customerID)) {
				response.Error(w, apperr.New(apperr.KindUnauthorized, "not allowed to access this customer"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		payload := GetTokenPayload(r.Context())
		if payload == nil {
			response.Error(w, apperr.New(apperr.KindUnauthenticated, "unauthenticated"))
			return
		}
		if !token.IsAdmin(payload) {
			response.Error(w, apperr.New(apperr.KindUnauthorized, "admin only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireService admits calls from another service or from an admin.
func (a *Auth) RequireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		payload := GetTokenPayload(r.Context())
		if payload == nil {
			response.Error(w, apperr.New(apperr.KindUnauthenticated, "unauthenticated"))
			return
		}
		if !token.IsService(payload) && !token.IsAdmin(payload) {
			response.Error(w, apperr.New(apperr.KindUnauthorized, "service only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth only checks that some valid token was presented.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Enabled() && GetTokenPayload(r.Context()) == nil {
			response.Error(w, apperr.New(apperr.KindUnauthenticated, "unauthenticated"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CanActFor reports whether the caller may act for customerID. Always true
// when auth is disabled.
func (a *Auth) CanActFor(ctx context.Context, customerID int64) bool {
	if !a.Enabled() {
		return true
	}
	payload := GetTokenPayload(ctx)
	return token.IsAdmin(payload) || token.IsCustomer(payload, customerID)
}

func GetTokenPayload(ctx context.Context) *token.Payload {
	payload, _ := ctx.Value(constants.AuthorizationPayloadKey).(*token.Payload)
	return payload
}
