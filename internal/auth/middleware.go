package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	IsAdmin  bool
	IsSeller bool
}

type contextKey int

const identityKey contextKey = iota

// FromContext extracts the authenticated identity from the request context.
func FromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey).(*Identity); ok {
		return v
	}
	return nil
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by handlers that need to impersonate downstream calls.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return header[len(prefix):]
}

// Authenticate returns middleware that requires a valid bearer token and
// attaches the caller's identity to the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"error":"No token found."}`, http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(secret, token)
			if err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}

			id := &Identity{
				UserID:   claims.Subject,
				Name:     claims.Name,
				Email:    claims.Email,
				IsAdmin:  claims.IsAdmin,
				IsSeller: claims.IsSeller,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin rejects callers whose identity is not an administrator.
// Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := FromContext(r.Context())
		if id == nil || !id.IsAdmin {
			http.Error(w, `{"error":"You're unauthorized to access this content."}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSellerOrAdmin rejects callers who are neither a seller nor an
// administrator. Must run after Authenticate.
func RequireSellerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := FromContext(r.Context())
		if id == nil || (!id.IsSeller && !id.IsAdmin) {
			http.Error(w, `{"error":"You're unauthorized to access this content."}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
