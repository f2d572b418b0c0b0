package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	actorSlotKey contextKey = "actorSlot"
)

// tokenIssuer is the iss claim on tokens this API accepts.
const tokenIssuer = "wayfarer"

// UserID returns the authenticated user set by NewAuthHandler.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithUserID returns a context carrying id as the authenticated user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	if slot, ok := ctx.Value(actorSlotKey).(*actorSlot); ok {
		slot.id, slot.set = id, true
	}
	return context.WithValue(ctx, userIDKey, id)
}

type actorSlot struct {
	id  uuid.UUID
	set bool
}

func withActorSlot(ctx context.Context, slot *actorSlot) context.Context {
	return context.WithValue(ctx, actorSlotKey, slot)
}

// NewToken signs an HS256 token for userID valid for ttl from now.
func NewToken(secret []byte, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// NewAuthHandler returns a middleware that requires an HS256 bearer token
// signed with secret. The token subject must be a user UUID; it is stored in
// the request context and read back with UserID.
func NewAuthHandler(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				writeUnauthorized(w, msg)
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil || userID == uuid.Nil {
				writeUnauthorized(w, "invalid token subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="wayfarer"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
