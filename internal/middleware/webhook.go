package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// WebhookSecretHeader carries the shared secret on billing webhook calls.
const WebhookSecretHeader = "X-Webhook-Secret"

// NewWebhookSecretHandler returns a middleware that lets a request through
// only when WebhookSecretHeader equals secret. An empty secret rejects
// every request.
func NewWebhookSecretHandler(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(WebhookSecretHeader))
			if len(secret) == 0 || subtle.ConstantTimeCompare(got, secret) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "unauthorized", "message": "invalid webhook secret"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
