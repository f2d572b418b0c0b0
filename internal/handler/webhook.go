package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkordes/wayfarer/internal/domain"
)

// PostBillingWebhook handles POST /webhooks/billing. The body is a payment
// event already normalised from the provider's payload. Once it decodes, the
// answer is 200 even if applying it fails, so the provider does not
// redeliver; failures are logged by the sink.
func (s *Server) PostBillingWebhook(w http.ResponseWriter, r *http.Request) {
	// Providers add fields over time, so unknown ones are ignored here.
	var ev domain.PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeDecodeError(w, err)
		return
	}
	if ev.Type == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", "type is required"))
		return
	}

	if err := s.payments.Submit(r.Context(), ev); err != nil {
		s.logger.ErrorContext(r.Context(), "payment event not accepted", "event_id", ev.ID, "event_type", string(ev.Type), "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
