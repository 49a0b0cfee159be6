package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeEnquiryReceived is the asynq task type for staff enquiry notifications.
const TypeEnquiryReceived = "notify:enquiry_received"

// QueueDefault is the queue notification tasks are enqueued on.
const QueueDefault = "notifications"

// EnquiryPayload carries the data the notification worker needs.
type EnquiryPayload struct {
	EnquiryID   string `json:"enquiryId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProductSlug string `json:"productSlug,omitempty"`
	Subject     string `json:"subject"`
}

// NewEnquiryReceivedTask builds the asynq task for a submitted enquiry.
func NewEnquiryReceivedTask(payload EnquiryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal enquiry payload: %w", err)
	}
	return asynq.NewTask(TypeEnquiryReceived, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// EnquiryHandler processes enquiry notification tasks. Delivery currently
// means a structured log entry the back-office tails; swapping in an email
// sender only touches this handler.
type EnquiryHandler struct {
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h EnquiryHandler) ProcessTask(_ context.Context, t *asynq.Task) error {
	var payload EnquiryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal enquiry payload: %w", err)
	}
	h.Logger.Info().
		Str("enquiry_id", payload.EnquiryID).
		Str("name", payload.Name).
		Str("email", payload.Email).
		Str("product_slug", payload.ProductSlug).
		Str("subject", payload.Subject).
		Msg("enquiry_received")
	return nil
}
