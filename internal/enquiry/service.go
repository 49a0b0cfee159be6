package enquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/beton-labs/backend-beton/internal/catalog"
	"github.com/beton-labs/backend-beton/internal/notify"
)

// ErrInvalidInput is returned when the submitted enquiry fails validation.
var ErrInvalidInput = errors.New("invalid enquiry")

// Input is the customer-facing enquiry payload.
type Input struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=20"`
	ProductSlug string `json:"productSlug" validate:"omitempty,max=160"`
	Subject     string `json:"subject" validate:"required,min=3,max=200"`
	Message     string `json:"message" validate:"required,min=10,max=4000"`
}

// Enquiry is a stored customer enquiry.
type Enquiry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	ProductSlug string    `json:"productSlug,omitempty"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service stores enquiries and schedules staff notifications.
type Service struct {
	DB       catalog.DB
	Validate *validator.Validate
	Tasks    *asynq.Client
	Logger   zerolog.Logger
}

// Create validates and stores an enquiry, then enqueues a notification task.
// Notification enqueue failures are logged, not surfaced: the enquiry is
// already durably stored.
func (s *Service) Create(ctx context.Context, input Input) (Enquiry, error) {
	if s == nil || s.DB == nil {
		return Enquiry{}, errors.New("enquiry service not configured")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.ProductSlug = strings.TrimSpace(input.ProductSlug)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := s.validate(input); err != nil {
		return Enquiry{}, err
	}

	var (
		enq Enquiry
		id  uuid.UUID
	)
	err := s.DB.QueryRow(ctx,
		`INSERT INTO enquiries (name, email, phone, product_slug, subject, message)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		 RETURNING id, created_at`,
		input.Name, input.Email, input.Phone, input.ProductSlug, input.Subject, input.Message,
	).Scan(&id, &enq.CreatedAt)
	if err != nil {
		return Enquiry{}, fmt.Errorf("store enquiry: %w", err)
	}
	enq.ID = id
	enq.Name = input.Name
	enq.Email = input.Email
	enq.Phone = input.Phone
	enq.ProductSlug = input.ProductSlug
	enq.Subject = input.Subject
	enq.Message = input.Message

	if s.Tasks != nil {
		task, err := notify.NewEnquiryReceivedTask(notify.EnquiryPayload{
			EnquiryID:   enq.ID.String(),
			Name:        enq.Name,
			Email:       enq.Email,
			ProductSlug: enq.ProductSlug,
			Subject:     enq.Subject,
		})
		if err == nil {
			_, err = s.Tasks.EnqueueContext(ctx, task)
		}
		if err != nil {
			s.Logger.Error().Err(err).Str("enquiry_id", enq.ID.String()).Msg("enqueue enquiry notification")
		}
	}
	return enq, nil
}

func (s *Service) validate(input Input) error {
	v := s.Validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0]
			return fmt.Errorf("field %s failed on %s: %w", field.Field(), field.Tag(), ErrInvalidInput)
		}
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)
	}
	return nil
}
