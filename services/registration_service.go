// file: services/registration_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"athmageeth-portal/logger"
	"athmageeth-portal/metrics"
	"athmageeth-portal/models"
	"athmageeth-portal/store"
	"athmageeth-portal/validation"
)

// Messages returned by Submit.
const (
	MsgCheckForm = validation.FormMessage
	MsgDuplicate = "Registration with this WhatsApp Number already exists."
	MsgSuccess   = "Registration successful! Good luck."
	MsgFailure   = "Something went wrong. Please try again."
)

// SubmitResult is the outcome of one submission, shaped for the public form.
type SubmitResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
}

// RegistrationService runs the public registration workflow:
// validate, reject duplicates, insert, then signal downstream readers.
type RegistrationService struct {
	store     store.RegistrationStore
	validator *validation.Engine
	notifier  Notifier
	metrics   metrics.Recorder

	now   func() time.Time
	newID func() string
}

// NewRegistrationService wires the workflow. A nil notifier or recorder is
// replaced by a no-op.
func NewRegistrationService(st store.RegistrationStore, v *validation.Engine, n Notifier, m metrics.Recorder) *RegistrationService {
	if n == nil {
		n = Notifiers{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &RegistrationService{
		store:     st,
		validator: v,
		notifier:  n,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Submit processes one payload. It never returns an error: every failure is
// folded into the result with a user-facing message.
func (s *RegistrationService) Submit(ctx context.Context, in models.RegistrationInput) (res SubmitResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error.Printf("[RegistrationService.Submit] panic: %v", r)
			s.metrics.RegistrationSubmitted(metrics.OutcomeError)
			res = SubmitResult{Message: MsgFailure}
		}
	}()

	clean, err := s.validator.Validate(in)
	if err != nil {
		return s.invalid(err)
	}

	if _, err := s.store.FindByWhatsappNumber(ctx, clean.WhatsappNumber); err == nil {
		logger.Info.Printf("[RegistrationService.Submit] duplicate whatsapp=%s", clean.WhatsappNumber)
		s.metrics.RegistrationSubmitted(metrics.OutcomeDuplicate)
		return SubmitResult{Message: MsgDuplicate}
	} else if !errors.Is(err, store.ErrNotFound) {
		return s.failed("duplicate check", err)
	}

	reg := clean.ToRegistration(s.newID(), s.now())
	if err := s.store.Insert(ctx, reg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// lost the race against a concurrent submission with the same number
			logger.Info.Printf("[RegistrationService.Submit] unique index rejected whatsapp=%s", reg.WhatsappNumber)
			s.metrics.RegistrationSubmitted(metrics.OutcomeDuplicate)
			return SubmitResult{Message: MsgDuplicate}
		}
		return s.failed("insert", err)
	}

	logger.Info.Printf("[RegistrationService.Submit] registered id=%s institution=%q district=%s",
		reg.ID, reg.InstitutionName, reg.District)
	s.metrics.RegistrationSubmitted(metrics.OutcomeSuccess)
	s.notifier.Notify(context.WithoutCancel(ctx), models.ChangeEvent{
		Action: models.ActionRegistrationCreated,
		ID:     reg.ID,
	})
	return SubmitResult{Success: true, Message: MsgSuccess}
}

func (s *RegistrationService) invalid(err error) SubmitResult {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return s.failed("validation", err)
	}
	logger.Debug.Printf("[RegistrationService.Submit] rejected: %v", verr.Fields)
	s.metrics.RegistrationSubmitted(metrics.OutcomeInvalid)
	return SubmitResult{Message: MsgCheckForm, Errors: verr.Fields}
}

func (s *RegistrationService) failed(step string, err error) SubmitResult {
	logger.Error.Printf("[RegistrationService.Submit] %s failed: %v", step, err)
	s.metrics.RegistrationSubmitted(metrics.OutcomeError)
	return SubmitResult{Message: MsgFailure}
}
