// file: services/helpers_test.go
package services

import (
	"context"
	"sync"

	"athmageeth-portal/models"
)

func validInput() models.RegistrationInput {
	return models.RegistrationInput{
		InstitutionName: "Govt. Arts College",
		Place:           "Kollam",
		District:        "Kollam",
		Candidates: []models.CandidateInput{
			{Name: "Anjali", IsLeader: true},
			{Name: "Rahul"},
		},
		WhatsappNumber:      "9876543210",
		UnionOfficialNumber: "9876501234",
		PrincipalName:       "Dr. Meera",
		PrincipalPhone:      "9876511111",
		ReceiptURL:          "/uploads/receipts/Govt__Arts_College_Receipt_1.webp",
	}
}

// recordingNotifier keeps every event it is given.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (r *recordingNotifier) Notify(_ context.Context, ev models.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) Events() []models.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ChangeEvent(nil), r.events...)
}

// recordingMetrics counts events by name.
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	deletes  int
	logins   []bool
}

func (r *recordingMetrics) RegistrationSubmitted(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) RegistrationDeleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
}

func (r *recordingMetrics) AdminLogin(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, success)
}
