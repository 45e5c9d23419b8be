// Package models defines data structures used across the portal.
// File: models/registration.go
package models

import "time"

// ----------------------- payment status -----------------------

// PaymentStatus tracks receipt verification. Nothing transitions it away from
// PaymentPending yet; the field is reserved for a verification workflow.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// ----------------------- registration model -----------------------

// Candidate is one named participant of a team. Exactly one candidate per
// registration is the leader.
type Candidate struct {
	Name     string `bson:"name" json:"name"`
	IsLeader bool   `bson:"isLeader" json:"isLeader"`
}

// Registration is one team's stored submission. WhatsappNumber is unique
// across the collection.
type Registration struct {
	ID                  string        `bson:"_id" json:"id"`
	InstitutionName     string        `bson:"institutionName" json:"institutionName"`
	Place               string        `bson:"place" json:"place"`
	District            string        `bson:"district" json:"district"`
	Candidates          []Candidate   `bson:"candidates" json:"candidates"`
	WhatsappNumber      string        `bson:"whatsappNumber" json:"whatsappNumber"`
	UnionOfficialNumber string        `bson:"unionOfficialNumber" json:"unionOfficialNumber"`
	PrincipalName       string        `bson:"principalName" json:"principalName"`
	PrincipalPhone      string        `bson:"principalPhone" json:"principalPhone"`
	ReceiptURL          string        `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	PaymentStatus       PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Leader returns the team leader, or false when the record has none.
func (r Registration) Leader() (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.IsLeader {
			return c, true
		}
	}
	return Candidate{}, false
}

// Clone returns a copy that shares no slices with r.
func (r Registration) Clone() Registration {
	out := r
	out.Candidates = append([]Candidate(nil), r.Candidates...)
	return out
}

// ----------------------- submission payload -----------------------

// CandidateInput is one candidate as submitted by the public form.
type CandidateInput struct {
	Name     string `json:"name"`
	IsLeader bool   `json:"isLeader"`
}

// RegistrationInput is the public form payload. Tags carry the length rules
// consumed by the validation package; candidate names, the digits rule, the
// leader rule and the receipt policy are checked there as well.
type RegistrationInput struct {
	InstitutionName     string           `json:"institutionName" validate:"min=2"`
	Place               string           `json:"place" validate:"min=2"`
	District            string           `json:"district" validate:"required,district"`
	Candidates          []CandidateInput `json:"candidates" validate:"min=1,max=5"`
	WhatsappNumber      string           `json:"whatsappNumber" validate:"min=10,max=15"`
	UnionOfficialNumber string           `json:"unionOfficialNumber" validate:"min=10,max=15"`
	PrincipalName       string           `json:"principalName" validate:"min=2"`
	PrincipalPhone      string           `json:"principalPhone" validate:"min=10,max=15"`
	ReceiptURL          string           `json:"receiptUrl"`
}

// ToRegistration builds the record to store from a validated payload.
func (in RegistrationInput) ToRegistration(id string, now time.Time) Registration {
	candidates := make([]Candidate, len(in.Candidates))
	for i, c := range in.Candidates {
		candidates[i] = Candidate{Name: c.Name, IsLeader: c.IsLeader}
	}
	return Registration{
		ID:                  id,
		InstitutionName:     in.InstitutionName,
		Place:               in.Place,
		District:            in.District,
		Candidates:          candidates,
		WhatsappNumber:      in.WhatsappNumber,
		UnionOfficialNumber: in.UnionOfficialNumber,
		PrincipalName:       in.PrincipalName,
		PrincipalPhone:      in.PrincipalPhone,
		ReceiptURL:          in.ReceiptURL,
		PaymentStatus:       PaymentPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
