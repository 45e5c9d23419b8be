// Package store persists registrations. Every mutation touches exactly one
// document, and the whatsappNumber uniqueness constraint is enforced by the
// store itself so concurrent submissions cannot both succeed.
package store

import (
	"context"
	"errors"
	"strings"

	"athmageeth-portal/models"
)

var (
	// ErrDuplicate is returned by Insert when the WhatsApp number is taken.
	ErrDuplicate = errors.New("registration with this whatsapp number already exists")
	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("registration not found")
	// ErrNoUniqueIndex is returned by EnsureIndexes when the store cannot
	// guarantee unique WhatsApp numbers.
	ErrNoUniqueIndex = errors.New("no unique index on whatsappNumber")
)

// Filter narrows Find and Count. Query is a case-insensitive substring
// matched against institution name, candidate names, district, WhatsApp
// number and place; District is an exact match. Empty fields match all.
type Filter struct {
	Query    string
	District string
}

// NewFilter builds a Filter from dashboard parameters, treating the "All"
// district as no district filter.
func NewFilter(query, district string) Filter {
	district = strings.TrimSpace(district)
	if district == models.AllDistricts {
		district = ""
	}
	return Filter{Query: strings.TrimSpace(query), District: district}
}

// RegistrationStore is the persistence contract used by the services.
type RegistrationStore interface {
	// Insert stores reg atomically. It returns ErrDuplicate when another
	// registration already uses reg.WhatsappNumber.
	Insert(ctx context.Context, reg models.Registration) error
	FindByWhatsappNumber(ctx context.Context, number string) (models.Registration, error)
	// Find returns matching registrations, newest first.
	Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Registration, error)
	Count(ctx context.Context, f Filter) (int64, error)
	// Delete removes the registration with id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// Stats aggregates the collection, keeping the top districts by count.
	Stats(ctx context.Context, topDistricts int) (models.DashboardStats, error)
	// EnsureIndexes prepares the store. It returns ErrNoUniqueIndex when the
	// WhatsApp number constraint is not in force.
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}

// matches reports whether reg satisfies f. The Mongo store expresses the
// same predicate as a query document.
func (f Filter) matches(reg models.Registration) bool {
	if f.District != "" && reg.District != f.District {
		return false
	}
	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	if contains(reg.InstitutionName) || contains(reg.District) || contains(reg.WhatsappNumber) || contains(reg.Place) {
		return true
	}
	for _, c := range reg.Candidates {
		if contains(c.Name) {
			return true
		}
	}
	return false
}
