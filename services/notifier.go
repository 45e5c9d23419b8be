// Package services holds the portal's business workflows.
// file: services/notifier.go
package services

import (
	"context"

	"athmageeth-portal/models"
)

// Notifier is told whenever registration data changes so derived views
// (caches, open dashboards) can refresh.
type Notifier interface {
	Notify(ctx context.Context, ev models.ChangeEvent)
}

// Notifiers fans one event out to each member in order.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, ev models.ChangeEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(ctx, ev)
		}
	}
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, ev models.ChangeEvent)

func (f NotifierFunc) Notify(ctx context.Context, ev models.ChangeEvent) { f(ctx, ev) }
