package http

import (
	"github.com/go-fanout-api/internal/application/event"
	"github.com/go-fanout-api/internal/application/fanout"
	"github.com/go-fanout-api/internal/application/notification"
)

// Deps holds the application services the router wires into handlers.
type Deps struct {
	EventSvc        event.Service
	NotificationSvc notification.Service
	Recovery        *fanout.RecoverySweep
	Retention       *fanout.RetentionSweep
}
