package provider

import (
	"context"
	"errors"

	"github.com/neomnia/content-mania-sub004/internal/model"
)

// Delivery error taxonomy. Providers wrap their failures in one of these so
// the router can classify without knowing provider specifics.
var (
	// ErrNotConfigured: the named provider is absent from the registry.
	ErrNotConfigured = errors.New("email provider not configured")
	// ErrRejected: the provider itself refused the message (bad address,
	// quota, non-2xx API response, SMTP reject).
	ErrRejected = errors.New("provider rejected message")
	// ErrTransport: the provider could not be reached at all.
	ErrTransport = errors.New("transport failure")
)

// Provider is the uniform send capability every delivery service exposes.
// The router is polymorphic over this and knows nothing else about them.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *model.Message) (messageID string, err error)
}
