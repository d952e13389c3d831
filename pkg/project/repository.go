package project

import (
	"context"
	"errors"
)

var (
	// ErrAuthentication means the remote service rejected the credential.
	ErrAuthentication = errors.New("authentication failed")
	// ErrTransport covers network and unexpected HTTP failures.
	ErrTransport = errors.New("transport error")
	// ErrNotImplemented is returned by sources that are not wired up yet.
	ErrNotImplemented = errors.New("not implemented")
)

// Repository lists every project visible to the configured user.
type Repository interface {
	GetAllProjects(ctx context.Context) ([]ProjectInfo, error)
}
