// Package apperrors collects the sentinel errors shared across the core.
package apperrors

import "errors"

var (
	ErrMissingBackendService = errors.New("BACKEND_SERVICE is not configured")
	ErrInvalidServerEntry    = errors.New("invalid host:port entry in BACKEND_SERVICE")
	ErrNoChannelAvailable    = errors.New("no managed channel available")
	ErrServerListEmpty       = errors.New("server list is empty")

	ErrDuplicateService         = errors.New("duplicate service registration for kind")
	ErrOverrideTargetNotDefault = errors.New("override target is not a default service")
	ErrServiceNotFound          = errors.New("service not found for kind")

	ErrWatcherKeyCollision = errors.New("watcher already registered for key")
	ErrWatcherNotFound     = errors.New("no watcher registered for key")

	ErrUnknownCommandKind = errors.New("unknown command kind")
	ErrQueueFull          = errors.New("command queue is full")

	ErrChannelNotConnected = errors.New("channel is not connected")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
