package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownIntent is returned when an intent kind is not part of the API.
// Known intents that do not apply to the current step are rejected silently instead.
var ErrUnknownIntent = errors.New("unknown intent")

// ErrUnknownStep is returned when content refers to a step that does not exist.
var ErrUnknownStep = errors.New("unknown step")

// ErrFlowClosed is returned when an intent reaches a flow that was closed.
var ErrFlowClosed = errors.New("flow closed")
