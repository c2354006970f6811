package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrUnknownPropertyType = errors.New("unknown property type")

	ErrUnknownStyle   = errors.New("unknown map style")
	ErrUnknownFeature = errors.New("unknown map feature")

	ErrClusterNotFound = errors.New("cluster not found")

	ErrEmptyMessage    = errors.New("message is empty")
	ErrAssistantBusy   = errors.New("assistant is already replying")
	ErrSessionNotFound = errors.New("session not found")

	ErrTokenNotFound = errors.New("map token not found")
	ErrEmptyToken    = errors.New("map token is empty")
)
