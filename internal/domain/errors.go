package domain

import "errors"

var (
	// ErrFetchFailed marks a transport failure or non-success HTTP status from the feed.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed marks a feed payload that could not be decoded.
	ErrParseFailed = errors.New("parse failed")

	// ErrUnknownSetting is returned for a setting name outside the fixed set.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidValue is returned when a setting value is out of range.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrPersistWriteFailed means the in-memory value changed but the durable
	// write did not commit.
	ErrPersistWriteFailed = errors.New("persist write failed")

	// ErrBusy is returned when a cycle is requested while another is in flight.
	ErrBusy = errors.New("cycle already in progress")

	// ErrInvalidAirport is returned for a malformed ICAO identifier in the registry.
	ErrInvalidAirport = errors.New("invalid airport identifier")
)
