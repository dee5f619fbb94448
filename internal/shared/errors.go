package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrConfig        = fmt.Errorf("contradictory selection request")

	// Library metadata errors
	ErrLibraryFormat = fmt.Errorf("library metadata missing or unparsable")
	ErrTrackNotFound = fmt.Errorf("track not found")

	// Destination errors
	ErrPath        = fmt.Errorf("path outside expected root")
	ErrCollision   = fmt.Errorf("destination path collision")
	ErrDestination = fmt.Errorf("destination directory not found")

	// Remote service errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
