package core

import "errors"

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidDistance    = errors.New("invalid view distance")
	ErrInvalidOpacity     = errors.New("opacity must be between 0 and 1")
	ErrUnknownObserver    = errors.New("unknown observer")
	ErrDuplicateObserver  = errors.New("observer already exists")
	ErrUnknownOccupant    = errors.New("unknown occupant")
	ErrInvalidMap         = errors.New("invalid map")
	ErrBlocked            = errors.New("destination blocks movement")
)
