package domain

import "errors"

var (
	// ErrInvalidCoordinates signals latitude/longitude outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrMenuNotFound signals a restaurant without a menu.
	ErrMenuNotFound = errors.New("menu not found")
	// ErrItemNotFound signals an item missing from a restaurant menu.
	ErrItemNotFound = errors.New("item not found in restaurant menu")
)
