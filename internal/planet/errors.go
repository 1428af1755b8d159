package planet

import "errors"

var ErrPlanetNotFound = errors.New("planet not found")
