package entities

import "errors"

// ErrArchDirNotFound is returned when no architecture directory exists under depends/
var ErrArchDirNotFound = errors.New("cannot find architecture dir under depends/")
