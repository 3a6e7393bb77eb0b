package database

import "errors"

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("entity not found")

// ErrClosed is returned when a closed store is used
var ErrClosed = errors.New("store closed")
