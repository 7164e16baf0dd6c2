package database

import "errors"

var (
	// ErrNotReady indicates the database connection has not been established.
	ErrNotReady = errors.New("database not ready")
	// ErrUnsupportedDialect indicates a connection string with an unknown scheme.
	ErrUnsupportedDialect = errors.New("unsupported database connection string")
)
