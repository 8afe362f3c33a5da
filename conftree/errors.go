package conftree

import (
	"errors"
)

// Configuration tree errors
var (
	// Lookup errors
	ErrKeyNotFound  = errors.New("configuration key not found")
	ErrNotASection  = errors.New("configuration value is not a section")
	ErrNotAList     = errors.New("configuration value is not a list")
	ErrValueInvalid = errors.New("configuration value cannot be converted")

	// Parse errors
	ErrParseFailed       = errors.New("failed to parse configuration document")
	ErrUnsupportedFormat = errors.New("unsupported configuration format")

	// Bind errors
	ErrBindTargetNil = errors.New("bind target is nil")
	ErrBindFailed    = errors.New("failed to bind configuration section")

	// Merge errors
	ErrMergeFailed = errors.New("failed to merge configuration sections")

	// Env overlay errors
	ErrEmptyEnvPrefix = errors.New("environment overlay prefix cannot be empty")
)
