package api

import (
	"github.com/cryptogopniks/GopStake/common/errors"
)

// ModuleName is a unique module name for the minter.
const ModuleName = "minter"

var (
	// ErrInvalidArgument is the error returned on malformed arguments.
	ErrInvalidArgument = errors.New(ModuleName, 1, "minter: invalid argument")

	// ErrUnauthorized is the error returned when the caller is not allowed
	// to perform an operation.
	ErrUnauthorized = errors.New(ModuleName, 2, "minter: unauthorized")

	// ErrAssetIsNotFound is the error returned when a denom is not
	// registered.
	ErrAssetIsNotFound = errors.New(ModuleName, 3, "minter: asset is not found")

	// ErrDenomExists is the error returned when a denom is registered twice.
	ErrDenomExists = errors.New(ModuleName, 4, "minter: denom exists")

	// ErrWrongFundsCombination is the error returned when the attached
	// payment does not match what an operation requires.
	ErrWrongFundsCombination = errors.New(ModuleName, 5, "minter: wrong funds combination")

	// ErrParameterIsNotFound is the error returned when a required
	// parameter is missing.
	ErrParameterIsNotFound = errors.New(ModuleName, 6, "minter: parameter is not found")

	// ErrNotInitialized is the error returned when the minter has no
	// config.
	ErrNotInitialized = errors.New(ModuleName, 7, "minter: not initialized")
)
