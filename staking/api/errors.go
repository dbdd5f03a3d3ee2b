package api

import (
	"github.com/cryptogopniks/GopStake/common/errors"
)

// ModuleName is a unique module name for the staking platform.
const ModuleName = "staking"

var (
	// ErrInvalidArgument is the error returned on malformed arguments.
	ErrInvalidArgument = errors.New(ModuleName, 1, "staking: invalid argument")

	// ErrUnauthorized is the error returned when the caller fails the
	// authorization policy of an operation.
	ErrUnauthorized = errors.New(ModuleName, 2, "staking: unauthorized")

	// ErrCollectionIsNotFound is the error returned when a referenced
	// collection does not exist.
	ErrCollectionIsNotFound = errors.New(ModuleName, 3, "staking: collection is not found")

	// ErrAssetIsNotFound is the error returned when a referenced item or
	// asset does not exist.
	ErrAssetIsNotFound = errors.New(ModuleName, 4, "staking: asset is not found")

	// ErrCollectionDuplication is the error returned on a collection id or
	// name collision.
	ErrCollectionDuplication = errors.New(ModuleName, 5, "staking: collection duplication")

	// ErrWrongProposalStatus is the error returned when a proposal is not
	// in the status an operation requires.
	ErrWrongProposalStatus = errors.New(ModuleName, 6, "staking: wrong proposal status")

	// ErrWrongFundsCombination is the error returned when the attached
	// payment does not match what an operation requires.
	ErrWrongFundsCombination = errors.New(ModuleName, 7, "staking: wrong funds combination")

	// ErrWeightIsOutOfRange is the error returned when a distribution
	// weight is outside of [0, 1].
	ErrWeightIsOutOfRange = errors.New(ModuleName, 8, "staking: weight is out of range")

	// ErrWeightsAreUnbalanced is the error returned when distribution
	// weights do not sum to exactly one.
	ErrWeightsAreUnbalanced = errors.New(ModuleName, 9, "staking: weights are unbalanced")

	// ErrActionByEmissionType is the error returned when an operation is
	// not available for the collection's emission type.
	ErrActionByEmissionType = errors.New(ModuleName, 10, "staking: action is not available for emission type")

	// ErrWrongMinterTokenType is the error returned when minting emission
	// is requested for a non-native currency.
	ErrWrongMinterTokenType = errors.New(ModuleName, 11, "staking: wrong minter token type")

	// ErrParameterIsNotFound is the error returned when a required
	// parameter or optional configuration field is missing.
	ErrParameterIsNotFound = errors.New(ModuleName, 12, "staking: parameter is not found")

	// ErrCollectionIsNotAdded is the error returned when a staking request
	// does not reference any collection or item.
	ErrCollectionIsNotAdded = errors.New(ModuleName, 13, "staking: collection is not added")

	// ErrNotInitialized is the error returned when the ledger has no
	// configuration yet.
	ErrNotInitialized = errors.New(ModuleName, 14, "staking: ledger is not initialized")
)
