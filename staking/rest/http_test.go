package rest

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptogopniks/GopStake/common/errors"
	"github.com/cryptogopniks/GopStake/staking/api"
	stakingState "github.com/cryptogopniks/GopStake/staking/state"
)

func TestFromBackend(t *testing.T) {
	require := require.New(t)

	require.NoError(fromBackend(nil), "no error")

	for _, tc := range []struct {
		err    error
		status int
		msg    string
	}{
		{api.ErrCollectionIsNotFound, http.StatusNotFound, "missing collection"},
		{api.ErrParameterIsNotFound, http.StatusNotFound, "missing parameter"},
		{api.ErrNotInitialized, http.StatusNotFound, "uninitialized ledger"},
		{api.ErrInvalidArgument, http.StatusBadRequest, "invalid argument"},
		{api.ErrWeightsAreUnbalanced, http.StatusBadRequest, "other staking errors"},
		{fmt.Errorf("query: %w", api.ErrWrongProposalStatus), http.StatusBadRequest, "wrapped staking errors"},
		{errors.WithContext(api.ErrAssetIsNotFound, "item 7"), http.StatusBadRequest, "staking errors with context"},
		{stakingState.ErrUnavailableState, http.StatusInternalServerError, "state failures"},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError, "uncoded errors"},
	} {
		status := http.StatusInternalServerError
		var he *httpError
		if errors.As(fromBackend(tc.err), &he) {
			status = he.status
		}
		require.Equal(tc.status, status, tc.msg)
	}
}
