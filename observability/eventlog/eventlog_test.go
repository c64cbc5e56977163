package eventlog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"farmchain/core/events"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.ErrorIs(t, err, ErrPathRequired)
}

func TestAppendAndFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Emit(events.SharesDeposited{GlobalFarmID: 1, YieldFarmID: 2, Amount: uint256.NewInt(1_000), ShareToken: 10, DepositID: 1})
	store.Emit(events.RewardClaimed{GlobalFarmID: 1, YieldFarmID: 2, Claimed: uint256.NewInt(5_000), DepositID: 1})
	store.Emit(events.SharesDeposited{GlobalFarmID: 3, YieldFarmID: 4, Amount: uint256.NewInt(10), ShareToken: 10, DepositID: 2})

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []uint64{1, 2, 3}, []uint64{all[0].Seq, all[1].Seq, all[2].Seq})

	deposits, err := store.List(ctx, Filter{Type: events.TypeSharesDeposited})
	require.NoError(t, err)
	require.Len(t, deposits, 2)

	farm, err := store.List(ctx, Filter{GlobalFarmID: "1"})
	require.NoError(t, err)
	require.Len(t, farm, 2)

	claimed, err := store.List(ctx, Filter{DepositID: "1", Type: events.TypeRewardClaimed})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	evt, err := claimed[0].Event()
	require.NoError(t, err)
	require.Equal(t, "5000", evt.Attributes["claimed"])

	limited, err := store.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestSequenceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	store, err := Open(path)
	require.NoError(t, err)
	store.Emit(events.DepositDestroyed{DepositID: 7})
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	reopened.Emit(events.DepositDestroyed{DepositID: 8})
	records, err := reopened.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint64(2), records[1].Seq)
}

func TestDialectorSelection(t *testing.T) {
	require.Equal(t, "postgres", dialector("postgres://farm@localhost/events").Name())
	require.Equal(t, "postgres", dialector("postgresql://farm@localhost/events").Name())
	require.Equal(t, "sqlite", dialector("file:events.db").Name())
}
