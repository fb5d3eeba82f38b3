package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		p := domain.NewProgress(sessionID, "start")
		p.Revision = 7
		p.CurrentStep = "bond"
		p.Unlock(9)
		p.MarkCompleted("q1")
		bond := games.NewBond(games.DefaultBondParams())
		bond.Apply(games.DefaultBondParams(), "deep_talk")
		p.Games.Bond = &bond

		require.NoError(t, store.Save(ctx, sessionID, p), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StepID("bond"), loaded.CurrentStep)
		assert.Equal(t, uint64(7), loaded.Revision)
		assert.Equal(t, 9, loaded.HighestUnlocked)
		assert.Equal(t, []domain.StepID{"q1"}, loaded.Completed)
		require.NotNil(t, loaded.Games.Bond)
		assert.Equal(t, 1, loaded.Games.Bond.Actions)
		assert.Nil(t, loaded.Games.Chase)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		p := domain.NewProgress(sessionID, "start")
		require.NoError(t, store.Save(ctx, sessionID, p))
		p.CurrentStep = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepID("start"), loaded.CurrentStep)
		loaded.Completed = append(loaded.Completed, "x")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, again.Completed)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewProgress(sessionID, "start")))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewProgress(id1, "start"))
		_ = store.Save(ctx, id2, domain.NewProgress(id2, "start"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
