package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/services"
)

func TestAddEdge_Basic(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	b := createUser(t, db, "1002")

	require.NoError(t, graph.AddEdge(a.ID, b.ID))

	chain, cycled, err := graph.AncestorsOf(b.ID, models.MaxRewardDepth)
	require.NoError(t, err)
	assert.False(t, cycled)
	require.Len(t, chain, 1)
	assert.Equal(t, a.ID, chain[0].UserID)
	assert.Equal(t, 1, chain[0].Level)
}

func TestAddEdge_SelfReferral(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	assert.ErrorIs(t, graph.AddEdge(a.ID, a.ID), services.ErrSelfReferral)
}

func TestAddEdge_DuplicateReferee(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	b := createUser(t, db, "1002")
	c := createUser(t, db, "1003")

	require.NoError(t, graph.AddEdge(a.ID, c.ID))
	assert.ErrorIs(t, graph.AddEdge(b.ID, c.ID), services.ErrDuplicateReferee)
	// Retrying the same referrer is also a duplicate, not an upsert.
	assert.ErrorIs(t, graph.AddEdge(a.ID, c.ID), services.ErrDuplicateReferee)
}

func TestAddEdge_RejectsCycle(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	b := createUser(t, db, "1002")
	c := createUser(t, db, "1003")

	// a -> b -> c; closing c -> a would loop.
	require.NoError(t, graph.AddEdge(a.ID, b.ID))
	require.NoError(t, graph.AddEdge(b.ID, c.ID))
	assert.ErrorIs(t, graph.AddEdge(c.ID, a.ID), services.ErrCycleDetected)
}

func TestAncestorsOf_OrderAndDepth(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	users := make([]*models.User, 5)
	for i := range users {
		users[i] = createUser(t, db, string(rune('a'+i))+"-chain")
	}
	// users[4] <- users[3] <- ... <- users[0], deepest referee is users[0].
	for i := 0; i < 4; i++ {
		require.NoError(t, graph.AddEdge(users[i+1].ID, users[i].ID))
	}

	chain, cycled, err := graph.AncestorsOf(users[0].ID, models.MaxRewardDepth)
	require.NoError(t, err)
	assert.False(t, cycled)
	require.Len(t, chain, models.MaxRewardDepth)
	for i, ancestor := range chain {
		assert.Equal(t, users[i+1].ID, ancestor.UserID)
		assert.Equal(t, i+1, ancestor.Level)
	}
}

func TestAncestorsOf_StopsOnCorruptCycle(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	b := createUser(t, db, "1002")

	// Insert a corrupt loop directly, bypassing AddEdge's guard.
	createEdge(t, db, a.ID, b.ID)
	createEdge(t, db, b.ID, a.ID)

	chain, cycled, err := graph.AncestorsOf(b.ID, models.MaxCycleProbeDepth)
	require.NoError(t, err)
	assert.True(t, cycled)
	require.Len(t, chain, 1)
	assert.Equal(t, a.ID, chain[0].UserID)

	cycledFrom, err := graph.HasCycleFrom(b.ID)
	require.NoError(t, err)
	assert.True(t, cycledFrom)
}

func TestWouldCreateCycle(t *testing.T) {
	db := setupTestDB(t)
	graph := services.NewReferralGraph(db)

	a := createUser(t, db, "1001")
	b := createUser(t, db, "1002")
	c := createUser(t, db, "1003")

	require.NoError(t, graph.AddEdge(a.ID, b.ID))
	require.NoError(t, graph.AddEdge(b.ID, c.ID))

	loop, err := graph.WouldCreateCycle(c.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, loop)

	ok, err := graph.WouldCreateCycle(c.ID, createUser(t, db, "1004").ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
