package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFollowsBiddingOrder(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	participants := []*Participant{
		{ID: p3, Name: "third", Role: RolePlayer, BiddingOrder: 3},
		{ID: p1, Name: "first", Role: RolePlayer, BiddingOrder: 1},
		{ID: uuid.New(), Name: "cap", Role: RoleCaptain, Points: 500},
		{ID: p2, Name: "second", Role: RolePlayer, BiddingOrder: 2},
	}
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 500, 30*time.Second, 0, participants)

	require.Len(t, s.Queue, 3)
	assert.Equal(t, []uuid.UUID{p1, p2, p3}, s.Queue)
}

func TestCaptainLookupExcludesOtherRoles(t *testing.T) {
	player := uuid.New()
	participants := []*Participant{
		{ID: player, Name: "p", Role: RolePlayer},
	}
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 500, 30*time.Second, 0, participants)

	assert.NotNil(t, s.Participant(player))
	assert.Nil(t, s.Captain(player))
}

func TestRebuildTeamsReflectsAssignments(t *testing.T) {
	capA, capB := uuid.New(), uuid.New()
	p1, p2 := uuid.New(), uuid.New()
	participants := []*Participant{
		{ID: capA, Name: "A", Role: RoleCaptain, Points: 700},
		{ID: capB, Name: "B", Role: RoleCaptain, Points: 1000},
		{ID: p1, Name: "p1", Role: RolePlayer, BiddingOrder: 1},
		{ID: p2, Name: "p2", Role: RolePlayer, BiddingOrder: 2},
	}
	s := NewRoomState(uuid.New(), "room", uuid.New(), 2, 1000, 30*time.Second, 0, participants)

	a := capA
	s.Participant(p1).AssignedCaptainID = &a
	s.Participant(p1).PricePaid = 300
	s.RebuildTeams()

	require.Len(t, s.Teams, 2)
	teamA := s.Teams[0]
	assert.Equal(t, capA, teamA.CaptainID)
	assert.Equal(t, 700, teamA.RemainingPoints)
	require.Len(t, teamA.Members, 1)
	assert.Equal(t, p1, teamA.Members[0].PlayerID)
	assert.Equal(t, 300, teamA.Members[0].Price)
	assert.Empty(t, s.Teams[1].Members)
}

func TestCloneIsIndependent(t *testing.T) {
	capA := uuid.New()
	p1 := uuid.New()
	participants := []*Participant{
		{ID: capA, Name: "A", Role: RoleCaptain, Points: 1000},
		{ID: p1, Name: "p1", Role: RolePlayer, BiddingOrder: 1},
	}
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 1000, 30*time.Second, 0, participants)
	end := time.Now().Add(30 * time.Second)
	s.BiddingEndsAt = &end
	s.CurrentPlayerID = &p1
	s.CurrentBid = &Bid{BidderID: capA, Amount: 100}

	c := s.Clone()
	c.Participant(capA).Points = 1
	c.CurrentBid.Amount = 999
	*c.BiddingEndsAt = end.Add(time.Hour)
	c.Queue = append(c.Queue, uuid.New())

	assert.Equal(t, 1000, s.Participant(capA).Points)
	assert.Equal(t, 100, s.CurrentBid.Amount)
	assert.True(t, s.BiddingEndsAt.Equal(end))
	assert.Len(t, s.Queue, 1) // clone growth must not leak back
}

func TestRoomStateMarshalsDurationsAsSeconds(t *testing.T) {
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 1000, 30*time.Second, 10*time.Second, nil)
	rem := 12 * time.Second
	s.PausedRemaining = &rem

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 30.0, decoded["turn_time_limit"])
	assert.Equal(t, 10.0, decoded["bid_extension"])
	assert.Equal(t, 12.0, decoded["paused_remaining"])
}

func TestRoomStateOmitsPausedRemainingWhenNil(t *testing.T) {
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 1000, 30*time.Second, 0, nil)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, present := decoded["paused_remaining"]
	assert.False(t, present)
}

func TestCloneIsIndependentQueue(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	participants := []*Participant{
		{ID: p1, Role: RolePlayer, BiddingOrder: 1},
		{ID: p2, Role: RolePlayer, BiddingOrder: 2},
	}
	s := NewRoomState(uuid.New(), "room", uuid.New(), 1, 1000, 30*time.Second, 0, participants)

	c := s.Clone()
	c.removeFromQueue(p1)

	assert.Len(t, s.Queue, 2)
	assert.Len(t, c.Queue, 1)
}
