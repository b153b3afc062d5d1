package domain

import "github.com/google/uuid"

// Ledger is the captain point-balance bookkeeping embedded in room state.
// Balances are only ever mutated through validated debits and credits, and only
// by the actor that owns the state, so no locking is needed here
type Ledger struct {
	state *RoomState
}

// Ledger returns the bookkeeping view over this state's captains
func (s *RoomState) Ledger() *Ledger {
	return &Ledger{state: s}
}

// Balance returns the captain's current point balance
func (l *Ledger) Balance(captainID uuid.UUID) (int, error) {
	c := l.state.Captain(captainID)
	if c == nil {
		return 0, ErrNotFound
	}
	return c.Points, nil
}

// CanAfford reports whether the captain can cover the given amount
func (l *Ledger) CanAfford(captainID uuid.UUID, amount int) (bool, error) {
	balance, err := l.Balance(captainID)
	if err != nil {
		return false, err
	}
	return amount <= balance, nil
}

// Debit withdraws amount from the captain's balance. The balance must never go
// negative, a debit that would do so is rejected with ErrInsufficientPoints
func (l *Ledger) Debit(captainID uuid.UUID, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	c := l.state.Captain(captainID)
	if c == nil {
		return ErrNotFound
	}
	if amount > c.Points {
		return ErrInsufficientPoints
	}
	c.Points -= amount
	return nil
}

// Credit refunds amount to the captain's balance, used by undo
func (l *Ledger) Credit(captainID uuid.UUID, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	c := l.state.Captain(captainID)
	if c == nil {
		return ErrNotFound
	}
	c.Points += amount
	return nil
}
