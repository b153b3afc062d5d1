package domain

import (
	"time"

	"github.com/google/uuid"
)

// Apply validates cmd against s and, if valid, mutates s into the next state
// and returns the event to broadcast. On rejection s must be discarded by the
// caller: the room actor always applies against a Clone so a rejected command
// can never leave room state partially applied.
//
// Apply is the only write path into room state. It runs on the actor goroutine,
// so there is no locking here.
func Apply(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	switch cmd.Type {
	case CmdStartAuction:
		return applyStartAuction(s, cmd)
	case CmdSelectPlayer:
		return applySelectPlayer(s, cmd, now)
	case CmdPlaceBid:
		return applyPlaceBid(s, cmd, now)
	case CmdConfirmBid:
		if err := requireAdmin(cmd); err != nil {
			return nil, err
		}
		return applyConfirmBid(s, false)
	case CmdPassPlayer:
		if err := requireAdmin(cmd); err != nil {
			return nil, err
		}
		return applyPassPlayer(s, false)
	case CmdNextPlayer:
		return applyNextPlayer(s, cmd)
	case CmdPauseAuction:
		return applyPauseAuction(s, cmd, now)
	case CmdResumeAuction:
		return applyResumeAuction(s, cmd, now)
	case CmdPauseTimer:
		return applyPauseTimer(s, cmd, now)
	case CmdResumeTimer:
		return applyResumeTimer(s, cmd, now)
	case CmdUndoSoldPlayer:
		return applyUndoSoldPlayer(s, cmd)
	case CmdEnterAssignmentPhase:
		return applyEnterAssignmentPhase(s, cmd)
	case CmdManualAssignPlayer:
		return applyManualAssignPlayer(s, cmd)
	case CmdCompleteAuction:
		return applyCompleteAuction(s, cmd)
	case CmdTimerExpired:
		return applyTimerExpired(s, cmd)
	default:
		return nil, ErrInvalidTransition
	}
}

func requireAdmin(cmd Command) error {
	if !cmd.isAdmin() {
		return ErrUnauthorized
	}
	return nil
}

func applyStartAuction(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	s.Status = StatusOngoing
	s.Phase = PhaseWaiting
	s.RebuildTeams()
	return &Event{Type: EventAuctionStarted}, nil
}

func applySelectPlayer(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status == StatusPaused {
		return nil, ErrAuctionPaused
	}
	if s.Status != StatusOngoing || s.Phase != PhaseWaiting {
		return nil, ErrInvalidTransition
	}

	playerID := cmd.PlayerID
	if playerID == uuid.Nil {
		if len(s.Queue) == 0 {
			return nil, ErrInvalidTransition
		}
		playerID = s.Queue[0]
	}
	p := s.Participant(playerID)
	if p == nil {
		return nil, ErrNotFound
	}
	if p.AssignedCaptainID != nil {
		return nil, ErrPlayerAlreadyResolved
	}
	if !s.inQueue(playerID) {
		return nil, ErrNotFound
	}

	s.removeFromQueue(playerID)
	s.CurrentPlayerID = &playerID
	s.CurrentBid = nil
	s.Phase = PhaseBidding
	end := now.Add(s.TurnTimeLimit)
	s.BiddingEndsAt = &end
	s.TimerPaused = false
	s.PausedRemaining = nil
	s.RebuildTeams()
	return &Event{Type: EventPlayerSelected, PlayerID: playerID}, nil
}

func applyPlaceBid(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if cmd.ActorRole != RoleCaptain {
		return nil, ErrUnauthorized
	}
	if s.Status == StatusPaused {
		return nil, ErrAuctionPaused
	}
	if s.Status != StatusOngoing {
		return nil, ErrInvalidTransition
	}
	if s.Phase != PhaseBidding || s.CurrentPlayerID == nil {
		return nil, ErrNotBiddingPhase
	}
	if cmd.PlayerID != uuid.Nil && cmd.PlayerID != *s.CurrentPlayerID {
		return nil, ErrInvalidTransition
	}
	bidder := s.Captain(cmd.ActorID)
	if bidder == nil {
		return nil, ErrNotFound
	}
	if cmd.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	// strictly higher than the current bid, equal amounts are rejected so
	// arrival order at the actor queue is the only tie-break
	if s.CurrentBid != nil && cmd.Amount <= s.CurrentBid.Amount {
		return nil, ErrBidAmountTooLow
	}
	if cmd.Amount > bidder.Points {
		return nil, ErrInsufficientPoints
	}

	s.CurrentBid = &Bid{
		BidderID:   bidder.ID,
		BidderName: bidder.Name,
		Amount:     cmd.Amount,
		PlacedAt:   now,
	}
	// anti-snipe extension: a late bid pushes the deadline back out to the full
	// extension window, but never touches a frozen countdown
	if s.BidExtension > 0 && !s.TimerPaused && s.PausedRemaining == nil && s.BiddingEndsAt != nil {
		if s.BiddingEndsAt.Sub(now) < s.BidExtension {
			end := now.Add(s.BidExtension)
			s.BiddingEndsAt = &end
		}
	}
	s.RebuildTeams()
	return &Event{
		Type:       EventBidPlaced,
		BidderID:   bidder.ID,
		BidderName: bidder.Name,
		Amount:     cmd.Amount,
	}, nil
}

func applyConfirmBid(s *RoomState, auto bool) (*Event, error) {
	if s.Phase != PhaseBidding {
		return nil, ErrNotBiddingPhase
	}
	if s.CurrentBid == nil || s.CurrentPlayerID == nil {
		return nil, ErrInvalidTransition
	}
	p := s.CurrentPlayer()
	if p == nil {
		return nil, ErrNotFound
	}
	bid := *s.CurrentBid
	if err := s.Ledger().Debit(bid.BidderID, bid.Amount); err != nil {
		return nil, err
	}
	captainID := bid.BidderID
	p.AssignedCaptainID = &captainID
	p.PricePaid = bid.Amount
	s.Phase = PhaseSold
	s.clearCountdown()
	s.RebuildTeams()
	return &Event{
		Type:      EventBidConfirmed,
		PlayerID:  p.ID,
		CaptainID: captainID,
		Amount:    bid.Amount,
		Auto:      auto,
	}, nil
}

func applyPassPlayer(s *RoomState, auto bool) (*Event, error) {
	if s.Phase != PhaseBidding {
		return nil, ErrNotBiddingPhase
	}
	if s.CurrentBid != nil {
		// a bid exists, the admin must confirm it (or wait for expiry)
		return nil, ErrInvalidTransition
	}
	p := s.CurrentPlayer()
	if p == nil {
		return nil, ErrNotFound
	}
	p.WasUnsold = true
	s.UnsoldPool = append(s.UnsoldPool, p.ID)
	s.Phase = PhaseWaiting
	s.CurrentPlayerID = nil
	s.CurrentBid = nil
	s.clearCountdown()
	s.RebuildTeams()
	return &Event{Type: EventPlayerPassed, PlayerID: p.ID, Auto: auto}, nil
}

func applyNextPlayer(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Phase != PhaseSold {
		return nil, ErrInvalidTransition
	}
	s.Phase = PhaseWaiting
	s.CurrentPlayerID = nil
	s.CurrentBid = nil
	s.RebuildTeams()
	return &Event{Type: EventReadyForNextPlayer}, nil
}

func applyPauseAuction(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusOngoing {
		return nil, ErrInvalidTransition
	}
	s.Status = StatusPaused
	// freeze a running countdown together with the room. An explicitly paused
	// timer keeps its own frozen remaining and stays paused across the resume
	if s.Phase == PhaseBidding && !s.TimerPaused && s.BiddingEndsAt != nil {
		rem := s.BiddingEndsAt.Sub(now)
		if rem < 0 {
			rem = 0
		}
		s.PausedRemaining = &rem
		s.BiddingEndsAt = nil
	}
	s.RebuildTeams()
	return &Event{Type: EventAuctionPaused}, nil
}

func applyResumeAuction(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusPaused {
		return nil, ErrInvalidTransition
	}
	s.Status = StatusOngoing
	if s.Phase == PhaseBidding && !s.TimerPaused && s.PausedRemaining != nil {
		end := now.Add(*s.PausedRemaining)
		s.BiddingEndsAt = &end
		s.PausedRemaining = nil
	}
	s.RebuildTeams()
	return &Event{Type: EventAuctionResumed}, nil
}

func applyPauseTimer(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Phase != PhaseBidding {
		return nil, ErrNotBiddingPhase
	}
	if s.TimerPaused || s.BiddingEndsAt == nil {
		return nil, ErrInvalidTransition
	}
	rem := s.BiddingEndsAt.Sub(now)
	if rem < 0 {
		rem = 0
	}
	s.TimerPaused = true
	s.PausedRemaining = &rem
	s.BiddingEndsAt = nil
	s.RebuildTeams()
	return &Event{Type: EventTimerPaused}, nil
}

func applyResumeTimer(s *RoomState, cmd Command, now time.Time) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Phase != PhaseBidding {
		return nil, ErrNotBiddingPhase
	}
	if !s.TimerPaused || s.PausedRemaining == nil {
		return nil, ErrInvalidTransition
	}
	s.TimerPaused = false
	// if the whole room is paused the countdown stays frozen and reschedules
	// when the room resumes
	if s.Status == StatusOngoing {
		end := now.Add(*s.PausedRemaining)
		s.BiddingEndsAt = &end
		s.PausedRemaining = nil
	}
	s.RebuildTeams()
	return &Event{Type: EventTimerResumed}, nil
}

func applyUndoSoldPlayer(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusOngoing && s.Status != StatusPaused && s.Status != StatusAssigning {
		return nil, ErrInvalidTransition
	}
	p := s.Participant(cmd.PlayerID)
	if p == nil {
		return nil, ErrNotFound
	}
	if p.AssignedCaptainID == nil {
		return nil, ErrInvalidTransition
	}
	captainID := *p.AssignedCaptainID
	if err := s.Ledger().Credit(captainID, p.PricePaid); err != nil {
		return nil, err
	}
	p.AssignedCaptainID = nil
	p.PricePaid = 0
	// back to the front of the queue for an immediate re-draw
	s.removeFromQueue(p.ID)
	s.removeFromUnsold(p.ID)
	s.Queue = append([]uuid.UUID{p.ID}, s.Queue...)
	if s.CurrentPlayerID != nil && *s.CurrentPlayerID == p.ID {
		s.Phase = PhaseWaiting
		s.CurrentPlayerID = nil
		s.CurrentBid = nil
		s.clearCountdown()
	}
	s.RebuildTeams()
	return &Event{Type: EventPlayerUndone, PlayerID: p.ID, CaptainID: captainID}, nil
}

func applyEnterAssignmentPhase(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusOngoing && s.Status != StatusPaused {
		return nil, ErrInvalidTransition
	}
	if s.Phase == PhaseBidding {
		return nil, ErrInvalidTransition
	}
	if len(s.UnsoldPool) == 0 {
		return nil, ErrInvalidTransition
	}
	s.Status = StatusAssigning
	s.Phase = PhaseWaiting
	s.CurrentPlayerID = nil
	s.CurrentBid = nil
	s.clearCountdown()
	s.RebuildTeams()
	return &Event{Type: EventAssignmentPhaseStarted}, nil
}

func applyManualAssignPlayer(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusAssigning {
		return nil, ErrInvalidTransition
	}
	p := s.Participant(cmd.PlayerID)
	if p == nil {
		return nil, ErrNotFound
	}
	if p.AssignedCaptainID != nil {
		return nil, ErrPlayerAlreadyResolved
	}
	inPool := false
	for _, id := range s.UnsoldPool {
		if id == p.ID {
			inPool = true
			break
		}
	}
	if !inPool {
		return nil, ErrInvalidTransition
	}
	captain := s.Captain(cmd.CaptainID)
	if captain == nil {
		return nil, ErrNotFound
	}
	captainID := captain.ID
	p.AssignedCaptainID = &captainID
	p.PricePaid = 0
	// was_unsold stays true, the roster view distinguishes the assignment path
	s.removeFromUnsold(p.ID)
	s.RebuildTeams()
	return &Event{Type: EventPlayerManuallyAssigned, PlayerID: p.ID, CaptainID: captainID}, nil
}

func applyCompleteAuction(s *RoomState, cmd Command) (*Event, error) {
	if err := requireAdmin(cmd); err != nil {
		return nil, err
	}
	if s.Status != StatusOngoing && s.Status != StatusAssigning {
		return nil, ErrInvalidTransition
	}
	if s.Phase == PhaseBidding {
		return nil, ErrInvalidTransition
	}
	s.Status = StatusCompleted
	s.Phase = PhaseWaiting
	s.CurrentPlayerID = nil
	s.CurrentBid = nil
	s.clearCountdown()
	s.RebuildTeams()
	return &Event{Type: EventAuctionCompleted}, nil
}

// applyTimerExpired resolves the player on the block when the countdown fires:
// sell when a bid exists, pass otherwise. It must no-op, without error, when
// the room already left the bidding phase or the countdown was rearmed since
// the expiry was scheduled: the admin may have resolved the player manually
// microseconds earlier and last-writer-wins is not acceptable here.
func applyTimerExpired(s *RoomState, cmd Command) (*Event, error) {
	if s.Status != StatusOngoing || s.Phase != PhaseBidding {
		return nil, nil
	}
	if s.TimerPaused || s.PausedRemaining != nil || s.BiddingEndsAt == nil {
		return nil, nil
	}
	if !cmd.Deadline.IsZero() && !s.BiddingEndsAt.Equal(cmd.Deadline) {
		// stale wake-up armed for a deadline that has since moved
		return nil, nil
	}
	if s.CurrentBid != nil {
		return applyConfirmBid(s, true)
	}
	return applyPassPlayer(s, true)
}

func (s *RoomState) clearCountdown() {
	s.BiddingEndsAt = nil
	s.TimerPaused = false
	s.PausedRemaining = nil
}
