package domain

import "errors"

// Typed rejections of the bidding state machine. They are reported back to the
// originating connection only and never mutate room state
var (
	ErrUnauthorized          = errors.New("actor role is not allowed to run this command")
	ErrInvalidTransition     = errors.New("command is not valid for the current status or phase")
	ErrInsufficientPoints    = errors.New("bid amount exceeds captain's point balance")
	ErrNotBiddingPhase       = errors.New("room is not in the bidding phase")
	ErrPlayerAlreadyResolved = errors.New("player is already assigned or unsold")
	ErrNotFound              = errors.New("unknown auction, player or captain identifier")
	ErrBidAmountTooLow       = errors.New("bid amount must be strictly higher than the current bid")
	ErrInvalidAmount         = errors.New("bid amount cannot be zero or less than zero")
	ErrAuctionPaused         = errors.New("auction is paused, bidding commands are not accepted")
)
