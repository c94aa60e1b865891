package gov

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/votepool/votepool/votepool"
)

// Errors returned by contract operations. An operation that fails with any of
// these leaves the store untouched; staged writes are discarded.
var (
	ErrNotInitialized      = errors.New("contract not initialized")
	ErrNoStake             = errors.New("don't have any stake")
	ErrPollNotExist        = errors.New("poll does not exist")
	ErrPollNotInProgress   = errors.New("poll is not in progress")
	ErrAlreadyVoted        = errors.New("sender has already voted")
	ErrInsufficientStake   = errors.New("insufficient stake to cast this vote")
	ErrInsufficientFunds   = errors.New("insufficient funds sent")
	ErrPollCannotEndInPast = errors.New("poll cannot end in the past")
	ErrAmountOverflow      = errors.New("amount overflow")
	ErrAmountUnderflow     = errors.New("amount underflow")
)

// ExcessiveWithdrawError is returned when a withdrawal exceeds the balance not
// covered by the largest outstanding poll lock.
type ExcessiveWithdrawError struct {
	MaxAmount *uint256.Int
}

func (e *ExcessiveWithdrawError) Error() string {
	return fmt.Sprintf("can only withdraw up to %s tokens", e.MaxAmount.Dec())
}

// DescriptionTooShortError poll description below the minimum length.
type DescriptionTooShortError struct {
	MinDescLength int
}

func (e *DescriptionTooShortError) Error() string {
	return fmt.Sprintf("description too short, must be at least %d characters", e.MinDescLength)
}

// DescriptionTooLongError poll description above the maximum length.
type DescriptionTooLongError struct {
	MaxDescLength int
}

func (e *DescriptionTooLongError) Error() string {
	return fmt.Sprintf("description too long, must be at most %d characters", e.MaxDescLength)
}

// QuorumPercentageError quorum percentage outside [0, 100].
type QuorumPercentageError struct {
	QuorumPercentage uint8
}

func (e *QuorumPercentageError) Error() string {
	return fmt.Sprintf("quorum percentage must be 0 to 100, got %d", e.QuorumPercentage)
}

// NotCreatorError a poll can only be ended by its creator.
type NotCreatorError struct {
	Creator votepool.Address
	Sender  votepool.Address
}

func (e *NotCreatorError) Error() string {
	return fmt.Sprintf("only the creator %s can end the poll, not %s", e.Creator, e.Sender)
}

// VotingPeriodNotStartedError the poll's voting period has not started yet.
type VotingPeriodNotStartedError struct {
	StartHeight uint64
}

func (e *VotingPeriodNotStartedError) Error() string {
	return fmt.Sprintf("voting period has not started, starts at height %d", e.StartHeight)
}

// VotingPeriodNotExpiredError the poll's voting period has not expired yet.
type VotingPeriodNotExpiredError struct {
	ExpireHeight uint64
}

func (e *VotingPeriodNotExpiredError) Error() string {
	return fmt.Sprintf("voting period has not expired, expires at height %d", e.ExpireHeight)
}
