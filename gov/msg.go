package gov

import (
	"github.com/holiman/uint256"

	"github.com/votepool/votepool/votepool"
)

// Coin is an amount of a named token.
type Coin struct {
	Denom  string
	Amount *uint256.Int
}

// MessageInfo carries the sender and the funds attached to a request.
type MessageInfo struct {
	Sender votepool.Address
	Funds  []Coin
}

// Env is the externally supplied execution context. The contract has no
// notion of wall-clock time, only the monotonic block height.
type Env struct {
	BlockHeight uint64
}

// InstantiateMsg initializes the contract.
type InstantiateMsg struct {
	Denom string
}

// ExecuteMsg is one of the five mutating operations. The set is closed.
type ExecuteMsg interface {
	opName() string
}

// StakeVotingTokens deposits the attached funds into the pool.
type StakeVotingTokens struct{}

// WithdrawVotingTokens withdraws staked tokens. A nil Amount withdraws the
// full balance.
type WithdrawVotingTokens struct {
	Amount *uint256.Int
}

// CastVote locks Weight tokens behind the poll and records the vote.
type CastVote struct {
	PollID uint64
	Vote   string
	Weight *uint256.Int
}

// EndPoll finalizes a poll. Only the poll's creator may end it.
type EndPoll struct {
	PollID uint64
}

// CreatePoll opens a new poll.
type CreatePoll struct {
	QuorumPercentage *uint8
	Description      string
	StartHeight      *uint64
	EndHeight        *uint64
}

func (StakeVotingTokens) opName() string    { return "stake_voting_tokens" }
func (WithdrawVotingTokens) opName() string { return "withdraw_voting_tokens" }
func (CastVote) opName() string             { return "cast_vote" }
func (EndPoll) opName() string              { return "end_poll" }
func (CreatePoll) opName() string           { return "create_poll" }
