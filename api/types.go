package api

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/votepool/votepool/gov"
	"github.com/votepool/votepool/votepool"
)

// CoinJSON is a denom/amount pair with the amount in decimal notation.
type CoinJSON struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// StakeRequest deposits the listed funds as voting tokens.
type StakeRequest struct {
	Sender string     `json:"sender"`
	Funds  []CoinJSON `json:"funds"`
}

// WithdrawRequest withdraws staked tokens; a missing amount means the full
// balance.
type WithdrawRequest struct {
	Sender string  `json:"sender"`
	Amount *string `json:"amount,omitempty"`
}

// CreatePollRequest opens a new poll.
type CreatePollRequest struct {
	Sender           string  `json:"sender"`
	QuorumPercentage *uint8  `json:"quorum_percentage,omitempty"`
	Description      string  `json:"description"`
	StartHeight      *uint64 `json:"start_height,omitempty"`
	EndHeight        *uint64 `json:"end_height,omitempty"`
}

// CastVoteRequest votes on the poll addressed by the URL.
type CastVoteRequest struct {
	Sender string `json:"sender"`
	Vote   string `json:"vote"`
	Weight string `json:"weight"`
}

// EndPollRequest finalizes the poll addressed by the URL.
type EndPollRequest struct {
	Sender string `json:"sender"`
}

// ExecuteResponse reports the height an operation was applied at and its
// effects.
type ExecuteResponse struct {
	Height uint64      `json:"height"`
	Output *gov.Output `json:"output"`
}

// ConfigResponse is the full contract config.
type ConfigResponse struct {
	Denom        string `json:"denom"`
	Owner        string `json:"owner"`
	PollCount    uint64 `json:"poll_count"`
	StakedTokens string `json:"staked_tokens"`
}

// TokenStakeResponse is an account's staked balance.
type TokenStakeResponse struct {
	TokenBalance string `json:"token_balance"`
}

// PollResponse is the public view of a poll record.
type PollResponse struct {
	Creator          string  `json:"creator"`
	Status           string  `json:"status"`
	QuorumPercentage *uint8  `json:"quorum_percentage,omitempty"`
	StartHeight      *uint64 `json:"start_height,omitempty"`
	EndHeight        uint64  `json:"end_height"`
	Description      string  `json:"description"`
}

func parseAmount(s string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.WithMessage(err, "amount")
	}
	return amount, nil
}

func parseSender(s string) (votepool.Address, error) {
	addr, err := votepool.ParseAddress(s)
	if err != nil {
		return votepool.Address{}, errors.WithMessage(err, "sender")
	}
	return *addr, nil
}

func parseFunds(funds []CoinJSON) ([]gov.Coin, error) {
	coins := make([]gov.Coin, 0, len(funds))
	for _, f := range funds {
		amount, err := parseAmount(f.Amount)
		if err != nil {
			return nil, err
		}
		coins = append(coins, gov.Coin{Denom: f.Denom, Amount: amount})
	}
	return coins, nil
}
