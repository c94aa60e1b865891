package gov

import (
	"github.com/holiman/uint256"

	"github.com/votepool/votepool/votepool"
)

// Config returns the contract's singleton config.
func (c *Contract) Config() (*Config, error) {
	return loadConfig(c.store)
}

// TokenStake returns the token balance staked by the given account. Accounts
// without a custody record report zero.
func (c *Contract) TokenStake(addr votepool.Address) (*uint256.Int, error) {
	rec, _, err := loadCustody(c.store, addr)
	if err != nil {
		return nil, err
	}
	return rec.TokenBalance, nil
}

// Poll returns the poll record of the given id, or ErrPollNotExist.
func (c *Contract) Poll(pollID uint64) (*Poll, error) {
	return loadPoll(c.store, pollID)
}
