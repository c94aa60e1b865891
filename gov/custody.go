package gov

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/votepool/votepool/kv"
	"github.com/votepool/votepool/votepool"
)

var custodyBucket = kv.Bucket("cust-")

// LockEntry reserves Amount against the poll identified by PollID.
type LockEntry struct {
	PollID uint64
	Amount *uint256.Int
}

// CustodyRecord tracks one account's pooled balance and its per-poll locks.
// A record is created lazily on first stake or vote and never deleted; zero
// balance is a valid terminal state.
type CustodyRecord struct {
	TokenBalance      *uint256.Int
	LockedTokens      []LockEntry
	ParticipatedPolls []uint64
}

func newCustodyRecord() *CustodyRecord {
	return &CustodyRecord{TokenBalance: new(uint256.Int)}
}

// largestLocked returns the largest single-poll lock. The available
// withdrawal is gated by this, not by the sum across polls: the same capital
// covers multiple simultaneous votes.
func (r *CustodyRecord) largestLocked() *uint256.Int {
	max := new(uint256.Int)
	for _, e := range r.LockedTokens {
		if e.Amount.Gt(max) {
			max = e.Amount
		}
	}
	return max
}

func (r *CustodyRecord) lock(pollID uint64, weight *uint256.Int) {
	r.ParticipatedPolls = append(r.ParticipatedPolls, pollID)
	r.LockedTokens = append(r.LockedTokens, LockEntry{pollID, weight})
}

// unlock removes the lock entry of the given poll, leaving others untouched.
// It is a no-op if the entry is already absent.
func (r *CustodyRecord) unlock(pollID uint64) {
	kept := r.LockedTokens[:0]
	for _, e := range r.LockedTokens {
		if e.PollID != pollID {
			kept = append(kept, e)
		}
	}
	r.LockedTokens = kept
}

func loadCustody(g kv.Getter, addr votepool.Address) (rec *CustodyRecord, found bool, err error) {
	data, err := custodyBucket.NewGetter(g).Get(addr.Bytes())
	if err != nil {
		if g.IsNotFound(err) {
			return newCustodyRecord(), false, nil
		}
		return nil, false, err
	}
	rec = new(CustodyRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func saveCustody(p kv.Putter, addr votepool.Address, rec *CustodyRecord) error {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	return custodyBucket.NewPutter(p).Put(addr.Bytes(), data)
}

// stakeCoinAmount applies the minimum-coin check to the attached funds:
// every attached coin must be of the expected denom, and at least one must
// meet the minimum stake amount. Its amount is the staked amount.
func stakeCoinAmount(funds []Coin, denom string) (*uint256.Int, error) {
	min := uint256.NewInt(votepool.MinStakeAmount)
	var amount *uint256.Int
	for _, c := range funds {
		if c.Denom != denom {
			return nil, ErrInsufficientFunds
		}
		if amount == nil && c.Amount != nil && !c.Amount.Lt(min) {
			amount = c.Amount
		}
	}
	if amount == nil {
		return nil, ErrInsufficientFunds
	}
	return amount, nil
}

func (c *Contract) stakeVotingTokens(st *stage, info MessageInfo) (*Output, error) {
	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	rec, _, err := loadCustody(st, info.Sender)
	if err != nil {
		return nil, err
	}

	amount, err := stakeCoinAmount(info.Funds, cfg.Denom)
	if err != nil {
		return nil, err
	}

	balance, overflow := new(uint256.Int).AddOverflow(rec.TokenBalance, amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	rec.TokenBalance = balance

	staked, overflow := new(uint256.Int).AddOverflow(cfg.StakedTokens, amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	cfg.StakedTokens = staked

	if err := saveConfig(st, cfg); err != nil {
		return nil, err
	}
	if err := saveCustody(st, info.Sender, rec); err != nil {
		return nil, err
	}
	return &Output{}, nil
}

func (c *Contract) withdrawVotingTokens(st *stage, info MessageInfo, msg WithdrawVotingTokens) (*Output, error) {
	rec, found, err := loadCustody(st, info.Sender)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoStake
	}

	locked := rec.largestLocked()
	amount := msg.Amount
	if amount == nil {
		amount = rec.TokenBalance.Clone()
	}

	needed, overflow := new(uint256.Int).AddOverflow(locked, amount)
	if overflow || needed.Gt(rec.TokenBalance) {
		max, underflow := new(uint256.Int).SubOverflow(rec.TokenBalance, locked)
		if underflow {
			return nil, ErrAmountUnderflow
		}
		return nil, &ExcessiveWithdrawError{MaxAmount: max}
	}

	balance, underflow := new(uint256.Int).SubOverflow(rec.TokenBalance, amount)
	if underflow {
		return nil, ErrAmountUnderflow
	}
	rec.TokenBalance = balance
	if err := saveCustody(st, info.Sender, rec); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	staked, underflow := new(uint256.Int).SubOverflow(cfg.StakedTokens, amount)
	if underflow {
		return nil, ErrAmountUnderflow
	}
	cfg.StakedTokens = staked
	if err := saveConfig(st, cfg); err != nil {
		return nil, err
	}

	out := &Output{
		Transfers: []Transfer{{
			Recipient: info.Sender,
			Amount:    amount,
			Denom:     cfg.Denom,
		}},
	}
	out.attr("action", "approve").attr("to", info.Sender.String())
	return out, nil
}
