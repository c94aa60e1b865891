package gov

import (
	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/votepool/votepool/kv"
	"github.com/votepool/votepool/metrics"
)

var (
	logger = log15.New("module", "gov")

	metricExecuted = metrics.LazyLoadCounterVec("execute_total", []string{"op", "result"})
	metricPolls    = metrics.LazyLoadGauge("poll_count")
)

// BankQuerier reports the balance held by the pool account, observed outside
// the contract's own bookkeeping.
type BankQuerier interface {
	Balance(denom string) (*uint256.Int, error)
}

// Contract is the deterministic state-transition function over the backing
// store: token custody plus quorum-based governance polls. It is invoked once
// per externally-ordered request; each invocation either commits all of its
// writes or none of them.
type Contract struct {
	store kv.Store
	bank  BankQuerier
}

// New creates a contract bound to the store and the pool balance querier.
func New(store kv.Store, bank BankQuerier) *Contract {
	return &Contract{store: store, bank: bank}
}

// Initialized reports whether the contract has been instantiated.
func (c *Contract) Initialized() (bool, error) {
	return c.store.Has(configKey)
}

// Instantiate initializes the contract's config with the sender as owner and
// zeroed poll counter and staked total.
func (c *Contract) Instantiate(info MessageInfo, msg InstantiateMsg) (*Output, error) {
	st := newStage(c.store)
	cfg := &Config{
		Denom:        msg.Denom,
		Owner:        info.Sender,
		StakedTokens: new(uint256.Int),
	}
	if err := saveConfig(st, cfg); err != nil {
		return nil, err
	}
	if err := st.commit(c.store); err != nil {
		return nil, errors.Wrap(err, "commit instantiate")
	}
	logger.Info("instantiated", "denom", msg.Denom, "owner", info.Sender)
	return &Output{}, nil
}

// Execute applies one operation. On success the staged writes are committed
// as a single batch and the operation's effects are returned; on error the
// stage is discarded and the store is left untouched.
func (c *Contract) Execute(env Env, info MessageInfo, msg ExecuteMsg) (*Output, error) {
	st := newStage(c.store)
	out, err := c.dispatch(st, env, info, msg)
	if err != nil {
		metricExecuted().AddWithLabel(1, map[string]string{"op": msg.opName(), "result": "rejected"})
		logger.Debug("execute rejected",
			"op", msg.opName(), "sender", info.Sender, "height", env.BlockHeight, "err", err)
		return nil, err
	}
	if err := st.commit(c.store); err != nil {
		return nil, errors.Wrap(err, "commit execute")
	}
	metricExecuted().AddWithLabel(1, map[string]string{"op": msg.opName(), "result": "applied"})
	logger.Debug("execute applied",
		"op", msg.opName(), "sender", info.Sender, "height", env.BlockHeight)
	return out, nil
}

func (c *Contract) dispatch(st *stage, env Env, info MessageInfo, msg ExecuteMsg) (*Output, error) {
	switch m := msg.(type) {
	case StakeVotingTokens:
		return c.stakeVotingTokens(st, info)
	case WithdrawVotingTokens:
		return c.withdrawVotingTokens(st, info, m)
	case CastVote:
		return c.castVote(st, info, m)
	case EndPoll:
		return c.endPoll(st, env, info, m)
	case CreatePoll:
		return c.createPoll(st, env, info, m)
	default:
		return nil, errors.Errorf("unknown execute message %T", msg)
	}
}
