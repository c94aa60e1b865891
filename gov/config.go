package gov

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/votepool/votepool/kv"
	"github.com/votepool/votepool/votepool"
)

var configKey = []byte("config")

// Config is the contract's singleton state.
//
// StakedTokens is bookkeeping: the sum of stake/withdraw deltas applied so
// far. The authoritative pooled balance is observed externally through the
// bank querier at poll-end time.
type Config struct {
	Denom        string
	Owner        votepool.Address
	PollCount    uint64
	StakedTokens *uint256.Int
}

func loadConfig(g kv.Getter) (*Config, error) {
	data, err := g.Get(configKey)
	if err != nil {
		if g.IsNotFound(err) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	var cfg Config
	if err := rlp.DecodeBytes(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(p kv.Putter, cfg *Config) error {
	data, err := rlp.EncodeToBytes(cfg)
	if err != nil {
		return err
	}
	return p.Put(configKey, data)
}
