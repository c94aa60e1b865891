package bank

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/votepool/votepool/gov"
	"github.com/votepool/votepool/kv"
)

var poolBucket = kv.Bucket("bank-")

// ErrInsufficientPool the pool holds less than a transfer asks for.
var ErrInsufficientPool = errors.New("insufficient pool balance")

// Ledger tracks the balance held by the contract's pool account, per denom.
// It is the source of the "observed pool balance" the contract consults at
// poll-end time, and it applies the fund-transfer effects the contract emits.
type Ledger struct {
	store kv.Store
}

var _ gov.BankQuerier = (*Ledger)(nil)

// New creates a pool ledger over the store.
func New(store kv.Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the pooled balance of the given denom, zero if none.
func (l *Ledger) Balance(denom string) (*uint256.Int, error) {
	data, err := poolBucket.NewGetter(l.store).Get([]byte(denom))
	if err != nil {
		if l.store.IsNotFound(err) {
			return new(uint256.Int), nil
		}
		return nil, err
	}
	balance := new(uint256.Int)
	if err := rlp.DecodeBytes(data, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (l *Ledger) save(denom string, balance *uint256.Int) error {
	data, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return err
	}
	return poolBucket.NewPutter(l.store).Put([]byte(denom), data)
}

// Deposit credits the pool with incoming funds.
func (l *Ledger) Deposit(denom string, amount *uint256.Int) error {
	balance, err := l.Balance(denom)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return errors.New("pool balance overflow")
	}
	return l.save(denom, sum)
}

// Apply debits the pool for each emitted fund-transfer effect. The credit
// side of a transfer is settled outside this ledger.
func (l *Ledger) Apply(transfers []gov.Transfer) error {
	for _, t := range transfers {
		balance, err := l.Balance(t.Denom)
		if err != nil {
			return err
		}
		remained, underflow := new(uint256.Int).SubOverflow(balance, t.Amount)
		if underflow {
			return ErrInsufficientPool
		}
		if err := l.save(t.Denom, remained); err != nil {
			return err
		}
	}
	return nil
}
