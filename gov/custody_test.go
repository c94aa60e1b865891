package gov

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustodyRecordLocks(t *testing.T) {
	rec := newCustodyRecord()
	assert.True(t, rec.largestLocked().IsZero())

	rec.lock(1, u(60))
	rec.lock(2, u(30))
	rec.lock(3, u(45))

	assert.Equal(t, u(60), rec.largestLocked())
	assert.Equal(t, []uint64{1, 2, 3}, rec.ParticipatedPolls)

	rec.unlock(1)
	assert.Equal(t, u(45), rec.largestLocked())
	assert.Len(t, rec.LockedTokens, 2)

	// unlocking an absent entry is a no-op
	rec.unlock(1)
	assert.Len(t, rec.LockedTokens, 2)

	rec.unlock(2)
	rec.unlock(3)
	assert.Empty(t, rec.LockedTokens)
	assert.True(t, rec.largestLocked().IsZero())
}

func TestStakeCoinAmount(t *testing.T) {
	tests := []struct {
		name   string
		funds  []Coin
		amount uint64
		err    error
	}{
		{"exact denom and amount", coins(100), 100, nil},
		{"minimum amount", coins(1), 1, nil},
		{"zero amount", coins(0), 0, ErrInsufficientFunds},
		{"empty", nil, 0, ErrInsufficientFunds},
		{"wrong denom", []Coin{{Denom: "other", Amount: u(5)}}, 0, ErrInsufficientFunds},
		{"foreign denom alongside", []Coin{
			{Denom: testDenom, Amount: u(5)},
			{Denom: "other", Amount: u(5)},
		}, 0, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := stakeCoinAmount(tt.funds, testDenom)
			if tt.err != nil {
				assert.Equal(t, tt.err, err)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, u(tt.amount), amount)
			}
		})
	}
}
