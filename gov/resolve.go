package gov

import (
	"github.com/holiman/uint256"
)

const (
	reasonQuorumNotReached    = "Quorum not reached"
	reasonThresholdNotReached = "Threshold not reached"
)

// outcome is the resolver's verdict; reason is empty when passed.
type outcome struct {
	passed bool
	reason string
}

// resolve computes a finalized poll's fate from the tallied vote weight, the
// yes share, the optional quorum percentage and the externally observed pool
// balance.
//
// The quorum is computed as (tallied / poolBalance) * 100 with the integer
// division performed first. The division truncates toward zero, so any
// turnout short of the full pool reads as quorum 0. This order is kept for
// compatibility with deployed behavior; see the tests pinning it down.
func resolve(tallied, yes *uint256.Int, quorumPercentage *uint8, poolBalance *uint256.Int) (outcome, error) {
	if tallied.IsZero() {
		// no votes at all never passes
		return outcome{reason: reasonQuorumNotReached}, nil
	}
	if poolBalance.IsZero() {
		// the pool cannot be empty while votes exist
		return outcome{}, ErrNoStake
	}

	quorum := new(uint256.Int).Div(tallied, poolBalance)
	quorum.Mul(quorum, uint256.NewInt(100))

	if quorumPercentage != nil && quorum.LtUint64(uint64(*quorumPercentage)) {
		// more than quorumPercentage of the total pooled stake needs to have
		// participated in the vote
		return outcome{reason: reasonQuorumNotReached}, nil
	}

	// threshold: strict majority of the participating weight
	half := new(uint256.Int).Div(tallied, uint256.NewInt(2))
	if yes.Gt(half) {
		return outcome{passed: true}, nil
	}
	return outcome{reason: reasonThresholdNotReached}, nil
}
