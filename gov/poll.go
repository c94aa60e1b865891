package gov

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/votepool/votepool/kv"
	"github.com/votepool/votepool/votepool"
)

var pollBucket = kv.Bucket("poll-")

// PollStatus is the lifecycle state of a poll. The only transitions are
// InProgress to Passed and InProgress to Rejected, each at most once.
type PollStatus uint8

const (
	InProgress PollStatus = iota
	Passed
	Rejected
)

func (s PollStatus) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Passed:
		return "passed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Voter is one cast vote. Vote is a free-form string; only the literal "yes"
// counts toward the yes tally, anything else tallies as no.
type Voter struct {
	Vote   string
	Weight *uint256.Int
}

// Poll is a single governance proposal. Voters and VoterInfo are parallel
// sequences in insertion order.
type Poll struct {
	Creator          votepool.Address
	Status           PollStatus
	QuorumPercentage *uint8 `rlp:"nil"`
	YesVotes         *uint256.Int
	NoVotes          *uint256.Int
	Voters           []votepool.Address
	VoterInfo        []Voter
	StartHeight      *uint64 `rlp:"nil"`
	EndHeight        uint64
	Description      string
}

func (p *Poll) hasVoted(addr votepool.Address) bool {
	for _, v := range p.Voters {
		if v == addr {
			return true
		}
	}
	return false
}

// pollKey is the big-endian encoding of the poll id.
func pollKey(pollID uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], pollID)
	return key[:]
}

func loadPoll(g kv.Getter, pollID uint64) (*Poll, error) {
	data, err := pollBucket.NewGetter(g).Get(pollKey(pollID))
	if err != nil {
		if g.IsNotFound(err) {
			return nil, ErrPollNotExist
		}
		return nil, err
	}
	var p Poll
	if err := rlp.DecodeBytes(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func savePoll(p kv.Putter, pollID uint64, poll *Poll) error {
	data, err := rlp.EncodeToBytes(poll)
	if err != nil {
		return err
	}
	return pollBucket.NewPutter(p).Put(pollKey(pollID), data)
}

// validateDescription returns an error if the description is invalid.
func validateDescription(description string) error {
	if len(description) < votepool.MinDescLength {
		return &DescriptionTooShortError{MinDescLength: votepool.MinDescLength}
	}
	if len(description) > votepool.MaxDescLength {
		return &DescriptionTooLongError{MaxDescLength: votepool.MaxDescLength}
	}
	return nil
}

// validateQuorumPercentage returns an error if the quorum percentage is
// invalid (we require 0-100).
func validateQuorumPercentage(quorumPercentage *uint8) error {
	if quorumPercentage != nil && *quorumPercentage > 100 {
		return &QuorumPercentageError{QuorumPercentage: *quorumPercentage}
	}
	return nil
}

// validateEndHeight returns an error if the poll would end in the past.
func validateEndHeight(endHeight *uint64, currentHeight uint64) error {
	if endHeight != nil && currentHeight >= *endHeight {
		return ErrPollCannotEndInPast
	}
	return nil
}
