package gov

import (
	"encoding/json"

	"github.com/holiman/uint256"

	"github.com/votepool/votepool/votepool"
)

// Attribute is one key/value pair of an operation's audit trail.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Transfer is a fund-transfer effect to be applied by the dispatch layer.
type Transfer struct {
	Recipient votepool.Address `json:"recipient"`
	Amount    *uint256.Int     `json:"amount"`
	Denom     string           `json:"denom"`
}

// Output is the effect record of a successfully applied operation.
type Output struct {
	Attributes []Attribute     `json:"attributes"`
	Transfers  []Transfer      `json:"transfers,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func (o *Output) attr(key, value string) *Output {
	o.Attributes = append(o.Attributes, Attribute{key, value})
	return o
}

// CreatePollResponse is the data payload of a create-poll output.
type CreatePollResponse struct {
	PollID uint64 `json:"poll_id"`
}
