package gov

import (
	"encoding/json"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/votepool/votepool/votepool"
)

func (c *Contract) createPoll(st *stage, env Env, info MessageInfo, msg CreatePoll) (*Output, error) {
	if err := validateQuorumPercentage(msg.QuorumPercentage); err != nil {
		return nil, err
	}
	if err := validateEndHeight(msg.EndHeight, env.BlockHeight); err != nil {
		return nil, err
	}
	if err := validateDescription(msg.Description); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	pollID := cfg.PollCount + 1
	cfg.PollCount = pollID

	endHeight := env.BlockHeight + votepool.DefaultEndHeightBlocks
	if msg.EndHeight != nil {
		endHeight = *msg.EndHeight
	}

	poll := &Poll{
		Creator:          info.Sender,
		Status:           InProgress,
		QuorumPercentage: msg.QuorumPercentage,
		YesVotes:         new(uint256.Int),
		NoVotes:          new(uint256.Int),
		StartHeight:      msg.StartHeight,
		EndHeight:        endHeight,
		Description:      msg.Description,
	}
	if err := savePoll(st, pollID, poll); err != nil {
		return nil, err
	}
	if err := saveConfig(st, cfg); err != nil {
		return nil, err
	}

	metricPolls().Set(int64(pollID))

	var quorum uint8
	if msg.QuorumPercentage != nil {
		quorum = *msg.QuorumPercentage
	}
	var startHeight uint64
	if msg.StartHeight != nil {
		startHeight = *msg.StartHeight
	}

	data, err := json.Marshal(CreatePollResponse{PollID: pollID})
	if err != nil {
		return nil, err
	}
	out := &Output{Data: data}
	out.attr("action", "create_poll").
		attr("creator", info.Sender.String()).
		attr("poll_id", strconv.FormatUint(pollID, 10)).
		attr("quorum_percentage", strconv.FormatUint(uint64(quorum), 10)).
		attr("end_height", strconv.FormatUint(endHeight, 10)).
		attr("start_height", strconv.FormatUint(startHeight, 10))
	return out, nil
}

func (c *Contract) castVote(st *stage, info MessageInfo, msg CastVote) (*Output, error) {
	cfg, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	if msg.PollID == 0 || msg.PollID > cfg.PollCount {
		return nil, ErrPollNotExist
	}

	poll, err := loadPoll(st, msg.PollID)
	if err != nil {
		return nil, err
	}
	if poll.Status != InProgress {
		return nil, ErrPollNotInProgress
	}
	if poll.hasVoted(info.Sender) {
		return nil, ErrAlreadyVoted
	}

	weight := msg.Weight
	if weight == nil {
		weight = new(uint256.Int)
	}

	rec, _, err := loadCustody(st, info.Sender)
	if err != nil {
		return nil, err
	}
	if rec.TokenBalance.Lt(weight) {
		return nil, ErrInsufficientStake
	}
	rec.lock(msg.PollID, weight)
	if err := saveCustody(st, info.Sender, rec); err != nil {
		return nil, err
	}

	poll.Voters = append(poll.Voters, info.Sender)
	poll.VoterInfo = append(poll.VoterInfo, Voter{Vote: msg.Vote, Weight: weight})
	if err := savePoll(st, msg.PollID, poll); err != nil {
		return nil, err
	}

	out := &Output{}
	out.attr("action", "vote_casted").
		attr("poll_id", strconv.FormatUint(msg.PollID, 10)).
		attr("weight", weight.Dec()).
		attr("voter", info.Sender.String())
	return out, nil
}

func (c *Contract) endPoll(st *stage, env Env, info MessageInfo, msg EndPoll) (*Output, error) {
	poll, err := loadPoll(st, msg.PollID)
	if err != nil {
		return nil, err
	}
	if poll.Creator != info.Sender {
		return nil, &NotCreatorError{Creator: poll.Creator, Sender: info.Sender}
	}
	if poll.Status != InProgress {
		return nil, ErrPollNotInProgress
	}
	if poll.StartHeight != nil && *poll.StartHeight > env.BlockHeight {
		return nil, &VotingPeriodNotStartedError{StartHeight: *poll.StartHeight}
	}
	if env.BlockHeight < poll.EndHeight {
		return nil, &VotingPeriodNotExpiredError{ExpireHeight: poll.EndHeight}
	}

	yes := new(uint256.Int)
	no := new(uint256.Int)
	for _, voter := range poll.VoterInfo {
		if voter.Vote == "yes" {
			yes.Add(yes, voter.Weight)
		} else {
			no.Add(no, voter.Weight)
		}
	}
	tallied := new(uint256.Int).Add(yes, no)

	// the pool balance is only observed when there is something to weigh it
	// against
	poolBalance := new(uint256.Int)
	if !tallied.IsZero() {
		cfg, err := loadConfig(st)
		if err != nil {
			return nil, err
		}
		if poolBalance, err = c.bank.Balance(cfg.Denom); err != nil {
			return nil, err
		}
	}

	o, err := resolve(tallied, yes, poll.QuorumPercentage, poolBalance)
	if err != nil {
		return nil, err
	}
	poll.YesVotes = yes
	poll.NoVotes = no
	if o.passed {
		poll.Status = Passed
	} else {
		poll.Status = Rejected
	}

	for _, voter := range poll.Voters {
		rec, _, err := loadCustody(st, voter)
		if err != nil {
			return nil, err
		}
		rec.unlock(msg.PollID)
		if err := saveCustody(st, voter, rec); err != nil {
			return nil, err
		}
	}

	if err := savePoll(st, msg.PollID, poll); err != nil {
		return nil, err
	}

	out := &Output{}
	out.attr("action", "end_poll").
		attr("poll_id", strconv.FormatUint(msg.PollID, 10)).
		attr("rejected_reason", o.reason).
		attr("passed", strconv.FormatBool(o.passed))
	return out, nil
}
