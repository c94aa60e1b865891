package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"

	"github.com/votepool/votepool/api/utils"
	"github.com/votepool/votepool/bank"
	"github.com/votepool/votepool/gov"
	"github.com/votepool/votepool/metrics"
)

var logger = log15.New("module", "api")

// API serves the contract's execute and query surface over HTTP. It also
// plays the external sequencing layer: operations are applied strictly
// serially, and the block height advances by one per applied operation.
type API struct {
	mu       sync.Mutex
	contract *gov.Contract
	pool     *bank.Ledger
	height   uint64
}

// New creates the API handler.
func New(contract *gov.Contract, pool *bank.Ledger, startHeight uint64) http.Handler {
	a := &API{
		contract: contract,
		pool:     pool,
		height:   startHeight,
	}

	router := mux.NewRouter()
	router.HandleFunc("/config", utils.WrapHandlerFunc(a.handleGetConfig)).Methods(http.MethodGet)
	router.HandleFunc("/stake/{address}", utils.WrapHandlerFunc(a.handleGetTokenStake)).Methods(http.MethodGet)
	router.HandleFunc("/polls/{id}", utils.WrapHandlerFunc(a.handleGetPoll)).Methods(http.MethodGet)

	router.HandleFunc("/stake", utils.WrapHandlerFunc(a.handleStake)).Methods(http.MethodPost)
	router.HandleFunc("/withdraw", utils.WrapHandlerFunc(a.handleWithdraw)).Methods(http.MethodPost)
	router.HandleFunc("/polls", utils.WrapHandlerFunc(a.handleCreatePoll)).Methods(http.MethodPost)
	router.HandleFunc("/polls/{id}/votes", utils.WrapHandlerFunc(a.handleCastVote)).Methods(http.MethodPost)
	router.HandleFunc("/polls/{id}/end", utils.WrapHandlerFunc(a.handleEndPoll)).Methods(http.MethodPost)

	if h := metrics.HTTPHandler(); h != nil {
		router.Path("/metrics").Handler(h)
	}
	return router
}

// execute applies one operation at the next height. Funds attached to a
// stake are credited to the pool and emitted transfer effects are settled,
// both only after the operation committed.
func (a *API) execute(info gov.MessageInfo, msg gov.ExecuteMsg) (*ExecuteResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	height := a.height + 1
	out, err := a.contract.Execute(gov.Env{BlockHeight: height}, info, msg)
	if err != nil {
		return nil, convertExecuteError(err)
	}
	a.height = height

	if _, ok := msg.(gov.StakeVotingTokens); ok {
		for _, c := range info.Funds {
			if err := a.pool.Deposit(c.Denom, c.Amount); err != nil {
				return nil, err
			}
		}
	}
	if err := a.pool.Apply(out.Transfers); err != nil {
		return nil, err
	}
	return &ExecuteResponse{Height: height, Output: out}, nil
}

func (a *API) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	sender, err := parseSender(body.Sender)
	if err != nil {
		return utils.BadRequest(err)
	}
	funds, err := parseFunds(body.Funds)
	if err != nil {
		return utils.BadRequest(err)
	}

	resp, err := a.execute(gov.MessageInfo{Sender: sender, Funds: funds}, gov.StakeVotingTokens{})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *API) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	sender, err := parseSender(body.Sender)
	if err != nil {
		return utils.BadRequest(err)
	}
	msg := gov.WithdrawVotingTokens{}
	if body.Amount != nil {
		if msg.Amount, err = parseAmount(*body.Amount); err != nil {
			return utils.BadRequest(err)
		}
	}

	resp, err := a.execute(gov.MessageInfo{Sender: sender}, msg)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *API) handleCreatePoll(w http.ResponseWriter, req *http.Request) error {
	var body CreatePollRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	sender, err := parseSender(body.Sender)
	if err != nil {
		return utils.BadRequest(err)
	}

	resp, err := a.execute(gov.MessageInfo{Sender: sender}, gov.CreatePoll{
		QuorumPercentage: body.QuorumPercentage,
		Description:      body.Description,
		StartHeight:      body.StartHeight,
		EndHeight:        body.EndHeight,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *API) handleCastVote(w http.ResponseWriter, req *http.Request) error {
	pollID, err := parsePollID(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	var body CastVoteRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	sender, err := parseSender(body.Sender)
	if err != nil {
		return utils.BadRequest(err)
	}
	weight, err := parseAmount(body.Weight)
	if err != nil {
		return utils.BadRequest(err)
	}

	resp, err := a.execute(gov.MessageInfo{Sender: sender}, gov.CastVote{
		PollID: pollID,
		Vote:   body.Vote,
		Weight: weight,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *API) handleEndPoll(w http.ResponseWriter, req *http.Request) error {
	pollID, err := parsePollID(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	var body EndPollRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	sender, err := parseSender(body.Sender)
	if err != nil {
		return utils.BadRequest(err)
	}

	resp, err := a.execute(gov.MessageInfo{Sender: sender}, gov.EndPoll{PollID: pollID})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, resp)
}

func (a *API) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := a.contract.Config()
	if err != nil {
		if errors.Is(err, gov.ErrNotInitialized) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, &ConfigResponse{
		Denom:        cfg.Denom,
		Owner:        cfg.Owner.String(),
		PollCount:    cfg.PollCount,
		StakedTokens: cfg.StakedTokens.Dec(),
	})
}

func (a *API) handleGetTokenStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseSender(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	balance, err := a.contract.TokenStake(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &TokenStakeResponse{TokenBalance: balance.Dec()})
}

func (a *API) handleGetPoll(w http.ResponseWriter, req *http.Request) error {
	pollID, err := parsePollID(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	poll, err := a.contract.Poll(pollID)
	if err != nil {
		if errors.Is(err, gov.ErrPollNotExist) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, &PollResponse{
		Creator:          poll.Creator.String(),
		Status:           poll.Status.String(),
		QuorumPercentage: poll.QuorumPercentage,
		StartHeight:      poll.StartHeight,
		EndHeight:        poll.EndHeight,
		Description:      poll.Description,
	})
}

func parsePollID(req *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
}

// convertExecuteError maps contract errors onto http statuses. Unknown
// errors fall through and respond as internal.
func convertExecuteError(err error) error {
	var notCreator *gov.NotCreatorError
	if errors.As(err, &notCreator) {
		return utils.Forbidden(err)
	}
	if errors.Is(err, gov.ErrPollNotExist) {
		return utils.NotFound(err)
	}

	var (
		excessive  *gov.ExcessiveWithdrawError
		tooShort   *gov.DescriptionTooShortError
		tooLong    *gov.DescriptionTooLongError
		badQuorum  *gov.QuorumPercentageError
		notStarted *gov.VotingPeriodNotStartedError
		notExpired *gov.VotingPeriodNotExpiredError
	)
	switch {
	case errors.Is(err, gov.ErrNoStake),
		errors.Is(err, gov.ErrPollNotInProgress),
		errors.Is(err, gov.ErrAlreadyVoted),
		errors.Is(err, gov.ErrInsufficientStake),
		errors.Is(err, gov.ErrInsufficientFunds),
		errors.Is(err, gov.ErrPollCannotEndInPast),
		errors.Is(err, gov.ErrAmountOverflow),
		errors.Is(err, gov.ErrAmountUnderflow),
		errors.As(err, &excessive),
		errors.As(err, &tooShort),
		errors.As(err, &tooLong),
		errors.As(err, &badQuorum),
		errors.As(err, &notStarted),
		errors.As(err, &notExpired):
		return utils.BadRequest(err)
	}

	logger.Warn("execute failed internally", "err", err)
	return err
}
