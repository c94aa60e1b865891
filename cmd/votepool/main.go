package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/votepool/votepool/api"
	"github.com/votepool/votepool/bank"
	"github.com/votepool/votepool/gov"
	"github.com/votepool/votepool/metrics"
	"github.com/votepool/votepool/votepool"
)

var (
	version   string
	gitCommit string
	log       = log15.New()
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "votepool",
		Usage:     "voting token custody and governance poll service",
		Copyright: "2026 votepool developers",
		Flags: []cli.Flag{
			dataDirFlag,
			denomFlag,
			ownerFlag,
			startHeightFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db := openMainDB(ctx)
	defer func() { log.Info("closing main database..."); db.Close() }()

	ledger := bank.New(db)
	contract := gov.New(db, ledger)

	initialized, err := contract.Initialized()
	if err != nil {
		return err
	}
	if !initialized {
		owner, err := votepool.ParseAddress(ctx.String(ownerFlag.Name))
		if err != nil {
			return errors.WithMessage(err, "owner")
		}
		if _, err := contract.Instantiate(
			gov.MessageInfo{Sender: *owner},
			gov.InstantiateMsg{Denom: ctx.String(denomFlag.Name)},
		); err != nil {
			return err
		}
	}

	origins := strings.Split(strings.TrimSpace(ctx.String(apiCorsFlag.Name)), ",")
	handler := handlers.CompressHandler(api.New(contract, ledger, ctx.Uint64(startHeightFlag.Name)))
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	apiURL, srvClose := startAPIServer(ctx, handler)
	defer func() { log.Info("stopping API server..."); srvClose() }()
	log.Info("API server started", "url", apiURL)

	<-handleExitSignal().Done()
	return nil
}
