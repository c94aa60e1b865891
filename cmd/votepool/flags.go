package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/inconshreveable/log15"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the contract database (in-memory if empty)",
	}
	denomFlag = cli.StringFlag{
		Name:  "denom",
		Value: "voting_token",
		Usage: "denom of the voting token, fixed at first run",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Value: "0x0000000000000000000000000000000000000000",
		Usage: "owner address recorded at first run",
	}
	startHeightFlag = cli.Uint64Flag{
		Name:  "start-height",
		Value: 0,
		Usage: "block height the operation sequencer starts from",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log15.LvlInfo),
		Usage: "log verbosity (0-9)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection and the /metrics endpoint",
	}
)
