package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"gopkg.in/urfave/cli.v1"

	"github.com/leptonlabs/go-lepton/api"
	"github.com/leptonlabs/go-lepton/chain_db"
	"github.com/leptonlabs/go-lepton/common"
	"github.com/leptonlabs/go-lepton/currency"
)

// lepton is the single-node development client: it runs the currency
// core behind the HTTP api and stands in for the external ordering
// layer with a timer-driven block producer.

var (
	log = log15.New("module", "lepton/main")

	app = cli.NewApp()

	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for the ledger database",
		Value: "lepton-data",
	}
	httpAddrFlag = cli.StringFlag{
		Name:  "httpaddr",
		Usage: "HTTP api listen address",
		Value: "127.0.0.1:8200",
	}
	blockIntervalFlag = cli.DurationFlag{
		Name:  "blockinterval",
		Usage: "interval between produced blocks",
		Value: time.Second,
	}
	maxBlockTxsFlag = cli.IntFlag{
		Name:  "maxblocktxs",
		Usage: "max transactions drained into one block",
		Value: 500,
	}
	logLvlFlag = cli.StringFlag{
		Name:  "loglvl",
		Usage: "log level (debug|info|warn|error)",
		Value: "info",
	}
	logDirFlag = cli.StringFlag{
		Name:  "logdir",
		Usage: "write rotating logs under this directory instead of stdout",
	}
)

func init() {
	app.Name = "lepton"
	app.Version = "0.1.0"
	app.Usage = "minimal account-based currency node"
	app.Flags = []cli.Flag{
		dataDirFlag,
		httpAddrFlag,
		blockIntervalFlag,
		maxBlockTxsFlag,
		logLvlFlag,
		logDirFlag,
	}
	app.Action = runNode
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(ctx *cli.Context) {
	if logDir := ctx.String(logDirFlag.Name); logDir != "" {
		log15.Root().SetHandler(common.LogHandler(logDir, "lepton", "lepton.log", ctx.String(logLvlFlag.Name)))
		return
	}

	logLevel, err := log15.LvlFromString(ctx.String(logLvlFlag.Name))
	if err != nil {
		logLevel = log15.LvlInfo
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(logLevel, log15.StdoutHandler))
}

func runNode(ctx *cli.Context) error {
	setupLogger(ctx)

	chainDb, err := chain_db.NewChainDb(filepath.Join(ctx.String(dataDirFlag.Name), "chaindb"))
	if err != nil {
		return err
	}
	defer chainDb.Close()

	pool := currency.NewPool()
	svc, err := currency.NewService(chainDb, pool)
	if err != nil {
		return err
	}

	server := api.NewServer(svc, ctx.String(httpAddrFlag.Name))
	go func() {
		if err := server.Start(); err != nil {
			log.Crit("http server failed", "err", err)
		}
	}()

	log.Info("node started", "datadir", ctx.String(dataDirFlag.Name), "supply", svc.TotalSupply())

	ticker := time.NewTicker(ctx.Duration(blockIntervalFlag.Name))
	defer ticker.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			txs := pool.Drain(ctx.Int(maxBlockTxsFlag.Name))
			if len(txs) == 0 {
				continue
			}
			if err := svc.ApplyBlock(txs); err != nil {
				log.Crit("block application failed", "err", err)
				return err
			}
			if err := svc.VerifySupply(); err != nil {
				// conservation broke; continuing would replicate corrupt state
				log.Crit("ledger invariant violated", "err", err)
				return err
			}
			log.Info("block applied", "txs", len(txs))

		case sig := <-sigc:
			log.Info("shutting down", "signal", sig)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(shutdownCtx)
		}
	}
}
