// Command tourney is a minimal demo entrypoint for the tournament engine.
// It assembles a tournament.Config from flags, seeds it with two reference
// agents (pkg/agent's SimpleBidder and Rescinder), runs the tournament to
// completion, and prints the final result as JSON. It is a worked example
// of wiring a front-end around the core packages, not a product in its
// own right.
//
// Usage:
//
//	tourney [flags]
//
// Flags:
//
//	--budget      Starting budget per agent (default: 10000)
//	--periods     Periods per stage (default: 9)
//	--bonus       Overall-bonus SP awarded after the terminal stage (default: 1)
//	--verbosity   Log level 0-5 (default: 3)
//	--metrics-addr  If set, serve Prometheus metrics at this address (e.g. :9090)
//	--version     Print version and exit
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/agent"
	"github.com/auctiontourney/engine/pkg/log"
	"github.com/auctiontourney/engine/pkg/mechanism"
	"github.com/auctiontourney/engine/pkg/metrics"
	"github.com/auctiontourney/engine/pkg/tournament"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments and an output writer so it can be tested in isolation.
func run(args []string, out io.Writer) int {
	rc, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.New(verbosityToLevel(rc.Verbosity))
	logger.Info("tourney starting", "version", version, "periods_per_stage", rc.PeriodsPerStage)

	sm := metrics.NewSystemMetrics()
	sm.SetActiveTournamentsFunc(func() int { return 1 })

	if rc.MetricsAddr != "" {
		exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig())
		exporter.RegisterCollector("batch_harness", sm)
		srv := &http.Server{Addr: rc.MetricsAddr, Handler: exporter.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server exited", "error", err.Error())
			}
		}()
		logger.Info("metrics server listening", "addr", rc.MetricsAddr)
	}

	cfg := rc.buildTournamentConfig()

	agents := []tournament.Agent{
		agent.NewSimpleBidder("floor-plus-2", decimal.NewFromInt(2)),
		agent.NewRescinder("rescinder", decimal.NewFromInt(5)),
	}

	t, err := tournament.New(cfg, agents, mechanism.NewRegistry(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build tournament: %v\n", err)
		return 1
	}

	result, err := t.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: tournament run failed: %v\n", err)
		return 1
	}

	totalPeriods := uint64(len(result.Log))
	sm.SetPeriodsClearedFunc(func() uint64 { return totalPeriods })
	sm.SetRunProgressFunc(func() float64 { return 1.0 })
	if snapshot, err := sm.ExportJSON(); err == nil {
		logger.Debug("system metrics", "snapshot", string(snapshot))
	}
	logger.Debug("tournament metric counters", "snapshot", metrics.DefaultRegistry.Snapshot())

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode result: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags(args []string) (runConfig, bool, int) {
	rc := defaultRunConfig()
	fs := newCustomFlagSet("tourney")

	showVersion := fs.Bool("version", false, "print version and exit")
	fs.DecimalVar(&rc.StartingBudget, "budget", rc.StartingBudget, "starting budget per agent")
	fs.IntVar(&rc.PeriodsPerStage, "periods", rc.PeriodsPerStage, "periods per stage")
	fs.IntVar(&rc.BonusSP, "bonus", rc.BonusSP, "overall-bonus SP")
	fs.IntVar(&rc.Verbosity, "verbosity", rc.Verbosity, "log level 0-5 (0-1=error, 2=warn, 3=info, 4-5=debug)")
	fs.StringVar(&rc.MetricsAddr, "metrics-addr", rc.MetricsAddr, "if set, serve Prometheus metrics at this address (e.g. :9090)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return rc, true, 2
	}

	if *showVersion {
		fmt.Printf("tourney %s (commit %s)\n", version, commit)
		return rc, true, 0
	}

	return rc, false, 0
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
