// runs builds the inverted index of a collection under every stop-word and
// stemmer configuration and writes the twelve ltn, ltc and bm25 runs of the
// configured queries, packed into one archive.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/adri-41/Recherche-Information/internal/batch"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
	"github.com/adri-41/Recherche-Information/pkg/config"
	"github.com/adri-41/Recherche-Information/pkg/kafka"
	"github.com/adri-41/Recherche-Information/pkg/logger"
	"github.com/adri-41/Recherche-Information/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(apperrors.ExitOK)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

type flags struct {
	config     string
	collection string
	stopwords  string
	queries    string
	out        string
	topK       int
	team       string
	ltcQuery   string
	archive    bool
	logLevel   string
	explainDoc string
	schemes    []string
}

func run() error {
	var f flags
	flagSet := pflag.NewFlagSet("runs", pflag.ContinueOnError)
	flagSet.StringVar(&f.config, "config", "", "path to YAML config file")
	flagSet.StringVar(&f.collection, "collection", "", "collection file (.gz accepted)")
	flagSet.StringVar(&f.stopwords, "stopwords", "", "stop-word list, one word per line")
	flagSet.StringVar(&f.queries, "queries", "", "queries file, one '<id> <text>' per line")
	flagSet.StringVar(&f.out, "out", "", "output directory for run files")
	flagSet.IntVarP(&f.topK, "top-k", "k", 0, "documents per query")
	flagSet.StringVar(&f.team, "team", "", "team name written in every run line")
	flagSet.StringVar(&f.ltcQuery, "ltc-query", "", "ltc query weighting: lnn or ltc")
	flagSet.BoolVar(&f.archive, "archive", true, "pack the runs into <team>_ALL_RUNS.zip")
	flagSet.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringSliceVar(&f.schemes, "schemes", nil, "weighting schemes to generate: ltn, ltc, bm25 (default all)")
	flagSet.StringVar(&f.explainDoc, "explain-doc", "", "log per-term score contributions of this document")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &usageError{err}
	}
	if args := flagSet.Args(); len(args) > 0 {
		return &usageError{fmt.Errorf("unexpected argument: %s", args[0])}
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	applyFlags(cfg, flagSet, &f)

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []batch.Option
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
		opts = append(opts, batch.WithMetrics(m))
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		opts = append(opts, batch.WithPublisher(producer))
		slog.Info("publishing runs", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	if f.explainDoc != "" {
		opts = append(opts, batch.WithExplainDoc(f.explainDoc))
	}

	runner, err := batch.New(cfg, opts...)
	if err != nil {
		return err
	}
	slog.Info("starting batch",
		"collection", cfg.Collection.Path,
		"stopwords", cfg.Collection.StopwordsPath,
		"top_k", cfg.Run.TopK,
		"team", cfg.Run.Team,
		"ltc_query", cfg.Weighting.LtcQueryMode,
		"schemes", cfg.Run.Schemes,
	)
	res, err := runner.Run(ctx)
	if err != nil {
		slog.Error("batch failed", "error", err)
		return err
	}
	incomplete := 0
	for _, r := range res.Reports {
		if !r.Complete() {
			incomplete++
		}
	}
	slog.Info("runs generated",
		"runs", len(res.Reports),
		"incomplete", incomplete,
		"output_dir", cfg.Run.OutputDir,
		"archive", res.Archive,
	)
	return nil
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet, f *flags) {
	if fs.Changed("collection") {
		cfg.Collection.Path = f.collection
	}
	if fs.Changed("stopwords") {
		cfg.Collection.StopwordsPath = f.stopwords
	}
	if fs.Changed("queries") {
		cfg.Collection.QueriesPath = f.queries
	}
	if fs.Changed("out") {
		cfg.Run.OutputDir = f.out
	}
	if fs.Changed("top-k") {
		cfg.Run.TopK = f.topK
	}
	if fs.Changed("team") {
		cfg.Run.Team = f.team
	}
	if fs.Changed("ltc-query") {
		cfg.Weighting.LtcQueryMode = f.ltcQuery
	}
	if fs.Changed("archive") {
		cfg.Run.Archive = f.archive
	}
	if fs.Changed("schemes") {
		cfg.Run.Schemes = f.schemes
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
}

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
func (e *usageError) ExitCode() int { return apperrors.ExitUsage }
