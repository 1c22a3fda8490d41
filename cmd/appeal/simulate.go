package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"appeal-engine/internal/content"
	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/db"
	"appeal-engine/internal/pkg/random"
	"appeal-engine/internal/service"
)

type simulateOptions struct {
	days        []int
	strategy    string
	seed        uint64
	accuracy    float64
	metricsAddr string
	review      bool
	top         int
}

func init() {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play days unattended and print their reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed, err := random.NewSeed()
				if err != nil {
					return err
				}
				opts.seed = seed
			}
			if !cmd.Flags().Changed("metrics-addr") {
				opts.metricsAddr = cfg.Metrics.Addr
			}
			return runSimulate(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntSliceVarP(&opts.days, "days", "d", []int{1, 2, 3}, "Days to play, in order")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", string(service.StrategyOracle), "Decision strategy: oracle, approve, deny or random")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for record order and feedback (random when unset)")
	cmd.Flags().Float64Var(&opts.accuracy, "accuracy", 0.8, "Chance of a correct decision for the random strategy")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&opts.review, "review", false, "Print every reviewed appeal after each day")
	cmd.Flags().IntVar(&opts.top, "top", 5, "Leaderboard size shown at the end when archiving")
	rootCmd.AddCommand(cmd)
}

func runSimulate(ctx context.Context, opts *simulateOptions, out io.Writer) error {
	strategy, err := service.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionOpts := []service.Option{
		service.WithScore(cfg.Score),
		service.WithFeedback(cfg.Feedback),
		service.WithSeed(opts.seed),
	}

	var (
		pool    *db.Pool
		ranking *service.RankingService
	)
	if cfg.Archive.Enabled {
		p, archive, err := openArchive(ctx)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
		ranking = service.NewRankingService(archive)
		sessionOpts = append(sessionOpts, service.WithArchive(archive))
	}

	session := service.NewSession(content.New(&cfg.Content), sessionOpts...)
	defer session.Close()

	session.Events().FeedDelivered.Subscribe(func(m model.FeedMessage) {
		fmt.Fprintf(out, "  [dm] %s\n", m.Message)
	})

	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, session, pool)
		defer shutdown()
	}

	log.Info().
		Str("session", session.ID.String()).
		Str("strategy", string(strategy)).
		Uint64("seed", opts.seed).
		Ints("days", opts.days).
		Msg("Simulation started")

	auto := service.AutoplayConfig{Strategy: strategy, Accuracy: opts.accuracy}
	for _, day := range opts.days {
		fmt.Fprintf(out, "Day %d\n", day)
		result, err := session.PlayDay(ctx, day, auto)
		// The feed paces itself; let the day's messages finish before
		// the report.
		session.Feed().Wait()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Int("day", day).Msg("Day did not complete cleanly")
		}
		printReport(out, result)
		if opts.review {
			printRecords(out, result.Records)
		}
	}

	if ranking != nil {
		standings, err := ranking.Standings(ctx, session.LiveTotal(), opts.top)
		if err != nil {
			return err
		}
		printStandings(out, standings, session.ID.String())
	}
	return nil
}

func serveMetrics(addr string, session *service.Session, pool *db.Pool) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, session.Metrics().Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.HealthCheck(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Str("path", cfg.Metrics.Path).Msg("Metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown")
		}
	}
}

func printReport(out io.Writer, result service.DayResult) {
	r := result.Report
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	fmt.Fprintf(out, "  appeals: %d  correct: %d  score: %d  quota: %d  %s\n",
		r.Summary.Completed, r.Summary.Correct, r.Summary.TotalScore(), r.Quota, status)
	fmt.Fprintf(out, "  session total: %d\n", r.SessionTotal)
}

func printRecords(out io.Writer, records []model.AppealRecord) {
	for _, rec := range records {
		mark := "ok"
		if !rec.Correct {
			mark = "MISTAKE"
		}
		fmt.Fprintf(out, "  #%d %-16s %-8s %-7s +%d (streak %d)\n",
			rec.Index+1, rec.User.Name, rec.Decision, mark, rec.Score, rec.Streak)
		if rec.Mistake != "" {
			fmt.Fprintf(out, "      %s\n", rec.Mistake)
		}
	}
}

func printStandings(out io.Writer, standings []model.SessionTotal, current string) {
	fmt.Fprintln(out, "Leaderboard")
	for i, s := range standings {
		marker := ""
		if s.SessionID.String() == current {
			marker = "  <- this run"
		}
		fmt.Fprintf(out, "  %2d. %s  %6d  (%d days)%s\n", i+1, s.SessionID, s.Total, s.Days, marker)
	}
}
