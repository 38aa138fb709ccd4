package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/audit"
	"github.com/arkankau/coffee-chatted/db"
	"github.com/arkankau/coffee-chatted/enrich"
	"github.com/arkankau/coffee-chatted/internal/llmutil"
	"github.com/arkankau/coffee-chatted/internal/logutil"
	"github.com/arkankau/coffee-chatted/internal/outputfmt"
	"github.com/arkankau/coffee-chatted/internal/retryutil"
	"github.com/arkankau/coffee-chatted/internal/statepaths"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/arkankau/coffee-chatted/seed"
	"github.com/arkankau/coffee-chatted/statestore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app bundles what a command needs for one invocation.
type app struct {
	logger *slog.Logger
	repo   *statestore.Repo
	today  time.Time

	enricher *enrich.Enricher
}

func openApp(cmd *cobra.Command) (*app, error) {
	logger, err := logutil.LoggerFromViperTo(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	today, err := resolveToday()
	if err != nil {
		return nil, err
	}
	kv, err := statestore.Open(cmd.Context(), storeConfigFromViper(logger))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	repo := statestore.NewRepo(kv, statestore.RepoOptions{
		Logger:       logger,
		DefaultFocus: defaultFocusFromViper(),
	})
	logger.Debug("state_store_opened", "driver", viper.GetString("store.driver"), "today", today.Format(time.DateOnly))
	return &app{
		logger: logger,
		repo:   repo,
		today:  today,
	}, nil
}

func (a *app) Close() {
	if a == nil {
		return
	}
	if a.enricher != nil {
		a.enricher.Close()
	}
	if a.repo != nil {
		if err := a.repo.KV().Close(); err != nil {
			a.logger.Warn("state_store_close_failed", "error", err.Error())
		}
	}
}

// storeContext bounds state I/O, mostly lock waits.
func (a *app) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withOptionalTimeout(ctx, viper.GetDuration("store.lock_timeout"))
}

// Enricher builds the enrichment service on first use.
func (a *app) Enricher(ctx context.Context) *enrich.Enricher {
	if a.enricher != nil {
		return a.enricher
	}
	opts := enrich.Options{
		Logger:         a.logger,
		RequestTimeout: viper.GetDuration("enrich.timeout"),
		Retry: retryutil.Policy{
			Attempts: viper.GetInt("enrich.retry_attempts"),
			Delay:    viper.GetDuration("enrich.retry_delay"),
		},
	}
	if !viper.GetBool("enrich.enabled") {
		a.enricher = enrich.New(nil, nil, opts)
		return a.enricher
	}
	cfg := llmutil.ConfigFromViper()
	client, err := llmutil.ClientFromConfig(ctx, cfg)
	if err != nil {
		if errors.Is(err, llmutil.ErrDisabled) {
			a.logger.Debug("enrich_disabled", "provider", cfg.Provider, "reason", err.Error())
		} else {
			a.logger.Warn("enrich_client_failed", "provider", cfg.Provider, "error", outputfmt.FormatErrorForDisplay(err))
		}
		a.enricher = enrich.New(nil, nil, opts)
		return a.enricher
	}
	a.logger.Debug("enrich_enabled", "provider", cfg.Provider, "model", cfg.Model)
	a.enricher = enrich.New(
		enrich.NewLLMFitNormalizer(client, cfg.Model),
		enrich.NewLLMTonePolisher(client, cfg.Model),
		opts,
	)
	return a.enricher
}

// waitForEnrichment gives in-flight enrichment up to enrich.wait to settle.
func (a *app) waitForEnrichment(ctx context.Context) {
	if a.enricher == nil || !a.enricher.Enabled() {
		return
	}
	wait := viper.GetDuration("enrich.wait")
	if wait <= 0 {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	a.enricher.Wait(waitCtx)
}

type threadSource string

const (
	sourceSeed threadSource = "seed"
	sourceUser threadSource = "user"
)

type sourcedThread struct {
	Thread nudge.Thread
	Source threadSource
}

// threads returns seed threads followed by user threads. A user thread
// replaces a seed thread with the same id.
func (a *app) threads(ctx context.Context) ([]sourcedThread, error) {
	user, err := a.repo.LoadUserThreads(ctx)
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]bool, len(user))
	for _, t := range user {
		userByID[t.ID] = true
	}

	var out []sourcedThread
	if viper.GetBool("seed.enabled") {
		seeds, err := seed.Threads()
		if err != nil {
			return nil, fmt.Errorf("load seed threads: %w", err)
		}
		for _, t := range seeds {
			if userByID[t.ID] {
				continue
			}
			out = append(out, sourcedThread{Thread: t, Source: sourceSeed})
		}
	}
	for _, t := range user {
		out = append(out, sourcedThread{Thread: t, Source: sourceUser})
	}
	return out, nil
}

func plainThreads(in []sourcedThread) []nudge.Thread {
	out := make([]nudge.Thread, len(in))
	for i, t := range in {
		out[i] = t.Thread
	}
	return out
}

func findThread(threads []sourcedThread, id string) (sourcedThread, error) {
	id = strings.TrimSpace(id)
	for _, t := range threads {
		if t.Thread.ID == id {
			return t, nil
		}
	}
	return sourcedThread{}, fmt.Errorf("unknown thread %q", id)
}

// resolveToday returns --day when given, otherwise simulation.start_date
// plus simulation.offset days.
func resolveToday() (time.Time, error) {
	day := strings.TrimSpace(viper.GetString("day"))
	if strings.EqualFold(day, "today") {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if day != "" {
		t, err := seed.ParseDate(day)
		if err != nil {
			return time.Time{}, fmt.Errorf("--day: %w", err)
		}
		return t, nil
	}
	start, err := seed.ParseDate(viper.GetString("simulation.start_date"))
	if err != nil {
		return time.Time{}, fmt.Errorf("simulation.start_date: %w", err)
	}
	return start.AddDate(0, 0, viper.GetInt("simulation.offset")), nil
}

func defaultFocusFromViper() nudge.UserFocus {
	return nudge.UserFocus{
		TargetIndustry:  strings.TrimSpace(viper.GetString("focus.target_industry")),
		TargetRole:      strings.TrimSpace(viper.GetString("focus.target_role")),
		RecruitingStage: strings.TrimSpace(viper.GetString("focus.recruiting_stage")),
	}
}

func storeConfigFromViper(logger *slog.Logger) statestore.Config {
	sqliteCfg := db.DefaultConfig()
	sqliteCfg.DSN = strings.TrimSpace(viper.GetString("store.sqlite.dsn"))
	if ms := viper.GetInt("store.sqlite.busy_timeout_ms"); ms > 0 {
		sqliteCfg.SQLite.BusyTimeoutMs = ms
	}
	sqliteCfg.SQLite.WAL = viper.GetBool("store.sqlite.wal")
	return statestore.Config{
		Driver:     viper.GetString("store.driver"),
		Dir:        statepaths.StoreDir(),
		SQLite:     sqliteCfg,
		SQLitePath: statepaths.SQLitePath(),
		Logger:     logger,
	}
}

func auditSinkFromViper() (audit.Sink, error) {
	if !viper.GetBool("audit.enabled") {
		return audit.Nop{}, nil
	}
	return audit.NewJSONLSink(statepaths.FeedbackAuditPath(), viper.GetInt64("audit.rotate_max_bytes"), "")
}
