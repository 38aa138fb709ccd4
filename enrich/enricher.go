package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/arkankau/coffee-chatted/internal/retryutil"
	"github.com/arkankau/coffee-chatted/nudge"
)

type Options struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Retry          retryutil.Policy
}

// Enricher fronts the fit normalizer and tone polisher with per-key memos.
// Decisions only ever read the memos; requests run in the background.
type Enricher struct {
	fit    FitNormalizer
	tone   TonePolisher
	logger *slog.Logger

	fits   *Memo[nudge.FitAssessment]
	polish *Memo[Polish]
}

// New builds an Enricher. Nil backends are replaced with Absent.
func New(fit FitNormalizer, tone TonePolisher, opts Options) *Enricher {
	if fit == nil {
		fit = Absent{}
	}
	if tone == nil {
		tone = Absent{}
	}
	memoOpts := MemoOptions{Logger: opts.Logger, Timeout: opts.RequestTimeout, Retry: opts.Retry}
	return &Enricher{
		fit:    fit,
		tone:   tone,
		logger: opts.Logger,
		fits:   NewMemo[nudge.FitAssessment]("fit_normalize", memoOpts),
		polish: NewMemo[Polish]("tone_polish", memoOpts),
	}
}

// Enabled reports whether any real backend is configured.
func (e *Enricher) Enabled() bool {
	if e == nil {
		return false
	}
	_, fitAbsent := e.fit.(Absent)
	_, toneAbsent := e.tone.(Absent)
	return !fitAbsent || !toneAbsent
}

// RequestFit starts a background fit assessment for thread under focus.
func (e *Enricher) RequestFit(thread nudge.Thread, focus nudge.UserFocus) {
	if e == nil {
		return
	}
	req := FitRequestFor(thread, focus)
	e.fits.Start(FitCacheKey(thread.ID, focus), func(ctx context.Context) (nudge.FitAssessment, error) {
		return e.fit.NormalizeFit(ctx, req)
	})
}

// RequestFits starts assessments for every thread.
func (e *Enricher) RequestFits(threads []nudge.Thread, focus nudge.UserFocus) {
	for _, t := range threads {
		e.RequestFit(t, focus)
	}
}

// Fit returns a memoized assessment, or nil. It never blocks.
func (e *Enricher) Fit(thread nudge.Thread, focus nudge.UserFocus) *nudge.FitAssessment {
	if e == nil {
		return nil
	}
	a, ok := e.fits.Lookup(FitCacheKey(thread.ID, focus))
	if !ok {
		return nil
	}
	return &a
}

// FitLookup adapts Fit to nudge.AssessmentLookup.
func (e *Enricher) FitLookup() nudge.AssessmentLookup {
	return e.Fit
}

// FitNow resolves an assessment synchronously within ctx. Used by one-shot
// commands that evaluate a single thread.
func (e *Enricher) FitNow(ctx context.Context, thread nudge.Thread, focus nudge.UserFocus) *nudge.FitAssessment {
	if e == nil {
		return nil
	}
	req := FitRequestFor(thread, focus)
	a, ok := e.fits.Get(ctx, FitCacheKey(thread.ID, focus), func(ctx context.Context) (nudge.FitAssessment, error) {
		return e.fit.NormalizeFit(ctx, req)
	})
	if !ok {
		return nil
	}
	return &a
}

// RequestPolish starts a background polish for a polishable decision.
func (e *Enricher) RequestPolish(thread nudge.Thread, d nudge.Decision, shift int) {
	if e == nil {
		return
	}
	req, ok := PolishRequestFor(thread, d, shift)
	if !ok {
		return
	}
	e.polish.Start(ToneCacheKey(thread.ID, d.DaysSince, d.ShouldNudge), func(ctx context.Context) (Polish, error) {
		return e.tone.PolishNudge(ctx, req)
	})
}

// Message returns the polished text for d when available, else the literal
// fallback.
func (e *Enricher) Message(thread nudge.Thread, d nudge.Decision) Message {
	if e != nil && Polishable(d) {
		if p, ok := e.polish.Lookup(ToneCacheKey(thread.ID, d.DaysSince, d.ShouldNudge)); ok {
			return Message{Title: p.Title, Body: p.Body, Polished: true}
		}
	}
	return LiteralMessage(thread, d)
}

// Wait gives in-flight requests until ctx is done to settle.
func (e *Enricher) Wait(ctx context.Context) {
	if e == nil {
		return
	}
	e.fits.WaitAll(ctx)
	e.polish.WaitAll(ctx)
}

func (e *Enricher) Close() {
	if e == nil {
		return
	}
	e.fits.Close()
	e.polish.Close()
}
