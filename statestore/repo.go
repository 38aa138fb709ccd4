package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/arkankau/coffee-chatted/internal/logutil"
	"github.com/arkankau/coffee-chatted/nudge"
)

type RepoOptions struct {
	Logger       *slog.Logger
	DefaultFocus nudge.UserFocus
}

// Repo maps coffeechatted state onto a KV.
type Repo struct {
	kv           KV
	logger       *slog.Logger
	defaultFocus nudge.UserFocus
}

func NewRepo(kv KV, opts RepoOptions) *Repo {
	logger := opts.Logger
	if logger == nil {
		logger = logutil.Discard()
	}
	return &Repo{kv: kv, logger: logger, defaultFocus: opts.DefaultFocus}
}

func (r *Repo) KV() KV { return r.kv }

// LoadLearning returns the persisted learning state. Missing state yields
// defaults. Corrupt state is logged and replaced by defaults.
func (r *Repo) LoadLearning(ctx context.Context) (nudge.LearningState, error) {
	data, err := r.kv.Get(ctx, KeyLearningState)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nudge.DefaultLearningState(), nil
		}
		return nudge.LearningState{}, err
	}
	return r.decodeLearning(data), nil
}

func (r *Repo) SaveLearning(ctx context.Context, state nudge.LearningState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode learning state: %w", err)
	}
	return r.kv.Put(ctx, KeyLearningState, data)
}

// UpdateLearning applies fn to the current state and persists the result in
// one exclusive step. It returns the stored state.
func (r *Repo) UpdateLearning(ctx context.Context, fn func(nudge.LearningState) (nudge.LearningState, error)) (nudge.LearningState, error) {
	var out nudge.LearningState
	err := r.kv.Update(ctx, KeyLearningState, func(current []byte, found bool) ([]byte, error) {
		state := nudge.DefaultLearningState()
		if found {
			state = r.decodeLearning(current)
		}
		next, err := fn(state)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode learning state: %w", err)
		}
		out = next
		return data, nil
	})
	if err != nil {
		return nudge.LearningState{}, err
	}
	return out, nil
}

// ResetLearning drops the persisted learning state.
func (r *Repo) ResetLearning(ctx context.Context) error {
	return r.kv.Delete(ctx, KeyLearningState)
}

func (r *Repo) decodeLearning(data []byte) nudge.LearningState {
	state, err := nudge.DecodeLearningState(data)
	if err != nil {
		r.logger.Warn("state_corrupt_reset", "key", KeyLearningState, "error", err.Error())
	}
	return state
}

// LoadFocus returns the stored focus, falling back to the default for any
// empty field.
func (r *Repo) LoadFocus(ctx context.Context) (nudge.UserFocus, error) {
	focus := r.defaultFocus
	data, err := r.kv.Get(ctx, KeyUserFocus)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return focus, nil
		}
		return nudge.UserFocus{}, err
	}
	var stored nudge.UserFocus
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Warn("state_corrupt_reset", "key", KeyUserFocus, "error", err.Error())
		return focus, nil
	}
	return mergeFocus(focus, stored), nil
}

func (r *Repo) SaveFocus(ctx context.Context, focus nudge.UserFocus) error {
	data, err := json.MarshalIndent(focus, "", "  ")
	if err != nil {
		return fmt.Errorf("encode focus: %w", err)
	}
	return r.kv.Put(ctx, KeyUserFocus, data)
}

func mergeFocus(base, over nudge.UserFocus) nudge.UserFocus {
	if v := strings.TrimSpace(over.TargetIndustry); v != "" {
		base.TargetIndustry = v
	}
	if v := strings.TrimSpace(over.TargetRole); v != "" {
		base.TargetRole = v
	}
	if v := strings.TrimSpace(over.RecruitingStage); v != "" {
		base.RecruitingStage = v
	}
	return base
}

// LoadUserThreads returns threads added by the user, sorted by id.
func (r *Repo) LoadUserThreads(ctx context.Context) ([]nudge.Thread, error) {
	data, err := r.kv.Get(ctx, KeyUserThreads)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	threads, err := decodeThreads(data)
	if err != nil {
		r.logger.Warn("state_corrupt_reset", "key", KeyUserThreads, "error", err.Error())
		return nil, nil
	}
	return threads, nil
}

// PutUserThreads stores threads, replacing any stored thread with the same
// id. It returns the full stored list.
func (r *Repo) PutUserThreads(ctx context.Context, threads ...nudge.Thread) ([]nudge.Thread, error) {
	var out []nudge.Thread
	err := r.kv.Update(ctx, KeyUserThreads, func(current []byte, found bool) ([]byte, error) {
		byID := map[string]nudge.Thread{}
		if found {
			existing, err := decodeThreads(current)
			if err != nil {
				r.logger.Warn("state_corrupt_reset", "key", KeyUserThreads, "error", err.Error())
			}
			for _, t := range existing {
				byID[t.ID] = t
			}
		}
		for _, t := range threads {
			if strings.TrimSpace(t.ID) == "" {
				return nil, fmt.Errorf("thread without id: %q", t.Name)
			}
			byID[t.ID] = t
		}
		out = make([]nudge.Thread, 0, len(byID))
		for _, t := range byID {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return json.MarshalIndent(out, "", "  ")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveUserThread deletes a user thread. It reports whether it existed.
func (r *Repo) RemoveUserThread(ctx context.Context, id string) (bool, error) {
	removed := false
	err := r.kv.Update(ctx, KeyUserThreads, func(current []byte, found bool) ([]byte, error) {
		var threads []nudge.Thread
		if found {
			threads, _ = decodeThreads(current)
		}
		kept := threads[:0]
		for _, t := range threads {
			if t.ID == id {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		if kept == nil {
			kept = []nudge.Thread{}
		}
		return json.MarshalIndent(kept, "", "  ")
	})
	return removed, err
}

func decodeThreads(data []byte) ([]nudge.Thread, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var threads []nudge.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("decode user threads: %w", err)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	return threads, nil
}
