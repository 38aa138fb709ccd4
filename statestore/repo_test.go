package statestore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/stretchr/testify/require"
)

var repoToday = time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)

func defaultFocus() nudge.UserFocus {
	return nudge.UserFocus{TargetIndustry: "Investment Banking", TargetRole: "TMT", RecruitingStage: "Networking"}
}

func TestRepoLearningState(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRepo(kv, RepoOptions{DefaultFocus: defaultFocus()})

			state, err := repo.LoadLearning(ctx)
			require.NoError(t, err)
			require.Equal(t, nudge.DefaultUserThreshold, state.UserThreshold)

			updated, err := repo.UpdateLearning(ctx, func(s nudge.LearningState) (nudge.LearningState, error) {
				return nudge.ApplyFeedback(s, nudge.FeedbackEvent{ThreadID: "t-1", Kind: nudge.FeedbackSuppress, Today: repoToday}), nil
			})
			require.NoError(t, err)
			require.True(t, updated.IsSuppressed("t-1"))

			loaded, err := repo.LoadLearning(ctx)
			require.NoError(t, err)
			require.True(t, loaded.IsSuppressed("t-1"))

			require.NoError(t, repo.ResetLearning(ctx))
			loaded, err = repo.LoadLearning(ctx)
			require.NoError(t, err)
			require.False(t, loaded.IsSuppressed("t-1"))
		})
	}
}

func TestRepoCorruptLearningStateResets(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			repo := NewRepo(kv, RepoOptions{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
			require.NoError(t, kv.Put(ctx, KeyLearningState, []byte(`{"userThreshold":`)))

			state, err := repo.LoadLearning(ctx)
			require.NoError(t, err)
			require.Equal(t, nudge.DefaultUserThreshold, state.UserThreshold)
			require.Contains(t, logs.String(), "state_corrupt_reset")
		})
	}
}

func TestRepoFocus(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRepo(kv, RepoOptions{DefaultFocus: defaultFocus()})

			focus, err := repo.LoadFocus(ctx)
			require.NoError(t, err)
			require.Equal(t, defaultFocus(), focus)

			require.NoError(t, repo.SaveFocus(ctx, nudge.UserFocus{TargetRole: "Restructuring"}))
			focus, err = repo.LoadFocus(ctx)
			require.NoError(t, err)
			require.Equal(t, "Restructuring", focus.TargetRole)
			require.Equal(t, "Investment Banking", focus.TargetIndustry)
		})
	}
}

func TestRepoUserThreads(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRepo(kv, RepoOptions{})

			threads, err := repo.LoadUserThreads(ctx)
			require.NoError(t, err)
			require.Empty(t, threads)

			a := nudge.Thread{ID: "b-1", Name: "Bo", InteractionType: nudge.InteractionReferralIntro, LastInteraction: repoToday}
			b := nudge.Thread{ID: "a-1", Name: "Ana", InteractionType: nudge.InteractionCoffeeChat, LastInteraction: repoToday.AddDate(0, 0, -3)}
			_, err = repo.PutUserThreads(ctx, a, b)
			require.NoError(t, err)

			a.Name = "Bo Chen"
			stored, err := repo.PutUserThreads(ctx, a)
			require.NoError(t, err)
			require.Len(t, stored, 2)
			require.Equal(t, "a-1", stored[0].ID)
			require.Equal(t, "Bo Chen", stored[1].Name)

			loaded, err := repo.LoadUserThreads(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			require.True(t, loaded[0].LastInteraction.Equal(b.LastInteraction))

			removed, err := repo.RemoveUserThread(ctx, "a-1")
			require.NoError(t, err)
			require.True(t, removed)
			removed, err = repo.RemoveUserThread(ctx, "a-1")
			require.NoError(t, err)
			require.False(t, removed)

			_, err = repo.PutUserThreads(ctx, nudge.Thread{Name: "no id"})
			require.Error(t, err)
		})
	}
}
