package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blaisecz/cognitive-sync/internal/config"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	recomputed []uuid.UUID
	triggers   []string
	batch      *domain.BatchReport
	err        error
}

func (f *fakeProfiles) Recompute(_ context.Context, userID uuid.UUID, trigger string) (*domain.RecomputeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recomputed = append(f.recomputed, userID)
	f.triggers = append(f.triggers, trigger)
	return &domain.RecomputeResponse{Profile: domain.UnifiedProfile{UserID: userID}}, nil
}

func (f *fakeProfiles) Get(context.Context, uuid.UUID) (*domain.UnifiedProfile, error) {
	return nil, domain.ErrProfileNotComputed
}

func (f *fakeProfiles) GetSync(context.Context, uuid.UUID) (*domain.SyncResult, error) {
	return nil, domain.ErrProfileNotComputed
}

func (f *fakeProfiles) Leaderboard(context.Context, domain.CognitiveDomain, int) (*domain.LeaderboardResponse, error) {
	return &domain.LeaderboardResponse{}, nil
}

func (f *fakeProfiles) RecomputeAll(context.Context) (*domain.BatchReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

type harness struct {
	profiles *fakeProfiles
	opened   int
	closed   int
	seeded   int
}

func (h *harness) open(context.Context, *config.Config, *logger.Logger) (*Backend, error) {
	h.opened++
	return &Backend{
		Profiles: h.profiles,
		Seed:     func() error { h.seeded++; return nil },
		Close:    func() error { h.closed++; return nil },
	}, nil
}

func run(t *testing.T, h *harness, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand(h.open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecomputeUser(t *testing.T) {
	h := &harness{profiles: &fakeProfiles{}}
	id := uuid.New()

	out, err := run(t, h, "recompute", "user", id.String())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{id}, h.profiles.recomputed)
	assert.Equal(t, []string{"on_demand"}, h.profiles.triggers)
	assert.Equal(t, 1, h.closed)

	var resp domain.RecomputeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, id, resp.Profile.UserID)
}

func TestRecomputeUser_InvalidIDDoesNotOpenBackend(t *testing.T) {
	h := &harness{profiles: &fakeProfiles{}}

	_, err := run(t, h, "recompute", "user", "not-a-uuid")
	assert.Error(t, err)
	assert.Zero(t, h.opened)
}

func TestRecomputeAll(t *testing.T) {
	t.Run("reports batch", func(t *testing.T) {
		h := &harness{profiles: &fakeProfiles{batch: &domain.BatchReport{Processed: 3, Succeeded: 3}}}

		out, err := run(t, h, "recompute", "all")
		require.NoError(t, err)

		var report domain.BatchReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 3, report.Succeeded)
	})

	t.Run("partial failure exits non-zero", func(t *testing.T) {
		h := &harness{profiles: &fakeProfiles{batch: &domain.BatchReport{Processed: 3, Succeeded: 2, Failed: 1}}}

		_, err := run(t, h, "recompute", "all")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3")
	})

	t.Run("listing failure", func(t *testing.T) {
		h := &harness{profiles: &fakeProfiles{err: errors.New("db down")}}

		_, err := run(t, h, "recompute", "all")
		assert.EqualError(t, err, "db down")
		assert.Equal(t, 1, h.closed)
	})
}

func TestSeed(t *testing.T) {
	h := &harness{profiles: &fakeProfiles{batch: &domain.BatchReport{}}}

	_, err := run(t, h, "seed", "--recompute=false")
	require.NoError(t, err)
	assert.Equal(t, 1, h.seeded)
}

func TestLangfusePing(t *testing.T) {
	var events []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Batch []struct {
				Type string `json:"type"`
			} `json:"batch"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, e := range body.Batch {
			events = append(events, e.Type)
		}
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer srv.Close()

	t.Setenv("LANGFUSE_BASE_URL", srv.URL)
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-1234567890")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-lf-1234567890")

	h := &harness{}
	out, err := run(t, h, "langfuse", "ping")
	require.NoError(t, err)

	assert.Equal(t, []string{"trace-create", "score-create"}, events)
	assert.Contains(t, out, "pk-l...7890")
	assert.NotContains(t, out, "sk-lf-1234567890")
	assert.Zero(t, h.opened)
}

func TestLangfusePing_Disabled(t *testing.T) {
	t.Setenv("LANGFUSE_BASE_URL", "")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "")
	t.Setenv("LANGFUSE_SECRET_KEY", "")

	_, err := run(t, &harness{}, "langfuse", "ping")
	assert.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "(empty)", maskKey(""))
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "abcd...wxyz", maskKey("abcdefghijklmnopqrstuvwxyz"))
}
