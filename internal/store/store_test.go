package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := &Run{Path: "/api/users", Outcome: "completed", StagesRun: 3, DurationNS: 1500}
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if run.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned")
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Path != "/api/users" || runs[0].Outcome != "completed" || runs[0].StagesRun != 3 {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestStore_RecentRunsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := s.RecordRun(ctx, &Run{
			Path:      "/p",
			Outcome:   "completed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, 3)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[2].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestStore_ObserverIntegration(t *testing.T) {
	s := openTestStore(t)

	s.RunCompleted(context.Background(), pipeline.RunStats{
		Path:      "/dashboard",
		Outcome:   pipeline.OutcomeStopped,
		StagesRun: 1,
		Duration:  2 * time.Millisecond,
	})

	runs, err := s.RecentRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != "stopped" {
		t.Errorf("expected a stopped run recorded, got %+v", runs)
	}
}
