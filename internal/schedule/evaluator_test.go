package schedule

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"

	"rcsup/internal/logging"
)

func writeSchedule(t *testing.T, entries []Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.json")
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegisterSkipsInvalidCron(t *testing.T) {
	e := NewEvaluator("", "rcsup", logging.NewNop())
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = scheduler.Shutdown() }()

	entries := []Entry{
		{Cron: "*/5 * * * *", Payload: "{}"},
		{Cron: "not a cron", Payload: "{}"},
		{Cron: "0 3 * * 1", Payload: "{}"},
	}
	if got := e.register(scheduler, entries); got != 2 {
		t.Fatalf("expected 2 registered jobs, got %d", got)
	}
	if jobs := scheduler.Jobs(); len(jobs) != 2 {
		t.Fatalf("scheduler holds %d jobs", len(jobs))
	}
}

func TestRunFiresDueEntries(t *testing.T) {
	path := writeSchedule(t, []Entry{{Cron: "* * * * * *", Payload: `{"command":"copy"}`}})

	e := NewEvaluator(path, "rcsup", logging.NewNop())
	fired := make(chan string, 4)
	e.launch = func(payload string) error {
		select {
		case fired <- payload:
		default:
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case payload := <-fired:
		if payload != `{"command":"copy"}` {
			t.Fatalf("unexpected payload: %q", payload)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("schedule entry never fired")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("evaluator did not shut down")
	}
}

func TestRunFailsOnUnreadableSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewEvaluator(path, "rcsup", logging.NewNop())
	if err := e.Run(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
