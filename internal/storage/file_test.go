package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "schedlens/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", "NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if st != nil {
			t.Fatalf("Open(%q) returned a store", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedlens_store")

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := st.AppendRun(ctx, RunRecord{At: time.Now(), Mode: "report", Workflows: 12, Missed: 2, TookMS: 4}); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}

	until := time.Now().Add(24 * time.Hour)
	if err := st.MarkAlerted(ctx, "sales/ingest-orders/2024-03-11", until); err != nil {
		t.Fatalf("MarkAlerted: %v", err)
	}

	got, ok, err := st.WasAlerted(ctx, "sales/ingest-orders/2024-03-11")
	if err != nil || !ok {
		t.Fatalf("WasAlerted: ok=%v err=%v", ok, err)
	}
	if got.UnixMilli() != until.UnixMilli() {
		t.Fatalf("until = %v, want %v", got, until)
	}

	if _, ok, _ := st.WasAlerted(ctx, "missing"); ok {
		t.Fatal("unexpected hit for unknown key")
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen: journal replay restores unexpired alert keys.
	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	if _, ok, _ := st2.WasAlerted(ctx, "sales/ingest-orders/2024-03-11"); !ok {
		t.Fatal("alert key lost across reopen")
	}
}

func TestFileStoreExpiredKeysPrunedOnOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedlens_store")

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.MarkAlerted(ctx, "stale", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("MarkAlerted: %v", err)
	}
	_ = st.Close()

	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	if _, ok, _ := st2.WasAlerted(ctx, "stale"); ok {
		t.Fatal("expired key survived reopen")
	}
}
