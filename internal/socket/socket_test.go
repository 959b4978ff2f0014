package socket

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/clock"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestDetector(fsys system.FileSystem, clk clock.Clock) *Detector {
	d := NewDetector(fsys)
	d.Clock = clk
	return d
}

func TestWait_SocketAppearsAfterTwoPolls(t *testing.T) {
	mockFS := system.NewMockFS()
	mockFS.AddDir("/tmp/cloudsql")

	clk := clock.Fake(epoch)
	clk.OnSleep = func(n int) {
		if n == 2 {
			mockFS.AddFile("/tmp/cloudsql/conn1/sock0", nil, 0o777|os.ModeSocket)
		}
	}

	desc, err := newTestDetector(mockFS, clk).Wait("/tmp/cloudsql")
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	want := Descriptor{Dir: "/tmp/cloudsql/conn1", File: "sock0"}
	if desc != want {
		t.Errorf("Wait() = %+v, want %+v", desc, want)
	}
	if got := len(clk.Sleeps()); got != 2 {
		t.Errorf("slept %d times, want 2", got)
	}
	if clk.Elapsed() >= DefaultTimeout {
		t.Errorf("returned after %v, want before %v", clk.Elapsed(), DefaultTimeout)
	}
}

func TestWait_EmptyConnectionDirIsNotReady(t *testing.T) {
	mockFS := system.NewMockFS()
	mockFS.AddDir("/tmp/cloudsql")
	mockFS.AddDir("/tmp/cloudsql/conn1")

	clk := clock.Fake(epoch)
	clk.OnSleep = func(n int) {
		if n == 3 {
			mockFS.AddFile("/tmp/cloudsql/conn1/.s.PGSQL.5432", nil, 0o777)
		}
	}

	desc, err := newTestDetector(mockFS, clk).Wait("/tmp/cloudsql")
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if desc.File != ".s.PGSQL.5432" {
		t.Errorf("File = %q", desc.File)
	}
	if got := len(clk.Sleeps()); got != 3 {
		t.Errorf("slept %d times, want 3", got)
	}
}

func TestWait_TimeoutBounds(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		interval time.Duration
	}{
		{"default", DefaultTimeout, DefaultInterval},
		{"interval does not divide timeout", 10 * time.Second, 3 * time.Second},
		{"interval longer than timeout", 500 * time.Millisecond, time.Second},
		{"zero timeout", 0, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockFS := system.NewMockFS()
			mockFS.AddDir("/tmp/cloudsql")
			clk := clock.Fake(epoch)

			d := newTestDetector(mockFS, clk)
			d.Timeout = tt.timeout
			d.Interval = tt.interval

			_, err := d.Wait("/tmp/cloudsql")
			if !errors.IsKind(err, errors.KindTimeout) {
				t.Fatalf("error = %v, want timeout", err)
			}
			if err.Error() != "Timeout reached waiting for socket file" {
				t.Errorf("message = %q", err.Error())
			}

			elapsed := clk.Now().Sub(epoch)
			if elapsed < tt.timeout {
				t.Errorf("failed after %v, before timeout %v", elapsed, tt.timeout)
			}
			if elapsed >= tt.timeout+tt.interval {
				t.Errorf("failed after %v, want < %v", elapsed, tt.timeout+tt.interval)
			}
		})
	}
}

func TestWait_PartialProgressDoesNotExtendDeadline(t *testing.T) {
	mockFS := system.NewMockFS()
	mockFS.AddDir("/tmp/cloudsql")
	clk := clock.Fake(epoch)
	clk.OnSleep = func(n int) {
		if n == 5 {
			mockFS.AddDir("/tmp/cloudsql/conn1")
		}
	}

	_, err := newTestDetector(mockFS, clk).Wait("/tmp/cloudsql")
	if !errors.IsKind(err, errors.KindTimeout) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if elapsed := clk.Now().Sub(epoch); elapsed != DefaultTimeout {
		t.Errorf("elapsed = %v, want %v", elapsed, DefaultTimeout)
	}
}

func TestPoll(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*system.MockFS)
		wantState State
		wantKind  errors.Kind
	}{
		{
			name:      "empty root",
			setup:     func(m *system.MockFS) { m.AddDir("/s") },
			wantState: Waiting,
		},
		{
			name: "ready",
			setup: func(m *system.MockFS) {
				m.AddFile("/s/p:r:i/sock", nil, 0o777)
			},
			wantState: Ready,
		},
		{
			name:     "missing root",
			setup:    func(m *system.MockFS) {},
			wantKind: errors.KindInternal,
		},
		{
			name: "two connection directories",
			setup: func(m *system.MockFS) {
				m.AddFile("/s/a/sock", nil, 0o777)
				m.AddFile("/s/b/sock", nil, 0o777)
			},
			wantKind: errors.KindInternal,
		},
		{
			name: "two socket files",
			setup: func(m *system.MockFS) {
				m.AddFile("/s/a/sock", nil, 0o777)
				m.AddFile("/s/a/sock.2", nil, 0o777)
			},
			wantKind: errors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockFS := system.NewMockFS()
			tt.setup(mockFS)

			state, _, err := NewDetector(mockFS).Poll("/s")
			if tt.wantKind != "" {
				if !errors.IsKind(err, tt.wantKind) {
					t.Fatalf("error = %v, want kind %q", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Poll() error: %v", err)
			}
			if state != tt.wantState {
				t.Errorf("state = %v, want %v", state, tt.wantState)
			}
		})
	}
}

func TestWait_ListingErrorIsFatal(t *testing.T) {
	clk := clock.Fake(epoch)
	d := &Detector{
		List:     func(string) ([]string, error) { return nil, fmt.Errorf("EIO") },
		Clock:    clk,
		Timeout:  DefaultTimeout,
		Interval: DefaultInterval,
	}

	_, err := d.Wait("/tmp/cloudsql")
	if !errors.IsKind(err, errors.KindInternal) {
		t.Fatalf("error = %v, want internal error", err)
	}
	if len(clk.Sleeps()) != 0 {
		t.Error("listing error should not be retried")
	}
}

func TestWait_RealFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cloudsql")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}

	d := NewDetector(system.DefaultFS())
	d.Timeout = 5 * time.Second
	d.Interval = 10 * time.Millisecond

	go func() {
		time.Sleep(30 * time.Millisecond)
		conn := filepath.Join(root, "proj:region:db")
		os.Mkdir(conn, 0o755)
		os.WriteFile(filepath.Join(conn, ".s.PGSQL.5432"), nil, 0o600)
	}()

	desc, err := d.Wait(root)
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if desc.Dir != filepath.Join(root, "proj:region:db") || desc.File != ".s.PGSQL.5432" {
		t.Errorf("Wait() = %+v", desc)
	}
}

func TestPoll_SymlinkedConnectionDir(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "cloudsql")
	target := filepath.Join(base, "real")
	for _, dir := range []string{root, target} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(target, "sock0"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("../real", filepath.Join(root, "conn1")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	state, desc, err := NewDetector(system.DefaultFS()).Poll(root)
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	want := Descriptor{Dir: filepath.Join(root, "conn1"), File: "sock0"}
	if state != Ready || desc != want {
		t.Errorf("Poll() = %v, %+v, want ready, %+v", state, desc, want)
	}
}

func TestPoll_MockIgnoresHostFilesystem(t *testing.T) {
	// The host has a dangling symlink where the mock has a real directory.
	root := t.TempDir()
	if err := os.Symlink("missing", filepath.Join(root, "conn1")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	mockFS := system.NewMockFS()
	mockFS.AddDir(root)
	mockFS.AddFile(filepath.Join(root, "conn1", "sock0"), nil, 0o777|os.ModeSocket)

	state, desc, err := NewDetector(mockFS).Poll(root)
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	want := Descriptor{Dir: filepath.Join(root, "conn1"), File: "sock0"}
	if state != Ready || desc != want {
		t.Errorf("Poll() = %v, %+v, want ready, %+v", state, desc, want)
	}
}

func TestWaitFile(t *testing.T) {
	mockFS := system.NewMockFS()
	mockFS.AddDir("/out")
	clk := clock.Fake(epoch)
	clk.OnSleep = func(n int) {
		if n == 4 {
			mockFS.AddFile("/out/b.txt", nil, 0o644)
			mockFS.AddFile("/out/a.txt", nil, 0o644)
		}
	}

	d := newTestDetector(mockFS, clk)
	d.Timeout = DefaultFileTimeout

	name, err := d.WaitFile("/out")
	if err != nil {
		t.Fatalf("WaitFile() error: %v", err)
	}
	if name != "a.txt" {
		t.Errorf("WaitFile() = %q, want a.txt", name)
	}
}

func TestWaitFile_Errors(t *testing.T) {
	mockFS := system.NewMockFS()
	mockFS.AddDir("/out")
	clk := clock.Fake(epoch)

	d := newTestDetector(mockFS, clk)
	d.Timeout = DefaultFileTimeout

	_, err := d.WaitFile("/out")
	if !errors.IsKind(err, errors.KindTimeout) || err.Error() != "Timeout reached waiting for file" {
		t.Errorf("error = %v, want file timeout", err)
	}
	if elapsed := clk.Now().Sub(epoch); elapsed != DefaultFileTimeout {
		t.Errorf("elapsed = %v, want %v", elapsed, DefaultFileTimeout)
	}

	_, err = d.WaitFile("/missing")
	if !errors.IsKind(err, errors.KindInternal) {
		t.Errorf("error = %v, want internal error", err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Waiting: "waiting", Ready: "ready", TimedOut: "timed-out", State(9): "State(9)"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
