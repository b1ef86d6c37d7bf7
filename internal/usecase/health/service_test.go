package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockBackend struct {
	available bool
	err       error
	pinged    bool
}

func (m *mockBackend) Available() bool { return m.available }

func (m *mockBackend) Ping(_ context.Context) error {
	m.pinged = true
	return m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockBackend{available: true}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckSearch] != CheckOK {
		t.Errorf("expected search %q, got %q", CheckOK, r.Checks[CheckSearch])
	}
	if r.Checks[CheckEntities] != CheckOK {
		t.Errorf("expected entities %q, got %q", CheckOK, r.Checks[CheckEntities])
	}
}

func TestCheck_BackendUnavailable(t *testing.T) {
	backend := &mockBackend{}
	r := New(backend, &mockPinger{}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckSearch] != CheckUnavailable {
		t.Errorf("expected search %q, got %q", CheckUnavailable, r.Checks[CheckSearch])
	}
	if backend.pinged {
		t.Error("unavailable backend should not be pinged")
	}
}

func TestCheck_BackendPingError(t *testing.T) {
	r := New(&mockBackend{available: true, err: errors.New("conn refused")}, nil).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckSearch] != CheckError {
		t.Errorf("expected search %q, got %q", CheckError, r.Checks[CheckSearch])
	}
}

func TestCheck_EntitiesError(t *testing.T) {
	r := New(&mockBackend{available: true}, &mockPinger{err: errors.New("timeout")}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckEntities] != CheckError {
		t.Errorf("expected entities %q, got %q", CheckError, r.Checks[CheckEntities])
	}
}

func TestCheck_NoEntities(t *testing.T) {
	r := New(&mockBackend{available: true}, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[CheckEntities]; ok {
		t.Error("entities check should be absent when no store is configured")
	}
}
