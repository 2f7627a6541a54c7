package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore(time.Minute)

	s.Set(t.Context(), "bootstrap", 42)
	v, ok := s.Get(t.Context(), "bootstrap")
	if !ok || v.(int) != 42 {
		t.Fatalf("got (%v, %v), want (42, true)", v, ok)
	}

	if _, ok := s.Get(t.Context(), "missing"); ok {
		t.Fatal("unexpected hit for a missing key")
	}
	if _, ok := s.Get(t.Context(), ""); ok {
		t.Fatal("empty keys never resolve")
	}
}

func TestStore_Expiry(t *testing.T) {
	s := NewStore(time.Minute)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set(t.Context(), "snapshot", "v1")

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := s.Get(t.Context(), "snapshot"); !ok {
		t.Fatal("entry should still be fresh")
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := s.Get(t.Context(), "snapshot"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set(t.Context(), "snapshot", "v1")

	s.now = func() time.Time { return base.Add(240 * time.Hour) }
	if _, ok := s.Get(t.Context(), "snapshot"); !ok {
		t.Fatal("zero TTL entries must not expire")
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(time.Minute)

	s.Set(t.Context(), "snapshot", "v1")
	s.Delete(t.Context(), "snapshot")
	if _, ok := s.Get(t.Context(), "snapshot"); ok {
		t.Fatal("deleted entry should be gone")
	}
}

func TestStore_GetOrFill(t *testing.T) {
	s := NewStore(time.Minute)

	calls := 0
	fill := func() (any, error) {
		calls++
		return "filled", nil
	}

	v, err := s.GetOrFill(t.Context(), "snapshot", fill)
	if err != nil || v.(string) != "filled" {
		t.Fatalf("got (%v, %v)", v, err)
	}
	if _, err := s.GetOrFill(t.Context(), "snapshot", fill); err != nil {
		t.Fatalf("second fill failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fill ran %d times, want 1", calls)
	}
}

func TestStore_GetOrFill_ErrorNotCached(t *testing.T) {
	s := NewStore(time.Minute)

	failErr := errors.New("upstream down")
	if _, err := s.GetOrFill(t.Context(), "snapshot", func() (any, error) { return nil, failErr }); !errors.Is(err, failErr) {
		t.Fatalf("got %v, want the fill error", err)
	}

	v, err := s.GetOrFill(t.Context(), "snapshot", func() (any, error) { return "recovered", nil })
	if err != nil || v.(string) != "recovered" {
		t.Fatalf("got (%v, %v), failure should not be cached", v, err)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(t.Context(), "shared", 1)
			s.Get(t.Context(), "shared")
		}()
	}
	wg.Wait()

	if _, ok := s.Get(t.Context(), "shared"); !ok {
		t.Fatal("missing shared entry after concurrent writes")
	}
}
