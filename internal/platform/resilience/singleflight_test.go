package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("bootstrap", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "snapshot", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if v.(string) != "snapshot" {
				t.Errorf("unexpected value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_Do_PropagatesError(t *testing.T) {
	var g SingleFlight

	failErr := errors.New("upstream down")
	_, err, shared := g.Do("bootstrap", func() (any, error) { return nil, failErr })
	if !errors.Is(err, failErr) {
		t.Fatalf("got %v, want the fill error", err)
	}
	if shared {
		t.Fatal("single caller should not report a shared result")
	}

	// The failed call is not cached; the next call runs again.
	v, err, _ := g.Do("bootstrap", func() (any, error) { return "recovered", nil })
	if err != nil || v.(string) != "recovered" {
		t.Fatalf("got (%v, %v)", v, err)
	}
}
