package postgres

import (
	"testing"
	"time"
)

func TestTimeUnixRoundTrip(t *testing.T) {
	at := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	if got := unixToTime(timeToUnix(at)); !got.Equal(at) {
		t.Fatalf("round trip: got %v, want %v", got, at)
	}
}

func TestTimeToUnix_ZeroTime(t *testing.T) {
	if got := timeToUnix(time.Time{}); got != 0 {
		t.Fatalf("zero time: got %d, want 0", got)
	}
	if got := unixToTime(0); !got.IsZero() {
		t.Fatalf("zero unix: got %v, want zero time", got)
	}
}
