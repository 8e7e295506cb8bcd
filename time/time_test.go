// time_test.go
package time

import (
	"testing"
	"time"
)

func TestShortDur(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"zero", 0, "0s"},
		{"1 second", 1 * time.Second, "1s"},
		{"59 seconds", 59 * time.Second, "59s"},
		{"1 minute 0 seconds", 1 * time.Minute, "1m"},
		{"1 minute 30 seconds", 1*time.Minute + 30*time.Second, "1m30s"},
		{"59 minutes 0 seconds", 59 * time.Minute, "59m"},
		{"1 hour 0 minutes 0 seconds", 1 * time.Hour, "1h"},
		{"1 hour 30 minutes 0 seconds", 1*time.Hour + 30*time.Minute, "1h30m"},
		{"1 hour 0 minutes 30 seconds", 1*time.Hour + 30*time.Second, "1h0m30s"}, // ShortDur does not omit 0m if seconds follow
		{"2 hours 5 minutes 10 seconds", 2*time.Hour + 5*time.Minute + 10*time.Second, "2h5m10s"},
		{"500 milliseconds", 500 * time.Millisecond, "500ms"},
		{"1 second 500 milliseconds", 1*time.Second + 500*time.Millisecond, "1.5s"}, // Standard time.Duration.String() behavior
		{"1 minute 1 second 500 milliseconds", 1*time.Minute + 1*time.Second + 500*time.Millisecond, "1m1.5s"},
		{"just under 1m (has ms)", 59*time.Second + 900*time.Millisecond, "59.9s"},
		{"just under 1h (has s)", 59*time.Minute + 59*time.Second, "59m59s"},
		{"negative 1 minute", -1 * time.Minute, "-1m"},
		{"negative 1 hour", -1 * time.Hour, "-1h"},
		{"negative 1h30m", -(1*time.Hour + 30*time.Minute), "-1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortDur(tt.duration); got != tt.want {
				t.Errorf("ShortDur(%v) = %q, want %q (original: %q)", tt.duration, got, tt.want, tt.duration.String())
			}
		})
	}
}

func TestShortDurV2(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"zero", 0, "0s"},
		{"1 nanosecond", 1 * time.Nanosecond, "1ns"},
		{"500 nanoseconds", 500 * time.Nanosecond, "500ns"},
		{"1 microsecond", 1 * time.Microsecond, "1µs"}, // Expect "1µs", not "1.000µs" for exact
		{"1 microsecond 50 ns", 1*time.Microsecond + 50*time.Nanosecond, "1.050µs"},
		{"500 microseconds", 500 * time.Microsecond, "500µs"},
		{"1 millisecond", 1 * time.Millisecond, "1ms"},
		{"1 millisecond 500 µs", 1*time.Millisecond + 500*time.Microsecond, "1.500ms"},
		{"500 milliseconds", 500 * time.Millisecond, "500ms"},
		{"1 second", 1 * time.Second, "1s"},
		{"1 second 5 ms", 1*time.Second + 5*time.Millisecond, "1.005s"},
		{"1 second 50 ms", 1*time.Second + 50*time.Millisecond, "1.050s"},
		{"1 second 500 ms", 1*time.Second + 500*time.Millisecond, "1.500s"},
		{"59 seconds", 59 * time.Second, "59s"},
		{"1 minute 0 seconds", 1 * time.Minute, "1m"},
		{"1 minute 30 seconds", 1*time.Minute + 30*time.Second, "1m30s"},
		{"1 minute 0.5 seconds", 1*time.Minute + 500*time.Millisecond, "1m0.500s"},
		{"59 minutes 0 seconds", 59 * time.Minute, "59m"},
		{"1 hour 0 minutes 0 seconds", 1 * time.Hour, "1h"},
		{"1 hour 30 minutes 0 seconds", 1*time.Hour + 30*time.Minute, "1h30m"},
		{"1 hour 0 minutes 30 seconds", 1*time.Hour + 30*time.Second, "1h30s"},
		{"1 hour 5 seconds", 1*time.Hour + 5*time.Second, "1h5s"},
		{"2 hours 5 minutes 10 seconds", 2*time.Hour + 5*time.Minute + 10*time.Second, "2h5m10s"},
		{"negative 1m30s", -(1*time.Minute + 30*time.Second), "-1m30s"},
		{"negative 1h5s", -(1*time.Hour + 5*time.Second), "-1h5s"},
		{"25h expected", 25 * time.Hour, "25h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortDurV2(tt.duration); got != tt.want {
				t.Errorf("ShortDurV2(%v) = %q, want %q (original string: %q)", tt.duration, got, tt.want, tt.duration.String())
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	def := 5 * time.Minute

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"empty uses default", "", def, false},
		{"whitespace uses default", "   ", def, false},
		{"seconds", "30s", 30 * time.Second, false},
		{"compound", "1h30m", 1*time.Hour + 30*time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"trimmed", " 2s ", 2 * time.Second, false},
		{"zero explicit", "0s", 0, false},
		{"garbage", "tomorrow", 0, true},
		{"bare number", "10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input, def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDuration(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
