package budget

import (
	"testing"
	"time"

	"spendgate-hq/spendgate/pkg/clock"
)

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		window  time.Duration
		width   time.Duration
		backoff time.Duration
		wantErr bool
	}{
		{"valid", 10 * time.Second, 5 * time.Second, time.Second, false},
		{"zero bucket width", 10 * time.Second, 0, time.Second, true},
		{"negative bucket width", 10 * time.Second, -time.Second, time.Second, true},
		{"zero window", 0, 5 * time.Second, time.Second, true},
		{"negative backoff", 10 * time.Second, 5 * time.Second, -time.Second, true},
		{"zero backoff", 10 * time.Second, 5 * time.Second, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.window, tt.width, tt.backoff, 100)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestConfig_NumBucketsDerivation(t *testing.T) {
	tests := []struct {
		window time.Duration
		width  time.Duration
		want   int
	}{
		{10 * time.Second, 5 * time.Second, 2},
		{10 * time.Second, 3 * time.Second, 4}, // rounded up
		{time.Second, time.Second, 1},
		{time.Hour, time.Minute, 60},
	}

	for _, tt := range tests {
		cfg, err := NewConfig(tt.window, tt.width, time.Second, 100)
		if err != nil {
			t.Fatalf("NewConfig(%v, %v) failed: %v", tt.window, tt.width, err)
		}
		if cfg.NumBuckets() != tt.want {
			t.Errorf("NumBuckets for window=%v width=%v: expected %d, got %d",
				tt.window, tt.width, tt.want, cfg.NumBuckets())
		}
	}
}

func TestConfig_WithNumBuckets(t *testing.T) {
	cfg, err := NewConfig(10*time.Second, 5*time.Second, time.Second, 100)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	override, err := cfg.WithNumBuckets(8)
	if err != nil {
		t.Fatalf("WithNumBuckets failed: %v", err)
	}
	if override.NumBuckets() != 8 {
		t.Errorf("Expected 8 buckets, got %d", override.NumBuckets())
	}

	// Original config is untouched.
	if cfg.NumBuckets() != 2 {
		t.Errorf("Expected original config to keep 2 buckets, got %d", cfg.NumBuckets())
	}

	if _, err := cfg.WithNumBuckets(0); err == nil {
		t.Error("Expected error for zero bucket count")
	}
}

func TestConfig_GridNow(t *testing.T) {
	cfg, err := NewConfig(10*time.Second, 5*time.Second, time.Second, 100)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	base := time.Unix(100, 0)
	tests := []struct {
		offset time.Duration
		want   time.Time
	}{
		{0, base},
		{1500 * time.Millisecond, base},
		{2250 * time.Millisecond, base},
		{2500 * time.Millisecond, base.Add(5 * time.Second)},
		{4 * time.Second, base.Add(5 * time.Second)},
	}

	for _, tt := range tests {
		mock := clock.NewMock(base.Add(tt.offset))
		got := cfg.WithClock(mock).GridNow()
		if !got.Equal(tt.want) {
			t.Errorf("GridNow at +%v: expected %v, got %v", tt.offset, tt.want, got)
		}
	}
}
