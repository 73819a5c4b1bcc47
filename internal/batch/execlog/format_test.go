package execlog

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms     int64
		expect string
	}{
		{0, "0ms"},
		{500, "500ms"},
		{999, "999ms"},
		{1000, "1s"},
		{1500, "1.5s"},
		{2350, "2.35s"},
		{59999, "59.999s"},
		{60000, "1m 0s"},
		{65000, "1m 5s"},
		{125000, "2m 5s"},
		{299700, "4m 60s"}, // seconds round up, minutes don't carry
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.expect {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.expect)
		}
	}
}
