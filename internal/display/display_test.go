package display

import "testing"

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"heart rate", HeartRate(72), "72 bpm"},
		{"heart rate truncates", HeartRate(72.9), "72 bpm"},
		{"steps", Steps(8234), "8,234"},
		{"steps small", Steps(999), "999"},
		{"steps zero", Steps(0), "0"},
		{"steps large", Steps(1234567.8), "1,234,567"},
		{"energy", ActiveEnergy(350.4), "350 kcal"},
		{"energy no separators", ActiveEnergy(1200.7), "1200 kcal"},
		{"score", Score(82, 100), "82/100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
