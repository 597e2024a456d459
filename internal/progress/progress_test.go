// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package progress

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{"simple", "12.5MB / 50MB", 25, true},
		{"mixed units", "500KB / 1GB", 500.0 / (1024 * 1024) * 100, true},
		{"no sizes", "downloading...", 0, false},
		{"zero total", "5MB / 0MB", 0, false},
		{"clamped high", "60MB/50MB", 100, true},
		{"zero done", "0KB / 10KB", 0, true},
		{"lowercase units", "1gb / 4gb", 25, true},
		{"no whitespace", "1MB/2MB", 50, true},
		{"first match wins", "1MB / 4MB then 3MB / 4MB", 25, true},
		{
			name:   "ollama cli line",
			line:   "pulling 6a0746a1ec1a:  45% ▕███████        ▏ 905 MB/2.0 GB   38 MB/s     41s",
			want:   905.0 / 2048 * 100,
			wantOK: true,
		},
		{"speed only", "38 MB/s", 0, false},
		{"unknown unit", "5TB / 10TB", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Parse(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse_NonFinite(t *testing.T) {
	huge := "1"
	for i := 0; i < 400; i++ {
		huge += "0"
	}
	if _, ok := Parse(huge + "GB / 1GB"); ok {
		t.Error("Parse with an overflowing numerator should report no percentage")
	}
	if _, ok := Parse("1GB / " + huge + "GB"); ok {
		t.Error("Parse with an overflowing total should report no percentage")
	}
}

func TestParse_RangeProperty(t *testing.T) {
	units := []string{"KB", "MB", "GB"}
	for _, du := range units {
		for _, tu := range units {
			for _, d := range []string{"0", "0.5", "3", "999.9"} {
				line := d + du + " / 7" + tu
				pct, ok := Parse(line)
				if !ok {
					t.Errorf("Parse(%q) returned ok=false", line)
					continue
				}
				if pct < 0 || pct > 100 {
					t.Errorf("Parse(%q) = %v, out of range", line, pct)
				}
			}
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	line := Format(12*1024*1024, 48*1024*1024)
	if line != "12.0 MB / 48.0 MB" {
		t.Errorf("Format() = %q", line)
	}
	pct, ok := Parse(line)
	if !ok || math.Abs(pct-25) > 1e-9 {
		t.Errorf("Parse(Format()) = %v, %v; want 25, true", pct, ok)
	}
}

func TestBytes(t *testing.T) {
	if b, ok := Bytes(2, "kb"); !ok || b != 2048 {
		t.Errorf("Bytes(2, kb) = %v, %v", b, ok)
	}
	if _, ok := Bytes(1, "PB"); ok {
		t.Error("Bytes(1, PB) should fail")
	}
}
