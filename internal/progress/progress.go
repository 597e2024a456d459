// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress extracts a completion percentage from free-text download
// status lines.
package progress

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Binary unit multipliers.
const (
	KB = 1024.0
	MB = 1024.0 * KB
	GB = 1024.0 * MB
)

var sizePair = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(KB|MB|GB)\s*/\s*(\d+(?:\.\d+)?)\s*(KB|MB|GB)`)

// Parse returns the percentage described by the first "<n><unit> / <n><unit>"
// pair in line, clamped to [0, 100]. ok is false when there is no pair, the
// total is not positive, or either number is not finite.
func Parse(line string) (percent float64, ok bool) {
	m := sizePair.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}

	done, ok := toBytes(m[1], m[2])
	if !ok {
		return 0, false
	}
	total, ok := toBytes(m[3], m[4])
	if !ok || total <= 0 {
		return 0, false
	}

	pct := done / total * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return math.Min(100, math.Max(0, pct)), true
}

func toBytes(num, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return Bytes(v, unit)
}

// Bytes converts value in unit (KB, MB or GB, any case) to bytes.
func Bytes(value float64, unit string) (float64, bool) {
	var mult float64
	switch strings.ToUpper(unit) {
	case "KB":
		mult = KB
	case "MB":
		mult = MB
	case "GB":
		mult = GB
	default:
		return 0, false
	}
	b := value * mult
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return 0, false
	}
	return b, true
}

// Format renders a size pair in the form Parse reads back, for example
// "12.3 MB / 45.0 MB".
func Format(done, total int64) string {
	return fmt.Sprintf("%s / %s", formatSize(done), formatSize(total))
}

func formatSize(n int64) string {
	f := float64(n)
	switch {
	case f >= GB:
		return fmt.Sprintf("%.1f GB", f/GB)
	case f >= MB:
		return fmt.Sprintf("%.1f MB", f/MB)
	default:
		return fmt.Sprintf("%.1f KB", f/KB)
	}
}
