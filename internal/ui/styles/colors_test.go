// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestStatusIndicatorsUnique(t *testing.T) {
	all := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	}
	seen := make(map[string]bool)
	for _, s := range all {
		if s == "" {
			t.Error("indicator should not be empty")
		}
		if seen[s] {
			t.Errorf("duplicate indicator %q", s)
		}
		seen[s] = true
	}
}

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.render("model pulled")
			if !strings.Contains(got, tt.indicator) {
				t.Errorf("missing indicator %q in %q", tt.indicator, got)
			}
			if !strings.Contains(got, "model pulled") {
				t.Errorf("missing message in %q", got)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	if got := RenderStatus(true, "ok"); !strings.Contains(got, StatusIndicators.Success) {
		t.Errorf("RenderStatus(true) = %q", got)
	}
	if got := RenderStatus(false, "bad"); !strings.Contains(got, StatusIndicators.Error) {
		t.Errorf("RenderStatus(false) = %q", got)
	}
}
