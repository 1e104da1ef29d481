package report

import (
	"testing"
	"time"
)

func TestRenderFilename(t *testing.T) {
	now := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	score := ComputeScore(7, 10)

	tests := []struct {
		pattern string
		want    string
	}{
		{pattern: "", want: DefaultFilename},
		{pattern: "   ", want: DefaultFilename},
		{pattern: "EthiAI_Report", want: "EthiAI_Report.pdf"},
		{pattern: "report_{{.Band}}_{{.Date}}", want: "report_high_20250607.pdf"},
		{pattern: "r-{{.Timestamp}}.PDF", want: "r-20250607T080910Z.PDF"},
	}
	for _, tc := range tests {
		got, err := RenderFilename(tc.pattern, score, now)
		if err != nil {
			t.Fatalf("RenderFilename(%q): %v", tc.pattern, err)
		}
		if got != tc.want {
			t.Fatalf("RenderFilename(%q): expected %q, got %q", tc.pattern, tc.want, got)
		}
	}

	if _, err := RenderFilename("{{.Missing", score, now); err == nil {
		t.Fatalf("expected template parse error")
	}
}
