package dashboard

import (
	"strings"
	"testing"
)

func TestRenderEmotionChart_SortsByCountDesc(t *testing.T) {
	out := renderEmotionChart(map[string]int{
		"joy":     1,
		"sadness": 5,
		"fear":    3,
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 bars, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "sadness") {
		t.Fatalf("expected sadness first:\n%s", out)
	}
	if !strings.HasPrefix(lines[2], "joy") {
		t.Fatalf("expected joy last:\n%s", out)
	}
	// 最大计数占满宽度
	if got := strings.Count(lines[0], "█"); got != chartMaxWidth {
		t.Fatalf("expected full-width bar, got %d", got)
	}
	// 非零计数至少画一格
	if got := strings.Count(lines[2], "█"); got < 1 {
		t.Fatalf("expected at least one block for smallest bar")
	}
}

func TestRenderEmotionChart_Empty(t *testing.T) {
	out := renderEmotionChart(nil)
	if !strings.Contains(out, "暂无") {
		t.Fatalf("unexpected empty-chart output: %q", out)
	}
}
