package dashboard

import (
	"fmt"
	"sort"
	"strings"
)

const chartMaxWidth = 40

// renderEmotionChart 将情绪计数渲染为终端条形图，按计数降序排列。
func renderEmotionChart(counts map[string]int) string {
	if len(counts) == 0 {
		return "（暂无情绪数据）\n"
	}

	type bar struct {
		label string
		count int
	}
	bars := make([]bar, 0, len(counts))
	maxCount := 0
	maxLabel := 0
	for label, count := range counts {
		bars = append(bars, bar{label: label, count: count})
		if count > maxCount {
			maxCount = count
		}
		if len(label) > maxLabel {
			maxLabel = len(label)
		}
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].count != bars[j].count {
			return bars[i].count > bars[j].count
		}
		return bars[i].label < bars[j].label
	})

	var sb strings.Builder
	for _, b := range bars {
		width := b.count * chartMaxWidth / maxCount
		if width == 0 {
			width = 1
		}
		sb.WriteString(fmt.Sprintf("%-*s │%s %d\n", maxLabel, b.label, strings.Repeat("█", width), b.count))
	}
	return sb.String()
}
