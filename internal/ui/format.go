package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docker/go-units"

	"github.com/scoates/vagranttop/internal/models"
)

const gaugeWidth = 40

// gauge renders a htop-style bar for a 0-100 percentage.
func gauge(percent float64) string {
	filled := int(percent / 10 * 4)
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("|", filled) + strings.Repeat(" ", gaugeWidth-filled)
}

// formatTimeSum renders cumulative CPU seconds as H:MM:SS zero-padded to
// eight characters; a missing value renders as zero time.
func formatTimeSum(seconds *float64) string {
	var total int
	if seconds != nil {
		total = int(*seconds)
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	out := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	if len(out) < 8 {
		out = strings.Repeat("0", 8-len(out)) + out
	}
	return out
}

func formatCPUPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func formatMemPercent(v *float32) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

// formatStatuses renders the histogram as "status=count" pairs with running
// and sleeping counts first.
func formatStatuses(statuses models.StatusHistogram) string {
	pairs := make([]string, 0, len(statuses))
	for label, count := range statuses {
		if count > 0 {
			pairs = append(pairs, fmt.Sprintf("%s=%d", label, count))
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		pi, pj := statusRank(pairs[i]), statusRank(pairs[j])
		if pi != pj {
			return pi < pj
		}
		return pairs[i] < pairs[j]
	})
	return strings.Join(pairs, " ")
}

func statusRank(pair string) int {
	if strings.HasPrefix(pair, "run") || strings.HasPrefix(pair, "sle") {
		return 0
	}
	return 1
}

func formatBytes(b uint64) string {
	return units.BytesSize(float64(b))
}

func formatUptime(d int64) string {
	days := d / 86400
	hours := (d % 86400) / 3600
	minutes := (d % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm", days, hours, minutes)
	}
	return fmt.Sprintf("%02dh %02dm", hours, minutes)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
