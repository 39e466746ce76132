package cadence

import (
	"strconv"
	"strings"
)

// parsePosition resolves a position argument (see Timeline.Add) inside
// anim's time space. percentAnim is the animation being inserted; its total
// duration scales percentages that follow "=".
func parsePosition(anim Animation, position any, percentAnim Animation) float64 {
	tl, _ := anim.(*Timeline)
	var clipped float64
	if anim.Duration() >= bigNum {
		if tl != nil && tl.recent != nil {
			clipped = tl.recent.self.EndTime(false)
		}
	} else {
		clipped = anim.base().dur
	}
	switch p := position.(type) {
	case nil:
		return clipped
	case string:
		return parsePositionString(tl, strings.TrimSpace(p), percentAnim, clipped)
	default:
		if f, ok := toFloat(p); ok && finite(f) {
			return f
		}
		return clipped
	}
}

func parsePositionString(tl *Timeline, s string, percentAnim Animation, clipped float64) float64 {
	if s == "" {
		return clipped
	}
	var labels map[string]float64
	var recent *core
	if tl != nil {
		labels = tl.labels
		recent = tl.recent
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if _, isLabel := labels[s]; !isLabel {
			return f
		}
	}
	isPercent := strings.HasSuffix(s, "%")
	i := strings.IndexByte(s, '=')

	if s[0] == '<' || s[0] == '>' {
		if i >= 0 {
			s = strings.Replace(s, "=", "", 1)
		}
		var base, recentTotal float64
		if recent != nil {
			if s[0] == '<' {
				base = recent.start
			} else {
				base = recent.self.EndTime(recent.repeat >= 0)
			}
			recentTotal = recent.self.TotalDuration()
		}
		amount, _ := parseLeadingFloat(strings.TrimSuffix(s[1:], "%"))
		if isPercent {
			total := recentTotal
			if i >= 0 && percentAnim != nil {
				total = percentAnim.TotalDuration()
			}
			amount = amount * total / 100
		}
		return base + amount
	}

	if i < 0 {
		if labels == nil {
			return clipped
		}
		if _, ok := labels[s]; !ok {
			labels[s] = clipped
		}
		return labels[s]
	}
	if i == 0 {
		return clipped
	}

	offset, _ := parseLeadingFloat(string(s[i-1]) + strings.TrimSuffix(s[i+1:], "%"))
	if isPercent && percentAnim != nil {
		offset = offset / 100 * percentAnim.TotalDuration()
	}
	if i > 1 {
		return parsePositionString(tl, s[:i-1], percentAnim, clipped) + offset
	}
	return clipped + offset
}
