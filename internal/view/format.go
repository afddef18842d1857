// Package view renders API results for the terminal.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatCurrency renders an amount in rupees with Indian digit grouping, so
// 150000 renders as ₹1,50,000. The amount is rounded to whole paise before
// splitting, so the paise field carries into the rupees.
func FormatCurrency(amount float64) string {
	paise := int64(math.Round(amount * 100))
	grouped := groupIndian(paise / 100)
	if frac := paise % 100; frac != 0 {
		return fmt.Sprintf("₹%s.%02d", grouped, frac)
	}
	return "₹" + grouped
}

func groupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		digits = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2 Jan 2006")
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2 Jan 2006, 3:04 PM")
}

// Initials returns up to two uppercase initials from a display name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(word))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// Truncate shortens s to max runes, appending an ellipsis when it cuts.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
