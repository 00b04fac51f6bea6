package common

import (
	"fmt"
	"strings"
	"time"
)

const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287
	ColorDanger  = 0xED4245
	ColorWarning = 0xFEE75C
)

// FormatScore formats a score with thousand separators
func FormatScore(score int64) string {
	if score < 0 {
		return "-" + FormatScore(-score)
	}
	str := fmt.Sprintf("%d", score)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// RankLabel returns a medal for the podium and "N." otherwise
func RankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// FormatDiscordTimestamp renders t in the reader's local timezone.
// Formats: "t" short time, "f" short date/time, "R" relative, etc.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatSolvedAt renders an epoch-millisecond solve time, or "never" when unset
func FormatSolvedAt(epochMillis int64) string {
	if epochMillis <= 0 {
		return "never"
	}
	return FormatDiscordTimestamp(time.UnixMilli(epochMillis), "R")
}
