package timeclock

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var millisPerMinute = decimal.NewFromInt(60_000)

// MinutesBetween computes the elapsed minutes between two epoch-millisecond
// instants as an exact decimal. Fractional seconds are preserved: quota
// totals downstream must reconcile to the second, so nothing is truncated
// here.
func MinutesBetween(startMillis, endMillis int64) decimal.Decimal {
	return decimal.NewFromInt(endMillis - startMillis).Div(millisPerMinute)
}

// MinutesSince returns the running duration of something that started at
// startMillis and has not finished yet.
func MinutesSince(startMillis int64, now time.Time) decimal.Decimal {
	return MinutesBetween(startMillis, Millis(now))
}

// FormatMinutes renders decimal minutes as "2 hours 5 minutes 30 seconds",
// dropping leading zero components the way operators expect to read it.
func FormatMinutes(minutes decimal.Decimal) string {
	whole := minutes.IntPart()
	secs := minutes.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	if secs == 60 {
		whole++
		secs = 0
	}
	hours := whole / 60
	mins := whole % 60

	if hours == 0 && mins == 0 {
		return fmt.Sprintf("%d %s", secs, plural("second", secs))
	}
	if hours == 0 {
		return fmt.Sprintf("%d %s %d %s", mins, plural("minute", mins), secs, plural("second", secs))
	}
	return fmt.Sprintf("%d %s %d %s %d %s",
		hours, plural("hour", hours),
		mins, plural("minute", mins),
		secs, plural("second", secs))
}

func plural(unit string, n int64) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
