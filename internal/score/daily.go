package score

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// dayLayout is the UTC day-bucket format used for daily seeds and daily
// leaderboard scoping.
const dayLayout = "2006-01-02"

// DailySeed derives the deterministic seed for the UTC day of t: the first
// 16 hex characters of HMAC-SHA256(secret, "YYYY-MM-DD").
func DailySeed(secret string, t time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(t.UTC().Format(dayLayout)))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}

// DailyWindow returns the UTC day bounds containing t.
func DailyWindow(t time.Time) (start, end time.Time) {
	start = t.UTC().Truncate(24 * time.Hour)
	return start, start.Add(24 * time.Hour)
}

// DayBucket formats t as its UTC day-bucket string.
func DayBucket(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
