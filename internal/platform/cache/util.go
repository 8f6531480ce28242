package cache

import (
	"time"
)

// timeUntilNextMidnight はnowから次のローカル時刻0時までの期間を返します。
// 使用量は日付が変わるとリセットされるため、キャッシュは日をまたいで保持しません。
func timeUntilNextMidnight(now time.Time) time.Duration {
	now = now.In(time.Local)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.Local)
	return next.Sub(now)
}
