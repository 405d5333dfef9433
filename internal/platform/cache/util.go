package cache

import (
	"time"
)

// TimeUntilNext は now から次の hour:minute（loc の時刻）までの期間を返します。
// ちょうどその時刻の場合は24時間後を次とみなします。
func TimeUntilNext(now time.Time, hour, minute int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	// 今日の時刻が既に過ぎている場合は翌日を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
