package entity

import "time"

// dayKeyLayout は日単位の使用量レコードを識別するキーのフォーマットです。
const dayKeyLayout = "2006-01-02"

// StartOfDay はtをそのロケーションの午前0時に切り捨てた時刻を返します。
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey はtの暦日を "YYYY-MM-DD" 形式で返します（tのロケーション基準）。
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// SameDay はstoredがdayと同じ暦日かどうかを返します。
// storedはdayのロケーションに変換してから比較するため、UTCで保存された値でも正しく判定できます。
// タイムスタンプの一致ではなく暦日で比較するため、23:59:59と翌日00:00:01は別の日になります。
func SameDay(stored, day time.Time) bool {
	return StartOfDay(stored.In(day.Location())).Equal(StartOfDay(day))
}
