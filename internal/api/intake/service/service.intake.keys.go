// Package intakesvc - Service cho domain intake (clients, visits, eligibility_markers).
// File này chứa các hàm thuần dẫn xuất khóa thời gian và chuẩn hóa dữ liệu lượt phục vụ.
package intakesvc

import (
	"fmt"
	"time"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
)

// MonthKey trả về khóa tháng "YYYY-MM" của một thời điểm.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DateKey trả về khóa ngày "YYYY-MM-DD" của một thời điểm.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey trả về khóa tuần ISO 8601 "YYYY-Www".
// Tuần thuộc về năm chứa thứ Năm của tuần đó, nên các ngày đầu tháng 1
// có thể mang weekKey của năm trước (ví dụ 2027-01-01 -> "2026-W53").
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Weekday trả về thứ trong tuần (0 = Chủ nhật ... 6 = Thứ bảy).
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// ResolveVisitTime chọn thời điểm của lượt phục vụ từ chuỗi ngày caller gửi lên.
// Chuỗi rỗng hoặc sai định dạng thì dùng now. Khi backdate hợp lệ, giữ nguyên
// giờ-phút-giây của now để timestamp vẫn hợp lý thay vì 00:00:00.
func ResolveVisitTime(visitDate string, now time.Time) time.Time {
	if visitDate == "" {
		return now
	}
	d, err := time.ParseInLocation("2006-01-02", visitDate, now.Location())
	if err != nil {
		return now
	}
	return time.Date(d.Year(), d.Month(), d.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
}

// ClampHouseholdSize ép số người trong hộ về khoảng [1, 20].
// Giá trị ngoài biên được kéo về biên chứ không reject.
func ClampHouseholdSize(n int) int {
	if n < intakemodels.HouseholdSizeMin {
		return intakemodels.HouseholdSizeMin
	}
	if n > intakemodels.HouseholdSizeMax {
		return intakemodels.HouseholdSizeMax
	}
	return n
}
