// Package intakesvc - Test các hàm dẫn xuất khóa thời gian và chuẩn hóa lượt phục vụ.
package intakesvc

import (
	"testing"
	"time"
)

func TestMonthKeyDateKey(t *testing.T) {
	at := time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)
	if got := MonthKey(at); got != "2026-03" {
		t.Errorf("MonthKey = %q, muốn %q", got, "2026-03")
	}
	if got := DateKey(at); got != "2026-03-07" {
		t.Errorf("DateKey = %q, muốn %q", got, "2026-03-07")
	}
}

func TestWeekKey_ISOYearBoundary(t *testing.T) {
	// 2027-01-01 là thứ Sáu, thuộc tuần 53 của năm ISO 2026
	jan1 := time.Date(2027, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := WeekKey(jan1); got != "2026-W53" {
		t.Errorf("WeekKey(2027-01-01) = %q, muốn %q (tuần thuộc năm ISO trước)", got, "2026-W53")
	}

	// 2024-12-30 là thứ Hai, thuộc tuần 1 của năm ISO 2025
	dec30 := time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)
	if got := WeekKey(dec30); got != "2025-W01" {
		t.Errorf("WeekKey(2024-12-30) = %q, muốn %q (tuần thuộc năm ISO sau)", got, "2025-W01")
	}
}

func TestWeekday_SundayIsZero(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	if got := Weekday(sunday); got != 0 {
		t.Errorf("Weekday(Chủ nhật) = %d, muốn 0", got)
	}
	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	if got := Weekday(saturday); got != 6 {
		t.Errorf("Weekday(Thứ bảy) = %d, muốn 6", got)
	}
}

func TestResolveVisitTime_Backdate(t *testing.T) {
	now := time.Date(2026, 3, 7, 14, 30, 45, 0, time.UTC)

	got := ResolveVisitTime("2026-03-01", now)
	if got.Year() != 2026 || got.Month() != 3 || got.Day() != 1 {
		t.Errorf("ResolveVisitTime backdate sai ngày: %v", got)
	}
	// Giờ-phút-giây phải giữ nguyên của now, không phải 00:00:00
	if got.Hour() != 14 || got.Minute() != 30 || got.Second() != 45 {
		t.Errorf("ResolveVisitTime backdate phải giữ giờ của now, được: %v", got)
	}
}

func TestResolveVisitTime_EmptyAndMalformed(t *testing.T) {
	now := time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)

	if got := ResolveVisitTime("", now); !got.Equal(now) {
		t.Errorf("ResolveVisitTime(\"\") = %v, muốn now", got)
	}
	if got := ResolveVisitTime("07/03/2026", now); !got.Equal(now) {
		t.Errorf("ResolveVisitTime với ngày sai định dạng phải trả về now, được: %v", got)
	}
	if got := ResolveVisitTime("2026-13-45", now); !got.Equal(now) {
		t.Errorf("ResolveVisitTime với ngày không tồn tại phải trả về now, được: %v", got)
	}
}

func TestClampHouseholdSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{5, 5},
		{20, 20},
		{25, 20},
	}
	for _, c := range cases {
		if got := ClampHouseholdSize(c.in); got != c.want {
			t.Errorf("ClampHouseholdSize(%d) = %d, muốn %d", c.in, got, c.want)
		}
	}
}
