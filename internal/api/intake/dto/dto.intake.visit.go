// Package dto - DTO cho domain intake (visit).
package dto

import (
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
)

// VisitLogInput dữ liệu ghi một lượt phục vụ cho khách đã có hồ sơ.
type VisitLogInput struct {
	ClientID string `json:"clientId" validate:"required"`
	// VisitDate dạng YYYY-MM-DD; rỗng hoặc sai định dạng thì dùng thời điểm hiện tại.
	// Khi backdate, giờ trong ngày lấy theo thời điểm gọi để timestamp vẫn hợp lý.
	VisitDate            string `json:"visitDate,omitempty" validate:"date_ymd"`
	HouseholdSize        int    `json:"householdSize,omitempty"` // Clamp vô điều kiện về [1,20]: 0 hay âm lưu 1, quá 20 lưu 20
	WantsEligibilityFlag bool   `json:"wantsEligibilityFlag"`    // Yêu cầu đánh dấu lượt đầu đủ điều kiện trong tháng
}

// VisitIntakeInput dữ liệu cho fast-path: tạo hồ sơ mới và ghi lượt phục vụ đầu tiên.
type VisitIntakeInput struct {
	Client               ClientCreateInput `json:"client" validate:"required"`
	VisitDate            string            `json:"visitDate,omitempty" validate:"date_ymd"`
	WantsEligibilityFlag bool              `json:"wantsEligibilityFlag"`
	// ForceCreate bỏ qua kết quả dedupe và tạo hồ sơ mới dù có khả năng trùng.
	// Luôn được phép vì dedupe theo tên/ngày sinh có thể false positive.
	ForceCreate bool `json:"forceCreate"`
}

// VisitIntakeResponse kết quả fast-path intake.
// Nếu DedupeMatch != nil và caller chưa ForceCreate thì Client/Visit đều nil —
// caller quyết định ghi lượt cho hồ sơ trùng hay tạo mới.
type VisitIntakeResponse struct {
	Client      *intakemodels.Client `json:"client,omitempty"`
	DedupeMatch *intakemodels.Client `json:"dedupeMatch,omitempty"`
	Visit       *intakemodels.Visit  `json:"visit,omitempty"`
}

// VisitMarkEditedInput dữ liệu tùy chọn khi đóng dấu audit lên một lượt phục vụ.
type VisitMarkEditedInput struct {
	// HouseholdSize > 0 sửa lại snapshot số người trong hộ (clamp [1,20]); 0 = giữ nguyên.
	HouseholdSize int `json:"householdSize,omitempty"`
}

// VisitListQuery tham số lọc danh sách lượt phục vụ.
type VisitListQuery struct {
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
	ClientID string `query:"clientId"`
	MonthKey string `query:"monthKey"` // "YYYY-MM"
	DateKey  string `query:"dateKey"`  // "YYYY-MM-DD"
}
