// Package dto - DTO cho domain intake (client).
package dto

// ClientCreateInput dữ liệu tạo hồ sơ khách hàng mới.
// County bắt buộc với intake mới; postal code nếu có phải đúng 5 chữ số.
type ClientCreateInput struct {
	FirstName     string `json:"firstName" validate:"required,no_xss"`
	LastName      string `json:"lastName" validate:"required,no_xss"`
	Phone         string `json:"phone,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty" validate:"date_ymd"` // YYYY-MM-DD
	Address       string `json:"address,omitempty" validate:"no_xss"`
	PostalCode    string `json:"postalCode,omitempty" validate:"postal_code"`
	County        string `json:"county" validate:"required,no_xss"`
	HouseholdSize int    `json:"householdSize,omitempty"` // Clamp về [1,20], không reject
}

// ClientUpdateInput dữ liệu cập nhật thông tin mô tả của hồ sơ.
// Không bao giờ đụng tới counters hay lifecycle flags qua đường này.
type ClientUpdateInput struct {
	FirstName     string `json:"firstName,omitempty" validate:"no_xss"`
	LastName      string `json:"lastName,omitempty" validate:"no_xss"`
	Phone         string `json:"phone,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty" validate:"date_ymd"`
	Address       string `json:"address,omitempty" validate:"no_xss"`
	PostalCode    string `json:"postalCode,omitempty" validate:"postal_code"`
	County        string `json:"county,omitempty" validate:"no_xss"`
	HouseholdSize int    `json:"householdSize,omitempty"`
}

// ClientMergeInput dữ liệu cho thao tác merge hai hồ sơ trùng.
type ClientMergeInput struct {
	SourceID string `json:"sourceId" validate:"required"` // Hồ sơ bị gộp
	TargetID string `json:"targetId" validate:"required"` // Hồ sơ còn sống
}

// ClientListQuery tham số lọc danh sách hồ sơ.
type ClientListQuery struct {
	Page            int64  `query:"page"`
	Limit           int64  `query:"limit"`
	Search          string `query:"search"`          // Tìm theo tên hoặc số điện thoại
	IncludeInactive bool   `query:"includeInactive"` // Mặc định ẩn hồ sơ đã vô hiệu hóa
}

// DedupeCheckInput tham số kiểm tra trùng trước khi tạo hồ sơ.
type DedupeCheckInput struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty" validate:"date_ymd"`
}
