// Package models - Các model thuộc domain intake (clients, visits, eligibility_markers).
package models

// ScopeAllLocations là giá trị sentinel cho phạm vi "mọi địa điểm của tổ chức".
// Chỉ hợp lệ khi caller có quyền org-wide; không bao giờ mở rộng sang tổ chức khác.
const ScopeAllLocations = "ALL"

// TenantScope là phạm vi thao tác của một request: tổ chức, địa điểm, vai trò.
// Không phải entity lưu trong database — được resolve từ claims của token mỗi request.
type TenantScope struct {
	OrganizationID string // Tổ chức của caller, luôn bắt buộc
	LocationID     string // Địa điểm làm việc, hoặc "ALL" khi đọc toàn tổ chức
	UserID         string // Nhân viên thực hiện thao tác
	Role           string // Vai trò (staff, manager, admin)
	AllLocations   bool   // Caller có quyền org-wide location access hay không
}

// IsAllLocations kiểm tra scope có đang ở chế độ toàn tổ chức không.
func (s TenantScope) IsAllLocations() bool {
	return s.LocationID == ScopeAllLocations
}
