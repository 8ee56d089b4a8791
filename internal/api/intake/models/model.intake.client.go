// Package models - Client thuộc domain intake (clients).
// Hồ sơ người nhận hỗ trợ, kèm counters lượt phục vụ được denormalize.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Giới hạn số người trong hộ (clamp, không reject).
const (
	HouseholdSizeMin = 1
	HouseholdSizeMax = 20
)

// Client lưu hồ sơ khách hàng nhận hỗ trợ (clients).
// Counters (visitCountLifetime, visitCountByMonth) chỉ được cập nhật trong cùng
// transaction với việc ghi Visit tương ứng, không bao giờ cập nhật rời.
type Client struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	// Thông tin cá nhân
	FirstName     string `json:"firstName" bson:"firstName"`
	LastName      string `json:"lastName" bson:"lastName"`
	Phone         string `json:"phone,omitempty" bson:"phone,omitempty"`             // Số điện thoại dạng gốc người dùng nhập
	DateOfBirth   string `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
	PostalCode    string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	County        string `json:"county,omitempty" bson:"county,omitempty"`
	HouseholdSize int    `json:"householdSize" bson:"householdSize"`

	// Khóa dedupe — tính sẵn khi tạo/sửa hồ sơ để tìm trùng nhanh qua index
	PhoneDigits string `json:"phoneDigits,omitempty" bson:"phoneDigits,omitempty"` // Chỉ giữ chữ số, có thể rỗng
	NameDobHash string `json:"nameDobHash,omitempty" bson:"nameDobHash,omitempty"` // sha256 của "first last|dob" đã lowercase

	// Lifecycle
	Inactive     bool               `json:"inactive" bson:"inactive"`                           // Soft-delete
	MergedIntoID primitive.ObjectID `json:"mergedIntoId,omitempty" bson:"mergedIntoId,omitempty"` // Hồ sơ còn sống sau khi merge

	// Counters denormalize từ visits — chỉ mutate trong transaction ghi Visit
	VisitCountLifetime int64            `json:"visitCountLifetime" bson:"visitCountLifetime"`
	VisitCountByMonth  map[string]int64 `json:"visitCountByMonth,omitempty" bson:"visitCountByMonth,omitempty"` // "YYYY-MM" -> số lượt
	LastVisitAt        int64            `json:"lastVisitAt,omitempty" bson:"lastVisitAt,omitempty"`             // Unix ms
	LastVisitMonthKey  string           `json:"lastVisitMonthKey,omitempty" bson:"lastVisitMonthKey,omitempty"`

	// Phân quyền
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"`
	LocationID     string             `json:"locationId,omitempty" bson:"locationId,omitempty"` // Rỗng chỉ khi admin org-wide tạo hồ sơ

	// Metadata
	CreatedByUserID string `json:"createdByUserId,omitempty" bson:"createdByUserId,omitempty"`
	CreatedAt       int64  `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt       int64  `json:"updatedAt" bson:"updatedAt"`
}
