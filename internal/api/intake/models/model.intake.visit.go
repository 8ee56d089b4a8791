// Package models - Visit thuộc domain intake (visits).
// Sổ cái append-only: mỗi document là một lượt phục vụ, không bao giờ sửa sau khi ghi
// ngoại trừ cặp audit editedAt/editedByUserId.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visit lưu một lượt phục vụ (visits).
// Snapshot fields chụp lại hồ sơ khách tại thời điểm ghi — bất biến kể cả khi
// hồ sơ gốc được sửa hay merge sau này.
type Visit struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	// References
	ClientID       primitive.ObjectID `json:"clientId" bson:"clientId" index:"single:1"`
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"`
	LocationID     string             `json:"locationId" bson:"locationId"` // Luôn là địa điểm cụ thể, không bao giờ "ALL"

	// Snapshot hồ sơ khách tại thời điểm phục vụ
	FirstName     string `json:"firstName" bson:"firstName"`
	LastName      string `json:"lastName" bson:"lastName"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
	PostalCode    string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	County        string `json:"county,omitempty" bson:"county,omitempty"`
	HouseholdSize int    `json:"householdSize" bson:"householdSize"`

	// Khóa thời gian — derive từ visitAt, tính sẵn để query báo cáo không phải parse
	VisitAt  int64  `json:"visitAt" bson:"visitAt"`   // Unix ms, có thể backdate
	MonthKey string `json:"monthKey" bson:"monthKey"` // "YYYY-MM"
	DateKey  string `json:"dateKey" bson:"dateKey"`   // "YYYY-MM-DD"
	WeekKey  string `json:"weekKey" bson:"weekKey"`   // ISO week "YYYY-Www"
	Weekday  int    `json:"weekday" bson:"weekday"`   // 0 = Chủ nhật ... 6 = Thứ bảy

	// True chỉ khi marker (org, client, tháng) được tạo mới trong cùng transaction với visit này
	UsdaFirstTimeThisMonth bool `json:"usdaFirstTimeThisMonth" bson:"usdaFirstTimeThisMonth"`

	// Audit — cặp field duy nhất được phép sửa sau khi ghi
	EditedAt       int64  `json:"editedAt,omitempty" bson:"editedAt,omitempty"` // Unix ms
	EditedByUserID string `json:"editedByUserId,omitempty" bson:"editedByUserId,omitempty"`

	// Metadata
	RecordedByUserID string `json:"recordedByUserId,omitempty" bson:"recordedByUserId,omitempty"`
	CreatedAt        int64  `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt        int64  `json:"updatedAt" bson:"updatedAt"`
}
