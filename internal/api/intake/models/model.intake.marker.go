// Package models - EligibilityMarker thuộc domain intake (eligibility_markers).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EligibilityMarker đánh dấu "lượt đầu tiên đủ điều kiện trong tháng" của một khách.
// _id là khóa tổng hợp deterministic "{orgId}_{clientId}_{monthKey}" — chính khóa này
// là cơ chế chống race: hai writer cùng tạo marker một tháng thì store chỉ nhận một.
// Marker không bao giờ bị update hay xóa trong vận hành bình thường.
type EligibilityMarker struct {
	ID string `json:"id" bson:"_id"` // "{orgId}_{clientId}_{monthKey}"

	ClientID       primitive.ObjectID `json:"clientId" bson:"clientId"`
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"`
	MonthKey       string             `json:"monthKey" bson:"monthKey"` // "YYYY-MM"

	// Metadata tạo marker
	VisitID         primitive.ObjectID `json:"visitId,omitempty" bson:"visitId,omitempty"` // Visit đã kích hoạt marker
	CreatedByUserID string             `json:"createdByUserId,omitempty" bson:"createdByUserId,omitempty"`
	CreatedAt       int64              `json:"createdAt" bson:"createdAt"`
}
