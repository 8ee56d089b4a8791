// Package database - Index bổ sung cho intake (compound theo truy vấn thực tế) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// CreateIntakeAdditionalIndexes tạo các index bổ sung cho intake.
// Gọi sau CreateIndexes cho từng collection.
func CreateIntakeAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// clients: (organizationId, phoneDigits) sparse — dedupe tìm theo số điện thoại
	clients := db.Collection(global.MongoDB_ColNames.Clients)
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "phoneDigits", Value: 1},
		},
		Options: options.Index().SetName("client_org_phone").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// clients: (organizationId, nameDobHash) sparse — dedupe tìm theo tên + ngày sinh
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "nameDobHash", Value: 1},
		},
		Options: options.Index().SetName("client_org_namedob").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// clients: (organizationId, locationId) — danh sách khách hàng theo địa điểm
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "locationId", Value: 1},
		},
		Options: options.Index().SetName("client_org_location"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// visits: (organizationId, clientId, visitAt desc) — lịch sử lượt phục vụ của 1 khách hàng
	visits := db.Collection(global.MongoDB_ColNames.Visits)
	if _, err := visits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "clientId", Value: 1},
			{Key: "visitAt", Value: -1},
		},
		Options: options.Index().SetName("visit_org_client_time"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// visits: (organizationId, monthKey) — báo cáo theo tháng
	if _, err := visits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "monthKey", Value: 1},
		},
		Options: options.Index().SetName("visit_org_month"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// visits: (organizationId, dateKey) — danh sách lượt phục vụ trong ngày
	if _, err := visits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "dateKey", Value: 1},
		},
		Options: options.Index().SetName("visit_org_date"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// visits: (organizationId, locationId, visitAt desc) — danh sách lượt phục vụ theo địa điểm
	if _, err := visits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "locationId", Value: 1},
			{Key: "visitAt", Value: -1},
		},
		Options: options.Index().SetName("visit_org_location_time"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// eligibility_markers: (organizationId, monthKey) — đếm số khách đủ điều kiện trong tháng
	markers := db.Collection(global.MongoDB_ColNames.EligibilityMarkers)
	if _, err := markers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "monthKey", Value: 1},
		},
		Options: options.Index().SetName("marker_org_month"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
