package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/config"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB.
// Core chỉ sở hữu 3 collection: clients, visits, eligibility_markers.
type MongoDB_CollectionName struct {
	Clients            string // Hồ sơ khách hàng nhận hỗ trợ
	Visits             string // Lượt phục vụ (append-only)
	EligibilityMarkers string // Marker "lượt đầu tiên đủ điều kiện trong tháng" (1/org/client/tháng)
}

// Các biến toàn cục
var Validate *validator.Validate              // Validator cho DTO input
var MongoDB_Session *mongo.Client             // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration        // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{} // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
