package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/config"
	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/database"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Clients = "clients"
	global.MongoDB_ColNames.Visits = "visits"
	global.MongoDB_ColNames.EligibilityMarkers = "eligibility_markers"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (đăng ký custom validators: postal_code, no_xss, date_ymd)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database.
// Collections phải được tạo trước (CreateCollection) vì transaction không
// tự tạo collection mới được.
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index theo tag `index` trên model
	dbName := global.ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Clients), intakemodels.Client{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Visits), intakemodels.Visit{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.EligibilityMarkers), intakemodels.EligibilityMarker{})

	// Index compound phục vụ dedupe và truy vấn theo scope
	if err := database.CreateIntakeAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create intake indexes: %v", err)
	}
	logrus.Info("Created indexes")
}
