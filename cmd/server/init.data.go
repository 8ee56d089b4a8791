package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	intakesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/service"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/logger"
)

// InitDefaultData tạo dữ liệu mẫu cho môi trường development.
// Chỉ chạy khi INITMODE=true và collection clients còn trống.
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.ServerConfig.InitMode {
		log.Info("INITMODE disabled, skipping default data")
		return
	}

	col, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exists {
		log.Error("Clients collection not registered, skipping default data")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count clients, skipping default data")
		return
	}
	if count > 0 {
		log.Info("Clients collection not empty, skipping default data")
		return
	}

	now := time.Now().UnixMilli()
	demoOrgID := primitive.NewObjectID()
	demo := intakemodels.Client{
		ID:             primitive.NewObjectID(),
		FirstName:      "Demo",
		LastName:       "Client",
		Phone:          "(310) 555-1234",
		DateOfBirth:    "1980-01-15",
		PostalCode:     "90210",
		County:         "Los Angeles",
		HouseholdSize:  3,
		PhoneDigits:    intakesvc.NormalizePhoneDigits("(310) 555-1234"),
		NameDobHash:    intakesvc.NameDobHash("Demo", "Client", "1980-01-15"),
		OrganizationID: demoOrgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := col.InsertOne(ctx, demo); err != nil {
		log.WithError(err).Error("Failed to insert demo client")
		return
	}

	log.WithFields(map[string]interface{}{
		"client_id":       demo.ID.Hex(),
		"organization_id": demoOrgID.Hex(),
	}).Info("Inserted demo client for development")
}
