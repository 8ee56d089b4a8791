package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/events"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/database"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// initDataChangeAudit đăng ký handler ghi audit log cho mọi thay đổi dữ liệu qua CRUD.
func initDataChangeAudit() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		entry := logger.GetAuditLogger().WithFields(map[string]interface{}{
			"collection": e.CollectionName,
			"operation":  e.Operation,
		})
		if orgID := events.GetOrganizationIDFromDocument(e.Document); !orgID.IsZero() {
			entry = entry.WithField("organization_id", orgID.Hex())
		}
		entry.Info("Data changed")
	})
}

// main_thread khởi tạo và chạy Fiber server trên main goroutine
func main_thread() {
	app, err := InitFiberApp()
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to initialize Fiber app: %v", err)
	}

	cfg := global.ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()

	// Graceful shutdown: đóng server rồi đóng kết nối MongoDB
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		log.Infof("Received signal %v, shutting down...", sig)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error during server shutdown")
		}
		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Error("Error closing MongoDB connection")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server")

	listenConfig := fiber.ListenConfig{}
	if err := app.Listen(address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	log.Info("Server stopped")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Đăng ký audit handler cho data change events
	initDataChangeAudit()

	// Khởi tạo dữ liệu mẫu (chỉ khi INITMODE=true)
	InitDefaultData()

	// Chạy Fiber server trên main thread
	main_thread()
}
