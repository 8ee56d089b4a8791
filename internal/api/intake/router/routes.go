// Package router đăng ký các route thuộc domain intake: clients, visits, markers.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	intakehdl "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/handler"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/middleware"
	apirouter "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/router"
)

// Register đăng ký tất cả route intake lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	clientHandler, err := intakehdl.NewClientHandler()
	if err != nil {
		return fmt.Errorf("tạo ClientHandler: %w", err)
	}
	visitHandler, err := intakehdl.NewVisitHandler()
	if err != nil {
		return fmt.Errorf("tạo VisitHandler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	tenantContextMiddleware := middleware.TenantContextMiddleware()
	middlewares := []fiber.Handler{authMiddleware, tenantContextMiddleware}

	// POST /clients — tạo hồ sơ khách hàng mới
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/", middlewares, clientHandler.HandleCreate)
	// GET /clients — danh sách có phân trang. Query: page, limit, search, includeInactive
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/", middlewares, clientHandler.HandleList)

	// POST /clients/merge — gộp hai hồ sơ trùng (chỉ admin). Body: sourceId, targetId
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/merge", middlewares, clientHandler.HandleMerge)
	// POST /clients/dedupe-check — kiểm tra trùng trước khi tạo hồ sơ
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/dedupe-check", middlewares, clientHandler.HandleDedupeCheck)

	// GET /clients/:id
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:id", middlewares, clientHandler.HandleGet)
	// PUT /clients/:id — cập nhật từng phần, field rỗng bị bỏ qua
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "PUT", "/:id", middlewares, clientHandler.HandleUpdate)
	// POST /clients/:id/deactivate — soft-delete, lịch sử visit giữ nguyên
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:id/deactivate", middlewares, clientHandler.HandleDeactivate)
	// POST /clients/:id/reactivate
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:id/reactivate", middlewares, clientHandler.HandleReactivate)

	// POST /visits — ghi lượt phục vụ cho hồ sơ đã có
	apirouter.RegisterRouteWithMiddleware(v1, "/visits", "POST", "/", middlewares, visitHandler.HandleLogVisit)
	// POST /visits/intake — fast-path: tạo hồ sơ + ghi lượt đầu trong một request
	apirouter.RegisterRouteWithMiddleware(v1, "/visits", "POST", "/intake", middlewares, visitHandler.HandleIntake)
	// GET /visits — danh sách có phân trang. Query: page, limit, clientId, monthKey, dateKey
	apirouter.RegisterRouteWithMiddleware(v1, "/visits", "GET", "/", middlewares, visitHandler.HandleList)
	// POST /visits/:id/mark-edited — đóng dấu audit khi sửa tay
	apirouter.RegisterRouteWithMiddleware(v1, "/visits", "POST", "/:id/mark-edited", middlewares, visitHandler.HandleMarkEdited)

	// GET /markers/count — đếm khách đủ điều kiện trong tháng. Query: monthKey=YYYY-MM
	apirouter.RegisterRouteWithMiddleware(v1, "/markers", "GET", "/count", middlewares, visitHandler.HandleEligibleCountForMonth)

	return nil
}
