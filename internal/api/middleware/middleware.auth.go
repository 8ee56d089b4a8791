package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

// IntakeClaims là payload của JWT do lớp xác thực bên ngoài cấp.
// Hệ thống này không quản lý tài khoản, chỉ verify token và đọc phạm vi từ claims.
type IntakeClaims struct {
	UserID         string   `json:"userId"`         // ID của nhân viên/tình nguyện viên
	OrganizationID string   `json:"organizationId"` // Tổ chức mà token được cấp cho
	LocationIDs    []string `json:"locationIds"`    // Các địa điểm được phép thao tác
	Role           string   `json:"role"`           // Vai trò (staff, manager, admin)
	AllLocations   bool     `json:"allLocations"`   // Được phép xem dữ liệu mọi địa điểm của tổ chức
	jwt.RegisteredClaims
}

// AuthMiddleware verify JWT Bearer token và lưu claims vào context.
// Token không hợp lệ hoặc thiếu sẽ bị chặn tại đây, handler phía sau
// luôn có thể tin tưởng các giá trị trong Locals.
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		claims := &IntakeClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, common.ErrTokenInvalid
			}
			return []byte(global.ServerConfig.JwtSecret), nil
		})
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				HandleErrorResponse(c, common.ErrTokenExpired)
				return nil
			}
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}
		if !token.Valid || claims.UserID == "" || claims.OrganizationID == "" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("claims", claims)

		return c.Next()
	}
}
