package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/utility"
)

// TenantContextMiddleware middleware để quản lý tenant context.
// QUAN TRỌNG: Context làm việc là (organization, location), đọc từ claims của token
// - Organization lấy thẳng từ claims, client không bao giờ được chọn organization qua header
// - Đọc X-Active-Location-ID từ header để chọn địa điểm làm việc trong phiên
// - Validate địa điểm đó có nằm trong danh sách được phép của token không
// - "ALL" chỉ hợp lệ khi token có quyền allLocations (dùng cho đọc báo cáo toàn tổ chức)
// - Lưu active_organization_id, active_location_id, scope_all_locations, role vào context
func TenantContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*IntakeClaims)
		if !ok || claims == nil {
			// Không có claims, route không qua AuthMiddleware
			return c.Next()
		}

		activeLocationID := c.Get("X-Active-Location-ID")
		if activeLocationID == "" {
			// Không có header: mặc định là địa điểm đầu tiên của token,
			// token toàn tổ chức thì mặc định "ALL"
			if len(claims.LocationIDs) > 0 {
				activeLocationID = claims.LocationIDs[0]
			} else if claims.AllLocations {
				activeLocationID = "ALL"
			}
		}

		if activeLocationID == "" {
			HandleErrorResponse(c, common.ErrMissingScope)
			return nil
		}

		if activeLocationID == "ALL" {
			if !claims.AllLocations {
				HandleErrorResponse(c, common.ErrScopeViolation)
				return nil
			}
		} else if !claims.AllLocations && !utility.Contains(claims.LocationIDs, activeLocationID) {
			// Địa điểm không nằm trong phạm vi token
			HandleErrorResponse(c, common.ErrScopeViolation)
			return nil
		}

		c.Locals("active_organization_id", claims.OrganizationID)
		c.Locals("active_location_id", activeLocationID)
		c.Locals("scope_all_locations", claims.AllLocations)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}
