// Package intakehdl - Handler cho domain intake.
package intakehdl

import (
	"github.com/gofiber/fiber/v3"

	intakemodels "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/models"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
)

// scopeFromContext dựng TenantScope từ các giá trị middleware đã resolve.
// Mọi handler intake lấy scope qua đây, không đọc Locals rải rác.
func scopeFromContext(c fiber.Ctx) (intakemodels.TenantScope, error) {
	orgID, _ := c.Locals("active_organization_id").(string)
	if orgID == "" {
		return intakemodels.TenantScope{}, common.ErrMissingScope
	}
	locationID, _ := c.Locals("active_location_id").(string)
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	allLocations, _ := c.Locals("scope_all_locations").(bool)

	return intakemodels.TenantScope{
		OrganizationID: orgID,
		LocationID:     locationID,
		UserID:         userID,
		Role:           role,
		AllLocations:   allLocations,
	}, nil
}
