// Package intakehdl - Handler sổ cái lượt phục vụ.
package intakehdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/base/handler"
	intakedto "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/dto"
	intakesvc "github.com/brian-aiad/shepherds-table-cloud-sub000/internal/api/intake/service"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/common"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/logger"
)

// VisitHandler xử lý các route lượt phục vụ.
type VisitHandler struct {
	VisitService  *intakesvc.VisitService
	MarkerService *intakesvc.MarkerService
}

// NewVisitHandler tạo VisitHandler mới.
func NewVisitHandler() (*VisitHandler, error) {
	visitSvc, err := intakesvc.NewVisitService()
	if err != nil {
		return nil, fmt.Errorf("tạo VisitService: %w", err)
	}
	markerSvc, err := intakesvc.NewMarkerService()
	if err != nil {
		return nil, fmt.Errorf("tạo MarkerService: %w", err)
	}
	return &VisitHandler{VisitService: visitSvc, MarkerService: markerSvc}, nil
}

// HandleLogVisit xử lý POST /visits.
func (h *VisitHandler) HandleLogVisit(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input intakedto.VisitLogInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		visit, err := h.VisitService.LogVisit(c.Context(), scope, &input)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("visit_log", "visit", visit.ID.Hex(), c, map[string]interface{}{
			"client_id":                  visit.ClientID.Hex(),
			"month_key":                  visit.MonthKey,
			"usda_first_time_this_month": visit.UsdaFirstTimeThisMonth,
		})
		basehdl.HandleCreatedResponse(c, visit)
		return nil
	})
}

// HandleIntake xử lý POST /visits/intake (fast-path: tạo hồ sơ + ghi lượt đầu).
// Response có dedupeMatch khi phát hiện hồ sơ trùng — client gửi lại với
// forceCreate=true nếu người dùng xác nhận tạo mới.
func (h *VisitHandler) HandleIntake(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input intakedto.VisitIntakeInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		result, err := h.VisitService.CreateClientAndLogVisit(c.Context(), scope, &input)
		if err != nil {
			// Hồ sơ có thể đã được tạo trước khi lượt phục vụ thất bại
			if result != nil && result.Client != nil {
				logger.LogIntake("fastpath_partial", "client", result.Client.ID.Hex(), c, map[string]interface{}{
					"error": err.Error(),
				})
			}
			basehdl.HandleResponse(c, result, err)
			return nil
		}

		if result.DedupeMatch != nil {
			logger.LogIntake("fastpath_dedupe_match", "client", result.DedupeMatch.ID.Hex(), c, nil)
			basehdl.HandleResponse(c, result, nil)
			return nil
		}

		logger.LogIntake("fastpath_create", "client", result.Client.ID.Hex(), c, map[string]interface{}{
			"visit_id": result.Visit.ID.Hex(),
		})
		basehdl.HandleCreatedResponse(c, result)
		return nil
	})
}

// HandleList xử lý GET /visits.
func (h *VisitHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var query intakedto.VisitListQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		result, err := h.VisitService.List(c.Context(), scope, &query)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleMarkEdited xử lý POST /visits/:id/mark-edited (đóng dấu audit).
// Body tùy chọn: householdSize > 0 sửa lại snapshot trong cùng dấu audit.
func (h *VisitHandler) HandleMarkEdited(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		visitID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrNotFound)
			return nil
		}

		var input intakedto.VisitMarkEditedInput
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&input); err != nil {
				basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
				return nil
			}
		}

		visit, err := h.VisitService.MarkEdited(c.Context(), scope, visitID, &input)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("visit_mark_edited", "visit", visitID.Hex(), c, nil)
		basehdl.HandleResponse(c, visit, nil)
		return nil
	})
}

// HandleEligibleCountForMonth xử lý GET /markers/count?monthKey=YYYY-MM.
// Đếm số khách đã được đánh dấu đủ điều kiện trong tháng (toàn tổ chức).
func (h *VisitHandler) HandleEligibleCountForMonth(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		monthKey := c.Query("monthKey")
		if monthKey == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		count, err := h.MarkerService.CountForMonth(c.Context(), scope, monthKey)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"monthKey": monthKey, "count": count}, nil)
		return nil
	})
}
