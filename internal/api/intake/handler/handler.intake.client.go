// Package intakehdl - Handler hồ sơ khách hàng.
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

// ClientHandler xử lý các route hồ sơ khách hàng.
type ClientHandler struct {
	ClientService *intakesvc.ClientService
	DedupeService *intakesvc.DedupeService
}

// NewClientHandler tạo ClientHandler mới.
func NewClientHandler() (*ClientHandler, error) {
	clientSvc, err := intakesvc.NewClientService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientService: %w", err)
	}
	dedupeSvc, err := intakesvc.NewDedupeService()
	if err != nil {
		return nil, fmt.Errorf("tạo DedupeService: %w", err)
	}
	return &ClientHandler{ClientService: clientSvc, DedupeService: dedupeSvc}, nil
}

// HandleCreate xử lý POST /clients.
func (h *ClientHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input intakedto.ClientCreateInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		client, err := h.ClientService.Create(c.Context(), scope, &input)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("client_create", "client", client.ID.Hex(), c, nil)
		basehdl.HandleCreatedResponse(c, client)
		return nil
	})
}

// HandleGet xử lý GET /clients/:id.
func (h *ClientHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		clientID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}

		client, err := h.ClientService.FindScopedByID(c.Context(), scope, clientID)
		basehdl.HandleResponse(c, client, err)
		return nil
	})
}

// HandleList xử lý GET /clients.
func (h *ClientHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var query intakedto.ClientListQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		result, err := h.ClientService.List(c.Context(), scope, &query)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleUpdate xử lý PUT /clients/:id.
func (h *ClientHandler) HandleUpdate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		clientID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}

		var input intakedto.ClientUpdateInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		client, err := h.ClientService.Update(c.Context(), scope, clientID, &input)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("client_update", "client", clientID.Hex(), c, nil)
		basehdl.HandleResponse(c, client, nil)
		return nil
	})
}

// HandleDeactivate xử lý POST /clients/:id/deactivate.
// Soft-delete: hồ sơ biến mất khỏi listing mặc định, lịch sử Visit giữ nguyên.
func (h *ClientHandler) HandleDeactivate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		clientID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}

		client, err := h.ClientService.Deactivate(c.Context(), scope, clientID)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("client_deactivate", "client", clientID.Hex(), c, nil)
		basehdl.HandleResponse(c, client, nil)
		return nil
	})
}

// HandleReactivate xử lý POST /clients/:id/reactivate.
func (h *ClientHandler) HandleReactivate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		clientID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}

		client, err := h.ClientService.Reactivate(c.Context(), scope, clientID)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("client_reactivate", "client", clientID.Hex(), c, nil)
		basehdl.HandleResponse(c, client, nil)
		return nil
	})
}

// HandleMerge xử lý POST /clients/merge (chỉ admin).
func (h *ClientHandler) HandleMerge(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input intakedto.ClientMergeInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		sourceID, err := primitive.ObjectIDFromHex(input.SourceID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}
		targetID, err := primitive.ObjectIDFromHex(input.TargetID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrClientNotFound)
			return nil
		}

		merged, err := h.ClientService.MergeInto(c.Context(), scope, sourceID, targetID)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogIntake("client_merge", "client", targetID.Hex(), c, map[string]interface{}{
			"source_id": sourceID.Hex(),
		})
		basehdl.HandleResponse(c, merged, nil)
		return nil
	})
}

// HandleDedupeCheck xử lý POST /clients/dedupe-check.
// Chỉ tư vấn: trả về match (nếu có) để người dùng quyết định trước khi tạo hồ sơ.
func (h *ClientHandler) HandleDedupeCheck(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		scope, err := scopeFromContext(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input intakedto.DedupeCheckInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		match, err := h.DedupeService.FindExisting(c.Context(), scope,
			intakesvc.NormalizePhoneDigits(input.Phone),
			intakesvc.NameDobHash(input.FirstName, input.LastName, input.DateOfBirth),
		)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"match": match}, nil)
		return nil
	})
}
