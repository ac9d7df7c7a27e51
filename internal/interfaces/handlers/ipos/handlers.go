package ipos

import (
	"stockex-backend/internal/application/allotment"
	iposvc "stockex-backend/internal/application/ipo"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"
	"stockex-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Rounds    *iposvc.Service
	Allotment *allotment.Service
}

type applyRequest struct {
	RequestedShares int `json:"requested_shares" validate:"required,gt=0"`
}

func roundID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// List GET /api/v1/ipos?status=open
func (h *Handlers) List(c *fiber.Ctx) error {
	rounds, err := h.Rounds.ListRounds(c.UserContext(), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "IPO rounds retrieved successfully", rounds, fiber.Map{"count": len(rounds)})
}

// Get GET /api/v1/ipos/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := roundID(c)
	if !ok {
		return response.Error(c, "Invalid round id", fiber.StatusBadRequest, nil)
	}
	r, err := h.Rounds.GetRound(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "IPO round retrieved successfully", r, nil)
}

// Create POST /api/v1/ipos (admin)
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req iposvc.CreateRoundInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(req); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.Rounds.CreateRound(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "IPO round created successfully", r, nil)
}

// Apply POST /api/v1/ipos/:id/apply
func (h *Handlers) Apply(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := roundID(c)
	if !ok {
		return response.Error(c, "Invalid round id", fiber.StatusBadRequest, nil)
	}
	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(req); err != nil {
		return response.FromError(c, err)
	}
	app, err := h.Rounds.Apply(c.UserContext(), userID, id, req.RequestedShares)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Application submitted successfully", app, nil)
}

// Applications GET /api/v1/ipos/:id/applications (admin)
func (h *Handlers) Applications(c *fiber.Ctx) error {
	id, ok := roundID(c)
	if !ok {
		return response.Error(c, "Invalid round id", fiber.StatusBadRequest, nil)
	}
	apps, err := h.Rounds.ListApplications(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Applications retrieved successfully", apps, fiber.Map{"count": len(apps)})
}

// MyApplications GET /api/v1/ipos/applications/me
func (h *Handlers) MyApplications(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	apps, err := h.Rounds.ListUserApplications(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Applications retrieved successfully", apps, fiber.Map{"count": len(apps)})
}

// Allot POST /api/v1/ipos/:id/allot (admin) runs the allotment for a closed round now.
func (h *Handlers) Allot(c *fiber.Ctx) error {
	id, ok := roundID(c)
	if !ok {
		return response.Error(c, "Invalid round id", fiber.StatusBadRequest, nil)
	}
	report, err := h.Allotment.Settle(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "IPO round allotted successfully", report, nil)
}
