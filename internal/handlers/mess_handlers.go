package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/services"
)

// MessHandler handles mess registry endpoints (admin, detail also owner).
type MessHandler struct {
	messes *services.MessService
}

func NewMessHandler(messes *services.MessService) *MessHandler {
	return &MessHandler{messes: messes}
}

// List returns all messes with derived fields.
// GET /api/mess
func (h *MessHandler) List(c echo.Context) error {
	views, err := h.messes.ListMesses()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ListUnassigned returns messes without an owner.
// GET /api/mess/unassigned
func (h *MessHandler) ListUnassigned(c echo.Context) error {
	refs, err := h.messes.ListUnassigned()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refs)
}

// Get returns one mess.
// GET /api/mess/:id
func (h *MessHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	view, err := h.messes.GetMess(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

type createMessRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	OwnerID  *uint  `json:"owner_id"`
}

// Create creates a mess, optionally binding an owner.
// POST /api/mess
func (h *MessHandler) Create(c echo.Context) error {
	var req createMessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	mess, err := h.messes.CreateMess(services.CreateMessInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		Address:  req.Address,
		Contact:  req.Contact,
		OwnerID:  req.OwnerID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Mess created successfully",
		"mess":    mess,
	})
}

type assignOwnerRequest struct {
	OwnerID uint `json:"owner_id" validate:"required"`
}

// AssignOwner binds an owner to a mess.
// POST /api/mess/:id/assign-owner
func (h *MessHandler) AssignOwner(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req assignOwnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	mess, err := h.messes.AssignOwner(id, req.OwnerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Owner assigned to mess",
		"mess":    mess,
	})
}

type updateMessRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	Address  *string `json:"address"`
}

// Update applies a partial update.
// PUT /api/mess/:id
func (h *MessHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req updateMessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	mess, err := h.messes.UpdateMess(id, services.UpdateMessInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Mess updated successfully",
		"mess":    mess,
	})
}

// Delete removes a mess after unbinding its owner.
// DELETE /api/mess/:id
func (h *MessHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.messes.DeleteMess(id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Mess deleted successfully"})
}
