package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/services"
)

// OwnerHandler handles owner account management (admin only).
type OwnerHandler struct {
	owners *services.OwnerService
}

func NewOwnerHandler(owners *services.OwnerService) *OwnerHandler {
	return &OwnerHandler{owners: owners}
}

// List returns all owner accounts.
// GET /api/owners
func (h *OwnerHandler) List(c echo.Context) error {
	views, err := h.owners.ListOwners()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Get returns one owner account.
// GET /api/owners/:id
func (h *OwnerHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	view, err := h.owners.GetOwner(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

type createOwnerRequest struct {
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password" validate:"required,min=6"`
	Name               string `json:"name"`
	Contact            string `json:"contact"`
	Email              string `json:"email" validate:"omitempty,email"`
	MessID             *uint  `json:"mess_id"`
	SubscriptionExpiry string `json:"subscription_expiry"`
}

// Create creates an owner account, optionally bound to an unowned mess.
// POST /api/owners
func (h *OwnerHandler) Create(c echo.Context) error {
	var req createOwnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	expiry, err := parseDate(req.SubscriptionExpiry)
	if err != nil {
		return err
	}

	view, err := h.owners.CreateOwner(services.CreateOwnerInput{
		Username:           req.Username,
		Password:           req.Password,
		Name:               req.Name,
		Contact:            req.Contact,
		Email:              req.Email,
		MessID:             req.MessID,
		SubscriptionExpiry: expiry,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, view)
}

type updateOwnerRequest struct {
	Name     *string `json:"name"`
	Contact  *string `json:"contact"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`

	// MessID 0 unassigns the current mess; nil leaves the binding alone.
	MessID *uint `json:"mess_id"`

	// SubscriptionExpiry "" clears the expiry; nil leaves it alone.
	SubscriptionExpiry *string `json:"subscription_expiry"`
}

// Update applies a partial update, keeping the mess binding symmetric.
// PUT /api/owners/:id
func (h *OwnerHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req updateOwnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := services.UpdateOwnerInput{
		Name:     req.Name,
		Contact:  req.Contact,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.MessID != nil {
		if *req.MessID == 0 {
			in.ClearMess = true
		} else {
			in.MessID = req.MessID
		}
	}
	if req.SubscriptionExpiry != nil {
		if *req.SubscriptionExpiry == "" {
			in.ClearSubscription = true
		} else {
			expiry, err := parseDate(*req.SubscriptionExpiry)
			if err != nil {
				return err
			}
			in.SubscriptionExpiry = expiry
		}
	}

	view, err := h.owners.UpdateOwner(id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Owner updated",
		"owner":   view,
	})
}

type toggleActiveRequest struct {
	ExtendDays         int    `json:"extend_days" validate:"omitempty,gt=0"`
	SubscriptionExpiry string `json:"subscription_expiry"`
}

// ToggleActive flips the account's active flag, optionally adjusting the
// subscription expiry.
// PUT /api/owners/:id/toggle-active
func (h *OwnerHandler) ToggleActive(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req toggleActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	expiry, err := parseDate(req.SubscriptionExpiry)
	if err != nil {
		return err
	}

	view, err := h.owners.ToggleActive(id, services.ToggleActiveInput{
		ExtendDays:         req.ExtendDays,
		SubscriptionExpiry: expiry,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Owner active toggled",
		"owner":   view,
	})
}
