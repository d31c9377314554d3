package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/middleware"
	"trackmymess/internal/models"
	"trackmymess/internal/services"
)

// PaymentHandler handles billing endpoints, scoped to the caller's mess.
type PaymentHandler struct {
	billing *services.BillingService
}

func NewPaymentHandler(billing *services.BillingService) *PaymentHandler {
	return &PaymentHandler{billing: billing}
}

// List returns payments visible to the caller with derived statuses.
// GET /api/payments?messId=&studentId=
func (h *PaymentHandler) List(c echo.Context) error {
	p := middleware.GetPrincipal(c)
	views, err := h.billing.ListPayments(p, uintQuery(c, "messId"), uintQuery(c, "studentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Get returns one payment.
// GET /api/payments/:id
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	view, err := h.billing.GetPayment(middleware.GetPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

type addPaymentRequest struct {
	StudentID   uint    `json:"student_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentMode string  `json:"payment_mode" validate:"omitempty,oneof=Cash UPI 'Bank Transfer' Card"`
	Note        string  `json:"note"`
}

// Add records a payment for the current month.
// POST /api/payments
func (h *PaymentHandler) Add(c echo.Context) error {
	var req addPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	payment, err := h.billing.AddPayment(middleware.GetPrincipal(c), services.AddPaymentInput{
		StudentID: req.StudentID,
		Amount:    req.Amount,
		Mode:      models.PaymentMode(req.PaymentMode),
		Note:      req.Note,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// Delete removes a payment, reversing only its revenue effect.
// DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.billing.DeletePayment(middleware.GetPrincipal(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Payment deleted successfully"})
}
