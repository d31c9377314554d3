package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// PaymentStatus values derived on read paths.
const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusError   = "error"
	StatusOverdue = "overdue"
	StatusUnpaid  = "unpaid"
)

// BillingService records payments and applies their side effects: mess
// revenue, membership extension and the per-month status map. Payment
// records are the authoritative source for amounts; the status map is a
// write-through record of credited months.
type BillingService struct {
	db *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// DeriveStatus compares a payment amount against the student's monthly
// fee: equal is paid, less is partial, more is an error. A lapsed
// membership overrides anything that is not paid to overdue.
func DeriveStatus(amount, fee float64, membershipEnd, now time.Time) string {
	status := StatusPaid
	if amount < fee {
		status = StatusPartial
	} else if amount > fee {
		status = StatusError
	}
	if !membershipEnd.IsZero() && membershipEnd.Before(now) && status != StatusPaid {
		status = StatusOverdue
	}
	return status
}

// ExtendMembership returns the membership end after crediting one period:
// one membership length past whichever is later of now and the current
// end. Partial payments extend by the same fixed period as full ones.
func ExtendMembership(current, now time.Time) time.Time {
	base := now
	if current.After(now) {
		base = current
	}
	return base.AddDate(0, 0, models.MembershipDays)
}

// AddPaymentInput carries the fields for recording a payment. The billing
// month is never caller-supplied.
type AddPaymentInput struct {
	StudentID uint
	Amount    float64
	Mode      models.PaymentMode
	Note      string
}

// AddPayment records a payment attributed to the current calendar month
// and applies its side effects in one transaction: revenue is incremented
// atomically, the membership window is extended by one period, and the
// month is marked paid in the student's status map regardless of whether
// the amount covers the fee.
func (s *BillingService) AddPayment(p *auth.Principal, in AddPaymentInput) (*models.Payment, error) {
	if in.StudentID == 0 || in.Amount == 0 {
		return nil, ErrMissingFields
	}
	if in.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	month := MonthKey(now)

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, in.StudentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		if !p.CanAccessMess(student.MessID) {
			return ErrForbidden
		}

		mode := in.Mode
		if mode == "" {
			mode = models.PaymentModeCash
		}

		payment = models.Payment{
			MessID:      student.MessID,
			StudentID:   student.ID,
			Amount:      in.Amount,
			Month:       month,
			PaymentDate: now,
			PaymentMode: mode,
			Note:        in.Note,
			RecordedBy:  p.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("creating payment: %w", err)
		}

		if err := tx.Model(&models.Mess{}).Where("id = ?", student.MessID).
			UpdateColumn("revenue", gorm.Expr("revenue + ?", in.Amount)).Error; err != nil {
			return fmt.Errorf("incrementing revenue: %w", err)
		}

		// Month is always the current month here, but the guard keeps the
		// extension tied to current-month payments should that change.
		updates := map[string]interface{}{}
		if month == MonthKey(now) {
			updates["membership_end"] = ExtendMembership(student.MembershipEnd, now)
		}

		status := student.PaymentStatus
		if status == nil {
			status = map[string]string{}
		}
		status[month] = StatusPaid
		updates["payment_status"] = status

		if err := tx.Model(&student).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating student billing state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment reverses the payment's revenue effect and removes the
// record. The membership extension and the credited month in the status
// map deliberately stand; payment deletion is not a full undo.
func (s *BillingService) DeletePayment(p *auth.Principal, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if !p.CanAccessMess(payment.MessID) {
			return ErrForbidden
		}

		if err := tx.Model(&models.Mess{}).Where("id = ?", payment.MessID).
			UpdateColumn("revenue", gorm.Expr("revenue - ?", payment.Amount)).Error; err != nil {
			return fmt.Errorf("reversing revenue: %w", err)
		}

		return tx.Delete(&payment).Error
	})
}

// PaymentView is the derived read model for payment listings.
type PaymentView struct {
	ID          uint               `json:"id"`
	StudentID   uint               `json:"student_id"`
	StudentName string             `json:"student_name"`
	MessID      uint               `json:"mess_id"`
	MessName    string             `json:"mess_name"`
	Amount      float64            `json:"amount"`
	Date        string             `json:"date"`
	Mode        models.PaymentMode `json:"mode"`
	Status      string             `json:"status"`
	Month       string             `json:"month"`
	MonthlyFee  float64            `json:"monthly_fee"`
}

// ListPayments returns payments visible to the caller, newest first, with
// status derived from the payment amount against the student's fee.
func (s *BillingService) ListPayments(p *auth.Principal, messID, studentID *uint) ([]PaymentView, error) {
	query := s.db.Preload("Student").Preload("Mess").Order("payment_date desc")
	if !p.IsAdmin() {
		if p.MessID == nil {
			return []PaymentView{}, nil
		}
		query = query.Where("mess_id = ?", *p.MessID)
	} else if messID != nil {
		query = query.Where("mess_id = ?", *messID)
	}
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("fetching payments: %w", err)
	}

	now := time.Now()
	views := make([]PaymentView, 0, len(payments))
	for _, pay := range payments {
		view := paymentView(pay)
		view.Status = DeriveStatus(pay.Amount, pay.Student.Fee, pay.Student.MembershipEnd, now)
		views = append(views, view)
	}
	return views, nil
}

// GetPayment returns one payment, scope-checked. Detail status is read
// from the student's stored month map (defaulting to unpaid) with the
// same overdue override as the listing.
func (s *BillingService) GetPayment(p *auth.Principal, id uint) (*PaymentView, error) {
	var payment models.Payment
	if err := s.db.Preload("Student").Preload("Mess").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if !p.CanAccessMess(payment.MessID) {
		return nil, ErrForbidden
	}

	status := StatusUnpaid
	if v, ok := payment.Student.PaymentStatus[payment.Month]; ok && v != "" {
		status = v
	}
	now := time.Now()
	if payment.Student.IsOverdue(now) && status != StatusPaid {
		status = StatusOverdue
	}

	view := paymentView(payment)
	view.Status = status
	return &view, nil
}

func paymentView(p models.Payment) PaymentView {
	return PaymentView{
		ID:          p.ID,
		StudentID:   p.StudentID,
		StudentName: p.Student.Name,
		MessID:      p.MessID,
		MessName:    p.Mess.Name,
		Amount:      p.Amount,
		Date:        p.PaymentDate.Format("2006-01-02"),
		Mode:        p.PaymentMode,
		Month:       MonthDisplay(p.Month),
		MonthlyFee:  p.Student.Fee,
	}
}
