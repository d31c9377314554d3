package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// StudentService owns the roster of a mess: membership windows, freeze
// state, and the occupancy counter on the mess itself.
type StudentService struct {
	db *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{db: db}
}

// ListStudents returns students visible to the caller, newest first.
// Owners are pinned to their bound mess; admins may filter by messID.
func (s *StudentService) ListStudents(p *auth.Principal, messID *uint) ([]models.Student, error) {
	query := s.db.Order("created_at desc")
	if !p.IsAdmin() {
		if p.MessID == nil {
			return []models.Student{}, nil
		}
		query = query.Where("mess_id = ?", *p.MessID)
	} else if messID != nil {
		query = query.Where("mess_id = ?", *messID)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("fetching students: %w", err)
	}
	return students, nil
}

// GetStudent returns one student, scope-checked.
func (s *StudentService) GetStudent(p *auth.Principal, id uint) (*models.Student, error) {
	return s.findStudent(s.db, p, id)
}

func (s *StudentService) findStudent(tx *gorm.DB, p *auth.Principal, id uint) (*models.Student, error) {
	var student models.Student
	if err := tx.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !p.CanAccessMess(student.MessID) {
		return nil, ErrForbidden
	}
	return &student, nil
}

// AddStudentInput carries the fields for enrolment.
type AddStudentInput struct {
	MessID   *uint
	Name     string
	Mobile   string
	Address  string
	Gender   string
	MealPlan models.MealPlan
	Fee      float64
	Remarks  string
}

// AddStudent enrols a student into the caller's mess (owners) or the given
// mess (admins). The add is rejected when the live student count has
// reached capacity; on success the occupancy counter is incremented
// atomically in the same transaction.
func (s *StudentService) AddStudent(p *auth.Principal, in AddStudentInput) (*models.Student, error) {
	if in.Name == "" || in.Mobile == "" {
		return nil, ErrMissingFields
	}

	var messID uint
	if !p.IsAdmin() {
		if p.MessID == nil {
			return nil, ErrMessRequired
		}
		messID = *p.MessID
	} else {
		if in.MessID == nil {
			return nil, ErrMessRequired
		}
		messID = *in.MessID
	}

	var student models.Student
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var mess models.Mess
		if err := tx.First(&mess, messID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Student{}).Where("mess_id = ?", messID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(mess.Capacity) {
			return ErrMessFull
		}

		student = models.Student{
			MessID:   messID,
			Name:     in.Name,
			Mobile:   in.Mobile,
			Address:  in.Address,
			Gender:   in.Gender,
			MealPlan: in.MealPlan,
			Fee:      in.Fee,
			Remarks:  in.Remarks,
		}
		if err := tx.Create(&student).Error; err != nil {
			return fmt.Errorf("creating student: %w", err)
		}

		return tx.Model(&models.Mess{}).Where("id = ?", messID).
			UpdateColumn("occupancy", gorm.Expr("occupancy + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateStudentInput carries partial-update fields; nil means unchanged.
// EndDate is the legacy alias for MembershipEnd and is normalized before
// persisting.
type UpdateStudentInput struct {
	Name          *string
	Mobile        *string
	Address       *string
	Gender        *string
	MealPlan      *models.MealPlan
	Fee           *float64
	Remarks       *string
	MembershipEnd *time.Time
	EndDate       *time.Time
}

// UpdateStudent applies a partial update. The owning mess never changes.
func (s *StudentService) UpdateStudent(p *auth.Principal, id uint, in UpdateStudentInput) (*models.Student, error) {
	student, err := s.findStudent(s.db, p, id)
	if err != nil {
		return nil, err
	}

	if in.MembershipEnd == nil && in.EndDate != nil {
		in.MembershipEnd = in.EndDate
	}

	if in.Name != nil {
		student.Name = *in.Name
	}
	if in.Mobile != nil {
		student.Mobile = *in.Mobile
	}
	if in.Address != nil {
		student.Address = *in.Address
	}
	if in.Gender != nil {
		student.Gender = *in.Gender
	}
	if in.MealPlan != nil {
		student.MealPlan = *in.MealPlan
	}
	if in.Fee != nil {
		student.Fee = *in.Fee
	}
	if in.Remarks != nil {
		student.Remarks = *in.Remarks
	}
	if in.MembershipEnd != nil {
		student.MembershipEnd = *in.MembershipEnd
	}

	if err := s.db.Omit(clause.Associations).Save(student).Error; err != nil {
		return nil, fmt.Errorf("updating student: %w", err)
	}
	return student, nil
}

// DeleteStudent removes a student, reverses all their payments from the
// mess revenue, deletes the payment records, and decrements occupancy.
// The whole sequence runs in one transaction.
func (s *StudentService) DeleteStudent(p *auth.Principal, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		student, err := s.findStudent(tx, p, id)
		if err != nil {
			return err
		}

		var total float64
		row := tx.Model(&models.Payment{}).
			Where("student_id = ?", student.ID).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&total); err != nil {
			return fmt.Errorf("summing payments: %w", err)
		}

		if total != 0 {
			if err := tx.Model(&models.Mess{}).Where("id = ?", student.MessID).
				UpdateColumn("revenue", gorm.Expr("revenue - ?", total)).Error; err != nil {
				return fmt.Errorf("reversing revenue: %w", err)
			}
		}

		if err := tx.Where("student_id = ?", student.ID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("deleting payments: %w", err)
		}

		if err := tx.Model(&models.Mess{}).Where("id = ?", student.MessID).
			UpdateColumn("occupancy", gorm.Expr("occupancy - ?", 1)).Error; err != nil {
			return err
		}

		return tx.Delete(student).Error
	})
}

// ToggleFreeze flips the freeze state. Freezing records the start and
// clears the end; unfreezing stamps the end. Billing and the membership
// countdown are not paused by a freeze.
func (s *StudentService) ToggleFreeze(p *auth.Principal, id uint) (*models.Student, error) {
	student, err := s.findStudent(s.db, p, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	student.IsFrozen = !student.IsFrozen
	if student.IsFrozen {
		student.FreezeStart = &now
		student.FreezeEnd = nil
	} else {
		student.FreezeEnd = &now
	}

	updates := map[string]interface{}{
		"is_frozen":    student.IsFrozen,
		"freeze_start": student.FreezeStart,
		"freeze_end":   student.FreezeEnd,
	}
	if err := s.db.Model(student).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("toggling freeze: %w", err)
	}
	return student, nil
}
