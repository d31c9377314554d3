package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"trackmymess/internal/models"
)

// MessService owns mess entities and the bidirectional owner binding.
type MessService struct {
	db *gorm.DB
}

func NewMessService(db *gorm.DB) *MessService {
	return &MessService{db: db}
}

// MessView is the derived read model for listing and detail endpoints.
type MessView struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Contact   string  `json:"contact"`
	Capacity  int     `json:"capacity"`
	Occupancy int     `json:"occupancy"`
	OwnerName *string `json:"owner_name"`
	Revenue   float64 `json:"revenue"`
}

func messView(m models.Mess) MessView {
	v := MessView{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		Contact:   m.ContactOrOwner(),
		Capacity:  m.Capacity,
		Occupancy: m.Occupancy,
		Revenue:   m.Revenue,
	}
	if m.Owner != nil {
		v.OwnerName = &m.Owner.Name
	}
	return v
}

// ListMesses returns all messes with derived contact and owner fields.
func (s *MessService) ListMesses() ([]MessView, error) {
	var messes []models.Mess
	if err := s.db.Preload("Owner").Find(&messes).Error; err != nil {
		return nil, fmt.Errorf("fetching messes: %w", err)
	}

	views := make([]MessView, 0, len(messes))
	for _, m := range messes {
		views = append(views, messView(m))
	}
	return views, nil
}

// MessRef is a minimal id/name pair for selection lists.
type MessRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListUnassigned returns messes that have no owner bound.
func (s *MessService) ListUnassigned() ([]MessRef, error) {
	var messes []models.Mess
	if err := s.db.Where("owner_id IS NULL").Find(&messes).Error; err != nil {
		return nil, fmt.Errorf("fetching unassigned messes: %w", err)
	}

	refs := make([]MessRef, 0, len(messes))
	for _, m := range messes {
		refs = append(refs, MessRef{ID: m.ID, Name: m.Name})
	}
	return refs, nil
}

// GetMess returns the derived view of a single mess.
func (s *MessService) GetMess(id uint) (*MessView, error) {
	var mess models.Mess
	if err := s.db.Preload("Owner").First(&mess, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessNotFound
		}
		return nil, err
	}
	v := messView(mess)
	return &v, nil
}

// CreateMessInput carries the fields for mess creation.
type CreateMessInput struct {
	Name     string
	Capacity int
	Address  string
	Contact  string
	OwnerID  *uint
}

// CreateMess creates a mess and, when an owner is given, binds both sides
// of the relationship. The whole sequence runs in one transaction so a
// failed owner bind rolls the mess creation back.
func (s *MessService) CreateMess(in CreateMessInput) (*models.Mess, error) {
	if in.Name == "" {
		return nil, ErrMissingFields
	}
	if in.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	var mess models.Mess
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owner *models.User
		if in.OwnerID != nil {
			owner = &models.User{}
			if err := tx.First(owner, *in.OwnerID).Error; err != nil || owner.Role != models.RoleOwner {
				return ErrInvalidOwner
			}
			var bound int64
			if err := tx.Model(&models.Mess{}).Where("owner_id = ?", owner.ID).Count(&bound).Error; err != nil {
				return err
			}
			if bound > 0 {
				return ErrOwnerAlreadyAssigned
			}
		}

		mess = models.Mess{
			Name:     in.Name,
			Capacity: in.Capacity,
			Address:  in.Address,
			Contact:  in.Contact,
			OwnerID:  in.OwnerID,
			IsActive: true,
		}
		if err := tx.Create(&mess).Error; err != nil {
			return fmt.Errorf("creating mess: %w", err)
		}

		if owner != nil {
			if err := tx.Model(owner).Update("mess_id", mess.ID).Error; err != nil {
				return fmt.Errorf("binding owner: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &mess, nil
}

// AssignOwner binds an owner to a mess, unbinding any previous owner of
// this mess first. Both sides of the relationship are kept symmetric.
func (s *MessService) AssignOwner(messID, ownerID uint) (*models.Mess, error) {
	var mess models.Mess
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&mess, messID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessNotFound
			}
			return err
		}

		var owner models.User
		if err := tx.First(&owner, ownerID).Error; err != nil || owner.Role != models.RoleOwner {
			return ErrInvalidOwner
		}

		var bound int64
		if err := tx.Model(&models.Mess{}).Where("owner_id = ?", owner.ID).Count(&bound).Error; err != nil {
			return err
		}
		if bound > 0 {
			return ErrOwnerAlreadyAssigned
		}

		if mess.OwnerID != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", *mess.OwnerID).Update("mess_id", nil).Error; err != nil {
				return fmt.Errorf("unbinding previous owner: %w", err)
			}
		}

		if err := tx.Model(&mess).Update("owner_id", owner.ID).Error; err != nil {
			return err
		}
		return tx.Model(&owner).Update("mess_id", mess.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &mess, nil
}

// UpdateMessInput carries the partial-update fields; nil means unchanged.
type UpdateMessInput struct {
	Name     *string
	Capacity *int
	Address  *string
}

// UpdateMess applies a partial update. Capacity is not validated against
// current occupancy; adds are rejected at the roster until occupancy fits.
func (s *MessService) UpdateMess(id uint, in UpdateMessInput) (*models.Mess, error) {
	var mess models.Mess
	if err := s.db.First(&mess, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, ErrInvalidCapacity
		}
		updates["capacity"] = *in.Capacity
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}

	if len(updates) > 0 {
		if err := s.db.Model(&mess).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating mess: %w", err)
		}
	}
	return &mess, nil
}

// DeleteMess unbinds the owner and deletes the mess. Students and payments
// are not cascaded.
func (s *MessService) DeleteMess(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var mess models.Mess
		if err := tx.First(&mess, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessNotFound
			}
			return err
		}

		if mess.OwnerID != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", *mess.OwnerID).Update("mess_id", nil).Error; err != nil {
				return fmt.Errorf("unbinding owner: %w", err)
			}
		}

		return tx.Delete(&mess).Error
	})
}
