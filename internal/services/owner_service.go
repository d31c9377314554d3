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

// OwnerService manages owner accounts and their mess bindings (admin only).
type OwnerService struct {
	db *gorm.DB
}

func NewOwnerService(db *gorm.DB) *OwnerService {
	return &OwnerService{db: db}
}

// OwnerView is the read model for owner listings.
type OwnerView struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	Name               string     `json:"name"`
	Contact            string     `json:"contact"`
	Email              string     `json:"email"`
	IsActive           bool       `json:"is_active"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	MessID             *uint      `json:"mess_id"`
	MessName           *string    `json:"mess_name"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func ownerView(o models.User) OwnerView {
	v := OwnerView{
		ID:                 o.ID,
		Username:           o.Username,
		Name:               o.Name,
		Contact:            o.Contact,
		Email:              o.Email,
		IsActive:           o.IsActive,
		SubscriptionExpiry: o.SubscriptionExpiry,
		MessID:             o.MessID,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.Mess != nil {
		v.MessName = &o.Mess.Name
	}
	return v
}

// ListOwners returns all owner accounts with their mess names.
func (s *OwnerService) ListOwners() ([]OwnerView, error) {
	var owners []models.User
	if err := s.db.Preload("Mess").Where("role = ?", models.RoleOwner).Find(&owners).Error; err != nil {
		return nil, fmt.Errorf("fetching owners: %w", err)
	}

	views := make([]OwnerView, 0, len(owners))
	for _, o := range owners {
		views = append(views, ownerView(o))
	}
	return views, nil
}

// GetOwner returns a single owner account.
func (s *OwnerService) GetOwner(id uint) (*OwnerView, error) {
	owner, err := s.findOwner(s.db, id)
	if err != nil {
		return nil, err
	}
	v := ownerView(*owner)
	return &v, nil
}

func (s *OwnerService) findOwner(tx *gorm.DB, id uint) (*models.User, error) {
	var owner models.User
	if err := tx.Preload("Mess").First(&owner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	if owner.Role != models.RoleOwner {
		return nil, ErrOwnerNotFound
	}
	return &owner, nil
}

// CreateOwnerInput carries the fields for owner creation.
type CreateOwnerInput struct {
	Username           string
	Password           string
	Name               string
	Contact            string
	Email              string
	MessID             *uint
	SubscriptionExpiry *time.Time
}

// CreateOwner creates an owner account, optionally binding it to an
// unowned mess. Binding failure rolls the account creation back.
func (s *OwnerService) CreateOwner(in CreateOwnerInput) (*OwnerView, error) {
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var owner models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}

		var mess *models.Mess
		if in.MessID != nil {
			mess = &models.Mess{}
			if err := tx.First(mess, *in.MessID).Error; err != nil {
				return ErrMessNotFound
			}
			if mess.OwnerID != nil {
				return ErrMessAlreadyOwned
			}
		}

		owner = models.User{
			Username:           in.Username,
			Password:           hash,
			Role:               models.RoleOwner,
			Name:               in.Name,
			Contact:            in.Contact,
			Email:              in.Email,
			MessID:             in.MessID,
			SubscriptionExpiry: in.SubscriptionExpiry,
			IsActive:           true,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("creating owner: %w", err)
		}

		if mess != nil {
			if err := tx.Model(mess).Update("owner_id", owner.ID).Error; err != nil {
				return fmt.Errorf("binding mess: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := ownerView(owner)
	return &v, nil
}

// UpdateOwnerInput carries partial-update fields; nil means unchanged. A
// MessID pointing at 0 unassigns the current mess.
type UpdateOwnerInput struct {
	Name               *string
	Contact            *string
	Email              *string
	Password           *string
	MessID             *uint
	ClearMess          bool
	SubscriptionExpiry *time.Time
	ClearSubscription  bool
}

// UpdateOwner applies a partial update, keeping the mess relationship
// symmetric on reassignment.
func (s *OwnerService) UpdateOwner(id uint, in UpdateOwnerInput) (*OwnerView, error) {
	var updated models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		owner, err := s.findOwner(tx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			owner.Name = *in.Name
		}
		if in.Contact != nil {
			owner.Contact = *in.Contact
		}
		if in.Email != nil {
			owner.Email = *in.Email
		}
		if in.Password != nil {
			if err := auth.ValidatePassword(*in.Password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}
			owner.Password = hash
		}
		if in.ClearSubscription {
			owner.SubscriptionExpiry = nil
		} else if in.SubscriptionExpiry != nil {
			owner.SubscriptionExpiry = in.SubscriptionExpiry
		}

		switch {
		case in.ClearMess:
			if owner.MessID != nil {
				if err := tx.Model(&models.Mess{}).Where("id = ?", *owner.MessID).Update("owner_id", nil).Error; err != nil {
					return err
				}
				owner.MessID = nil
			}
		case in.MessID != nil:
			var mess models.Mess
			if err := tx.First(&mess, *in.MessID).Error; err != nil {
				return ErrMessNotFound
			}
			if mess.OwnerID != nil && *mess.OwnerID != owner.ID {
				return ErrMessAlreadyOwned
			}

			// unlink previous mess if switching
			if owner.MessID != nil && *owner.MessID != mess.ID {
				if err := tx.Model(&models.Mess{}).Where("id = ?", *owner.MessID).Update("owner_id", nil).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&mess).Update("owner_id", owner.ID).Error; err != nil {
				return err
			}
			owner.MessID = &mess.ID
		}

		if err := tx.Omit(clause.Associations).Save(owner).Error; err != nil {
			return fmt.Errorf("updating owner: %w", err)
		}
		updated = *owner
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := ownerView(updated)
	return &v, nil
}

// ToggleActiveInput optionally adjusts the subscription when reactivating.
type ToggleActiveInput struct {
	ExtendDays         int
	SubscriptionExpiry *time.Time
}

// ToggleActive flips the account's active flag. An explicit expiry wins
// over ExtendDays, which extends from whichever is later of now and the
// current expiry.
func (s *OwnerService) ToggleActive(id uint, in ToggleActiveInput) (*OwnerView, error) {
	var updated models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		owner, err := s.findOwner(tx, id)
		if err != nil {
			return err
		}

		owner.IsActive = !owner.IsActive

		now := time.Now()
		if in.SubscriptionExpiry != nil {
			owner.SubscriptionExpiry = in.SubscriptionExpiry
		} else if in.ExtendDays > 0 {
			base := now
			if owner.SubscriptionExpiry != nil && owner.SubscriptionExpiry.After(now) {
				base = *owner.SubscriptionExpiry
			}
			expiry := base.AddDate(0, 0, in.ExtendDays)
			owner.SubscriptionExpiry = &expiry
		}

		if err := tx.Omit(clause.Associations).Save(owner).Error; err != nil {
			return fmt.Errorf("toggling owner: %w", err)
		}
		updated = *owner
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := ownerView(updated)
	return &v, nil
}
