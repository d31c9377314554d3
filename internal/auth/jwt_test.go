package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"trackmymess/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	messID := uint(3)
	user := &models.User{Username: "ravi", Role: models.RoleOwner, MessID: &messID}
	user.ID = 42

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "ravi" || claims.Role != models.RoleOwner {
		t.Errorf("claims = %+v", claims)
	}
	if claims.MessID == nil || *claims.MessID != messID {
		t.Errorf("mess id = %v, want %d", claims.MessID, messID)
	}
}

func TestTokenRejection(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{Username: "ravi", Role: models.RoleOwner}
	user.ID = 42
	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + strings.Repeat("A", len(parts[1])) + "." + parts[2]
		if _, err := manager.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute)
		expired, err := short.Generate(user)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if _, err := short.Validate(expired); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})
}

func TestPrincipalScope(t *testing.T) {
	messID := uint(3)

	tests := []struct {
		name   string
		p      Principal
		messID uint
		want   bool
	}{
		{"admin sees everything", Principal{Role: models.RoleAdmin}, 99, true},
		{"owner sees own mess", Principal{Role: models.RoleOwner, MessID: &messID}, 3, true},
		{"owner blocked elsewhere", Principal{Role: models.RoleOwner, MessID: &messID}, 4, false},
		{"unbound owner blocked", Principal{Role: models.RoleOwner}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.CanAccessMess(tt.messID); got != tt.want {
				t.Errorf("CanAccessMess(%d) = %v, want %v", tt.messID, got, tt.want)
			}
		})
	}
}
