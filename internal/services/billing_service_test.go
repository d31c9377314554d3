package services

import (
	"errors"
	"testing"
	"time"

	"trackmymess/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)

	tests := []struct {
		name          string
		amount, fee   float64
		membershipEnd time.Time
		want          string
	}{
		{"exact fee is paid", 1000, 1000, future, StatusPaid},
		{"under fee is partial", 600, 1000, future, StatusPartial},
		{"over fee is error", 1200, 1000, future, StatusError},
		{"lapsed membership overrides partial", 600, 1000, past, StatusOverdue},
		{"lapsed membership overrides error", 1200, 1000, past, StatusOverdue},
		{"paid survives lapsed membership", 1000, 1000, past, StatusPaid},
		{"zero membership end never overdue", 600, 1000, time.Time{}, StatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.amount, tt.fee, tt.membershipEnd, now)
			if got != tt.want {
				t.Errorf("DeriveStatus(%v, %v) = %q, want %q", tt.amount, tt.fee, got, tt.want)
			}
		})
	}
}

func TestExtendMembership(t *testing.T) {
	now := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)

	t.Run("lapsed end extends from now", func(t *testing.T) {
		current := now.AddDate(0, 0, -20)
		got := ExtendMembership(current, now)
		want := now.AddDate(0, 0, models.MembershipDays)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("future end stacks on top", func(t *testing.T) {
		current := now.AddDate(0, 0, 5)
		got := ExtendMembership(current, now)
		want := current.AddDate(0, 0, models.MembershipDays)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestAddPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db)
	mess := seedMess(t, db, "Green Valley", 10)
	student := seedStudent(t, db, mess.ID, "Arjun", 1000)

	payment, err := svc.AddPayment(adminPrincipal(), AddPaymentInput{
		StudentID: student.ID,
		Amount:    1000,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	now := time.Now()
	if payment.Month != MonthKey(now) {
		t.Errorf("payment month = %q, want current month %q", payment.Month, MonthKey(now))
	}
	if payment.PaymentMode != models.PaymentModeCash {
		t.Errorf("payment mode = %q, want default cash", payment.PaymentMode)
	}

	if got := mustMess(t, db, mess.ID); got.Revenue != 1000 {
		t.Errorf("revenue = %v, want 1000", got.Revenue)
	}

	updated := mustStudent(t, db, student.ID)
	if updated.PaymentStatus[MonthKey(now)] != StatusPaid {
		t.Errorf("status map[%s] = %q, want paid", MonthKey(now), updated.PaymentStatus[MonthKey(now)])
	}

	// The original end was about 30 days out, so the new end stacks a
	// second period on top of it.
	wantEnd := student.MembershipEnd.AddDate(0, 0, models.MembershipDays)
	if !closeTo(updated.MembershipEnd, wantEnd, time.Minute) {
		t.Errorf("membership end = %v, want about %v", updated.MembershipEnd, wantEnd)
	}
}

func TestAddPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db)
	mess := seedMess(t, db, "Green Valley", 10)
	student := seedStudent(t, db, mess.ID, "Arjun", 1000)

	tests := []struct {
		name string
		in   AddPaymentInput
		want error
	}{
		{"missing student", AddPaymentInput{Amount: 500}, ErrMissingFields},
		{"zero amount", AddPaymentInput{StudentID: student.ID}, ErrMissingFields},
		{"negative amount", AddPaymentInput{StudentID: student.ID, Amount: -10}, ErrInvalidAmount},
		{"unknown student", AddPaymentInput{StudentID: 9999, Amount: 500}, ErrStudentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPayment(adminPrincipal(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("other mess owner rejected", func(t *testing.T) {
		_, err := svc.AddPayment(ownerPrincipal(7, mess.ID+100), AddPaymentInput{
			StudentID: student.ID,
			Amount:    500,
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want %v", err, ErrForbidden)
		}
	})
}

// Deleting a payment reverses revenue but leaves the membership extension
// and the credited month in place.
func TestDeletePaymentIsNotFullUndo(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db)
	mess := seedMess(t, db, "Green Valley", 10)
	student := seedStudent(t, db, mess.ID, "Arjun", 1000)

	payment, err := svc.AddPayment(adminPrincipal(), AddPaymentInput{
		StudentID: student.ID,
		Amount:    1000,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	extended := mustStudent(t, db, student.ID)

	if err := svc.DeletePayment(adminPrincipal(), payment.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}

	if got := mustMess(t, db, mess.ID); got.Revenue != 0 {
		t.Errorf("revenue = %v, want 0 after delete", got.Revenue)
	}

	after := mustStudent(t, db, student.ID)
	if !after.MembershipEnd.Equal(extended.MembershipEnd) {
		t.Errorf("membership end changed on delete: %v -> %v", extended.MembershipEnd, after.MembershipEnd)
	}
	if after.PaymentStatus[payment.Month] != StatusPaid {
		t.Errorf("status map[%s] = %q, want paid preserved", payment.Month, after.PaymentStatus[payment.Month])
	}

	if err := svc.DeletePayment(adminPrincipal(), payment.ID); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("second delete err = %v, want %v", err, ErrPaymentNotFound)
	}
}

func TestListPaymentsStatusAndScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db)
	messA := seedMess(t, db, "Green Valley", 10)
	messB := seedMess(t, db, "Hilltop", 10)
	studentA := seedStudent(t, db, messA.ID, "Arjun", 1000)
	studentB := seedStudent(t, db, messB.ID, "Bina", 1000)

	for _, in := range []AddPaymentInput{
		{StudentID: studentA.ID, Amount: 600},
		{StudentID: studentB.ID, Amount: 1000},
	} {
		if _, err := svc.AddPayment(adminPrincipal(), in); err != nil {
			t.Fatalf("AddPayment: %v", err)
		}
	}

	t.Run("admin sees all with derived status", func(t *testing.T) {
		views, err := svc.ListPayments(adminPrincipal(), nil, nil)
		if err != nil {
			t.Fatalf("ListPayments: %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("got %d payments, want 2", len(views))
		}
		byStudent := map[uint]string{}
		for _, v := range views {
			byStudent[v.StudentID] = v.Status
		}
		if byStudent[studentA.ID] != StatusPartial {
			t.Errorf("partial payer status = %q", byStudent[studentA.ID])
		}
		if byStudent[studentB.ID] != StatusPaid {
			t.Errorf("full payer status = %q", byStudent[studentB.ID])
		}
	})

	t.Run("owner pinned to own mess", func(t *testing.T) {
		views, err := svc.ListPayments(ownerPrincipal(7, messB.ID), nil, nil)
		if err != nil {
			t.Fatalf("ListPayments: %v", err)
		}
		if len(views) != 1 || views[0].StudentID != studentB.ID {
			t.Errorf("owner listing = %+v, want only own mess", views)
		}
	})

	t.Run("admin mess filter", func(t *testing.T) {
		views, err := svc.ListPayments(adminPrincipal(), &messA.ID, nil)
		if err != nil {
			t.Fatalf("ListPayments: %v", err)
		}
		if len(views) != 1 || views[0].MessID != messA.ID {
			t.Errorf("filtered listing = %+v", views)
		}
	})
}

func TestGetPaymentDetailStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db)
	mess := seedMess(t, db, "Green Valley", 10)
	student := seedStudent(t, db, mess.ID, "Arjun", 1000)

	payment, err := svc.AddPayment(adminPrincipal(), AddPaymentInput{
		StudentID: student.ID,
		Amount:    600,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	// Detail status comes from the stored month map, which recording
	// always marks paid.
	view, err := svc.GetPayment(adminPrincipal(), payment.ID)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if view.Status != StatusPaid {
		t.Errorf("detail status = %q, want paid from stored map", view.Status)
	}
	if view.Month != MonthDisplay(payment.Month) {
		t.Errorf("month = %q, want %q", view.Month, MonthDisplay(payment.Month))
	}

	t.Run("scope check", func(t *testing.T) {
		_, err := svc.GetPayment(ownerPrincipal(7, mess.ID+100), payment.ID)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want %v", err, ErrForbidden)
		}
	})
}
