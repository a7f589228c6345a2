package service

import (
	"fmt"
	"time"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

const (
	minLeaseMonths = 1
	maxLeaseMonths = 120

	// maxAmount bounds every money field, in minor currency units.
	maxAmount = int64(100_000_000)

	// leaseDurationTolerance allows the declared duration to differ from
	// the calendar span by at most one month.
	leaseDurationTolerance = 1
)

func validateParties(landlordID, tenantID uint) error {
	if landlordID == tenantID {
		return fmt.Errorf("%w: landlord and tenant must be different users", ErrInvalidInput)
	}
	return nil
}

func validateDates(signed, effective, expiry time.Time, leaseDuration int) error {
	if signed.IsZero() || effective.IsZero() || expiry.IsZero() {
		return fmt.Errorf("%w: signed, effective and expiry dates are required", ErrInvalidInput)
	}
	if effective.Before(signed) {
		return fmt.Errorf("%w: effective date cannot be earlier than signed date", ErrInvalidInput)
	}
	if !expiry.After(effective) {
		return fmt.Errorf("%w: expiry date must be after effective date", ErrInvalidInput)
	}
	if leaseDuration < minLeaseMonths || leaseDuration > maxLeaseMonths {
		return fmt.Errorf("%w: lease duration must be between %d and %d months", ErrInvalidInput, minLeaseMonths, maxLeaseMonths)
	}
	span := monthSpan(effective, expiry)
	if diff := span - leaseDuration; diff < -leaseDurationTolerance || diff > leaseDurationTolerance {
		return fmt.Errorf("%w: lease duration %d does not match the %d month span between effective and expiry dates", ErrInvalidInput, leaseDuration, span)
	}
	return nil
}

func validateMoney(monthlyRent, deposit, managementFee, otherFees int64) error {
	if monthlyRent <= 0 || monthlyRent > maxAmount {
		return fmt.Errorf("%w: monthly rent must be positive and within limit", ErrInvalidInput)
	}
	for _, amount := range []struct {
		name  string
		value int64
	}{
		{"deposit", deposit},
		{"management fee", managementFee},
		{"other fees", otherFees},
	} {
		if amount.value < 0 || amount.value > maxAmount {
			return fmt.Errorf("%w: %s must be non-negative and within limit", ErrInvalidInput, amount.name)
		}
	}
	return nil
}

func validatePaymentPolicy(method model.PaymentMethod, paymentDay int) error {
	if !method.Valid() {
		return fmt.Errorf("%w: invalid payment method %q", ErrInvalidInput, method)
	}
	if paymentDay < 1 || paymentDay > 31 {
		return fmt.Errorf("%w: payment day must be between 1 and 31", ErrInvalidInput)
	}
	return nil
}

// monthSpan returns the number of whole calendar months between from and to.
func monthSpan(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// overlaps is the half-open interval test: [e1,x1) and [e2,x2) overlap
// iff e1 < x2 and e2 < x1.
func overlaps(e1, x1, e2, x2 time.Time) bool {
	return e1.Before(x2) && e2.Before(x1)
}
