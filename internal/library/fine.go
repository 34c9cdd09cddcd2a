package library

import (
	"github.com/shopspring/decimal"

	"library-management-api/internal/models"
)

// FineScale to liczba miejsc po przecinku, do której zaokrąglana jest kara
const FineScale = 2

// ComputeFine oblicza karę za opóźnienie: pełne dni po terminie razy dzienna stawka.
// Zwrot w terminie lub przed nim daje zero. Ujemna stawka traktowana jest jak zero.
func ComputeFine(dueDate, returnDate models.Date, dailyRate decimal.Decimal) decimal.Decimal {
	overdueDays := dueDate.DaysUntil(returnDate)
	if overdueDays <= 0 || !dailyRate.IsPositive() {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(overdueDays))).Round(FineScale)
}
