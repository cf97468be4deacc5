// Package payroll turns hours into money.
package payroll

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Input bounds enforced by request validation. A day's pay stays far below
// the int64 range with these.
const (
	MaxHourlyRate = 10_000_000
	MaxHours      = 24
	MaxAllowance  = 10_000_000
)

// HolidayMultiplier applies to the hourly part of a holiday shift.
var HolidayMultiplier = decimal.NewFromFloat(1.5)

var maxPay = decimal.NewFromInt(math.MaxInt64)

// DailyPay returns round(rate * hours * (1.5 if holiday) + allowance) in whole
// currency units. No work (rate or hours <= 0) pays nothing, allowance included.
// Results beyond the int64 range saturate at math.MaxInt64.
func DailyPay(hourlyRate, hours float64, isHoliday bool, allowance float64) int64 {
	if hourlyRate <= 0 || hours <= 0 {
		return 0
	}
	if allowance < 0 {
		allowance = 0
	}
	amount := decimal.NewFromFloat(hourlyRate).Mul(decimal.NewFromFloat(hours))
	if isHoliday {
		amount = amount.Mul(HolidayMultiplier)
	}
	amount = amount.Add(decimal.NewFromFloat(allowance)).Round(0)
	if !amount.LessThan(maxPay) {
		return math.MaxInt64
	}
	return amount.IntPart()
}

// AddPay sums two pay amounts, saturating at math.MaxInt64. Negative
// amounts count as zero.
func AddPay(a, b int64) int64 {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// WorkHours is the elapsed time between check-in and check-out in hours.
// A check-out before the check-in counts as zero.
func WorkHours(checkIn, checkOut time.Time) float64 {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return d.Hours()
}
