// Package loans provides amortizing loan schedules and the mortgage and
// auto-loan calculators built on top of them.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/datetime"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"github.com/iwvelando/calcmaster/pkg/projection"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Period             int     `json:"period"`
	Date               string  `json:"date,omitempty"`
	Opening            float64 `json:"opening"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Schedule is a complete amortization schedule.
type Schedule struct {
	// Payment is the fixed scheduled payment, excluding extra principal.
	Payment        float64   `json:"payment"`
	Payments       []Payment `json:"payments"`
	TotalInterest  float64   `json:"totalInterest"`
	TotalPrincipal float64   `json:"totalPrincipal"`
	TotalPaid      float64   `json:"totalPaid"`
	// PayoffPeriod is the period of the final payment.
	PayoffPeriod int `json:"payoffPeriod"`
	// InterestSaved is the interest avoided relative to the plain schedule
	// when extra principal is paid.
	InterestSaved float64 `json:"interestSaved,omitempty"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
// A non-positive term, or a formula result that is not finite, yields 0.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	principal = mathutil.NonNegative(principal)
	annualInterestRate = mathutil.NonNegative(annualInterestRate)

	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := PeriodicRate(annualInterestRate)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	return mathutil.Finite(principal * (periodicInterestRate * power) / (power - 1.00))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * PeriodicRate(annualInterestRate)
}

// PeriodicRate converts an annual percentage rate into a monthly decimal rate.
func PeriodicRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// Amortize builds the fixed-payment schedule for a loan of principal at
// annualRatePercent over totalPeriods monthly payments. The final payment
// absorbs any floating point residual so the balance closes at exactly zero.
// Terms beyond constants.MaxPeriods are shortened to it.
func Amortize(principal, annualRatePercent float64, totalPeriods int) Schedule {
	return buildSchedule(principal, annualRatePercent, totalPeriods, 0)
}

func buildSchedule(principal, annualRatePercent float64, termMonths int, extraPrincipal float64) Schedule {
	principal = mathutil.NonNegative(principal)
	annualRatePercent = mathutil.NonNegative(annualRatePercent)
	extraPrincipal = mathutil.NonNegative(extraPrincipal)
	termMonths = min(termMonths, constants.MaxPeriods)

	payment := CalculateMonthlyPayment(principal, annualRatePercent, termMonths)
	if termMonths <= 0 || principal == 0 || payment == 0 {
		return Schedule{}
	}

	result := projection.Run(projection.Parameters{
		Principal:    principal,
		PeriodicRate: PeriodicRate(annualRatePercent),
		Periods:      termMonths,
		Flow: func(s projection.PeriodState) float64 {
			owed := s.Opening + s.Interest
			// Cap the payment at what is owed to prevent overpayment.
			if s.Last || payment+extraPrincipal >= owed {
				return -owed
			}
			return -(payment + extraPrincipal)
		},
		Clamp: projection.ClampFloor,
	})

	schedule := Schedule{Payment: payment, Payments: make([]Payment, 0, len(result.Schedule))}
	for _, s := range result.Schedule {
		paid := -s.Flow
		p := Payment{
			Period:             s.Period,
			Opening:            s.Opening,
			Payment:            paid,
			Principal:          paid - s.Interest,
			Interest:           s.Interest,
			RemainingPrincipal: s.Closing,
		}
		schedule.Payments = append(schedule.Payments, p)
		schedule.TotalInterest += p.Interest
		schedule.TotalPrincipal += p.Principal
		schedule.TotalPaid += p.Payment
		schedule.PayoffPeriod = s.Period
		if s.Closing <= 0 {
			break
		}
	}

	return schedule
}

// LoanConfig represents loan configuration parameters
type LoanConfig struct {
	Name                  string
	StartDate             string
	Principal             float64
	InterestRate          float64
	Term                  int
	ExtraMonthlyPrincipal float64
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan. When
// StartDate is set every payment is labelled with its YYYY-MM date; an
// unparseable StartDate is the only error.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan LoanConfig) (Schedule, error) {
	schedule := buildSchedule(loan.Principal, loan.InterestRate, loan.Term, loan.ExtraMonthlyPrincipal)

	if loan.Term <= 0 || (schedule.Payment == 0 && loan.Principal > 0) {
		g.logger.Warn(fmt.Sprintf("loan %s has a degenerate schedule", loan.Name),
			zap.String("op", "loans.GenerateSchedule"),
			zap.Int("term", loan.Term),
			zap.Float64("principal", loan.Principal),
			zap.Float64("rate", loan.InterestRate),
		)
	}

	if loan.ExtraMonthlyPrincipal > 0 && len(schedule.Payments) > 0 {
		baseline := Amortize(loan.Principal, loan.InterestRate, loan.Term)
		schedule.InterestSaved = baseline.TotalInterest - schedule.TotalInterest
		g.logger.Debug(fmt.Sprintf("loan %s pays off in %d of %d months with %.2f extra principal",
			loan.Name, schedule.PayoffPeriod, loan.Term, loan.ExtraMonthlyPrincipal),
			zap.String("op", "loans.GenerateSchedule"),
			zap.Float64("interestSaved", schedule.InterestSaved),
		)
	}

	if loan.StartDate != "" {
		for i := range schedule.Payments {
			date, err := datetime.OffsetDate(loan.StartDate, datetime.DateTimeLayout, i)
			if err != nil {
				return Schedule{}, fmt.Errorf("loan %s: invalid start date %q: %w", loan.Name, loan.StartDate, err)
			}
			schedule.Payments[i].Date = date
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments for loan %s", len(schedule.Payments), loan.Name),
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("payment", schedule.Payment),
		zap.Float64("totalInterest", schedule.TotalInterest),
	)

	return schedule, nil
}
