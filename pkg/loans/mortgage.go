package loans

import (
	"fmt"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"go.uber.org/zap"
)

// MortgageInput describes a home purchase financed with a fixed-rate mortgage.
type MortgageInput struct {
	Name              string  `json:"name,omitempty"`
	StartDate         string  `json:"startDate,omitempty"`
	HomePrice         float64 `json:"homePrice"`
	DownPayment       float64 `json:"downPayment"`
	InterestRate      float64 `json:"interestRate"`
	TermYears         int     `json:"termYears"`
	AnnualPropertyTax float64 `json:"annualPropertyTax,omitempty"`
	AnnualInsurance   float64 `json:"annualInsurance,omitempty"`
	MonthlyHOA        float64 `json:"monthlyHOA,omitempty"`
	// MortgageInsurance is the monthly PMI amount charged while the
	// loan-to-value ratio stays above MortgageInsuranceCutoff percent.
	MortgageInsurance       float64 `json:"mortgageInsurance,omitempty"`
	MortgageInsuranceCutoff float64 `json:"mortgageInsuranceCutoff,omitempty"`
	ExtraMonthlyPrincipal   float64 `json:"extraMonthlyPrincipal,omitempty"`
}

// MortgageResult is the outcome of a mortgage calculation.
type MortgageResult struct {
	LoanAmount               float64  `json:"loanAmount"`
	DownPaymentPercent       float64  `json:"downPaymentPercent"`
	PrincipalAndInterest     float64  `json:"principalAndInterest"`
	MonthlyPropertyTax       float64  `json:"monthlyPropertyTax"`
	MonthlyInsurance         float64  `json:"monthlyInsurance"`
	MonthlyHOA               float64  `json:"monthlyHOA"`
	MonthlyMortgageInsurance float64  `json:"monthlyMortgageInsurance"`
	TotalMonthlyPayment      float64  `json:"totalMonthlyPayment"`
	MortgageInsuranceMonths  int      `json:"mortgageInsuranceMonths"`
	TotalMortgageInsurance   float64  `json:"totalMortgageInsurance"`
	TotalInterest            float64  `json:"totalInterest"`
	TotalCost                float64  `json:"totalCost"`
	Schedule                 Schedule `json:"schedule"`
}

// Mortgage computes the loan amount, the monthly housing payment and the
// amortization schedule for a home purchase.
func (g *AmortizationScheduleGenerator) Mortgage(in MortgageInput) (MortgageResult, error) {
	price := mathutil.NonNegative(in.HomePrice)
	down := mathutil.NonNegative(in.DownPayment)
	if down > price {
		down = price
	}

	cutoff := in.MortgageInsuranceCutoff
	if cutoff <= 0 {
		cutoff = constants.DefaultMortgageInsuranceCutoff
	}

	var result MortgageResult
	result.LoanAmount = price - down
	if price > 0 {
		result.DownPaymentPercent = down / price * constants.PercentageMultiplier
	}

	schedule, err := g.GenerateSchedule(LoanConfig{
		Name:                  in.Name,
		StartDate:             in.StartDate,
		Principal:             result.LoanAmount,
		InterestRate:          in.InterestRate,
		Term:                  mathutil.YearsToMonths(in.TermYears),
		ExtraMonthlyPrincipal: in.ExtraMonthlyPrincipal,
	})
	if err != nil {
		return MortgageResult{}, err
	}
	result.Schedule = schedule

	result.PrincipalAndInterest = schedule.Payment
	result.MonthlyPropertyTax = mathutil.NonNegative(in.AnnualPropertyTax) / constants.MonthsPerYear
	result.MonthlyInsurance = mathutil.NonNegative(in.AnnualInsurance) / constants.MonthsPerYear
	result.MonthlyHOA = mathutil.NonNegative(in.MonthlyHOA)

	pmi := mathutil.NonNegative(in.MortgageInsurance)
	if pmi > 0 && price > 0 {
		for _, p := range schedule.Payments {
			if p.RemainingPrincipal/price*constants.PercentageMultiplier <= cutoff {
				break
			}
			result.MortgageInsuranceMonths++
		}
		if result.MortgageInsuranceMonths > 0 {
			result.MonthlyMortgageInsurance = pmi
		}
		result.TotalMortgageInsurance = pmi * float64(result.MortgageInsuranceMonths)
	}

	result.TotalMonthlyPayment = result.PrincipalAndInterest + result.MonthlyPropertyTax +
		result.MonthlyInsurance + result.MonthlyHOA + result.MonthlyMortgageInsurance
	result.TotalInterest = schedule.TotalInterest

	months := float64(len(schedule.Payments))
	if months == 0 {
		months = float64(min(mathutil.YearsToMonths(in.TermYears), constants.MaxPeriods))
	}
	escrow := (result.MonthlyPropertyTax + result.MonthlyInsurance + result.MonthlyHOA) * months
	result.TotalCost = down + schedule.TotalPaid + escrow + result.TotalMortgageInsurance

	g.logger.Debug(fmt.Sprintf("mortgage %s: %.2f financed, %.2f per month", in.Name, result.LoanAmount, result.TotalMonthlyPayment),
		zap.String("op", "loans.Mortgage"),
		zap.Int("pmiMonths", result.MortgageInsuranceMonths),
	)

	return result, nil
}
