// Package validation provides configuration validation utilities.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/datetime"
)

// ErrHorizonTooLong is returned by CheckHorizons when an active entry asks for
// more periods than the calculators project.
var ErrHorizonTooLong = errors.New("horizon exceeds the supported maximum")

// ValidateLoanTerms reports degenerate but allowed loan parameters.
func ValidateLoanTerms(loanName, startDate string, principal, interestRate float64, termMonths int) []string {
	var warnings []string

	if termMonths <= 0 {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' has a non-positive term (%d months) - no schedule will be produced",
			loanName, termMonths))
	}
	if msg := loanTermLimit(loanName, termMonths); msg != "" {
		warnings = append(warnings, msg+fmt.Sprintf(" - the schedule stops after %d payments", constants.MaxPeriods))
	}
	if principal <= 0 {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' has no principal to amortize", loanName))
	}
	if interestRate < 0 {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' has a negative interest rate (%.2f%%) - treated as 0%%",
			loanName, interestRate))
	}
	if err := datetime.ValidateDate(startDate); err != nil {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' start date is invalid: %v", loanName, err))
	}

	return warnings
}

// ValidateDownPayment reports a down payment that covers the whole price.
func ValidateDownPayment(name string, price, downPayment float64) string {
	if price > 0 && downPayment >= price {
		return fmt.Sprintf("'%s' down payment covers the full price (%.2f >= %.2f) - nothing is financed",
			name, downPayment, price)
	}
	return ""
}

// ValidateGrowthHorizon reports an investment projection without any years
// or with more years than are projected.
func ValidateGrowthHorizon(name string, years int) string {
	if years <= 0 {
		return fmt.Sprintf("Investment '%s' has a non-positive horizon (%d years) - no projection will be produced",
			name, years)
	}
	if msg := growthLimit(name, years); msg != "" {
		return msg + fmt.Sprintf(" - only %d years are projected", constants.MaxYears)
	}
	return ""
}

// ValidateRetirementAges checks that startAge < retireAge < endAge. Violations
// are warnings since the simulation still runs as a single phase.
func ValidateRetirementAges(name string, startAge, retireAge, endAge int) []string {
	var warnings []string

	if retireAge <= startAge {
		warnings = append(warnings, fmt.Sprintf("Retirement '%s' retires at or before the start age (%d <= %d) - no accumulation phase",
			name, retireAge, startAge))
	}
	if endAge <= retireAge {
		warnings = append(warnings, fmt.Sprintf("Retirement '%s' ends at or before the retirement age (%d <= %d) - no withdrawal phase",
			name, endAge, retireAge))
	}
	if endAge < startAge {
		warnings = append(warnings, fmt.Sprintf("Retirement '%s' ends before it starts (%d < %d) - no years will be simulated",
			name, endAge, startAge))
	}
	if msg := retirementLimit(name, startAge, endAge); msg != "" {
		warnings = append(warnings, msg+fmt.Sprintf(" - only ages %d through %d are simulated",
			startAge, startAge+constants.MaxYears-1))
	}

	return warnings
}

func loanTermLimit(name string, termMonths int) string {
	if termMonths > constants.MaxPeriods {
		return fmt.Sprintf("Loan '%s' term of %d months is longer than the maximum of %d",
			name, termMonths, constants.MaxPeriods)
	}
	return ""
}

func growthLimit(name string, years int) string {
	if years > constants.MaxYears {
		return fmt.Sprintf("Investment '%s' horizon of %d years is longer than the maximum of %d",
			name, years, constants.MaxYears)
	}
	return ""
}

func retirementLimit(name string, startAge, endAge int) string {
	if endAge < startAge {
		return ""
	}
	// A negative span means the subtraction wrapped.
	if span := endAge - startAge; span >= constants.MaxYears || span < 0 {
		return fmt.Sprintf("Retirement '%s' spans ages %d through %d, more than the maximum of %d years",
			name, startAge, endAge, constants.MaxYears)
	}
	return ""
}

// ConfigValidator collects the entries of a calculation file for validation.
type ConfigValidator struct {
	Loans       []LoanConfig
	Mortgages   []PurchaseConfig
	AutoLoans   []PurchaseConfig
	Investments []InvestmentConfig
	Retirements []RetirementConfig
}

type LoanConfig struct {
	Name         string
	Active       bool
	StartDate    string
	Principal    float64
	InterestRate float64
	Term         int
}

// PurchaseConfig is a financed purchase; its loan terms are validated along
// with the down payment.
type PurchaseConfig struct {
	Loan        LoanConfig
	Price       float64
	DownPayment float64
}

type InvestmentConfig struct {
	Name   string
	Active bool
	Years  int
}

type RetirementConfig struct {
	Name      string
	Active    bool
	StartAge  int
	RetireAge int
	EndAge    int
}

// ValidateAll validates the entire configuration and returns warnings.
// Inactive entries are skipped.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, loan := range cv.Loans {
		if !loan.Active {
			continue
		}
		warnings = append(warnings, ValidateLoanTerms(loan.Name, loan.StartDate, loan.Principal, loan.InterestRate, loan.Term)...)
	}

	for _, group := range [][]PurchaseConfig{cv.Mortgages, cv.AutoLoans} {
		for _, purchase := range group {
			if !purchase.Loan.Active {
				continue
			}
			if warning := ValidateDownPayment(purchase.Loan.Name, purchase.Price, purchase.DownPayment); warning != "" {
				warnings = append(warnings, warning)
				continue
			}
			warnings = append(warnings, ValidateLoanTerms(purchase.Loan.Name, purchase.Loan.StartDate,
				purchase.Loan.Principal, purchase.Loan.InterestRate, purchase.Loan.Term)...)
		}
	}

	for _, investment := range cv.Investments {
		if !investment.Active {
			continue
		}
		if warning := ValidateGrowthHorizon(investment.Name, investment.Years); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	for _, retirement := range cv.Retirements {
		if !retirement.Active {
			continue
		}
		warnings = append(warnings, ValidateRetirementAges(retirement.Name, retirement.StartAge, retirement.RetireAge, retirement.EndAge)...)
	}

	return warnings
}

// CheckHorizons returns an error wrapping ErrHorizonTooLong that names every
// active entry whose horizon is longer than the calculators project.
func (cv *ConfigValidator) CheckHorizons() error {
	var problems []string
	add := func(msg string) {
		if msg != "" {
			problems = append(problems, msg)
		}
	}

	for _, loan := range cv.Loans {
		if loan.Active {
			add(loanTermLimit(loan.Name, loan.Term))
		}
	}
	for _, group := range [][]PurchaseConfig{cv.Mortgages, cv.AutoLoans} {
		for _, purchase := range group {
			if purchase.Loan.Active {
				add(loanTermLimit(purchase.Loan.Name, purchase.Loan.Term))
			}
		}
	}
	for _, investment := range cv.Investments {
		if investment.Active {
			add(growthLimit(investment.Name, investment.Years))
		}
	}
	for _, retirement := range cv.Retirements {
		if retirement.Active {
			add(retirementLimit(retirement.Name, retirement.StartAge, retirement.EndAge))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrHorizonTooLong, strings.Join(problems, "; "))
}
