package config

import (
	"fmt"

	"github.com/iwvelando/calcmaster/pkg/finance"
	"github.com/iwvelando/calcmaster/pkg/loans"
)

// ToLoanConfig converts a configured loan to a pkg/loans.LoanConfig.
func (loan *Loan) ToLoanConfig() loans.LoanConfig {
	return loans.LoanConfig{
		Name:                  loan.Name,
		StartDate:             loan.StartDate,
		Principal:             loan.Principal,
		InterestRate:          loan.InterestRate,
		Term:                  loan.Term,
		ExtraMonthlyPrincipal: loan.ExtraMonthlyPrincipal,
	}
}

// ToMortgageInput converts a configured mortgage to a pkg/loans.MortgageInput.
func (mortgage *Mortgage) ToMortgageInput() loans.MortgageInput {
	return loans.MortgageInput{
		Name:                    mortgage.Name,
		StartDate:               mortgage.StartDate,
		HomePrice:               mortgage.HomePrice,
		DownPayment:             mortgage.DownPayment,
		InterestRate:            mortgage.InterestRate,
		TermYears:               mortgage.TermYears,
		AnnualPropertyTax:       mortgage.AnnualPropertyTax,
		AnnualInsurance:         mortgage.AnnualInsurance,
		MonthlyHOA:              mortgage.MonthlyHOA,
		MortgageInsurance:       mortgage.MortgageInsurance,
		MortgageInsuranceCutoff: mortgage.MortgageInsuranceCutoff,
		ExtraMonthlyPrincipal:   mortgage.ExtraMonthlyPrincipal,
	}
}

// ToAutoLoanInput converts a configured auto loan to a pkg/loans.AutoLoanInput.
func (auto *AutoLoan) ToAutoLoanInput() (loans.AutoLoanInput, error) {
	basis, err := loans.ParseTaxBasis(auto.TaxBasis)
	if err != nil {
		return loans.AutoLoanInput{}, fmt.Errorf("auto loan %s: %w", auto.Name, err)
	}
	return loans.AutoLoanInput{
		Name:         auto.Name,
		StartDate:    auto.StartDate,
		Price:        auto.Price,
		DownPayment:  auto.DownPayment,
		TradeIn:      auto.TradeIn,
		SalesTaxRate: auto.SalesTaxRate,
		Fees:         auto.Fees,
		InterestRate: auto.InterestRate,
		TermMonths:   auto.TermMonths,
		TaxBasis:     basis,
	}, nil
}

// ToGrowthInput converts a configured investment to a pkg/finance.GrowthInput.
func (investment *Investment) ToGrowthInput() (finance.GrowthInput, error) {
	contribution, err := finance.ParseContributionFrequency(investment.ContributionFrequency)
	if err != nil {
		return finance.GrowthInput{}, fmt.Errorf("investment %s: %w", investment.Name, err)
	}
	compound, err := finance.ParseCompoundFrequency(investment.CompoundFrequency)
	if err != nil {
		return finance.GrowthInput{}, fmt.Errorf("investment %s: %w", investment.Name, err)
	}
	return finance.GrowthInput{
		Name:                  investment.Name,
		StartingBalance:       investment.StartingBalance,
		Contribution:          investment.Contribution,
		ContributionFrequency: contribution,
		AnnualIncreasePercent: investment.AnnualIncreasePercent,
		AnnualReturnRate:      investment.AnnualReturnRate,
		Years:                 investment.Years,
		CompoundFrequency:     compound,
		InflationRate:         investment.InflationRate,
	}, nil
}

// ToRetirementInput converts a configured retirement plan to a
// pkg/finance.RetirementInput.
func (retirement *Retirement) ToRetirementInput() finance.RetirementInput {
	return finance.RetirementInput{
		Name:                 retirement.Name,
		StartAge:             retirement.StartAge,
		RetireAge:            retirement.RetireAge,
		EndAge:               retirement.EndAge,
		StartingBalance:      retirement.StartingBalance,
		AnnualContribution:   retirement.AnnualContribution,
		ContributionGrowth:   retirement.ContributionGrowth,
		PreRetirementReturn:  retirement.PreRetirementReturn,
		PostRetirementReturn: retirement.PostRetirementReturn,
		InflationRate:        retirement.InflationRate,
		DesiredAnnualIncome:  retirement.DesiredAnnualIncome,
	}
}
