package main

import (
	"github.com/iwvelando/calcmaster/internal/config"
	"github.com/spf13/cobra"
)

func newLoanCommand(opts *rootOptions) *cobra.Command {
	var loan config.Loan

	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Amortize a fixed-rate loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd, config.Configuration{Loans: []config.Loan{loan}})
		},
	}

	f := cmd.Flags()
	f.StringVar(&loan.Name, "name", "loan", "name shown in the output")
	f.StringVar(&loan.StartDate, "start-date", "", "first payment month (YYYY-MM)")
	f.Float64Var(&loan.Principal, "principal", 0, "amount borrowed")
	f.Float64Var(&loan.InterestRate, "rate", 0, "annual interest rate in percent")
	f.IntVar(&loan.Term, "term", 0, "term in months")
	f.Float64Var(&loan.ExtraMonthlyPrincipal, "extra", 0, "extra principal paid every month")

	return cmd
}

func newMortgageCommand(opts *rootOptions) *cobra.Command {
	var mortgage config.Mortgage

	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Calculate a home purchase with mortgage insurance, taxes and HOA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd, config.Configuration{Mortgages: []config.Mortgage{mortgage}})
		},
	}

	f := cmd.Flags()
	f.StringVar(&mortgage.Name, "name", "mortgage", "name shown in the output")
	f.StringVar(&mortgage.StartDate, "start-date", "", "first payment month (YYYY-MM)")
	f.Float64Var(&mortgage.HomePrice, "price", 0, "home price")
	f.Float64Var(&mortgage.DownPayment, "down-payment", 0, "down payment")
	f.Float64Var(&mortgage.InterestRate, "rate", 0, "annual interest rate in percent")
	f.IntVar(&mortgage.TermYears, "years", 30, "term in years")
	f.Float64Var(&mortgage.AnnualPropertyTax, "property-tax", 0, "annual property tax")
	f.Float64Var(&mortgage.AnnualInsurance, "insurance", 0, "annual homeowner's insurance")
	f.Float64Var(&mortgage.MonthlyHOA, "hoa", 0, "monthly HOA dues")
	f.Float64Var(&mortgage.MortgageInsurance, "pmi", 0, "monthly mortgage insurance while the loan-to-value is above the cutoff")
	f.Float64Var(&mortgage.MortgageInsuranceCutoff, "pmi-cutoff", 0, "loan-to-value percent at which mortgage insurance stops (default 78)")
	f.Float64Var(&mortgage.ExtraMonthlyPrincipal, "extra", 0, "extra principal paid every month")

	return cmd
}

func newAutoLoanCommand(opts *rootOptions) *cobra.Command {
	var auto config.AutoLoan

	cmd := &cobra.Command{
		Use:   "auto-loan",
		Short: "Calculate a vehicle purchase with trade-in, sales tax and fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd, config.Configuration{AutoLoans: []config.AutoLoan{auto}})
		},
	}

	f := cmd.Flags()
	f.StringVar(&auto.Name, "name", "auto loan", "name shown in the output")
	f.StringVar(&auto.StartDate, "start-date", "", "first payment month (YYYY-MM)")
	f.Float64Var(&auto.Price, "price", 0, "vehicle price")
	f.Float64Var(&auto.DownPayment, "down-payment", 0, "cash down payment")
	f.Float64Var(&auto.TradeIn, "trade-in", 0, "trade-in value")
	f.Float64Var(&auto.SalesTaxRate, "tax-rate", 0, "sales tax rate in percent")
	f.StringVar(&auto.TaxBasis, "tax-basis", "", "amount sales tax applies to: afterTradeIn or fullPrice")
	f.Float64Var(&auto.Fees, "fees", 0, "fees rolled into the loan")
	f.Float64Var(&auto.InterestRate, "rate", 0, "annual interest rate in percent")
	f.IntVar(&auto.TermMonths, "term", 60, "term in months")

	return cmd
}

func newInvestCommand(opts *rootOptions) *cobra.Command {
	var investment config.Investment

	cmd := &cobra.Command{
		Use:   "invest",
		Short: "Project compound growth of a savings or investment account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd, config.Configuration{Investments: []config.Investment{investment}})
		},
	}

	f := cmd.Flags()
	f.StringVar(&investment.Name, "name", "investment", "name shown in the output")
	f.Float64Var(&investment.StartingBalance, "balance", 0, "starting balance")
	f.Float64Var(&investment.Contribution, "contribution", 0, "amount contributed each contribution period")
	f.StringVar(&investment.ContributionFrequency, "contribution-frequency", "monthly", "monthly or yearly")
	f.Float64Var(&investment.AnnualIncreasePercent, "increase", 0, "yearly contribution increase in percent")
	f.Float64Var(&investment.AnnualReturnRate, "rate", 0, "annual return rate in percent")
	f.IntVar(&investment.Years, "years", 0, "number of years to project")
	f.StringVar(&investment.CompoundFrequency, "compound", "annual", "annual, semiannual, quarterly or monthly")
	f.Float64Var(&investment.InflationRate, "inflation", 0, "annual inflation rate in percent")

	return cmd
}

func newRetireCommand(opts *rootOptions) *cobra.Command {
	var retirement config.Retirement

	cmd := &cobra.Command{
		Use:   "retire",
		Short: "Simulate saving until retirement and drawing down afterwards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd, config.Configuration{Retirements: []config.Retirement{retirement}})
		},
	}

	f := cmd.Flags()
	f.StringVar(&retirement.Name, "name", "retirement", "name shown in the output")
	f.IntVar(&retirement.StartAge, "age", 30, "current age")
	f.IntVar(&retirement.RetireAge, "retire-age", 65, "age at retirement")
	f.IntVar(&retirement.EndAge, "end-age", 90, "last age simulated")
	f.Float64Var(&retirement.StartingBalance, "balance", 0, "current savings")
	f.Float64Var(&retirement.AnnualContribution, "contribution", 0, "yearly contribution before retirement")
	f.Float64Var(&retirement.ContributionGrowth, "contribution-growth", 0, "yearly contribution increase in percent")
	f.Float64Var(&retirement.PreRetirementReturn, "pre-return", 7, "annual return before retirement in percent")
	f.Float64Var(&retirement.PostRetirementReturn, "post-return", 5, "annual return after retirement in percent")
	f.Float64Var(&retirement.InflationRate, "inflation", 2.5, "annual inflation rate in percent")
	f.Float64Var(&retirement.DesiredAnnualIncome, "income", 0, "desired yearly income in today's money")

	return cmd
}
