// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/calcmaster/internal/config"
	"github.com/iwvelando/calcmaster/pkg/finance"
	"github.com/iwvelando/calcmaster/pkg/loans"
	"go.uber.org/zap"
)

// Kind identifies the calculator that produced a forecast.
type Kind string

const (
	KindLoan       Kind = "loan"
	KindMortgage   Kind = "mortgage"
	KindAutoLoan   Kind = "autoLoan"
	KindInvestment Kind = "investment"
	KindRetirement Kind = "retirement"
)

// Unit tells renderers how to display a value.
type Unit string

const (
	UnitAmount  Unit = "amount"
	UnitPercent Unit = "percent"
	UnitInteger Unit = "integer"
)

// Metric is a single labelled summary value.
type Metric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Column describes one value column of the forecast rows.
type Column struct {
	Name string `json:"name"`
	Unit Unit   `json:"unit"`
}

// Row is one period of a forecast. Label is a date, a period number, a year
// or an age depending on the kind.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Summary    []Metric `json:"summary"`
	LabelTitle string   `json:"labelTitle"`
	Columns    []Column `json:"columns"`
	Rows       []Row    `json:"rows"`
	Notes      []string `json:"notes,omitempty"`
}

// Metric returns the summary value with the given label.
func (f *Forecast) Metric(label string) (float64, bool) {
	for _, m := range f.Summary {
		if m.Label == label {
			return m.Value, true
		}
	}
	return 0, false
}

var scheduleColumns = []Column{
	{Name: "Opening", Unit: UnitAmount},
	{Name: "Payment", Unit: UnitAmount},
	{Name: "Principal", Unit: UnitAmount},
	{Name: "Interest", Unit: UnitAmount},
	{Name: "Remaining", Unit: UnitAmount},
}

// GetForecast runs every active calculation in the configuration, in file
// order grouped by kind.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	generator := loans.NewAmortizationScheduleGenerator(logger)
	growth := finance.NewGrowthProcessor(logger)
	planner := finance.NewRetirementPlanner(logger)

	skip := func(kind Kind, name string) {
		logger.Debug(fmt.Sprintf("skipping %s %s because it is inactive", kind, name),
			zap.String("op", "forecast.GetForecast"),
		)
	}

	var results []Forecast

	for i := range conf.Loans {
		loan := &conf.Loans[i]
		if !loan.IsActive() {
			skip(KindLoan, loan.Name)
			continue
		}
		schedule, err := generator.GenerateSchedule(loan.ToLoanConfig())
		if err != nil {
			return results, err
		}
		results = append(results, LoanForecast(loan.Name, schedule))
	}

	for i := range conf.Mortgages {
		mortgage := &conf.Mortgages[i]
		if !mortgage.IsActive() {
			skip(KindMortgage, mortgage.Name)
			continue
		}
		result, err := generator.Mortgage(mortgage.ToMortgageInput())
		if err != nil {
			return results, err
		}
		results = append(results, MortgageForecast(mortgage.Name, result))
	}

	for i := range conf.AutoLoans {
		auto := &conf.AutoLoans[i]
		if !auto.IsActive() {
			skip(KindAutoLoan, auto.Name)
			continue
		}
		input, err := auto.ToAutoLoanInput()
		if err != nil {
			return results, err
		}
		result, err := generator.AutoLoan(input)
		if err != nil {
			return results, err
		}
		results = append(results, AutoLoanForecast(auto.Name, result))
	}

	for i := range conf.Investments {
		investment := &conf.Investments[i]
		if !investment.IsActive() {
			skip(KindInvestment, investment.Name)
			continue
		}
		input, err := investment.ToGrowthInput()
		if err != nil {
			return results, err
		}
		results = append(results, InvestmentForecast(investment.Name, growth.Project(input)))
	}

	for i := range conf.Retirements {
		retirement := &conf.Retirements[i]
		if !retirement.IsActive() {
			skip(KindRetirement, retirement.Name)
			continue
		}
		results = append(results, RetirementForecast(retirement.Name, planner.Simulate(retirement.ToRetirementInput())))
	}

	logger.Debug(fmt.Sprintf("computed %d forecasts", len(results)),
		zap.String("op", "forecast.GetForecast"),
	)

	return results, nil
}

func scheduleRows(schedule loans.Schedule) []Row {
	rows := make([]Row, 0, len(schedule.Payments))
	for _, p := range schedule.Payments {
		label := p.Date
		if label == "" {
			label = strconv.Itoa(p.Period)
		}
		rows = append(rows, Row{
			Label:  label,
			Values: []float64{p.Opening, p.Payment, p.Principal, p.Interest, p.RemainingPrincipal},
		})
	}
	return rows
}

func scheduleLabelTitle(schedule loans.Schedule) string {
	if len(schedule.Payments) > 0 && schedule.Payments[0].Date != "" {
		return "Date"
	}
	return "Period"
}

// LoanForecast renders a loan schedule.
func LoanForecast(name string, schedule loans.Schedule) Forecast {
	f := Forecast{
		Name:       name,
		Kind:       KindLoan,
		LabelTitle: scheduleLabelTitle(schedule),
		Columns:    scheduleColumns,
		Rows:       scheduleRows(schedule),
		Summary: []Metric{
			{Label: "Monthly payment", Value: schedule.Payment, Unit: UnitAmount},
			{Label: "Total interest", Value: schedule.TotalInterest, Unit: UnitAmount},
			{Label: "Total paid", Value: schedule.TotalPaid, Unit: UnitAmount},
			{Label: "Payoff period", Value: float64(schedule.PayoffPeriod), Unit: UnitInteger},
		},
	}
	if schedule.InterestSaved > 0 {
		f.Summary = append(f.Summary, Metric{Label: "Interest saved", Value: schedule.InterestSaved, Unit: UnitAmount})
	}
	if len(schedule.Payments) == 0 {
		f.Notes = append(f.Notes, "No payments: the loan has no principal or no term")
	}
	return f
}

// MortgageForecast renders a mortgage calculation.
func MortgageForecast(name string, result loans.MortgageResult) Forecast {
	f := Forecast{
		Name:       name,
		Kind:       KindMortgage,
		LabelTitle: scheduleLabelTitle(result.Schedule),
		Columns:    scheduleColumns,
		Rows:       scheduleRows(result.Schedule),
		Summary: []Metric{
			{Label: "Loan amount", Value: result.LoanAmount, Unit: UnitAmount},
			{Label: "Down payment", Value: result.DownPaymentPercent, Unit: UnitPercent},
			{Label: "Principal and interest", Value: result.PrincipalAndInterest, Unit: UnitAmount},
			{Label: "Property tax", Value: result.MonthlyPropertyTax, Unit: UnitAmount},
			{Label: "Insurance", Value: result.MonthlyInsurance, Unit: UnitAmount},
			{Label: "HOA", Value: result.MonthlyHOA, Unit: UnitAmount},
			{Label: "Mortgage insurance", Value: result.MonthlyMortgageInsurance, Unit: UnitAmount},
			{Label: "Total monthly payment", Value: result.TotalMonthlyPayment, Unit: UnitAmount},
			{Label: "Total interest", Value: result.TotalInterest, Unit: UnitAmount},
			{Label: "Total cost", Value: result.TotalCost, Unit: UnitAmount},
		},
	}
	if result.MortgageInsuranceMonths > 0 {
		f.Notes = append(f.Notes, fmt.Sprintf("Mortgage insurance is charged for the first %d months", result.MortgageInsuranceMonths))
	}
	if result.Schedule.InterestSaved > 0 {
		f.Summary = append(f.Summary, Metric{Label: "Interest saved", Value: result.Schedule.InterestSaved, Unit: UnitAmount})
	}
	return f
}

// AutoLoanForecast renders an auto-loan calculation.
func AutoLoanForecast(name string, result loans.AutoLoanResult) Forecast {
	return Forecast{
		Name:       name,
		Kind:       KindAutoLoan,
		LabelTitle: scheduleLabelTitle(result.Schedule),
		Columns:    scheduleColumns,
		Rows:       scheduleRows(result.Schedule),
		Summary: []Metric{
			{Label: "Sales tax", Value: result.SalesTax, Unit: UnitAmount},
			{Label: "Amount financed", Value: result.AmountFinanced, Unit: UnitAmount},
			{Label: "Monthly payment", Value: result.MonthlyPayment, Unit: UnitAmount},
			{Label: "Total interest", Value: result.TotalInterest, Unit: UnitAmount},
			{Label: "Total cost", Value: result.TotalCost, Unit: UnitAmount},
		},
	}
}

// InvestmentForecast renders a growth projection by year.
func InvestmentForecast(name string, result finance.GrowthResult) Forecast {
	rows := make([]Row, 0, len(result.Years))
	for _, y := range result.Years {
		rows = append(rows, Row{
			Label:  strconv.Itoa(y.Year),
			Values: []float64{y.Contributions, y.InterestEarned, y.Principal, y.Interest, y.Closing, y.InflationAdjusted},
		})
	}
	return Forecast{
		Name:       name,
		Kind:       KindInvestment,
		LabelTitle: "Year",
		Columns: []Column{
			{Name: "Contributions", Unit: UnitAmount},
			{Name: "Interest earned", Unit: UnitAmount},
			{Name: "Principal", Unit: UnitAmount},
			{Name: "Total interest", Unit: UnitAmount},
			{Name: "Balance", Unit: UnitAmount},
			{Name: "Inflation adjusted", Unit: UnitAmount},
		},
		Rows: rows,
		Summary: []Metric{
			{Label: "Ending balance", Value: result.EndingBalance, Unit: UnitAmount},
			{Label: "Total principal", Value: result.TotalPrincipal, Unit: UnitAmount},
			{Label: "Total interest", Value: result.TotalInterest, Unit: UnitAmount},
			{Label: "Inflation adjusted balance", Value: result.InflationAdjustedBalance, Unit: UnitAmount},
			{Label: "Effective annual rate", Value: result.EffectiveAnnualReturnRate, Unit: UnitPercent},
		},
	}
}

// RetirementForecast renders a retirement simulation by age.
func RetirementForecast(name string, result finance.RetirementResult) Forecast {
	rows := make([]Row, 0, len(result.Ages))
	for _, a := range result.Ages {
		rows = append(rows, Row{
			Label:  strconv.Itoa(a.Age),
			Values: []float64{a.Contribution, a.Withdrawal, a.Interest, a.Closing},
		})
	}
	f := Forecast{
		Name:       name,
		Kind:       KindRetirement,
		LabelTitle: "Age",
		Columns: []Column{
			{Name: "Contribution", Unit: UnitAmount},
			{Name: "Withdrawal", Unit: UnitAmount},
			{Name: "Interest", Unit: UnitAmount},
			{Name: "Balance", Unit: UnitAmount},
		},
		Rows: rows,
		Summary: []Metric{
			{Label: "Retirement savings", Value: result.RetirementSavings, Unit: UnitAmount},
			{Label: "Max savings", Value: result.MaxSavings, Unit: UnitAmount},
			{Label: "Income at retirement", Value: result.IncomeAtRetirement, Unit: UnitAmount},
			{Label: "Ending balance", Value: result.EndingBalance, Unit: UnitAmount},
		},
	}
	if result.DepletionAge != nil {
		f.Summary = append(f.Summary, Metric{Label: "Depletion age", Value: float64(*result.DepletionAge), Unit: UnitInteger})
		f.Notes = append(f.Notes, fmt.Sprintf("Savings run out at age %d", *result.DepletionAge))
	} else if n := len(result.Ages); n > 0 {
		f.Notes = append(f.Notes, fmt.Sprintf("Savings last through age %d", result.Ages[n-1].Age))
	}
	return f
}
