package loans

import (
	"fmt"
	"strings"

	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"go.uber.org/zap"
)

// TaxBasis selects which amount sales tax is charged on.
type TaxBasis int

const (
	// TaxAfterTradeIn taxes the price net of the trade-in value.
	TaxAfterTradeIn TaxBasis = iota
	// TaxFullPrice taxes the full vehicle price.
	TaxFullPrice
)

// ParseTaxBasis maps the configuration spelling of a tax basis onto TaxBasis.
// An empty string selects TaxAfterTradeIn.
func ParseTaxBasis(value string) (TaxBasis, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "aftertradein", "after-trade-in":
		return TaxAfterTradeIn, nil
	case "fullprice", "full-price":
		return TaxFullPrice, nil
	default:
		return TaxAfterTradeIn, fmt.Errorf("unknown tax basis %q", value)
	}
}

func (b TaxBasis) String() string {
	if b == TaxFullPrice {
		return "fullPrice"
	}
	return "afterTradeIn"
}

// MarshalText implements encoding.TextMarshaler.
func (b TaxBasis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *TaxBasis) UnmarshalText(text []byte) error {
	parsed, err := ParseTaxBasis(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// AutoLoanInput describes a vehicle purchase.
type AutoLoanInput struct {
	Name         string   `json:"name,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	Price        float64  `json:"price"`
	DownPayment  float64  `json:"downPayment,omitempty"`
	TradeIn      float64  `json:"tradeIn,omitempty"`
	SalesTaxRate float64  `json:"salesTaxRate,omitempty"`
	Fees         float64  `json:"fees,omitempty"`
	InterestRate float64  `json:"interestRate"`
	TermMonths   int      `json:"termMonths"`
	TaxBasis     TaxBasis `json:"taxBasis,omitempty"`
}

// AutoLoanResult is the outcome of an auto-loan calculation.
type AutoLoanResult struct {
	TaxableAmount  float64  `json:"taxableAmount"`
	SalesTax       float64  `json:"salesTax"`
	AmountFinanced float64  `json:"amountFinanced"`
	MonthlyPayment float64  `json:"monthlyPayment"`
	TotalInterest  float64  `json:"totalInterest"`
	TotalCost      float64  `json:"totalCost"`
	Schedule       Schedule `json:"schedule"`
}

// AutoLoan computes sales tax, the amount financed and the repayment schedule
// for a vehicle purchase. The amount financed is price - down payment -
// trade-in + sales tax + fees, floored at zero.
func (g *AmortizationScheduleGenerator) AutoLoan(in AutoLoanInput) (AutoLoanResult, error) {
	price := mathutil.NonNegative(in.Price)
	down := mathutil.NonNegative(in.DownPayment)
	tradeIn := mathutil.NonNegative(in.TradeIn)
	fees := mathutil.NonNegative(in.Fees)

	var result AutoLoanResult
	switch in.TaxBasis {
	case TaxFullPrice:
		result.TaxableAmount = price
	default:
		result.TaxableAmount = mathutil.NonNegative(price - tradeIn)
	}
	result.SalesTax = mathutil.ApplyPercentage(result.TaxableAmount, mathutil.NonNegative(in.SalesTaxRate))
	result.AmountFinanced = mathutil.NonNegative(price - down - tradeIn + result.SalesTax + fees)

	schedule, err := g.GenerateSchedule(LoanConfig{
		Name:         in.Name,
		StartDate:    in.StartDate,
		Principal:    result.AmountFinanced,
		InterestRate: in.InterestRate,
		Term:         in.TermMonths,
	})
	if err != nil {
		return AutoLoanResult{}, err
	}
	result.Schedule = schedule
	result.MonthlyPayment = schedule.Payment
	result.TotalInterest = schedule.TotalInterest
	result.TotalCost = down + tradeIn + schedule.TotalPaid

	g.logger.Debug(fmt.Sprintf("auto loan %s: %.2f financed with %.2f sales tax", in.Name, result.AmountFinanced, result.SalesTax),
		zap.String("op", "loans.AutoLoan"),
		zap.String("taxBasis", in.TaxBasis.String()),
	)

	return result, nil
}
