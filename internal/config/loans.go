package config

// Entry carries the fields shared by every calculation in a calculation
// file.
type Entry struct {
	Name string `yaml:"name"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active,omitempty"`
}

// IsActive reports whether the entry should be calculated.
func (e Entry) IsActive() bool {
	return e.Active == nil || *e.Active
}

// Loan indicates a plain amortizing loan and its parameters.
type Loan struct {
	Entry                 `yaml:",inline" mapstructure:",squash"`
	StartDate             string  `yaml:"startDate,omitempty"`
	Principal             float64 `yaml:"principal"`
	InterestRate          float64 `yaml:"interestRate"`
	Term                  int     `yaml:"term"` // months
	ExtraMonthlyPrincipal float64 `yaml:"extraMonthlyPrincipal,omitempty"`
}

// Mortgage indicates a home purchase financed with a fixed-rate mortgage.
type Mortgage struct {
	Entry                   `yaml:",inline" mapstructure:",squash"`
	StartDate               string  `yaml:"startDate,omitempty"`
	HomePrice               float64 `yaml:"homePrice"`
	DownPayment             float64 `yaml:"downPayment"`
	InterestRate            float64 `yaml:"interestRate"`
	TermYears               int     `yaml:"termYears"`
	AnnualPropertyTax       float64 `yaml:"annualPropertyTax,omitempty"`
	AnnualInsurance         float64 `yaml:"annualInsurance,omitempty"`
	MonthlyHOA              float64 `yaml:"monthlyHOA,omitempty"`
	MortgageInsurance       float64 `yaml:"mortgageInsurance,omitempty"`
	MortgageInsuranceCutoff float64 `yaml:"mortgageInsuranceCutoff,omitempty"`
	ExtraMonthlyPrincipal   float64 `yaml:"extraMonthlyPrincipal,omitempty"`
}

// AutoLoan indicates a vehicle purchase.
type AutoLoan struct {
	Entry        `yaml:",inline" mapstructure:",squash"`
	StartDate    string  `yaml:"startDate,omitempty"`
	Price        float64 `yaml:"price"`
	DownPayment  float64 `yaml:"downPayment,omitempty"`
	TradeIn      float64 `yaml:"tradeIn,omitempty"`
	SalesTaxRate float64 `yaml:"salesTaxRate,omitempty"`
	Fees         float64 `yaml:"fees,omitempty"`
	InterestRate float64 `yaml:"interestRate"`
	TermMonths   int     `yaml:"termMonths"`
	TaxBasis     string  `yaml:"taxBasis,omitempty"` // afterTradeIn, fullPrice
}
