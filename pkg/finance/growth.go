// Package finance provides the investment growth and retirement calculators.
package finance

import (
	"fmt"
	"strings"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"github.com/iwvelando/calcmaster/pkg/projection"
	"go.uber.org/zap"
)

// CompoundFrequency is the number of times interest compounds per year.
type CompoundFrequency int

const (
	CompoundAnnual     CompoundFrequency = 1
	CompoundSemiannual CompoundFrequency = 2
	CompoundQuarterly  CompoundFrequency = 4
	CompoundMonthly    CompoundFrequency = 12
)

// ParseCompoundFrequency maps the configuration spelling of a compounding
// frequency onto CompoundFrequency. An empty string selects CompoundAnnual.
func ParseCompoundFrequency(value string) (CompoundFrequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "annual", "annually", "yearly":
		return CompoundAnnual, nil
	case "semiannual", "semiannually", "semi-annual":
		return CompoundSemiannual, nil
	case "quarterly":
		return CompoundQuarterly, nil
	case "monthly":
		return CompoundMonthly, nil
	default:
		return CompoundAnnual, fmt.Errorf("unknown compound frequency %q", value)
	}
}

func (f CompoundFrequency) String() string {
	switch f {
	case CompoundSemiannual:
		return "semiannual"
	case CompoundQuarterly:
		return "quarterly"
	case CompoundMonthly:
		return "monthly"
	default:
		return "annual"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f CompoundFrequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *CompoundFrequency) UnmarshalText(text []byte) error {
	parsed, err := ParseCompoundFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// monthsBetween returns the number of months between compounding events.
// Unknown frequencies compound annually.
func (f CompoundFrequency) monthsBetween() int {
	switch f {
	case CompoundAnnual, CompoundSemiannual, CompoundQuarterly, CompoundMonthly:
		return constants.MonthsPerYear / int(f)
	default:
		return constants.MonthsPerYear
	}
}

func (f CompoundFrequency) perYear() int {
	return constants.MonthsPerYear / f.monthsBetween()
}

// ContributionFrequency selects how often the contribution is added.
type ContributionFrequency int

const (
	// EveryMonth adds the contribution every month.
	EveryMonth ContributionFrequency = iota
	// EveryYear adds the contribution once, on the twelfth month of each year.
	EveryYear
)

// ParseContributionFrequency maps the configuration spelling of a
// contribution frequency onto ContributionFrequency. An empty string selects
// EveryMonth.
func ParseContributionFrequency(value string) (ContributionFrequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "monthly", "everymonth", "every-month":
		return EveryMonth, nil
	case "yearly", "annual", "annually", "everyyear", "every-year":
		return EveryYear, nil
	default:
		return EveryMonth, fmt.Errorf("unknown contribution frequency %q", value)
	}
}

func (f ContributionFrequency) String() string {
	if f == EveryYear {
		return "yearly"
	}
	return "monthly"
}

// MarshalText implements encoding.TextMarshaler.
func (f ContributionFrequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ContributionFrequency) UnmarshalText(text []byte) error {
	parsed, err := ParseContributionFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// GrowthInput describes a savings or investment account.
type GrowthInput struct {
	Name                  string                `json:"name,omitempty"`
	StartingBalance       float64               `json:"startingBalance"`
	Contribution          float64               `json:"contribution"`
	ContributionFrequency ContributionFrequency `json:"contributionFrequency"`
	// AnnualIncreasePercent raises the contribution after every completed year.
	AnnualIncreasePercent float64           `json:"annualIncreasePercent,omitempty"`
	AnnualReturnRate      float64           `json:"annualReturnRate"`
	Years                 int               `json:"years"`
	CompoundFrequency     CompoundFrequency `json:"compoundFrequency"`
	InflationRate         float64           `json:"inflationRate,omitempty"`
}

// YearSnapshot is the state of a growth projection at the end of a year.
type YearSnapshot struct {
	Year    int     `json:"year"`
	Opening float64 `json:"openingBalance"`
	// Contributions and InterestEarned are this year's activity.
	Contributions  float64 `json:"contributions"`
	InterestEarned float64 `json:"interestEarned"`
	// Principal is the cumulative amount contributed including the starting
	// balance and Interest is Closing - Principal.
	Principal         float64 `json:"principal"`
	Interest          float64 `json:"interest"`
	Closing           float64 `json:"closingBalance"`
	InflationAdjusted float64 `json:"inflationAdjusted"`
}

// GrowthResult is the outcome of a growth projection.
type GrowthResult struct {
	Years                     []YearSnapshot `json:"years"`
	EndingBalance             float64        `json:"endingBalance"`
	TotalPrincipal            float64        `json:"totalPrincipal"`
	TotalInterest             float64        `json:"totalInterest"`
	InflationAdjustedBalance  float64        `json:"inflationAdjustedBalance"`
	EffectiveAnnualReturnRate float64        `json:"effectiveAnnualReturnRate"`
}

// GrowthProcessor runs investment growth projections.
type GrowthProcessor struct {
	logger *zap.Logger
}

// NewGrowthProcessor creates a processor for growth projections.
func NewGrowthProcessor(logger *zap.Logger) *GrowthProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrowthProcessor{logger: logger}
}

// ProjectGrowth runs a monthly projection and reports it by year. Each month
// the contribution is added first, then interest compounds on the months
// selected by the compounding frequency. Years <= 0 yields an empty result and
// Years beyond constants.MaxYears are truncated to it.
func ProjectGrowth(in GrowthInput) GrowthResult {
	start := mathutil.NonNegative(in.StartingBalance)
	result := GrowthResult{EndingBalance: start, TotalPrincipal: start, InflationAdjustedBalance: start}
	if in.Years <= 0 {
		return result
	}
	years := min(in.Years, constants.MaxYears)

	contribution := mathutil.NonNegative(in.Contribution)
	increase := mathutil.NonNegative(in.AnnualIncreasePercent)
	inflation := mathutil.NonNegative(in.InflationRate)
	frequency := in.CompoundFrequency
	every := frequency.monthsBetween()
	rate := mathutil.PercentToDecimal(in.AnnualReturnRate) / float64(frequency.perYear())

	run := projection.Run(projection.Parameters{
		Principal:    start,
		PeriodicRate: rate,
		Periods:      years * constants.MonthsPerYear,
		Flow: func(s projection.PeriodState) float64 {
			if in.ContributionFrequency == EveryYear && (s.Index+1)%constants.MonthsPerYear != 0 {
				return 0
			}
			return contribution * mathutil.GrowthFactor(increase, s.Index/constants.MonthsPerYear)
		},
		Compounding: projection.EveryNthPeriod(every),
		Timing:      projection.FlowBeforeInterest,
	})

	result.Years = make([]YearSnapshot, 0, years)
	principal := start
	year := YearSnapshot{Year: 1, Opening: start}
	for i, s := range run.Schedule {
		year.Contributions += s.Flow
		year.InterestEarned += s.Interest
		principal += s.Flow
		if (i+1)%constants.MonthsPerYear != 0 {
			continue
		}
		year.Principal = principal
		year.Closing = s.Closing
		year.Interest = s.Closing - principal
		year.InflationAdjusted = mathutil.Finite(s.Closing / mathutil.GrowthFactor(inflation, year.Year))
		result.Years = append(result.Years, year)
		year = YearSnapshot{Year: year.Year + 1, Opening: s.Closing}
	}

	result.EndingBalance = run.EndingBalance
	result.TotalPrincipal = principal
	result.TotalInterest = result.EndingBalance - result.TotalPrincipal
	if n := len(result.Years); n > 0 {
		result.InflationAdjustedBalance = result.Years[n-1].InflationAdjusted
	}
	result.EffectiveAnnualReturnRate = EffectiveAnnualRate(in.AnnualReturnRate, frequency)
	return result
}

// EffectiveAnnualRate returns the annual percentage yield of a nominal annual
// percentage rate compounded at the given frequency.
func EffectiveAnnualRate(nominalPercent float64, frequency CompoundFrequency) float64 {
	n := frequency.perYear()
	periodic := nominalPercent / float64(n)
	return mathutil.Finite((mathutil.GrowthFactor(periodic, n) - 1) * constants.PercentageMultiplier)
}

// Project runs ProjectGrowth and logs a summary.
func (gp *GrowthProcessor) Project(in GrowthInput) GrowthResult {
	result := ProjectGrowth(in)
	if in.Years <= 0 {
		gp.logger.Warn(fmt.Sprintf("investment %s has no projection horizon", in.Name),
			zap.String("op", "finance.Project"),
			zap.Int("years", in.Years),
		)
	}
	gp.logger.Debug(fmt.Sprintf("investment %s grows to %.2f over %d years", in.Name, result.EndingBalance, in.Years),
		zap.String("op", "finance.Project"),
		zap.Float64("totalPrincipal", result.TotalPrincipal),
		zap.Float64("totalInterest", result.TotalInterest),
		zap.String("compounding", in.CompoundFrequency.String()),
	)
	return result
}
