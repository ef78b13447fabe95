package finance

import (
	"fmt"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"github.com/iwvelando/calcmaster/pkg/projection"
	"go.uber.org/zap"
)

// RetirementInput describes a yearly two-phase retirement simulation.
type RetirementInput struct {
	Name                 string  `json:"name,omitempty"`
	StartAge             int     `json:"startAge"`
	RetireAge            int     `json:"retireAge"`
	EndAge               int     `json:"endAge"`
	StartingBalance      float64 `json:"startingBalance"`
	AnnualContribution   float64 `json:"annualContribution"`
	ContributionGrowth   float64 `json:"contributionGrowth,omitempty"`
	PreRetirementReturn  float64 `json:"preRetirementReturn"`
	PostRetirementReturn float64 `json:"postRetirementReturn"`
	InflationRate        float64 `json:"inflationRate,omitempty"`
	// DesiredAnnualIncome is expressed in today's money.
	DesiredAnnualIncome float64 `json:"desiredAnnualIncome"`
}

// AgeSnapshot is one year of a retirement simulation.
type AgeSnapshot struct {
	Age          int     `json:"age"`
	Retired      bool    `json:"retired"`
	Opening      float64 `json:"openingBalance"`
	Interest     float64 `json:"interest"`
	Contribution float64 `json:"contribution"`
	Withdrawal   float64 `json:"withdrawal"`
	// Shortfall is the part of the desired withdrawal the balance could not
	// cover.
	Shortfall float64 `json:"shortfall,omitempty"`
	Closing   float64 `json:"closingBalance"`
}

// RetirementResult is the outcome of a retirement simulation.
type RetirementResult struct {
	Ages []AgeSnapshot `json:"ages"`
	// RetirementSavings is the balance available when retirement begins.
	RetirementSavings  float64 `json:"retirementSavings"`
	MaxSavings         float64 `json:"maxSavings"`
	EndingBalance      float64 `json:"endingBalance"`
	TotalContributions float64 `json:"totalContributions"`
	TotalWithdrawals   float64 `json:"totalWithdrawals"`
	TotalInterest      float64 `json:"totalInterest"`
	// IncomeAtRetirement is the inflated desired income of the first retired
	// year.
	IncomeAtRetirement float64 `json:"incomeAtRetirement"`
	// DepletionAge is the first age at which the balance ran out.
	DepletionAge *int `json:"depletionAge,omitempty"`
}

// SimulateRetirement runs one period per age from StartAge through EndAge
// inclusive. Interest accrues on the opening balance at the pre- or
// post-retirement return, then the year's contribution is added or its
// inflation-adjusted withdrawal taken. A balance that would go negative is
// clamped to zero and the first such age is reported as DepletionAge.
//
// Ages that violate StartAge < RetireAge < EndAge are simulated as given and
// produce a single-phase run. A span longer than constants.MaxYears stops
// after that many ages.
func SimulateRetirement(in RetirementInput) RetirementResult {
	start := mathutil.NonNegative(in.StartingBalance)
	result := RetirementResult{RetirementSavings: start, MaxSavings: start, EndingBalance: start}

	periods := in.EndAge - in.StartAge + 1
	if in.EndAge < in.StartAge || periods <= 0 {
		return result
	}
	periods = min(periods, constants.MaxYears)

	pre := mathutil.PercentToDecimal(in.PreRetirementReturn)
	post := mathutil.PercentToDecimal(in.PostRetirementReturn)
	contribution := mathutil.NonNegative(in.AnnualContribution)
	growth := in.ContributionGrowth
	inflation := in.InflationRate
	desired := mathutil.NonNegative(in.DesiredAnnualIncome)

	retired := func(age int) bool { return age >= in.RetireAge }

	run := projection.Run(projection.Parameters{
		Principal:   start,
		Periods:     periods,
		FirstPeriod: in.StartAge,
		Rate: func(index int) float64 {
			if retired(in.StartAge + index) {
				return post
			}
			return pre
		},
		Flow: func(s projection.PeriodState) float64 {
			if retired(s.Period) {
				return -desired * mathutil.GrowthFactor(inflation, s.Period-in.StartAge)
			}
			return contribution * mathutil.GrowthFactor(growth, s.Index)
		},
		Clamp: projection.ClampDeplete,
	})

	result.Ages = make([]AgeSnapshot, 0, len(run.Schedule))
	savingsSet := false
	for _, s := range run.Schedule {
		snapshot := AgeSnapshot{
			Age:       s.Period,
			Retired:   retired(s.Period),
			Opening:   s.Opening,
			Interest:  s.Interest,
			Shortfall: s.Shortfall,
			Closing:   s.Closing,
		}
		if snapshot.Retired {
			snapshot.Withdrawal = -s.Flow
			if !savingsSet {
				result.RetirementSavings = s.Opening
				result.IncomeAtRetirement = desired * mathutil.GrowthFactor(inflation, s.Period-in.StartAge)
				savingsSet = true
			}
		} else {
			snapshot.Contribution = s.Flow
		}
		result.Ages = append(result.Ages, snapshot)
	}
	if !savingsSet {
		result.RetirementSavings = run.EndingBalance
	}

	result.MaxSavings = run.PeakBalance
	result.EndingBalance = run.EndingBalance
	result.TotalContributions = run.TotalContributions
	result.TotalWithdrawals = run.TotalWithdrawals
	result.TotalInterest = run.TotalInterest
	result.DepletionAge = run.DepletionPeriod
	return result
}

// RetirementPlanner runs retirement simulations.
type RetirementPlanner struct {
	logger *zap.Logger
}

// NewRetirementPlanner creates a planner for retirement simulations.
func NewRetirementPlanner(logger *zap.Logger) *RetirementPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetirementPlanner{logger: logger}
}

// Simulate runs SimulateRetirement and logs the outcome.
func (rp *RetirementPlanner) Simulate(in RetirementInput) RetirementResult {
	result := SimulateRetirement(in)
	if in.RetireAge <= in.StartAge || in.EndAge <= in.RetireAge {
		rp.logger.Warn(fmt.Sprintf("retirement plan %s has a single-phase age range", in.Name),
			zap.String("op", "finance.Simulate"),
			zap.Int("startAge", in.StartAge),
			zap.Int("retireAge", in.RetireAge),
			zap.Int("endAge", in.EndAge),
		)
	}
	if result.DepletionAge != nil {
		rp.logger.Info(fmt.Sprintf("retirement plan %s runs out of savings at age %d", in.Name, *result.DepletionAge),
			zap.String("op", "finance.Simulate"),
			zap.Float64("retirementSavings", result.RetirementSavings),
		)
	}
	rp.logger.Debug(fmt.Sprintf("retirement plan %s simulated over %d years", in.Name, len(result.Ages)),
		zap.String("op", "finance.Simulate"),
		zap.Float64("maxSavings", result.MaxSavings),
		zap.Float64("endingBalance", result.EndingBalance),
	)
	return result
}
