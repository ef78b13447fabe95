// Package projection implements the period-by-period balance projection shared
// by the loan, mortgage, auto-loan, investment and retirement calculators.
//
// A projection starts from a principal, applies a periodic rate on the periods
// selected by a compounding schedule, applies a signed flow each period and
// records one Snapshot per period. Run is a pure function of its Parameters.
package projection

import (
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
)

// FlowTiming controls whether a period's flow is applied before or after
// interest accrues.
type FlowTiming int

const (
	// FlowAfterInterest accrues interest on the opening balance, then applies
	// the flow. Loans and retirement use this ordering.
	FlowAfterInterest FlowTiming = iota
	// FlowBeforeInterest applies the flow first and accrues interest on the
	// opening balance plus the flow. Savings growth uses this ordering.
	FlowBeforeInterest
)

// ClampPolicy controls what happens when a period would close below zero.
type ClampPolicy int

const (
	// ClampNone lets the balance go negative.
	ClampNone ClampPolicy = iota
	// ClampFloor floors the closing balance at zero.
	ClampFloor
	// ClampDeplete floors the closing balance at zero and records the first
	// period where that happened as the depletion period.
	ClampDeplete
)

// PeriodState is handed to a FlowRule so the rule can depend on where the
// projection is.
type PeriodState struct {
	// Index is the 0-based loop index.
	Index int
	// Period is the caller-visible period label.
	Period int
	// Opening is the balance before this period's activity.
	Opening float64
	// Interest is the interest already accrued this period. Always zero under
	// FlowBeforeInterest.
	Interest float64
	// Last reports whether this is the final period of the run.
	Last bool
}

// FlowRule returns the signed flow for a period: positive for contributions,
// negative for withdrawals or payments.
type FlowRule func(PeriodState) float64

// RateRule returns the periodic rate for the period with the given 0-based
// index.
type RateRule func(index int) float64

// CompoundingSchedule reports whether interest is applied on the period with
// the given 0-based index.
type CompoundingSchedule func(index int) bool

// Parameters is the immutable input of a projection run.
type Parameters struct {
	Principal    float64
	PeriodicRate float64
	// Rate overrides PeriodicRate when set.
	Rate    RateRule
	Periods int
	// FirstPeriod is the label of the first period. Zero means 1.
	FirstPeriod int
	Flow        FlowRule
	Compounding CompoundingSchedule
	Timing      FlowTiming
	Clamp       ClampPolicy
}

// Snapshot is one period of a projection.
type Snapshot struct {
	Period   int     `json:"period"`
	Opening  float64 `json:"openingBalance"`
	Interest float64 `json:"interest"`
	// Flow is the flow actually applied after clamping.
	Flow float64 `json:"flow"`
	// Shortfall is the part of a scheduled withdrawal that could not be
	// applied because the balance was clamped at zero.
	Shortfall float64 `json:"shortfall,omitempty"`
	Closing   float64 `json:"closingBalance"`
}

// Result aggregates a full projection run.
type Result struct {
	Schedule           []Snapshot `json:"schedule"`
	TotalInterest      float64    `json:"totalInterest"`
	TotalContributions float64    `json:"totalContributions"`
	TotalWithdrawals   float64    `json:"totalWithdrawals"`
	EndingBalance      float64    `json:"endingBalance"`
	PeakBalance        float64    `json:"peakBalance"`
	// DepletionPeriod is the label of the first period whose balance had to
	// be clamped at zero. Only set under ClampDeplete.
	DepletionPeriod *int `json:"depletionPeriod,omitempty"`
}

// Run computes the projection described by p. Periods <= 0 yields an empty
// schedule whose ending balance is the principal. Periods beyond
// constants.MaxPeriods are truncated to it.
func Run(p Parameters) Result {
	balance := mathutil.Finite(p.Principal)
	result := Result{EndingBalance: balance, PeakBalance: balance}
	if p.Periods <= 0 {
		return result
	}
	p.Periods = min(p.Periods, constants.MaxPeriods)

	flow := p.Flow
	if flow == nil {
		flow = ConstantFlow(0)
	}
	compounds := p.Compounding
	if compounds == nil {
		compounds = EveryPeriod
	}
	first := p.FirstPeriod
	if first == 0 {
		first = 1
	}
	rateFor := p.Rate
	if rateFor == nil {
		fixed := mathutil.Finite(p.PeriodicRate)
		rateFor = func(int) float64 { return fixed }
	}

	result.Schedule = make([]Snapshot, 0, p.Periods)
	for i := 0; i < p.Periods; i++ {
		state := PeriodState{
			Index:   i,
			Period:  first + i,
			Opening: balance,
			Last:    i == p.Periods-1,
		}

		rate := mathutil.Finite(rateFor(i))
		var interest, scheduled float64
		if p.Timing == FlowBeforeInterest {
			scheduled = mathutil.Finite(flow(state))
			if compounds(i) {
				interest = mathutil.Finite((balance + scheduled) * rate)
			}
		} else {
			if compounds(i) {
				interest = mathutil.Finite(balance * rate)
			}
			state.Interest = interest
			scheduled = mathutil.Finite(flow(state))
		}

		applied := scheduled
		closing := balance + interest + scheduled
		if closing < 0 && p.Clamp != ClampNone {
			if p.Timing == FlowBeforeInterest && balance+scheduled < 0 {
				interest = 0
			}
			applied = -(balance + interest)
			closing = 0
			if p.Clamp == ClampDeplete && result.DepletionPeriod == nil {
				depleted := state.Period
				result.DepletionPeriod = &depleted
			}
		}

		snapshot := Snapshot{
			Period:   state.Period,
			Opening:  balance,
			Interest: interest,
			Flow:     applied,
			Closing:  closing,
		}
		if applied > scheduled {
			snapshot.Shortfall = applied - scheduled
		}
		result.Schedule = append(result.Schedule, snapshot)

		result.TotalInterest += interest
		if applied > 0 {
			result.TotalContributions += applied
		} else {
			result.TotalWithdrawals -= applied
		}
		if closing > result.PeakBalance {
			result.PeakBalance = closing
		}
		balance = closing
	}
	result.EndingBalance = balance

	return result
}
