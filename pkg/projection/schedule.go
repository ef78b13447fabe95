package projection

// ConstantFlow applies the same amount every period.
func ConstantFlow(amount float64) FlowRule {
	return func(PeriodState) float64 {
		return amount
	}
}

// EveryNth applies amount on every nth period (n, 2n, ...) and nothing in
// between. n <= 1 behaves like ConstantFlow.
func EveryNth(n int, amount float64) FlowRule {
	if n <= 1 {
		return ConstantFlow(amount)
	}
	return func(s PeriodState) float64 {
		if (s.Index+1)%n == 0 {
			return amount
		}
		return 0
	}
}

// EveryPeriod compounds on every period.
func EveryPeriod(int) bool {
	return true
}

// EveryNthPeriod compounds on every nth period (n, 2n, ...).
func EveryNthPeriod(n int) CompoundingSchedule {
	if n <= 1 {
		return EveryPeriod
	}
	return func(index int) bool {
		return (index+1)%n == 0
	}
}

// Never disables interest entirely.
func Never(int) bool {
	return false
}
