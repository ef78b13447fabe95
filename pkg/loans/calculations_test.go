package loans

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"go.uber.org/zap"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name               string
		principal          float64
		annualInterestRate float64
		termMonths         int
		expectedRange      []float64 // [min, max] expected range
	}{
		{
			name:               "Standard 30-year mortgage",
			principal:          240000,
			annualInterestRate: 6.0,
			termMonths:         360,
			expectedRange:      []float64{1400, 1500}, // Around $1439
		},
		{
			name:               "5-year car loan",
			principal:          20000,
			annualInterestRate: 4.0,
			termMonths:         60,
			expectedRange:      []float64{360, 380}, // Around $368
		},
		{
			name:               "Zero interest loan",
			principal:          10000,
			annualInterestRate: 0.0,
			termMonths:         60,
			expectedRange:      []float64{166, 167}, // Exactly $166.67
		},
		{
			name:               "Zero principal",
			principal:          0,
			annualInterestRate: 5.0,
			termMonths:         60,
			expectedRange:      []float64{0, 0},
		},
		{
			name:               "High interest loan",
			principal:          10000,
			annualInterestRate: 18.0,
			termMonths:         36,
			expectedRange:      []float64{360, 380}, // Around $362
		},
		{
			name:               "Zero term",
			principal:          10000,
			annualInterestRate: 5.0,
			termMonths:         0,
			expectedRange:      []float64{0, 0},
		},
		{
			name:               "Negative term",
			principal:          10000,
			annualInterestRate: 0.0,
			termMonths:         -12,
			expectedRange:      []float64{0, 0},
		},
		{
			name:               "Negative principal clamps to zero",
			principal:          -5000,
			annualInterestRate: 5.0,
			termMonths:         12,
			expectedRange:      []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualInterestRate, tt.termMonths)

			if math.IsNaN(result) || result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateMonthlyPaymentOverflow(t *testing.T) {
	result := CalculateMonthlyPayment(1000, 1e300, 600)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		t.Fatalf("CalculateMonthlyPayment() = %v, expected a finite value", result)
	}
	if result != 0 {
		t.Fatalf("CalculateMonthlyPayment() = %v, expected the safe default 0", result)
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualInterestRate float64
		expected           float64
	}{
		{
			name:               "Standard mortgage interest",
			remainingPrincipal: 200000,
			annualInterestRate: 6.0,
			expected:           1000.0, // 200000 * 0.06 / 12
		},
		{
			name:               "Car loan interest",
			remainingPrincipal: 15000,
			annualInterestRate: 4.5,
			expected:           56.25, // 15000 * 0.045 / 12
		},
		{
			name:               "Zero interest",
			remainingPrincipal: 10000,
			annualInterestRate: 0.0,
			expected:           0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualInterestRate)

			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateInterestPayment() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestAmortizeScenario(t *testing.T) {
	schedule := Amortize(25000, 5.5, 60)

	if math.Abs(schedule.Payment-477.53) > 0.01 {
		t.Errorf("Payment = %.4f, expected 477.53", schedule.Payment)
	}
	if math.Abs(schedule.TotalInterest-3651.76) > 1.0 {
		t.Errorf("TotalInterest = %.4f, expected about 3651.76", schedule.TotalInterest)
	}
	if len(schedule.Payments) != 60 {
		t.Errorf("expected 60 payments, got %d", len(schedule.Payments))
	}
	if schedule.PayoffPeriod != 60 {
		t.Errorf("PayoffPeriod = %d, expected 60", schedule.PayoffPeriod)
	}
}

func TestAmortizeProperties(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		periods   int
	}{
		{"Auto loan", 25000, 5.5, 60},
		{"Long mortgage", 412345.67, 6.875, 360},
		{"Short high rate", 3000, 29.99, 12},
		{"Single period", 1000, 5, 1},
		{"Zero rate", 12000, 0, 48},
		{"Odd zero rate", 1000, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Amortize(tt.principal, tt.rate, tt.periods)
			if len(schedule.Payments) != tt.periods {
				t.Fatalf("expected %d payments, got %d", tt.periods, len(schedule.Payments))
			}

			principalSum := 0.0
			previous := tt.principal
			for i, p := range schedule.Payments {
				principalSum += p.Principal

				if p.Period != i+1 {
					t.Errorf("period %d labelled %d", i+1, p.Period)
				}
				if p.Opening != previous {
					t.Errorf("period %d opens at %.10f, expected the prior balance %.10f", p.Period, p.Opening, previous)
				}
				if p.RemainingPrincipal > previous {
					t.Errorf("period %d balance %.6f increased from %.6f", p.Period, p.RemainingPrincipal, previous)
				}
				if p.RemainingPrincipal < 0 {
					t.Errorf("period %d balance %.6f is negative", p.Period, p.RemainingPrincipal)
				}
				if i < len(schedule.Payments)-1 && p.Payment != schedule.Payment {
					t.Errorf("period %d payment %.10f differs from fixed payment %.10f", p.Period, p.Payment, schedule.Payment)
				}
				previous = p.RemainingPrincipal
			}

			if math.Abs(principalSum-tt.principal) > 1e-6 {
				t.Errorf("principal portions sum to %.10f, expected %.10f", principalSum, tt.principal)
			}
			final := schedule.Payments[len(schedule.Payments)-1]
			if math.Abs(final.RemainingPrincipal) > 1e-6 {
				t.Errorf("final balance %.10f, expected 0", final.RemainingPrincipal)
			}
			if math.Abs(final.Payment-schedule.Payment) > 1e-6 {
				t.Errorf("final payment %.10f strays from fixed payment %.10f", final.Payment, schedule.Payment)
			}
			if math.Abs(schedule.TotalPaid-(schedule.TotalPrincipal+schedule.TotalInterest)) > 1e-6 {
				t.Errorf("TotalPaid %.6f != TotalPrincipal %.6f + TotalInterest %.6f",
					schedule.TotalPaid, schedule.TotalPrincipal, schedule.TotalInterest)
			}
		})
	}
}

func TestAmortizeTermIsBounded(t *testing.T) {
	for _, rate := range []float64{0, 5} {
		schedule := Amortize(1000, rate, 1<<40)
		if len(schedule.Payments) != constants.MaxPeriods {
			t.Fatalf("rate %.0f: expected %d payments, got %d", rate, constants.MaxPeriods, len(schedule.Payments))
		}
		if schedule.Payments[0].Opening != 1000 {
			t.Errorf("rate %.0f: first opening balance %.2f, expected 1000", rate, schedule.Payments[0].Opening)
		}
		final := schedule.Payments[len(schedule.Payments)-1]
		if math.Abs(final.RemainingPrincipal) > 1e-6 {
			t.Errorf("rate %.0f: final balance %.10f, expected 0", rate, final.RemainingPrincipal)
		}
	}
}

func TestAmortizeZeroRate(t *testing.T) {
	schedule := Amortize(12000, 0, 48)
	expected := 12000.0 / 48
	if schedule.Payment != expected {
		t.Fatalf("Payment = %v, expected %v", schedule.Payment, expected)
	}
	for _, p := range schedule.Payments {
		if p.Interest != 0 {
			t.Errorf("period %d interest = %v, expected 0", p.Period, p.Interest)
		}
		if math.Abs(p.Principal-expected) > 1e-9 {
			t.Errorf("period %d principal = %v, expected %v", p.Period, p.Principal, expected)
		}
	}
	if schedule.TotalInterest != 0 {
		t.Errorf("TotalInterest = %v, expected 0", schedule.TotalInterest)
	}
}

func TestAmortizeDegenerateInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		periods   int
	}{
		{"Zero periods", 10000, 5, 0},
		{"Negative periods", 10000, 5, -6},
		{"Zero principal", 0, 5, 60},
		{"Negative principal", -100, 5, 60},
		{"Overflowing rate", 1000, 1e300, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Amortize(tt.principal, tt.rate, tt.periods)
			if schedule.Payment != 0 {
				t.Errorf("Payment = %v, expected 0", schedule.Payment)
			}
			if len(schedule.Payments) != 0 {
				t.Errorf("expected an empty schedule, got %d payments", len(schedule.Payments))
			}
			if math.IsNaN(schedule.TotalInterest) {
				t.Error("TotalInterest is NaN")
			}
		})
	}
}

func TestAmortizeNegativeRateClampsToZero(t *testing.T) {
	schedule := Amortize(1200, -3, 12)
	if schedule.Payment != 100 {
		t.Fatalf("Payment = %v, expected 100", schedule.Payment)
	}
	if schedule.TotalInterest != 0 {
		t.Fatalf("TotalInterest = %v, expected 0", schedule.TotalInterest)
	}
}

func TestAmortizeIdempotent(t *testing.T) {
	first := Amortize(318000, 6.25, 360)
	second := Amortize(318000, 6.25, 360)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Amortize() not idempotent (-first +second):\n%s", diff)
	}
}

func TestNewAmortizationScheduleGenerator(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(nil)
	if generator == nil || generator.logger == nil {
		t.Fatal("expected generator with a no-op logger")
	}
}

func TestGenerateScheduleWithExtraPrincipal(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())

	plain, err := generator.GenerateSchedule(LoanConfig{Name: "plain", Principal: 200000, InterestRate: 6, Term: 360})
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	extra, err := generator.GenerateSchedule(LoanConfig{
		Name:                  "extra",
		StartDate:             "2025-01",
		Principal:             200000,
		InterestRate:          6,
		Term:                  360,
		ExtraMonthlyPrincipal: 500,
	})
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	if extra.PayoffPeriod >= plain.PayoffPeriod {
		t.Errorf("extra principal payoff %d should precede plain payoff %d", extra.PayoffPeriod, plain.PayoffPeriod)
	}
	if len(extra.Payments) != extra.PayoffPeriod {
		t.Errorf("schedule should stop at payoff: %d payments, payoff %d", len(extra.Payments), extra.PayoffPeriod)
	}
	if extra.InterestSaved <= 0 {
		t.Errorf("InterestSaved = %.2f, expected positive", extra.InterestSaved)
	}
	if math.Abs(plain.TotalInterest-extra.TotalInterest-extra.InterestSaved) > 1e-6 {
		t.Errorf("InterestSaved %.2f inconsistent with totals %.2f and %.2f",
			extra.InterestSaved, plain.TotalInterest, extra.TotalInterest)
	}
	if math.Abs(extra.TotalPrincipal-200000) > 1e-6 {
		t.Errorf("TotalPrincipal = %.6f, expected 200000", extra.TotalPrincipal)
	}
	if extra.Payments[0].Date != "2025-01" || extra.Payments[1].Date != "2025-02" {
		t.Errorf("unexpected payment dates %s, %s", extra.Payments[0].Date, extra.Payments[1].Date)
	}
	final := extra.Payments[len(extra.Payments)-1]
	if final.RemainingPrincipal != 0 {
		t.Errorf("final balance = %v, expected 0", final.RemainingPrincipal)
	}
	if final.Payment > extra.Payment+500 {
		t.Errorf("final payment %.2f exceeds payment plus extra principal", final.Payment)
	}
}

func TestGenerateScheduleInvalidStartDate(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	_, err := generator.GenerateSchedule(LoanConfig{Name: "bad", StartDate: "01/2025", Principal: 1000, InterestRate: 5, Term: 12})
	if err == nil {
		t.Fatal("expected error for invalid start date")
	}
}
