// Package config defines the data structures of a calculation file and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/mathutil"
	"github.com/iwvelando/calcmaster/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all calculations requested by a calculation file.
type Configuration struct {
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
	Loans       []Loan        `yaml:"loans,omitempty"`
	Mortgages   []Mortgage    `yaml:"mortgages,omitempty"`
	AutoLoans   []AutoLoan    `yaml:"autoLoans,omitempty"`
	Investments []Investment  `yaml:"investments,omitempty"`
	Retirements []Retirement  `yaml:"retirements,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// newViper builds a viper instance reading YAML with CALCMASTER_ environment
// overrides, so logging.level resolves to CALCMASTER_LOGGING_LEVEL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Keys must be known to viper for environment overrides to apply.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// Entries reports the number of calculations in the configuration, active or
// not.
func (c *Configuration) Entries() int {
	return len(c.Loans) + len(c.Mortgages) + len(c.AutoLoans) + len(c.Investments) + len(c.Retirements)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := c.validator()
	warnings := validator.ValidateAll()
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

// CheckHorizons rejects a configuration with an active entry whose horizon
// is longer than the calculators project. The error wraps
// validation.ErrHorizonTooLong.
func (c *Configuration) CheckHorizons() error {
	validator := c.validator()
	return validator.CheckHorizons()
}

func (c *Configuration) validator() validation.ConfigValidator {
	var validator validation.ConfigValidator

	for _, loan := range c.Loans {
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:         loan.Name,
			Active:       loan.IsActive(),
			StartDate:    loan.StartDate,
			Principal:    loan.Principal,
			InterestRate: loan.InterestRate,
			Term:         loan.Term,
		})
	}

	for _, mortgage := range c.Mortgages {
		validator.Mortgages = append(validator.Mortgages, validation.PurchaseConfig{
			Loan: validation.LoanConfig{
				Name:         mortgage.Name,
				Active:       mortgage.IsActive(),
				StartDate:    mortgage.StartDate,
				Principal:    mortgage.HomePrice - mortgage.DownPayment,
				InterestRate: mortgage.InterestRate,
				Term:         mathutil.YearsToMonths(mortgage.TermYears),
			},
			Price:       mortgage.HomePrice,
			DownPayment: mortgage.DownPayment,
		})
	}

	for _, auto := range c.AutoLoans {
		validator.AutoLoans = append(validator.AutoLoans, validation.PurchaseConfig{
			Loan: validation.LoanConfig{
				Name:         auto.Name,
				Active:       auto.IsActive(),
				StartDate:    auto.StartDate,
				Principal:    auto.Price - auto.DownPayment - auto.TradeIn,
				InterestRate: auto.InterestRate,
				Term:         auto.TermMonths,
			},
			Price:       auto.Price,
			DownPayment: auto.DownPayment + auto.TradeIn,
		})
	}

	for _, investment := range c.Investments {
		validator.Investments = append(validator.Investments, validation.InvestmentConfig{
			Name:   investment.Name,
			Active: investment.IsActive(),
			Years:  investment.Years,
		})
	}

	for _, retirement := range c.Retirements {
		validator.Retirements = append(validator.Retirements, validation.RetirementConfig{
			Name:      retirement.Name,
			Active:    retirement.IsActive(),
			StartAge:  retirement.StartAge,
			RetireAge: retirement.RetireAge,
			EndAge:    retirement.EndAge,
		})
	}

	return validator
}
