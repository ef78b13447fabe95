package config

// Investment describes a savings or investment account to project.
type Investment struct {
	Entry                 `yaml:",inline" mapstructure:",squash"`
	StartingBalance       float64 `yaml:"startingBalance,omitempty"`
	Contribution          float64 `yaml:"contribution,omitempty"`
	ContributionFrequency string  `yaml:"contributionFrequency,omitempty"` // monthly, yearly
	AnnualIncreasePercent float64 `yaml:"annualIncreasePercent,omitempty"`
	AnnualReturnRate      float64 `yaml:"annualReturnRate"`
	Years                 int     `yaml:"years"`
	CompoundFrequency     string  `yaml:"compoundFrequency,omitempty"` // annual, semiannual, quarterly, monthly
	InflationRate         float64 `yaml:"inflationRate,omitempty"`
}

// Retirement describes a two-phase retirement plan.
type Retirement struct {
	Entry                `yaml:",inline" mapstructure:",squash"`
	StartAge             int     `yaml:"startAge"`
	RetireAge            int     `yaml:"retireAge"`
	EndAge               int     `yaml:"endAge"`
	StartingBalance      float64 `yaml:"startingBalance,omitempty"`
	AnnualContribution   float64 `yaml:"annualContribution,omitempty"`
	ContributionGrowth   float64 `yaml:"contributionGrowth,omitempty"`
	PreRetirementReturn  float64 `yaml:"preRetirementReturn"`
	PostRetirementReturn float64 `yaml:"postRetirementReturn"`
	InflationRate        float64 `yaml:"inflationRate,omitempty"`
	DesiredAnnualIncome  float64 `yaml:"desiredAnnualIncome"`
}
