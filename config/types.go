package config

// MergeStopAreasConfig contains the stop-area merge defaults
type MergeStopAreasConfig struct {
	RuleFiles         []string `yaml:"ruleFiles"`
	MaxDistanceMeters float64  `yaml:"maxDistanceMeters" validate:"gte=0"`
	ReportPath        string   `yaml:"reportPath"`
}

// RestrictConfig contains the validity restriction window
type RestrictConfig struct {
	StartDate string `yaml:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `yaml:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Input          string               `yaml:"input"`
	Output         string               `yaml:"output"`
	MergeStopAreas MergeStopAreasConfig `yaml:"mergeStopAreas"`
	Restrict       RestrictConfig       `yaml:"restrictValidityPeriod"`
	FeedInfos      map[string]string    `yaml:"feedInfos"`
}
