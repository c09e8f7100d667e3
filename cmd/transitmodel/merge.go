package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-model/config"
	"github.com/theoremus-urban-solutions/transit-model/mergestopareas"
)

var (
	flagRuleFiles   []string
	flagMaxDistance float64
	flagReportPath  string
)

var mergeCmd = &cobra.Command{
	Use:   "merge-stop-areas",
	Short: "Collapse redundant stop areas following grouping rule files",
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringSliceVar(&flagRuleFiles, "rules", nil, "grouping rule CSV files, applied in order")
	mergeCmd.Flags().Float64Var(&flagMaxDistance, "max-distance", 200, "maximum master-to-merged distance in meters")
	mergeCmd.Flags().StringVar(&flagReportPath, "report", "report.json", "merge report output path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	ruleFiles := flagRuleFiles
	if len(ruleFiles) == 0 {
		ruleFiles = config.Config.MergeStopAreas.RuleFiles
	}
	if len(ruleFiles) == 0 {
		return fmt.Errorf("no rule files (use --rules or config.yml)")
	}
	maxDistance := flagMaxDistance
	if !cmd.Flags().Changed("max-distance") && config.Config.MergeStopAreas.MaxDistanceMeters > 0 {
		maxDistance = config.Config.MergeStopAreas.MaxDistanceMeters
	}
	reportPath := flagReportPath
	if !cmd.Flags().Changed("report") && config.Config.MergeStopAreas.ReportPath != "" {
		reportPath = config.Config.MergeStopAreas.ReportPath
	}

	rules, err := mergestopareas.LoadRules(ruleFiles)
	if err != nil {
		return err
	}
	m, err := loadModel()
	if err != nil {
		return err
	}
	merged, report, err := mergestopareas.MergeStopAreas(m.IntoCollections(), rules, maxDistance)
	if err != nil {
		return err
	}
	if err := report.Write(reportPath); err != nil {
		return err
	}
	return writeModel(merged)
}
