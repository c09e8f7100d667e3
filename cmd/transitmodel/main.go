package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-model/config"
	"github.com/theoremus-urban-solutions/transit-model/internal"
	"github.com/theoremus-urban-solutions/transit-model/model"
	"github.com/theoremus-urban-solutions/transit-model/ntfs"
)

var (
	flagInput  string
	flagOutput string
	flagConfig bool
)

func main() {
	internal.InitLogging()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "transitmodel",
	Short:         "Read, transform and rewrite transit datasets",
	Long:          "transitmodel loads a tabular transit dataset into an in-memory relational model, applies transformations (stop-area merging, validity restriction, network filtering) and writes the result back.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig {
			return config.LoadAppConfig()
		}
		return nil
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagInput, "input", "", "input dataset directory")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "output dataset directory")
	rootCmd.PersistentFlags().BoolVar(&flagConfig, "config", false, "load defaults from config.yml")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(restrictCmd)
	rootCmd.AddCommand(filterCmd)
}

func inputDir() string {
	if flagInput != "" {
		return flagInput
	}
	return config.Config.Input
}

func outputDir() string {
	if flagOutput != "" {
		return flagOutput
	}
	return config.Config.Output
}

// loadModel reads and validates the input dataset.
func loadModel() (*model.Model, error) {
	dir := inputDir()
	if dir == "" {
		return nil, fmt.Errorf("no input directory (use --input or config.yml)")
	}
	collections, err := ntfs.Read(dir)
	if err != nil {
		return nil, err
	}
	for k, v := range config.Config.FeedInfos {
		collections.FeedInfos[k] = v
	}
	if err := collections.Sanitize(); err != nil {
		return nil, err
	}
	return model.NewModel(collections)
}

func writeModel(m *model.Model) error {
	dir := outputDir()
	if dir == "" {
		return fmt.Errorf("no output directory (use --output or config.yml)")
	}
	return ntfs.Write(m, dir)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a dataset and report the first integrity defect, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel()
		if err != nil {
			return err
		}
		fmt.Printf("dataset valid: %d stop areas, %d stop points, %d journeys\n",
			m.StopAreas.Len(), m.StopPoints.Len(), m.VehicleJourneys.Len())
		return nil
	},
}
