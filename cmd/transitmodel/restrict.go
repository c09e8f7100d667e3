package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-model/config"
	"github.com/theoremus-urban-solutions/transit-model/model"
)

var (
	flagStartDate string
	flagEndDate   string
)

var restrictCmd = &cobra.Command{
	Use:   "restrict-validity-period",
	Short: "Restrict every calendar to an inclusive date window",
	RunE:  runRestrict,
}

func init() {
	restrictCmd.Flags().StringVar(&flagStartDate, "start", "", "window start date (YYYY-MM-DD)")
	restrictCmd.Flags().StringVar(&flagEndDate, "end", "", "window end date (YYYY-MM-DD)")
}

func parseFlagDate(value, fallback, name string) (model.Date, error) {
	if value == "" {
		value = fallback
	}
	if value == "" {
		return model.Date{}, fmt.Errorf("missing --%s date", name)
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid --%s date %q: %w", name, value, err)
	}
	return model.NewDate(t.Year(), t.Month(), t.Day()), nil
}

func runRestrict(cmd *cobra.Command, args []string) error {
	start, err := parseFlagDate(flagStartDate, config.Config.Restrict.StartDate, "start")
	if err != nil {
		return err
	}
	end, err := parseFlagDate(flagEndDate, config.Config.Restrict.EndDate, "end")
	if err != nil {
		return err
	}
	m, err := loadModel()
	if err != nil {
		return err
	}
	restricted, err := m.RestrictValidityPeriod(start, end)
	if err != nil {
		return err
	}
	return writeModel(restricted)
}
