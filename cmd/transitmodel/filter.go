package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-model/filter"
)

var (
	flagNetworks []string
	flagAction   string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Extract or remove everything tied to a set of networks",
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringSliceVar(&flagNetworks, "networks", nil, "network identifiers")
	filterCmd.Flags().StringVar(&flagAction, "action", "extract", "extract|remove")
}

func runFilter(cmd *cobra.Command, args []string) error {
	if len(flagNetworks) == 0 {
		return fmt.Errorf("no networks given (use --networks)")
	}
	var action filter.Action
	switch flagAction {
	case "extract":
		action = filter.Extract
	case "remove":
		action = filter.Remove
	default:
		return fmt.Errorf("invalid --action %q (want extract or remove)", flagAction)
	}
	m, err := loadModel()
	if err != nil {
		return err
	}
	filtered, err := filter.Filter(m.IntoCollections(), action, flagNetworks)
	if err != nil {
		return err
	}
	return writeModel(filtered)
}
