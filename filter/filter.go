// Package filter keeps or removes every object tied to a set of networks,
// cascading through lines, routes and vehicle journeys, then sanitizes so
// the resulting model stays referentially closed.
package filter

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-model/model"
)

// Action selects the polarity of the filter.
type Action int

const (
	// Extract keeps only the named networks.
	Extract Action = iota
	// Remove drops the named networks.
	Remove
)

// Filter applies the action for the given network identifiers and returns
// the resulting model. Naming a network absent from the collections is
// fatal.
func Filter(c model.Collections, action Action, networkIDs []string) (*model.Model, error) {
	selected := map[string]bool{}
	for _, id := range networkIDs {
		if !c.Networks.Contains(id) {
			return nil, fmt.Errorf("filter: network %q not found", id)
		}
		selected[id] = true
	}

	keepNetwork := func(id string) bool {
		if action == Extract {
			return selected[id]
		}
		return !selected[id]
	}

	c.Networks.Retain(func(n *model.Network) bool { return keepNetwork(n.ID) })
	c.Lines.Retain(func(l *model.Line) bool { return c.Networks.Contains(l.NetworkID) })
	c.Routes.Retain(func(r *model.Route) bool { return c.Lines.Contains(r.LineID) })
	c.VehicleJourneys.Retain(func(vj *model.VehicleJourney) bool { return c.Routes.Contains(vj.RouteID) })

	if err := c.Sanitize(); err != nil {
		return nil, err
	}
	return model.NewModel(c)
}
