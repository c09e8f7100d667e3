package model

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-model/relations"
)

// DanglingReferenceError reports a mandatory foreign key that does not
// resolve to an existing identifier in its target kind.
type DanglingReferenceError struct {
	Kind     relations.Kind
	ID       string
	Field    string
	Target   relations.Kind
	TargetID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: %s %q field %s points to missing %s %q",
		e.Kind, e.ID, e.Field, e.Target, e.TargetID)
}

// Model aggregates every per-kind store plus the relation graph behind one
// facade. A Model is fully validated at construction; transformations
// consume it (IntoCollections) and produce a new one rather than mutating
// in place.
type Model struct {
	Collections
	graph *relations.Graph
}

// NewModel validates that every mandatory foreign key resolves, derives the
// relation graph from the foreign keys, and recomputes dataset validity
// periods. No partial Model is returned on failure.
func NewModel(c Collections) (*Model, error) {
	if err := c.CheckReferences(); err != nil {
		return nil, err
	}
	c.SetDatasetValidity()
	graph, err := buildRelationGraph(&c)
	if err != nil {
		return nil, err
	}
	return &Model{Collections: c, graph: graph}, nil
}

// IntoCollections transfers ownership of the underlying collections back to
// the caller for transformation. The Model must not be used afterwards.
func (m *Model) IntoCollections() Collections {
	c := m.Collections
	m.Collections = Collections{}
	m.graph = nil
	return c
}

// CorrespondingRaw is the untyped facade over the correspondence engine; the
// typed form is GetCorresponding.
func (m *Model) CorrespondingRaw(from, to relations.Kind, set relations.IdxSet) relations.IdxSet {
	return m.graph.Corresponding(from, to, set)
}

// CheckReferences verifies every mandatory foreign key of the aggregate,
// reporting the first offender with its kind, identifier and field.
func (c *Collections) CheckReferences() error {
	for _, ds := range c.Datasets.All() {
		if !c.Contributors.Contains(ds.ContributorID) {
			return &DanglingReferenceError{KindDataset, ds.ID, "contributor_id", KindContributor, ds.ContributorID}
		}
	}
	for _, l := range c.Lines.All() {
		if !c.Networks.Contains(l.NetworkID) {
			return &DanglingReferenceError{KindLine, l.ID, "network_id", KindNetwork, l.NetworkID}
		}
		if !c.CommercialModes.Contains(l.CommercialModeID) {
			return &DanglingReferenceError{KindLine, l.ID, "commercial_mode_id", KindCommercialMode, l.CommercialModeID}
		}
	}
	for _, r := range c.Routes.All() {
		if !c.Lines.Contains(r.LineID) {
			return &DanglingReferenceError{KindRoute, r.ID, "line_id", KindLine, r.LineID}
		}
	}
	for _, vj := range c.VehicleJourneys.All() {
		if !c.Routes.Contains(vj.RouteID) {
			return &DanglingReferenceError{KindVehicleJourney, vj.ID, "route_id", KindRoute, vj.RouteID}
		}
		if !c.Calendars.Contains(vj.ServiceID) {
			return &DanglingReferenceError{KindVehicleJourney, vj.ID, "service_id", KindCalendar, vj.ServiceID}
		}
		if !c.Companies.Contains(vj.CompanyID) {
			return &DanglingReferenceError{KindVehicleJourney, vj.ID, "company_id", KindCompany, vj.CompanyID}
		}
		if !c.PhysicalModes.Contains(vj.PhysicalModeID) {
			return &DanglingReferenceError{KindVehicleJourney, vj.ID, "physical_mode_id", KindPhysicalMode, vj.PhysicalModeID}
		}
		if !c.Datasets.Contains(vj.DatasetID) {
			return &DanglingReferenceError{KindVehicleJourney, vj.ID, "dataset_id", KindDataset, vj.DatasetID}
		}
		for _, st := range vj.StopTimes {
			if !c.StopPoints.Contains(st.StopPointID) {
				return &DanglingReferenceError{KindVehicleJourney, vj.ID, "stop_id", KindStopPoint, st.StopPointID}
			}
		}
	}
	for _, sp := range c.StopPoints.All() {
		if !c.StopAreas.Contains(sp.StopAreaID) {
			return &DanglingReferenceError{KindStopPoint, sp.ID, "stop_area_id", KindStopArea, sp.StopAreaID}
		}
	}
	return nil
}
