package model

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-model/collection"
	"github.com/theoremus-urban-solutions/transit-model/relations"
)

// Kind names of every entity kind that participates in correspondence
// queries.
const (
	KindContributor    relations.Kind = "contributor"
	KindDataset        relations.Kind = "dataset"
	KindNetwork        relations.Kind = "network"
	KindCompany        relations.Kind = "company"
	KindCommercialMode relations.Kind = "commercial_mode"
	KindPhysicalMode   relations.Kind = "physical_mode"
	KindLine           relations.Kind = "line"
	KindRoute          relations.Kind = "route"
	KindVehicleJourney relations.Kind = "vehicle_journey"
	KindStopArea       relations.Kind = "stop_area"
	KindStopPoint      relations.Kind = "stop_point"
	KindCalendar       relations.Kind = "calendar"
)

// kindOf maps a record type onto its schema kind.
func kindOf[T any]() (relations.Kind, bool) {
	var zero T
	switch any(zero).(type) {
	case Contributor:
		return KindContributor, true
	case Dataset:
		return KindDataset, true
	case Network:
		return KindNetwork, true
	case Company:
		return KindCompany, true
	case CommercialMode:
		return KindCommercialMode, true
	case PhysicalMode:
		return KindPhysicalMode, true
	case Line:
		return KindLine, true
	case Route:
		return KindRoute, true
	case VehicleJourney:
		return KindVehicleJourney, true
	case StopArea:
		return KindStopArea, true
	case StopPoint:
		return KindStopPoint, true
	case Calendar:
		return KindCalendar, true
	}
	return "", false
}

// buildRelationGraph derives the adjacency of every declared relation from
// the foreign keys embedded in the records. Foreign keys are the source of
// truth: the graph is rebuilt whenever a transformation produces a new
// Model, never mutated on its own.
func buildRelationGraph(c *Collections) (*relations.Graph, error) {
	contributorDataset := relations.NewRelation(KindContributor, KindDataset, relations.OneToMany)
	for idx, ds := range c.Datasets.All() {
		if src, ok := c.Contributors.GetIdx(ds.ContributorID); ok {
			contributorDataset.Insert(src.Raw(), idx.Raw())
		}
	}

	networkLine := relations.NewRelation(KindNetwork, KindLine, relations.OneToMany)
	commercialModeLine := relations.NewRelation(KindCommercialMode, KindLine, relations.OneToMany)
	for idx, l := range c.Lines.All() {
		if src, ok := c.Networks.GetIdx(l.NetworkID); ok {
			networkLine.Insert(src.Raw(), idx.Raw())
		}
		if src, ok := c.CommercialModes.GetIdx(l.CommercialModeID); ok {
			commercialModeLine.Insert(src.Raw(), idx.Raw())
		}
	}

	lineRoute := relations.NewRelation(KindLine, KindRoute, relations.OneToMany)
	for idx, r := range c.Routes.All() {
		if src, ok := c.Lines.GetIdx(r.LineID); ok {
			lineRoute.Insert(src.Raw(), idx.Raw())
		}
	}

	routeJourney := relations.NewRelation(KindRoute, KindVehicleJourney, relations.OneToMany)
	companyJourney := relations.NewRelation(KindCompany, KindVehicleJourney, relations.OneToMany)
	physicalModeJourney := relations.NewRelation(KindPhysicalMode, KindVehicleJourney, relations.OneToMany)
	datasetJourney := relations.NewRelation(KindDataset, KindVehicleJourney, relations.OneToMany)
	calendarJourney := relations.NewRelation(KindCalendar, KindVehicleJourney, relations.OneToMany)
	journeyStopPoint := relations.NewRelation(KindVehicleJourney, KindStopPoint, relations.ManyToMany)
	for idx, vj := range c.VehicleJourneys.All() {
		if src, ok := c.Routes.GetIdx(vj.RouteID); ok {
			routeJourney.Insert(src.Raw(), idx.Raw())
		}
		if src, ok := c.Companies.GetIdx(vj.CompanyID); ok {
			companyJourney.Insert(src.Raw(), idx.Raw())
		}
		if src, ok := c.PhysicalModes.GetIdx(vj.PhysicalModeID); ok {
			physicalModeJourney.Insert(src.Raw(), idx.Raw())
		}
		if src, ok := c.Datasets.GetIdx(vj.DatasetID); ok {
			datasetJourney.Insert(src.Raw(), idx.Raw())
		}
		if src, ok := c.Calendars.GetIdx(vj.ServiceID); ok {
			calendarJourney.Insert(src.Raw(), idx.Raw())
		}
		for _, st := range vj.StopTimes {
			if dst, ok := c.StopPoints.GetIdx(st.StopPointID); ok {
				journeyStopPoint.Insert(idx.Raw(), dst.Raw())
			}
		}
	}

	stopAreaStopPoint := relations.NewRelation(KindStopArea, KindStopPoint, relations.OneToMany)
	for idx, sp := range c.StopPoints.All() {
		if src, ok := c.StopAreas.GetIdx(sp.StopAreaID); ok {
			stopAreaStopPoint.Insert(src.Raw(), idx.Raw())
		}
	}

	return relations.NewGraph([]*relations.Relation{
		contributorDataset,
		networkLine,
		commercialModeLine,
		lineRoute,
		routeJourney,
		companyJourney,
		physicalModeJourney,
		datasetJourney,
		calendarJourney,
		journeyStopPoint,
		stopAreaStopPoint,
	})
}

// GetCorresponding projects a typed handle-set of kind T into the
// equivalent handle-set of kind U via the model's relation graph.
func GetCorresponding[T, U any](m *Model, set collection.IdxSet[T]) (collection.IdxSet[U], error) {
	from, ok := kindOf[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("model: type %T is not part of the relation schema", zero)
	}
	to, ok := kindOf[U]()
	if !ok {
		var zero U
		return nil, fmt.Errorf("model: type %T is not part of the relation schema", zero)
	}
	raw := make(relations.IdxSet, len(set))
	for i := range set {
		raw.Add(i.Raw())
	}
	out := m.graph.Corresponding(from, to, raw)
	result := make(collection.IdxSet[U], len(out))
	for v := range out {
		result.Add(collection.IdxFrom[U](v))
	}
	return result, nil
}

// GetCorrespondingFromIdx is GetCorresponding for a single handle.
func GetCorrespondingFromIdx[T, U any](m *Model, idx collection.Idx[T]) (collection.IdxSet[U], error) {
	return GetCorresponding[T, U](m, collection.NewIdxSet(idx))
}
