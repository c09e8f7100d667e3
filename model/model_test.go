package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/transit-model/collection"
)

// testCollections builds a small but fully linked dataset: one network and
// line, two routes, two journeys over five stop areas, one calendar running
// monthly from May to August 2018.
func testCollections(t *testing.T) Collections {
	t.Helper()
	c := NewCollections()
	c.Contributors = collection.MustCollectionWithID([]Contributor{{ID: "C:1", Name: "contributor"}})
	c.Datasets = collection.MustCollectionWithID([]Dataset{{ID: "D:1", ContributorID: "C:1"}})
	c.Networks = collection.MustCollectionWithID([]Network{{ID: "N:1", Name: "network"}})
	c.Companies = collection.MustCollectionWithID([]Company{{ID: "CO:1", Name: "operator"}})
	c.CommercialModes = collection.MustCollectionWithID([]CommercialMode{{ID: "CM:bus", Name: "Bus"}})
	c.PhysicalModes = collection.MustCollectionWithID([]PhysicalMode{{ID: "PM:bus", Name: "Bus"}})
	c.Lines = collection.MustCollectionWithID([]Line{
		{ID: "L:1", Name: "line 1", NetworkID: "N:1", CommercialModeID: "CM:bus"},
	})
	c.Routes = collection.MustCollectionWithID([]Route{
		{ID: "R:1", Name: "forward", LineID: "L:1"},
		{ID: "R:2", Name: "backward", LineID: "L:1"},
	})
	c.StopAreas = collection.MustCollectionWithID([]StopArea{
		{ID: "SA:01", Name: "main", Coord: Coord{Lon: 2.3500, Lat: 48.8500}},
		{ID: "SA:02", Name: "north", Coord: Coord{Lon: 2.3500, Lat: 48.8505}},
		{ID: "SA:04", Name: "south", Coord: Coord{Lon: 2.3500, Lat: 48.8495}},
		{ID: "SA:05", Name: "east", Coord: Coord{Lon: 2.3600, Lat: 48.8600}},
		{ID: "SA:06", Name: "east bis", Coord: Coord{Lon: 2.3600, Lat: 48.8605}},
	})
	c.StopPoints = collection.MustCollectionWithID([]StopPoint{
		{ID: "SP:01", Name: "main quay", Coord: Coord{Lon: 2.3500, Lat: 48.8500}, StopAreaID: "SA:01"},
		{ID: "SP:02", Name: "north quay", Coord: Coord{Lon: 2.3500, Lat: 48.8505}, StopAreaID: "SA:02"},
		{ID: "SP:04", Name: "south quay", Coord: Coord{Lon: 2.3500, Lat: 48.8495}, StopAreaID: "SA:04"},
		{ID: "SP:05", Name: "east quay", Coord: Coord{Lon: 2.3600, Lat: 48.8600}, StopAreaID: "SA:05"},
		{ID: "SP:06", Name: "east bis quay", Coord: Coord{Lon: 2.3600, Lat: 48.8605}, StopAreaID: "SA:06"},
	})
	c.Calendars = collection.MustCollectionWithID([]Calendar{
		{ID: "CAL:1", Dates: NewDateSet(
			NewDate(2018, time.May, 1),
			NewDate(2018, time.June, 1),
			NewDate(2018, time.July, 1),
			NewDate(2018, time.August, 1),
		)},
	})
	c.VehicleJourneys = collection.MustCollectionWithID([]VehicleJourney{
		{
			ID: "VJ:1", RouteID: "R:1", ServiceID: "CAL:1", CompanyID: "CO:1",
			PhysicalModeID: "PM:bus", DatasetID: "D:1",
			StopTimes: []StopTime{
				{StopPointID: "SP:01", Sequence: 0},
				{StopPointID: "SP:02", Sequence: 1},
				{StopPointID: "SP:04", Sequence: 2},
			},
		},
		{
			ID: "VJ:2", RouteID: "R:2", ServiceID: "CAL:1", CompanyID: "CO:1",
			PhysicalModeID: "PM:bus", DatasetID: "D:1",
			StopTimes: []StopTime{
				{StopPointID: "SP:05", Sequence: 0},
				{StopPointID: "SP:06", Sequence: 1},
			},
		},
	})
	c.Transfers = collection.NewCollection([]Transfer{
		{FromStopPointID: "SP:01", ToStopPointID: "SP:02"},
	})
	c.Frequencies = collection.NewCollection([]Frequency{
		{VehicleJourneyID: "VJ:1", StartTime: 6 * 3600, EndTime: 9 * 3600, HeadwaySecs: 600},
	})
	return c
}

func testModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(testCollections(t))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestNewModel_DanglingReference(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Collections)
		want   []string // substrings of the error message
	}{
		{
			name: "journey with unknown route",
			mutate: func(c *Collections) {
				vj, _ := c.VehicleJourneys.GetByID("VJ:1")
				vj.RouteID = "R:404"
			},
			want: []string{"vehicle_journey", "VJ:1", "route_id", "R:404"},
		},
		{
			name: "line with unknown network",
			mutate: func(c *Collections) {
				l, _ := c.Lines.GetByID("L:1")
				l.NetworkID = "N:404"
			},
			want: []string{"line", "L:1", "network_id", "N:404"},
		},
		{
			name: "stop point with unknown stop area",
			mutate: func(c *Collections) {
				sp, _ := c.StopPoints.GetByID("SP:01")
				sp.StopAreaID = "SA:404"
			},
			want: []string{"stop_point", "SP:01", "stop_area_id", "SA:404"},
		},
		{
			name: "stop time with unknown stop point",
			mutate: func(c *Collections) {
				vj, _ := c.VehicleJourneys.GetByID("VJ:2")
				vj.StopTimes[0].StopPointID = "SP:404"
			},
			want: []string{"vehicle_journey", "VJ:2", "stop_id", "SP:404"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCollections(t)
			tt.mutate(&c)
			m, err := NewModel(c)
			if err == nil {
				t.Fatal("expected dangling reference error, got none")
			}
			if m != nil {
				t.Error("partial model returned alongside error")
			}
			var dangling *DanglingReferenceError
			if !errors.As(err, &dangling) {
				t.Fatalf("error %T is not a DanglingReferenceError", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err.Error(), want)
				}
			}
		})
	}
}

// The stop point to commercial mode projection crosses four relations:
// stop point, vehicle journey, route, line, commercial mode.
func TestModel_CorrespondingMultiHop(t *testing.T) {
	m := testModel(t)
	spIdx, ok := m.StopPoints.GetIdx("SP:01")
	if !ok {
		t.Fatal("SP:01 not found")
	}

	modes, err := GetCorrespondingFromIdx[StopPoint, CommercialMode](m, spIdx)
	if err != nil {
		t.Fatalf("GetCorrespondingFromIdx: %v", err)
	}
	if len(modes) != 1 {
		t.Fatalf("got %d commercial modes, want 1", len(modes))
	}
	for idx := range modes {
		if got := m.CommercialModes.MustGet(idx); got.ID != "CM:bus" {
			t.Errorf("commercial mode = %s, want CM:bus", got.ID)
		}
	}
}

func TestModel_CorrespondingAssociativity(t *testing.T) {
	m := testModel(t)
	start := collection.IdxSet[StopPoint]{}
	for idx := range m.StopPoints.All() {
		start.Add(idx)
	}

	routes, err := GetCorresponding[StopPoint, Route](m, start)
	if err != nil {
		t.Fatalf("stop points to routes: %v", err)
	}
	viaRoutes, err := GetCorresponding[Route, CommercialMode](m, routes)
	if err != nil {
		t.Fatalf("routes to commercial modes: %v", err)
	}
	direct, err := GetCorresponding[StopPoint, CommercialMode](m, start)
	if err != nil {
		t.Fatalf("stop points to commercial modes: %v", err)
	}
	if len(viaRoutes) != len(direct) {
		t.Fatalf("via routes %d modes, direct %d modes", len(viaRoutes), len(direct))
	}
	for idx := range direct {
		if !viaRoutes.Contains(idx) {
			t.Errorf("handle %v in direct result but not in composed result", idx)
		}
	}
}

func TestModel_CorrespondingReverse(t *testing.T) {
	m := testModel(t)
	lineIdx, _ := m.Lines.GetIdx("L:1")

	points, err := GetCorrespondingFromIdx[Line, StopPoint](m, lineIdx)
	if err != nil {
		t.Fatalf("GetCorrespondingFromIdx: %v", err)
	}
	if len(points) != m.StopPoints.Len() {
		t.Errorf("line L:1 reaches %d stop points, want %d", len(points), m.StopPoints.Len())
	}
}

func TestNewModel_SetsDatasetValidity(t *testing.T) {
	m := testModel(t)
	ds, _ := m.Datasets.GetByID("D:1")
	wantStart := NewDate(2018, time.May, 1)
	wantEnd := NewDate(2018, time.August, 1)
	if ds.Validity.Start != wantStart || ds.Validity.End != wantEnd {
		t.Errorf("dataset validity = %s..%s, want %s..%s",
			ds.Validity.Start, ds.Validity.End, wantStart, wantEnd)
	}
}

func TestGetCorresponding_UnknownKind(t *testing.T) {
	m := testModel(t)
	if _, err := GetCorresponding[StopPoint, Transfer](m, collection.IdxSet[StopPoint]{}); err == nil {
		t.Error("expected error for a type outside the relation schema")
	}
}
