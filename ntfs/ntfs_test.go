package ntfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/transit-model/collection"
	"github.com/theoremus-urban-solutions/transit-model/model"
)

func writeFixture(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// minimalFiles is the smallest dataset the reader accepts: every required
// file, one record each.
func minimalFiles() map[string]string {
	return map[string]string{
		"contributors.txt":     "contributor_id,contributor_name\nC:1,contributor\n",
		"datasets.txt":         "dataset_id,contributor_id\nD:1,C:1\n",
		"networks.txt":         "network_id,network_name\nN:1,network\n",
		"companies.txt":        "company_id,company_name\nCO:1,operator\n",
		"commercial_modes.txt": "commercial_mode_id,commercial_mode_name\nCM:bus,Bus\n",
		"physical_modes.txt":   "physical_mode_id,physical_mode_name\nPM:bus,Bus\n",
		"lines.txt":            "line_id,line_name,network_id,commercial_mode_id\nL:1,line 1,N:1,CM:bus\n",
		"routes.txt":           "route_id,route_name,line_id\nR:1,forward,L:1\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			"SA:1,main,48.85,2.35,1,\n" +
			"SP:1,main quay,48.85,2.35,0,SA:1\n" +
			"SP:2,north quay,48.8505,2.35,0,SA:1\n",
		"trips.txt": "trip_id,route_id,service_id,company_id,physical_mode_id,dataset_id\n" +
			"VJ:1,R:1,CAL:1,CO:1,PM:bus,D:1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"VJ:1,08:10:00,08:10:30,SP:2,1\n" +
			"VJ:1,08:00:00,08:00:30,SP:1,0\n",
		"calendar_dates.txt": "service_id,date,exception_type\nCAL:1,20180501,1\n",
	}
}

func TestRead_MinimalDataset(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, minimalFiles())

	c, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if c.StopAreas.Len() != 1 || c.StopPoints.Len() != 2 {
		t.Errorf("got %d stop areas and %d stop points, want 1 and 2",
			c.StopAreas.Len(), c.StopPoints.Len())
	}
	sp, ok := c.StopPoints.GetByID("SP:1")
	if !ok {
		t.Fatal("SP:1 not read")
	}
	if sp.StopAreaID != "SA:1" {
		t.Errorf("SP:1 parent = %q, want SA:1", sp.StopAreaID)
	}

	vj, ok := c.VehicleJourneys.GetByID("VJ:1")
	if !ok {
		t.Fatal("VJ:1 not read")
	}
	if len(vj.StopTimes) != 2 {
		t.Fatalf("VJ:1 has %d stop times, want 2", len(vj.StopTimes))
	}
	// stop times are reordered by sequence regardless of file order
	if vj.StopTimes[0].StopPointID != "SP:1" || vj.StopTimes[1].StopPointID != "SP:2" {
		t.Errorf("stop times out of order: %s, %s",
			vj.StopTimes[0].StopPointID, vj.StopTimes[1].StopPointID)
	}
	if vj.StopTimes[0].ArrivalTime != 8*3600 {
		t.Errorf("first arrival = %d, want 08:00:00", vj.StopTimes[0].ArrivalTime)
	}

	if _, err := model.NewModel(c); err != nil {
		t.Errorf("minimal dataset does not validate: %v", err)
	}
}

func TestRead_MissingRequiredFile(t *testing.T) {
	if _, err := Read(t.TempDir()); err == nil {
		t.Fatal("expected error for an empty dataset directory")
	}
}

// A weekday pattern is expanded into explicit dates; exception rows then add
// and remove single days.
func TestRead_CalendarExpansion(t *testing.T) {
	dir := t.TempDir()
	files := minimalFiles()
	files["calendar.txt"] = "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"CAL:1,1,0,0,0,0,0,0,20180501,20180514\n"
	files["calendar_dates.txt"] = "service_id,date,exception_type\n" +
		"CAL:1,20180520,1\n" +
		"CAL:1,20180507,2\n"
	writeFixture(t, dir, files)

	c, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	cal, ok := c.Calendars.GetByID("CAL:1")
	if !ok {
		t.Fatal("CAL:1 not read")
	}
	// Mondays in range are May 7 and May 14; May 7 is removed, May 20 added.
	want := []model.Date{
		model.NewDate(2018, time.May, 14),
		model.NewDate(2018, time.May, 20),
	}
	if len(cal.Dates) != len(want) {
		t.Fatalf("calendar has %d dates, want %d: %v", len(cal.Dates), len(want), cal.Dates)
	}
	for _, d := range want {
		if !cal.Dates.Contains(d) {
			t.Errorf("date %s missing from calendar", d)
		}
	}
}

func roundTripModel(t *testing.T) *model.Model {
	t.Helper()
	c := model.NewCollections()
	c.Contributors = collection.MustCollectionWithID([]model.Contributor{
		{ID: "C:1", Name: "contributor", License: "ODbL"},
	})
	c.Datasets = collection.MustCollectionWithID([]model.Dataset{{ID: "D:1", ContributorID: "C:1"}})
	c.Networks = collection.MustCollectionWithID([]model.Network{{ID: "N:1", Name: "network", Timezone: "Europe/Paris"}})
	c.Companies = collection.MustCollectionWithID([]model.Company{{ID: "CO:1", Name: "operator"}})
	c.CommercialModes = collection.MustCollectionWithID([]model.CommercialMode{{ID: "CM:bus", Name: "Bus"}})
	c.PhysicalModes = collection.MustCollectionWithID([]model.PhysicalMode{{ID: "PM:bus", Name: "Bus"}})
	c.Comments = collection.MustCollectionWithID([]model.Comment{
		{ID: "COM:1", Type: "information", Name: "works until june"},
	})
	c.Equipments = collection.MustCollectionWithID([]model.Equipment{
		{ID: "EQ:1", WheelchairBoarding: model.Available, Elevator: model.NotAvailable},
	})
	c.Lines = collection.MustCollectionWithID([]model.Line{
		{ID: "L:1", Code: "1", Name: "line 1", NetworkID: "N:1", CommercialModeID: "CM:bus", CommentLinks: []string{"COM:1"}},
	})
	c.Routes = collection.MustCollectionWithID([]model.Route{
		{ID: "R:1", Name: "forward", LineID: "L:1", DestinationID: "SA:1"},
	})
	c.StopAreas = collection.MustCollectionWithID([]model.StopArea{
		{ID: "SA:1", Name: "main", Coord: model.Coord{Lon: 2.35, Lat: 48.85}, Visible: true, EquipmentID: "EQ:1"},
		{ID: "SA:2", Name: "north", Coord: model.Coord{Lon: 2.35, Lat: 48.8505}, Visible: true},
	})
	c.StopPoints = collection.MustCollectionWithID([]model.StopPoint{
		{ID: "SP:1", Name: "main quay", Coord: model.Coord{Lon: 2.35, Lat: 48.85}, StopAreaID: "SA:1", Visible: true},
		{ID: "SP:2", Name: "north quay", Coord: model.Coord{Lon: 2.35, Lat: 48.8505}, StopAreaID: "SA:2", Visible: true},
	})
	c.Calendars = collection.MustCollectionWithID([]model.Calendar{
		{ID: "CAL:1", Dates: model.NewDateSet(
			model.NewDate(2018, time.May, 1),
			model.NewDate(2018, time.June, 1),
		)},
	})
	c.VehicleJourneys = collection.MustCollectionWithID([]model.VehicleJourney{
		{
			ID: "VJ:1", RouteID: "R:1", ServiceID: "CAL:1", CompanyID: "CO:1",
			PhysicalModeID: "PM:bus", DatasetID: "D:1", Headsign: "north",
			StopTimes: []model.StopTime{
				{StopPointID: "SP:1", Sequence: 0, ArrivalTime: 8 * 3600, DepartureTime: 8*3600 + 30},
				{StopPointID: "SP:2", Sequence: 1, ArrivalTime: 8*3600 + 600, DepartureTime: 8*3600 + 630},
			},
		},
	})
	c.Transfers = collection.NewCollection([]model.Transfer{
		{FromStopPointID: "SP:1", ToStopPointID: "SP:2"},
	})
	c.Frequencies = collection.NewCollection([]model.Frequency{
		{VehicleJourneyID: "VJ:1", StartTime: 6 * 3600, EndTime: 9 * 3600, HeadwaySecs: 600},
	})
	c.AdminStations = collection.NewCollection([]model.AdminStation{
		{AdminID: "ADM:1", AdminName: "center", StopAreaID: "SA:1"},
	})
	c.Tickets = collection.MustCollectionWithID([]model.Ticket{{ID: "T:1", Name: "single"}})
	c.TicketPrices = collection.NewCollection([]model.TicketPrice{
		{TicketID: "T:1", Price: 1.9, Currency: "EUR",
			Validity: model.ValidityPeriod{
				Start: model.NewDate(2018, time.May, 1),
				End:   model.NewDate(2018, time.December, 31),
			}},
	})
	c.FeedInfos["feed_publisher_name"] = "test"

	m, err := model.NewModel(c)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m := roundTripModel(t)
	dir := t.TempDir()
	if err := Write(m, dir); err != nil {
		t.Fatalf("Write: %v", err)
	}

	c, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	back, err := model.NewModel(c)
	if err != nil {
		t.Fatalf("NewModel after round trip: %v", err)
	}

	if back.StopAreas.Len() != m.StopAreas.Len() ||
		back.StopPoints.Len() != m.StopPoints.Len() ||
		back.VehicleJourneys.Len() != m.VehicleJourneys.Len() ||
		back.Calendars.Len() != m.Calendars.Len() ||
		back.Transfers.Len() != m.Transfers.Len() ||
		back.Frequencies.Len() != m.Frequencies.Len() {
		t.Error("record counts changed across the round trip")
	}

	vj, ok := back.VehicleJourneys.GetByID("VJ:1")
	if !ok {
		t.Fatal("VJ:1 lost in round trip")
	}
	orig, _ := m.VehicleJourneys.GetByID("VJ:1")
	if len(vj.StopTimes) != len(orig.StopTimes) {
		t.Fatalf("stop times: %d, want %d", len(vj.StopTimes), len(orig.StopTimes))
	}
	for i := range vj.StopTimes {
		if vj.StopTimes[i] != orig.StopTimes[i] {
			t.Errorf("stop time %d = %+v, want %+v", i, vj.StopTimes[i], orig.StopTimes[i])
		}
	}

	cal, _ := back.Calendars.GetByID("CAL:1")
	if !cal.Dates.Contains(model.NewDate(2018, time.May, 1)) ||
		!cal.Dates.Contains(model.NewDate(2018, time.June, 1)) {
		t.Errorf("calendar dates lost: %v", cal.Dates)
	}

	l, _ := back.Lines.GetByID("L:1")
	if len(l.CommentLinks) != 1 || l.CommentLinks[0] != "COM:1" {
		t.Errorf("comment links = %v, want [COM:1]", l.CommentLinks)
	}

	sa, _ := back.StopAreas.GetByID("SA:1")
	if sa.EquipmentID != "EQ:1" {
		t.Errorf("equipment reference = %q, want EQ:1", sa.EquipmentID)
	}
	if sa.Coord != (model.Coord{Lon: 2.35, Lat: 48.85}) {
		t.Errorf("coordinates = %+v", sa.Coord)
	}

	if back.AdminStations.Len() != 1 || back.Tickets.Len() != 1 {
		t.Errorf("got %d admin stations and %d tickets, want 1 and 1",
			back.AdminStations.Len(), back.Tickets.Len())
	}
	if back.TicketPrices.Len() != 1 {
		t.Fatalf("got %d ticket prices, want 1", back.TicketPrices.Len())
	}
	price := back.TicketPrices.Values()[0]
	if price.Price != 1.9 || price.Currency != "EUR" ||
		price.Validity.Start != model.NewDate(2018, time.May, 1) {
		t.Errorf("ticket price = %+v", price)
	}

	if back.FeedInfos["feed_publisher_name"] != "test" {
		t.Errorf("feed infos = %v", back.FeedInfos)
	}
}
