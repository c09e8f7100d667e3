// Package ntfs reads and writes a transit dataset as a directory of
// delimited-text files, one file per entity kind. It only maps fields; all
// validation happens in the model package.
package ntfs

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/theoremus-urban-solutions/transit-model/collection"
	"github.com/theoremus-urban-solutions/transit-model/model"
)

// row gives name-based access to one CSV record.
type row struct {
	head map[string]int
	rec  []string
}

func (r row) get(name string) string {
	i, ok := r.head[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

func (r row) getInt(name string, fallback int) int {
	v, err := strconv.Atoi(r.get(name))
	if err != nil {
		return fallback
	}
	return v
}

func (r row) getFloat(name string) (float64, error) {
	return strconv.ParseFloat(r.get(name), 64)
}

func (r row) getAvailability(name string) model.Availability {
	switch r.get(name) {
	case "1":
		return model.Available
	case "2":
		return model.NotAvailable
	default:
		return model.AvailabilityUnknown
	}
}

// consumeFile streams one file of the dataset directory through fn, one call
// per data row. A missing optional file is skipped silently; a missing
// required file is an error.
func consumeFile(dir, name string, required bool, fn func(r row, line int) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", name, err)
	}
	head := make(map[string]int, len(header))
	for i, h := range header {
		head[h] = i
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if err := fn(row{head: head, rec: rec}, line); err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
}

// Read loads a dataset directory into raw collections. The returned
// aggregate still has to be validated with model.NewModel.
func Read(dir string) (model.Collections, error) {
	c := model.NewCollections()
	log.Printf("Reading dataset from %s", dir)

	var err error
	if c.Contributors, err = readContributors(dir); err != nil {
		return c, err
	}
	if c.Datasets, err = readDatasets(dir); err != nil {
		return c, err
	}
	if c.Networks, err = readNetworks(dir); err != nil {
		return c, err
	}
	if c.Companies, err = readCompanies(dir); err != nil {
		return c, err
	}
	if c.CommercialModes, err = readCommercialModes(dir); err != nil {
		return c, err
	}
	if c.PhysicalModes, err = readPhysicalModes(dir); err != nil {
		return c, err
	}
	if c.Geometries, err = readGeometries(dir); err != nil {
		return c, err
	}
	if c.Comments, err = readComments(dir); err != nil {
		return c, err
	}
	if c.Equipments, err = readEquipments(dir); err != nil {
		return c, err
	}
	if c.TripProperties, err = readTripProperties(dir); err != nil {
		return c, err
	}
	if c.Lines, err = readLines(dir); err != nil {
		return c, err
	}
	if c.Routes, err = readRoutes(dir); err != nil {
		return c, err
	}
	if c.StopAreas, c.StopPoints, err = readStops(dir); err != nil {
		return c, err
	}
	if c.Calendars, err = readCalendars(dir); err != nil {
		return c, err
	}
	if c.VehicleJourneys, err = readTrips(dir); err != nil {
		return c, err
	}
	if err = readStopTimes(dir, c.VehicleJourneys); err != nil {
		return c, err
	}
	if c.Transfers, err = readTransfers(dir); err != nil {
		return c, err
	}
	if c.Frequencies, err = readFrequencies(dir); err != nil {
		return c, err
	}
	if c.AdminStations, err = readAdminStations(dir); err != nil {
		return c, err
	}
	if c.Tickets, err = readTickets(dir); err != nil {
		return c, err
	}
	if c.TicketPrices, err = readTicketPrices(dir); err != nil {
		return c, err
	}
	if err = readCommentLinks(dir, &c); err != nil {
		return c, err
	}
	if err = readFeedInfos(dir, c.FeedInfos); err != nil {
		return c, err
	}
	return c, nil
}

func readContributors(dir string) (*collection.CollectionWithID[model.Contributor], error) {
	var objects []model.Contributor
	err := consumeFile(dir, "contributors.txt", true, func(r row, _ int) error {
		objects = append(objects, model.Contributor{
			ID:      r.get("contributor_id"),
			Name:    r.get("contributor_name"),
			License: r.get("contributor_license"),
			Website: r.get("contributor_website"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readDatasets(dir string) (*collection.CollectionWithID[model.Dataset], error) {
	var objects []model.Dataset
	err := consumeFile(dir, "datasets.txt", true, func(r row, _ int) error {
		ds := model.Dataset{
			ID:            r.get("dataset_id"),
			ContributorID: r.get("contributor_id"),
		}
		if s := r.get("dataset_start_date"); s != "" {
			start, err := model.ParseDate(s)
			if err != nil {
				return err
			}
			ds.Validity.Start = start
		}
		if s := r.get("dataset_end_date"); s != "" {
			end, err := model.ParseDate(s)
			if err != nil {
				return err
			}
			ds.Validity.End = end
		}
		objects = append(objects, ds)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readNetworks(dir string) (*collection.CollectionWithID[model.Network], error) {
	var objects []model.Network
	err := consumeFile(dir, "networks.txt", true, func(r row, _ int) error {
		objects = append(objects, model.Network{
			ID:       r.get("network_id"),
			Name:     r.get("network_name"),
			URL:      r.get("network_url"),
			Timezone: r.get("network_timezone"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readCompanies(dir string) (*collection.CollectionWithID[model.Company], error) {
	var objects []model.Company
	err := consumeFile(dir, "companies.txt", true, func(r row, _ int) error {
		objects = append(objects, model.Company{
			ID:   r.get("company_id"),
			Name: r.get("company_name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readCommercialModes(dir string) (*collection.CollectionWithID[model.CommercialMode], error) {
	var objects []model.CommercialMode
	err := consumeFile(dir, "commercial_modes.txt", true, func(r row, _ int) error {
		objects = append(objects, model.CommercialMode{
			ID:   r.get("commercial_mode_id"),
			Name: r.get("commercial_mode_name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readPhysicalModes(dir string) (*collection.CollectionWithID[model.PhysicalMode], error) {
	var objects []model.PhysicalMode
	err := consumeFile(dir, "physical_modes.txt", true, func(r row, _ int) error {
		objects = append(objects, model.PhysicalMode{
			ID:   r.get("physical_mode_id"),
			Name: r.get("physical_mode_name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readGeometries(dir string) (*collection.CollectionWithID[model.Geometry], error) {
	var objects []model.Geometry
	err := consumeFile(dir, "geometries.txt", false, func(r row, _ int) error {
		objects = append(objects, model.Geometry{
			ID:  r.get("geometry_id"),
			WKT: r.get("geometry_wkt"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readComments(dir string) (*collection.CollectionWithID[model.Comment], error) {
	var objects []model.Comment
	err := consumeFile(dir, "comments.txt", false, func(r row, _ int) error {
		objects = append(objects, model.Comment{
			ID:    r.get("comment_id"),
			Type:  r.get("comment_type"),
			Label: r.get("comment_label"),
			Name:  r.get("comment_name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readEquipments(dir string) (*collection.CollectionWithID[model.Equipment], error) {
	var objects []model.Equipment
	err := consumeFile(dir, "equipments.txt", false, func(r row, _ int) error {
		objects = append(objects, model.Equipment{
			ID:                 r.get("equipment_id"),
			WheelchairBoarding: r.getAvailability("wheelchair_boarding"),
			Sheltered:          r.getAvailability("sheltered"),
			Elevator:           r.getAvailability("elevator"),
			Escalator:          r.getAvailability("escalator"),
			BikeAccepted:       r.getAvailability("bike_accepted"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readTripProperties(dir string) (*collection.CollectionWithID[model.TripProperty], error) {
	var objects []model.TripProperty
	err := consumeFile(dir, "trip_properties.txt", false, func(r row, _ int) error {
		objects = append(objects, model.TripProperty{
			ID:                   r.get("trip_property_id"),
			WheelchairAccessible: r.getAvailability("wheelchair_accessible"),
			BikeAccepted:         r.getAvailability("bike_accepted"),
			AirConditioned:       r.getAvailability("air_conditioned"),
			VisualAnnouncement:   r.getAvailability("visual_announcement"),
			AudibleAnnouncement:  r.getAvailability("audible_announcement"),
			SchoolVehicleType:    r.get("school_vehicle_type"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readLines(dir string) (*collection.CollectionWithID[model.Line], error) {
	var objects []model.Line
	err := consumeFile(dir, "lines.txt", true, func(r row, _ int) error {
		objects = append(objects, model.Line{
			ID:               r.get("line_id"),
			Code:             r.get("line_code"),
			Name:             r.get("line_name"),
			NetworkID:        r.get("network_id"),
			CommercialModeID: r.get("commercial_mode_id"),
			GeometryID:       r.get("geometry_id"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readRoutes(dir string) (*collection.CollectionWithID[model.Route], error) {
	var objects []model.Route
	err := consumeFile(dir, "routes.txt", true, func(r row, _ int) error {
		objects = append(objects, model.Route{
			ID:            r.get("route_id"),
			Name:          r.get("route_name"),
			LineID:        r.get("line_id"),
			GeometryID:    r.get("geometry_id"),
			DestinationID: r.get("destination_id"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

// readStops splits stops.txt on location_type: 1 is a stop area, 0 (or
// empty) a stop point.
func readStops(dir string) (*collection.CollectionWithID[model.StopArea], *collection.CollectionWithID[model.StopPoint], error) {
	var areas []model.StopArea
	var points []model.StopPoint
	err := consumeFile(dir, "stops.txt", true, func(r row, _ int) error {
		lat, latErr := r.getFloat("stop_lat")
		lon, lonErr := r.getFloat("stop_lon")
		if latErr != nil || lonErr != nil {
			return fmt.Errorf("stop %s: invalid coordinates", r.get("stop_id"))
		}
		coord := model.Coord{Lon: lon, Lat: lat}
		visible := r.get("visible") != "0"
		switch r.get("location_type") {
		case "1":
			areas = append(areas, model.StopArea{
				ID:          r.get("stop_id"),
				Name:        r.get("stop_name"),
				Coord:       coord,
				Visible:     visible,
				Timezone:    r.get("stop_timezone"),
				GeometryID:  r.get("geometry_id"),
				EquipmentID: r.get("equipment_id"),
			})
		default:
			points = append(points, model.StopPoint{
				ID:          r.get("stop_id"),
				Name:        r.get("stop_name"),
				Coord:       coord,
				StopAreaID:  r.get("parent_station"),
				Visible:     visible,
				Timezone:    r.get("stop_timezone"),
				FareZoneID:  r.get("fare_zone_id"),
				EquipmentID: r.get("equipment_id"),
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	stopAreas, err := collection.NewCollectionWithID(areas)
	if err != nil {
		return nil, nil, err
	}
	stopPoints, err := collection.NewCollectionWithID(points)
	if err != nil {
		return nil, nil, err
	}
	return stopAreas, stopPoints, nil
}

// readCalendars folds calendar.txt weekday patterns and calendar_dates.txt
// exceptions into explicit date sets.
func readCalendars(dir string) (*collection.CollectionWithID[model.Calendar], error) {
	dates := map[string]model.DateSet{}
	order := []string{}
	ensure := func(id string) model.DateSet {
		if _, ok := dates[id]; !ok {
			dates[id] = model.DateSet{}
			order = append(order, id)
		}
		return dates[id]
	}

	weekdayCols := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	err := consumeFile(dir, "calendar.txt", false, func(r row, _ int) error {
		start, err := model.ParseDate(r.get("start_date"))
		if err != nil {
			return err
		}
		end, err := model.ParseDate(r.get("end_date"))
		if err != nil {
			return err
		}
		var active [7]bool
		for wd, col := range weekdayCols {
			active[wd] = r.get(col) == "1"
		}
		set := ensure(r.get("service_id"))
		for d := start; !d.After(end); d = d.Next() {
			if active[int(d.Weekday())] {
				set.Add(d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = consumeFile(dir, "calendar_dates.txt", false, func(r row, _ int) error {
		d, err := model.ParseDate(r.get("date"))
		if err != nil {
			return err
		}
		set := ensure(r.get("service_id"))
		switch r.get("exception_type") {
		case "2":
			delete(set, d)
		default:
			set.Add(d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	objects := make([]model.Calendar, 0, len(order))
	for _, id := range order {
		objects = append(objects, model.Calendar{ID: id, Dates: dates[id]})
	}
	return collection.NewCollectionWithID(objects)
}

func readTrips(dir string) (*collection.CollectionWithID[model.VehicleJourney], error) {
	var objects []model.VehicleJourney
	err := consumeFile(dir, "trips.txt", true, func(r row, _ int) error {
		objects = append(objects, model.VehicleJourney{
			ID:             r.get("trip_id"),
			RouteID:        r.get("route_id"),
			ServiceID:      r.get("service_id"),
			CompanyID:      r.get("company_id"),
			PhysicalModeID: r.get("physical_mode_id"),
			DatasetID:      r.get("dataset_id"),
			Headsign:       r.get("trip_headsign"),
			BlockID:        r.get("block_id"),
			GeometryID:     r.get("geometry_id"),
			TripPropertyID: r.get("trip_property_id"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

// readStopTimes attaches stop times to their owning journey, ordered by
// stop_sequence.
func readStopTimes(dir string, journeys *collection.CollectionWithID[model.VehicleJourney]) error {
	err := consumeFile(dir, "stop_times.txt", true, func(r row, _ int) error {
		vj, ok := journeys.GetByID(r.get("trip_id"))
		if !ok {
			return fmt.Errorf("stop time references unknown trip %q", r.get("trip_id"))
		}
		arrival, err := model.ParseTimeOfDay(r.get("arrival_time"))
		if err != nil {
			return err
		}
		departure, err := model.ParseTimeOfDay(r.get("departure_time"))
		if err != nil {
			return err
		}
		vj.StopTimes = append(vj.StopTimes, model.StopTime{
			StopPointID:   r.get("stop_id"),
			Sequence:      uint32(r.getInt("stop_sequence", 0)),
			ArrivalTime:   arrival,
			DepartureTime: departure,
			PickupType:    uint8(r.getInt("pickup_type", 0)),
			DropOffType:   uint8(r.getInt("drop_off_type", 0)),
		})
		return nil
	})
	if err != nil {
		return err
	}
	for _, vj := range journeys.All() {
		sort.Slice(vj.StopTimes, func(i, j int) bool {
			return vj.StopTimes[i].Sequence < vj.StopTimes[j].Sequence
		})
	}
	return nil
}

func readTransfers(dir string) (*collection.Collection[model.Transfer], error) {
	var objects []model.Transfer
	err := consumeFile(dir, "transfers.txt", false, func(r row, _ int) error {
		t := model.Transfer{
			FromStopPointID: r.get("from_stop_id"),
			ToStopPointID:   r.get("to_stop_id"),
		}
		if s := r.get("min_transfer_time"); s != "" {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return err
			}
			u := uint32(v)
			t.MinTransferTime = &u
		}
		if s := r.get("real_min_transfer_time"); s != "" {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return err
			}
			u := uint32(v)
			t.RealMinTransferTime = &u
		}
		objects = append(objects, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollection(objects), nil
}

func readFrequencies(dir string) (*collection.Collection[model.Frequency], error) {
	var objects []model.Frequency
	err := consumeFile(dir, "frequencies.txt", false, func(r row, _ int) error {
		start, err := model.ParseTimeOfDay(r.get("start_time"))
		if err != nil {
			return err
		}
		end, err := model.ParseTimeOfDay(r.get("end_time"))
		if err != nil {
			return err
		}
		objects = append(objects, model.Frequency{
			VehicleJourneyID: r.get("trip_id"),
			StartTime:        start,
			EndTime:          end,
			HeadwaySecs:      uint32(r.getInt("headway_secs", 0)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollection(objects), nil
}

func readAdminStations(dir string) (*collection.Collection[model.AdminStation], error) {
	var objects []model.AdminStation
	err := consumeFile(dir, "admin_stations.txt", false, func(r row, _ int) error {
		objects = append(objects, model.AdminStation{
			AdminID:    r.get("admin_id"),
			AdminName:  r.get("admin_name"),
			StopAreaID: r.get("stop_id"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollection(objects), nil
}

func readTickets(dir string) (*collection.CollectionWithID[model.Ticket], error) {
	var objects []model.Ticket
	err := consumeFile(dir, "tickets.txt", false, func(r row, _ int) error {
		objects = append(objects, model.Ticket{
			ID:      r.get("ticket_id"),
			Name:    r.get("ticket_name"),
			Comment: r.get("ticket_comment"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollectionWithID(objects)
}

func readTicketPrices(dir string) (*collection.Collection[model.TicketPrice], error) {
	var objects []model.TicketPrice
	err := consumeFile(dir, "ticket_prices.txt", false, func(r row, _ int) error {
		price, err := strconv.ParseFloat(r.get("ticket_price"), 64)
		if err != nil {
			return fmt.Errorf("ticket %s: invalid price", r.get("ticket_id"))
		}
		tp := model.TicketPrice{
			TicketID: r.get("ticket_id"),
			Price:    price,
			Currency: r.get("ticket_currency"),
		}
		if s := r.get("ticket_validity_start"); s != "" {
			start, err := model.ParseDate(s)
			if err != nil {
				return err
			}
			tp.Validity.Start = start
		}
		if s := r.get("ticket_validity_end"); s != "" {
			end, err := model.ParseDate(s)
			if err != nil {
				return err
			}
			tp.Validity.End = end
		}
		objects = append(objects, tp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection.NewCollection(objects), nil
}

// readCommentLinks distributes comment links onto their owning objects.
func readCommentLinks(dir string, c *model.Collections) error {
	return consumeFile(dir, "comment_links.txt", false, func(r row, _ int) error {
		objectID := r.get("object_id")
		commentID := r.get("comment_id")
		switch r.get("object_type") {
		case "line":
			if l, ok := c.Lines.GetByID(objectID); ok {
				l.CommentLinks = append(l.CommentLinks, commentID)
			}
		case "route":
			if rt, ok := c.Routes.GetByID(objectID); ok {
				rt.CommentLinks = append(rt.CommentLinks, commentID)
			}
		case "trip":
			if vj, ok := c.VehicleJourneys.GetByID(objectID); ok {
				vj.CommentLinks = append(vj.CommentLinks, commentID)
			}
		case "stop_area":
			if sa, ok := c.StopAreas.GetByID(objectID); ok {
				sa.CommentLinks = append(sa.CommentLinks, commentID)
			}
		case "stop_point":
			if sp, ok := c.StopPoints.GetByID(objectID); ok {
				sp.CommentLinks = append(sp.CommentLinks, commentID)
			}
		}
		return nil
	})
}

func readFeedInfos(dir string, infos map[string]string) error {
	return consumeFile(dir, "feed_infos.txt", false, func(r row, _ int) error {
		infos[r.get("feed_info_param")] = r.get("feed_info_value")
		return nil
	})
}
