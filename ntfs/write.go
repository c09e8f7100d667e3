package ntfs

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/theoremus-urban-solutions/transit-model/model"
)

// writeFile writes one CSV file of the dataset directory. Files with no data
// rows are skipped entirely.
func writeFile(dir, name string, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func availabilityField(a model.Availability) string {
	switch a {
	case model.Available:
		return "1"
	case model.NotAvailable:
		return "2"
	default:
		return ""
	}
}

// Write serializes the model as a dataset directory.
func Write(m *model.Model, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	log.Printf("Writing dataset to %s", dir)

	writers := []func(*model.Model, string) error{
		writeContributors,
		writeDatasets,
		writeNetworks,
		writeCompanies,
		writeCommercialModes,
		writePhysicalModes,
		writeLines,
		writeRoutes,
		writeStops,
		writeTrips,
		writeStopTimes,
		writeCalendarDates,
		writeTransfers,
		writeFrequencies,
		writeAdminStations,
		writeTickets,
		writeTicketPrices,
		writeComments,
		writeCommentLinks,
		writeEquipments,
		writeTripProperties,
		writeGeometries,
		writeFeedInfos,
	}
	for _, w := range writers {
		if err := w(m, dir); err != nil {
			return err
		}
	}
	return nil
}

func writeContributors(m *model.Model, dir string) error {
	var rows [][]string
	for _, c := range m.Contributors.All() {
		rows = append(rows, []string{c.ID, c.Name, c.License, c.Website})
	}
	return writeFile(dir, "contributors.txt",
		[]string{"contributor_id", "contributor_name", "contributor_license", "contributor_website"}, rows)
}

func writeDatasets(m *model.Model, dir string) error {
	var rows [][]string
	for _, ds := range m.Datasets.All() {
		rows = append(rows, []string{ds.ID, ds.ContributorID, ds.Validity.Start.Format(), ds.Validity.End.Format()})
	}
	return writeFile(dir, "datasets.txt",
		[]string{"dataset_id", "contributor_id", "dataset_start_date", "dataset_end_date"}, rows)
}

func writeNetworks(m *model.Model, dir string) error {
	var rows [][]string
	for _, n := range m.Networks.All() {
		rows = append(rows, []string{n.ID, n.Name, n.URL, n.Timezone})
	}
	return writeFile(dir, "networks.txt",
		[]string{"network_id", "network_name", "network_url", "network_timezone"}, rows)
}

func writeCompanies(m *model.Model, dir string) error {
	var rows [][]string
	for _, c := range m.Companies.All() {
		rows = append(rows, []string{c.ID, c.Name})
	}
	return writeFile(dir, "companies.txt", []string{"company_id", "company_name"}, rows)
}

func writeCommercialModes(m *model.Model, dir string) error {
	var rows [][]string
	for _, cm := range m.CommercialModes.All() {
		rows = append(rows, []string{cm.ID, cm.Name})
	}
	return writeFile(dir, "commercial_modes.txt", []string{"commercial_mode_id", "commercial_mode_name"}, rows)
}

func writePhysicalModes(m *model.Model, dir string) error {
	var rows [][]string
	for _, pm := range m.PhysicalModes.All() {
		rows = append(rows, []string{pm.ID, pm.Name})
	}
	return writeFile(dir, "physical_modes.txt", []string{"physical_mode_id", "physical_mode_name"}, rows)
}

func writeLines(m *model.Model, dir string) error {
	var rows [][]string
	for _, l := range m.Lines.All() {
		rows = append(rows, []string{l.ID, l.Code, l.Name, l.NetworkID, l.CommercialModeID, l.GeometryID})
	}
	return writeFile(dir, "lines.txt",
		[]string{"line_id", "line_code", "line_name", "network_id", "commercial_mode_id", "geometry_id"}, rows)
}

func writeRoutes(m *model.Model, dir string) error {
	var rows [][]string
	for _, r := range m.Routes.All() {
		rows = append(rows, []string{r.ID, r.Name, r.LineID, r.GeometryID, r.DestinationID})
	}
	return writeFile(dir, "routes.txt",
		[]string{"route_id", "route_name", "line_id", "geometry_id", "destination_id"}, rows)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeStops(m *model.Model, dir string) error {
	visibleField := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	var rows [][]string
	for _, sa := range m.StopAreas.All() {
		rows = append(rows, []string{
			sa.ID, sa.Name, formatCoord(sa.Coord.Lat), formatCoord(sa.Coord.Lon),
			"1", "", visibleField(sa.Visible), sa.Timezone, "", sa.GeometryID, sa.EquipmentID,
		})
	}
	for _, sp := range m.StopPoints.All() {
		rows = append(rows, []string{
			sp.ID, sp.Name, formatCoord(sp.Coord.Lat), formatCoord(sp.Coord.Lon),
			"0", sp.StopAreaID, visibleField(sp.Visible), sp.Timezone, sp.FareZoneID, "", sp.EquipmentID,
		})
	}
	return writeFile(dir, "stops.txt",
		[]string{"stop_id", "stop_name", "stop_lat", "stop_lon", "location_type",
			"parent_station", "visible", "stop_timezone", "fare_zone_id", "geometry_id", "equipment_id"}, rows)
}

func writeTrips(m *model.Model, dir string) error {
	var rows [][]string
	for _, vj := range m.VehicleJourneys.All() {
		rows = append(rows, []string{
			vj.ID, vj.RouteID, vj.ServiceID, vj.CompanyID, vj.PhysicalModeID,
			vj.DatasetID, vj.Headsign, vj.BlockID, vj.GeometryID, vj.TripPropertyID,
		})
	}
	return writeFile(dir, "trips.txt",
		[]string{"trip_id", "route_id", "service_id", "company_id", "physical_mode_id",
			"dataset_id", "trip_headsign", "block_id", "geometry_id", "trip_property_id"}, rows)
}

func writeStopTimes(m *model.Model, dir string) error {
	var rows [][]string
	for _, vj := range m.VehicleJourneys.All() {
		for _, st := range vj.StopTimes {
			rows = append(rows, []string{
				vj.ID, st.ArrivalTime.String(), st.DepartureTime.String(), st.StopPointID,
				strconv.FormatUint(uint64(st.Sequence), 10),
				strconv.Itoa(int(st.PickupType)), strconv.Itoa(int(st.DropOffType)),
			})
		}
	}
	return writeFile(dir, "stop_times.txt",
		[]string{"trip_id", "arrival_time", "departure_time", "stop_id", "stop_sequence",
			"pickup_type", "drop_off_type"}, rows)
}

// writeCalendarDates writes every calendar as explicit dates; the weekday
// pattern form is never reconstructed.
func writeCalendarDates(m *model.Model, dir string) error {
	var rows [][]string
	for _, cal := range m.Calendars.All() {
		dates := make([]model.Date, 0, len(cal.Dates))
		for d := range cal.Dates {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for _, d := range dates {
			rows = append(rows, []string{cal.ID, d.Format(), "1"})
		}
	}
	return writeFile(dir, "calendar_dates.txt", []string{"service_id", "date", "exception_type"}, rows)
}

func writeTransfers(m *model.Model, dir string) error {
	uintField := func(v *uint32) string {
		if v == nil {
			return ""
		}
		return strconv.FormatUint(uint64(*v), 10)
	}
	var rows [][]string
	for _, t := range m.Transfers.All() {
		rows = append(rows, []string{
			t.FromStopPointID, t.ToStopPointID,
			uintField(t.MinTransferTime), uintField(t.RealMinTransferTime),
		})
	}
	return writeFile(dir, "transfers.txt",
		[]string{"from_stop_id", "to_stop_id", "min_transfer_time", "real_min_transfer_time"}, rows)
}

func writeFrequencies(m *model.Model, dir string) error {
	var rows [][]string
	for _, fr := range m.Frequencies.All() {
		rows = append(rows, []string{
			fr.VehicleJourneyID, fr.StartTime.String(), fr.EndTime.String(),
			strconv.FormatUint(uint64(fr.HeadwaySecs), 10),
		})
	}
	return writeFile(dir, "frequencies.txt",
		[]string{"trip_id", "start_time", "end_time", "headway_secs"}, rows)
}

func writeAdminStations(m *model.Model, dir string) error {
	var rows [][]string
	for _, as := range m.AdminStations.All() {
		rows = append(rows, []string{as.AdminID, as.AdminName, as.StopAreaID})
	}
	return writeFile(dir, "admin_stations.txt", []string{"admin_id", "admin_name", "stop_id"}, rows)
}

func writeTickets(m *model.Model, dir string) error {
	var rows [][]string
	for _, tk := range m.Tickets.All() {
		rows = append(rows, []string{tk.ID, tk.Name, tk.Comment})
	}
	return writeFile(dir, "tickets.txt", []string{"ticket_id", "ticket_name", "ticket_comment"}, rows)
}

func writeTicketPrices(m *model.Model, dir string) error {
	dateField := func(d model.Date) string {
		if d == (model.Date{}) {
			return ""
		}
		return d.Format()
	}
	var rows [][]string
	for _, tp := range m.TicketPrices.All() {
		rows = append(rows, []string{
			tp.TicketID, strconv.FormatFloat(tp.Price, 'f', -1, 64), tp.Currency,
			dateField(tp.Validity.Start), dateField(tp.Validity.End),
		})
	}
	return writeFile(dir, "ticket_prices.txt",
		[]string{"ticket_id", "ticket_price", "ticket_currency",
			"ticket_validity_start", "ticket_validity_end"}, rows)
}

func writeComments(m *model.Model, dir string) error {
	var rows [][]string
	for _, c := range m.Comments.All() {
		rows = append(rows, []string{c.ID, c.Type, c.Label, c.Name})
	}
	return writeFile(dir, "comments.txt",
		[]string{"comment_id", "comment_type", "comment_label", "comment_name"}, rows)
}

func writeCommentLinks(m *model.Model, dir string) error {
	var rows [][]string
	appendLinks := func(objectType, objectID string, links []string) {
		for _, commentID := range links {
			rows = append(rows, []string{objectID, objectType, commentID})
		}
	}
	for _, l := range m.Lines.All() {
		appendLinks("line", l.ID, l.CommentLinks)
	}
	for _, r := range m.Routes.All() {
		appendLinks("route", r.ID, r.CommentLinks)
	}
	for _, vj := range m.VehicleJourneys.All() {
		appendLinks("trip", vj.ID, vj.CommentLinks)
	}
	for _, sa := range m.StopAreas.All() {
		appendLinks("stop_area", sa.ID, sa.CommentLinks)
	}
	for _, sp := range m.StopPoints.All() {
		appendLinks("stop_point", sp.ID, sp.CommentLinks)
	}
	return writeFile(dir, "comment_links.txt", []string{"object_id", "object_type", "comment_id"}, rows)
}

func writeEquipments(m *model.Model, dir string) error {
	var rows [][]string
	for _, e := range m.Equipments.All() {
		rows = append(rows, []string{
			e.ID,
			availabilityField(e.WheelchairBoarding), availabilityField(e.Sheltered),
			availabilityField(e.Elevator), availabilityField(e.Escalator),
			availabilityField(e.BikeAccepted),
		})
	}
	return writeFile(dir, "equipments.txt",
		[]string{"equipment_id", "wheelchair_boarding", "sheltered", "elevator", "escalator", "bike_accepted"}, rows)
}

func writeTripProperties(m *model.Model, dir string) error {
	var rows [][]string
	for _, tp := range m.TripProperties.All() {
		rows = append(rows, []string{
			tp.ID,
			availabilityField(tp.WheelchairAccessible), availabilityField(tp.BikeAccepted),
			availabilityField(tp.AirConditioned), availabilityField(tp.VisualAnnouncement),
			availabilityField(tp.AudibleAnnouncement), tp.SchoolVehicleType,
		})
	}
	return writeFile(dir, "trip_properties.txt",
		[]string{"trip_property_id", "wheelchair_accessible", "bike_accepted", "air_conditioned",
			"visual_announcement", "audible_announcement", "school_vehicle_type"}, rows)
}

func writeGeometries(m *model.Model, dir string) error {
	var rows [][]string
	for _, g := range m.Geometries.All() {
		rows = append(rows, []string{g.ID, g.WKT})
	}
	return writeFile(dir, "geometries.txt", []string{"geometry_id", "geometry_wkt"}, rows)
}

func writeFeedInfos(m *model.Model, dir string) error {
	params := make([]string, 0, len(m.FeedInfos))
	for k := range m.FeedInfos {
		params = append(params, k)
	}
	sort.Strings(params)
	var rows [][]string
	for _, k := range params {
		rows = append(rows, []string{k, m.FeedInfos[k]})
	}
	return writeFile(dir, "feed_infos.txt", []string{"feed_info_param", "feed_info_value"}, rows)
}
