// Package model holds the in-memory relational model of a transit dataset:
// the per-kind object collections, the relation graph between them, and the
// transformations (sanitize, validity restriction) that keep the model
// referentially closed.
package model

// Coord is a WGS84 position.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Code is an external identifier attached to an object by a source system.
type Code struct {
	System string
	Value  string
}

// Availability of an accessibility feature.
type Availability uint8

const (
	AvailabilityUnknown Availability = iota
	Available
	NotAvailable
)

// ValidityPeriod is a closed date interval.
type ValidityPeriod struct {
	Start Date
	End   Date
}

// Contributor is the producer of one or more datasets.
type Contributor struct {
	ID      string
	Name    string
	License string
	Website string
}

func (c Contributor) ObjectID() string { return c.ID }

// Dataset is one ingested data batch, owned by a contributor. Its validity
// period is derived from the calendars it contains.
type Dataset struct {
	ID            string
	ContributorID string
	Validity      ValidityPeriod
}

func (d Dataset) ObjectID() string { return d.ID }

// Network is a commercial transit network.
type Network struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}

func (n Network) ObjectID() string { return n.ID }

// Company operates vehicle journeys.
type Company struct {
	ID   string
	Name string
}

func (c Company) ObjectID() string { return c.ID }

// CommercialMode is the rider-facing mode of a line (e.g. Bus, Metro).
type CommercialMode struct {
	ID   string
	Name string
}

func (m CommercialMode) ObjectID() string { return m.ID }

// PhysicalMode is the physical vehicle mode of a journey.
type PhysicalMode struct {
	ID   string
	Name string
}

func (m PhysicalMode) ObjectID() string { return m.ID }

// Line groups routes under a network and a commercial mode.
type Line struct {
	ID               string
	Code             string
	Name             string
	NetworkID        string
	CommercialModeID string
	GeometryID       string // optional
	CommentLinks     []string
	Codes            []Code
}

func (l Line) ObjectID() string { return l.ID }

// Route is one directional variant of a line.
type Route struct {
	ID            string
	Name          string
	LineID        string
	GeometryID    string // optional
	DestinationID string // optional stop area
	CommentLinks  []string
	Codes         []Code
}

func (r Route) ObjectID() string { return r.ID }

// StopTime is one passage of a journey at a stop point. Stop times are owned
// by their vehicle journey and have no identifier of their own.
type StopTime struct {
	StopPointID   string
	Sequence      uint32
	ArrivalTime   TimeOfDay
	DepartureTime TimeOfDay
	PickupType    uint8
	DropOffType   uint8
}

// VehicleJourney is one scheduled trip over a route.
type VehicleJourney struct {
	ID             string
	RouteID        string
	ServiceID      string // calendar reference
	CompanyID      string
	PhysicalModeID string
	DatasetID      string
	Headsign       string
	BlockID        string
	GeometryID     string // optional
	TripPropertyID string // optional
	StopTimes      []StopTime
	CommentLinks   []string
	Codes          []Code
}

func (vj VehicleJourney) ObjectID() string { return vj.ID }

// StopArea is a named grouping of stop points.
type StopArea struct {
	ID           string
	Name         string
	Coord        Coord
	Visible      bool
	Timezone     string
	GeometryID   string // optional
	EquipmentID  string // optional
	CommentLinks []string
	Codes        []Code
}

func (sa StopArea) ObjectID() string { return sa.ID }

// StopPoint is a physical boarding position belonging to a stop area.
type StopPoint struct {
	ID           string
	Name         string
	Coord        Coord
	StopAreaID   string
	Visible      bool
	Timezone     string
	FareZoneID   string
	EquipmentID  string // optional
	CommentLinks []string
	Codes        []Code
}

func (sp StopPoint) ObjectID() string { return sp.ID }

// Calendar is the explicit set of dates a service runs on. Weekday patterns
// and exception dates from tabular sources are folded into the set by the
// readers.
type Calendar struct {
	ID    string
	Dates DateSet
}

func (c Calendar) ObjectID() string { return c.ID }

// Comment is a free-text note linked from other objects.
type Comment struct {
	ID    string
	Type  string
	Label string
	Name  string
}

func (c Comment) ObjectID() string { return c.ID }

// Equipment describes the accessibility features of a stop.
type Equipment struct {
	ID                 string
	WheelchairBoarding Availability
	Sheltered          Availability
	Elevator           Availability
	Escalator          Availability
	BikeAccepted       Availability
}

func (e Equipment) ObjectID() string { return e.ID }

// Transfer is a walkable connection between two stop points. Transfers carry
// no identifier of their own.
type Transfer struct {
	FromStopPointID     string
	ToStopPointID       string
	MinTransferTime     *uint32
	RealMinTransferTime *uint32
}

// TripProperty describes the accessibility features of a journey.
type TripProperty struct {
	ID                   string
	WheelchairAccessible Availability
	BikeAccepted         Availability
	AirConditioned       Availability
	VisualAnnouncement   Availability
	AudibleAnnouncement  Availability
	SchoolVehicleType    string
}

func (tp TripProperty) ObjectID() string { return tp.ID }

// Frequency is a headway-based repetition of a vehicle journey. Frequencies
// carry no identifier of their own.
type Frequency struct {
	VehicleJourneyID string
	StartTime        TimeOfDay
	EndTime          TimeOfDay
	HeadwaySecs      uint32
}

// Geometry is a shape referenced by lines, routes and journeys, kept as WKT.
type Geometry struct {
	ID  string
	WKT string
}

func (g Geometry) ObjectID() string { return g.ID }

// AdminStation ties an administrative area to one of its stop areas. Admin
// stations carry no identifier of their own.
type AdminStation struct {
	AdminID    string
	AdminName  string
	StopAreaID string
}

// Ticket is a fare product.
type Ticket struct {
	ID      string
	Name    string
	Comment string
}

func (t Ticket) ObjectID() string { return t.ID }

// TicketPrice is one priced validity window of a ticket. Prices carry no
// identifier of their own.
type TicketPrice struct {
	TicketID string
	Price    float64
	Currency string
	Validity ValidityPeriod
}
