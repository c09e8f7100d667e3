package model

import (
	"github.com/theoremus-urban-solutions/transit-model/collection"
)

// Collections is the raw aggregate of every per-kind store. External readers
// populate a Collections value, NewModel validates and wraps it, and
// transformations unwrap it again with Model.IntoCollections.
type Collections struct {
	Contributors    *collection.CollectionWithID[Contributor]
	Datasets        *collection.CollectionWithID[Dataset]
	Networks        *collection.CollectionWithID[Network]
	Companies       *collection.CollectionWithID[Company]
	CommercialModes *collection.CollectionWithID[CommercialMode]
	PhysicalModes   *collection.CollectionWithID[PhysicalMode]
	Lines           *collection.CollectionWithID[Line]
	Routes          *collection.CollectionWithID[Route]
	VehicleJourneys *collection.CollectionWithID[VehicleJourney]
	StopAreas       *collection.CollectionWithID[StopArea]
	StopPoints      *collection.CollectionWithID[StopPoint]
	Calendars       *collection.CollectionWithID[Calendar]
	Comments        *collection.CollectionWithID[Comment]
	Equipments      *collection.CollectionWithID[Equipment]
	TripProperties  *collection.CollectionWithID[TripProperty]
	Geometries      *collection.CollectionWithID[Geometry]
	Tickets         *collection.CollectionWithID[Ticket]
	Transfers       *collection.Collection[Transfer]
	Frequencies     *collection.Collection[Frequency]
	TicketPrices    *collection.Collection[TicketPrice]
	AdminStations   *collection.Collection[AdminStation]

	// FeedInfos are free key/value pairs carried through from the source.
	FeedInfos map[string]string
}

// NewCollections returns an empty, ready-to-populate aggregate.
func NewCollections() Collections {
	return Collections{
		Contributors:    collection.MustCollectionWithID[Contributor](nil),
		Datasets:        collection.MustCollectionWithID[Dataset](nil),
		Networks:        collection.MustCollectionWithID[Network](nil),
		Companies:       collection.MustCollectionWithID[Company](nil),
		CommercialModes: collection.MustCollectionWithID[CommercialMode](nil),
		PhysicalModes:   collection.MustCollectionWithID[PhysicalMode](nil),
		Lines:           collection.MustCollectionWithID[Line](nil),
		Routes:          collection.MustCollectionWithID[Route](nil),
		VehicleJourneys: collection.MustCollectionWithID[VehicleJourney](nil),
		StopAreas:       collection.MustCollectionWithID[StopArea](nil),
		StopPoints:      collection.MustCollectionWithID[StopPoint](nil),
		Calendars:       collection.MustCollectionWithID[Calendar](nil),
		Comments:        collection.MustCollectionWithID[Comment](nil),
		Equipments:      collection.MustCollectionWithID[Equipment](nil),
		TripProperties:  collection.MustCollectionWithID[TripProperty](nil),
		Geometries:      collection.MustCollectionWithID[Geometry](nil),
		Tickets:         collection.MustCollectionWithID[Ticket](nil),
		Transfers:       collection.NewCollection[Transfer](nil),
		Frequencies:     collection.NewCollection[Frequency](nil),
		TicketPrices:    collection.NewCollection[TicketPrice](nil),
		AdminStations:   collection.NewCollection[AdminStation](nil),
		FeedInfos:       map[string]string{},
	}
}

// SetDatasetValidity recomputes every dataset's validity period from the
// union of all calendar dates. Datasets keep their previous period when no
// calendar has any date left.
func (c *Collections) SetDatasetValidity() {
	all := DateSet{}
	for _, cal := range c.Calendars.All() {
		for d := range cal.Dates {
			all.Add(d)
		}
	}
	start, end, ok := all.Bounds()
	if !ok {
		return
	}
	for _, ds := range c.Datasets.All() {
		ds.Validity = ValidityPeriod{Start: start, End: end}
	}
}
