package model

import (
	"testing"

	"github.com/theoremus-urban-solutions/transit-model/collection"
)

func TestSanitize_CascadesCalendarRemoval(t *testing.T) {
	c := testCollections(t)
	c.Calendars.Retain(func(cal *Calendar) bool { return false })

	if err := c.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	if c.VehicleJourneys.Len() != 0 {
		t.Errorf("%d journeys left after their calendar was removed", c.VehicleJourneys.Len())
	}
	if c.Frequencies.Len() != 0 {
		t.Errorf("%d frequencies left after their journey was removed", c.Frequencies.Len())
	}
	// stop points still resolve, so transfers survive
	if c.Transfers.Len() != 1 {
		t.Errorf("%d transfers left, want 1", c.Transfers.Len())
	}
}

func TestSanitize_DropsDanglingOptionalReferences(t *testing.T) {
	c := testCollections(t)
	vj, _ := c.VehicleJourneys.GetByID("VJ:1")
	vj.GeometryID = "G:404"
	vj.TripPropertyID = "TP:404"
	l, _ := c.Lines.GetByID("L:1")
	l.CommentLinks = []string{"COM:404"}

	if err := c.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	vj, _ = c.VehicleJourneys.GetByID("VJ:1")
	if vj.GeometryID != "" {
		t.Errorf("dangling geometry reference not cleared: %q", vj.GeometryID)
	}
	if vj.TripPropertyID != "" {
		t.Errorf("dangling trip property reference not cleared: %q", vj.TripPropertyID)
	}
	l, _ = c.Lines.GetByID("L:1")
	if len(l.CommentLinks) != 0 {
		t.Errorf("dangling comment link not pruned: %v", l.CommentLinks)
	}
}

func TestSanitize_DropsOrphanedFareAndAdminRecords(t *testing.T) {
	c := testCollections(t)
	c.Tickets = collection.MustCollectionWithID([]Ticket{{ID: "T:1", Name: "single"}})
	c.TicketPrices = collection.NewCollection([]TicketPrice{
		{TicketID: "T:1", Price: 1.9, Currency: "EUR"},
		{TicketID: "T:404", Price: 2.5, Currency: "EUR"},
	})
	c.AdminStations = collection.NewCollection([]AdminStation{
		{AdminID: "ADM:1", StopAreaID: "SA:01"},
		{AdminID: "ADM:2", StopAreaID: "SA:404"},
	})

	if err := c.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	if c.TicketPrices.Len() != 1 {
		t.Errorf("%d ticket prices left, want 1", c.TicketPrices.Len())
	}
	if c.AdminStations.Len() != 1 {
		t.Errorf("%d admin stations left, want 1", c.AdminStations.Len())
	}
}

func TestSanitize_KeepsCleanModelIntact(t *testing.T) {
	c := testCollections(t)
	before := snapshot(&c)
	if err := c.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got := snapshot(&c); got != before {
		t.Errorf("sanitize changed a clean model: %+v -> %+v", before, got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	c := testCollections(t)
	c.Calendars.Retain(func(cal *Calendar) bool { return false })

	if err := c.Sanitize(); err != nil {
		t.Fatalf("first Sanitize: %v", err)
	}
	first := snapshot(&c)
	if err := c.Sanitize(); err != nil {
		t.Fatalf("second Sanitize: %v", err)
	}
	if got := snapshot(&c); got != first {
		t.Errorf("sanitize is not idempotent: %+v -> %+v", first, got)
	}
}

// snapshot captures the per-kind record counts that sanitization may change.
type counts struct {
	journeys    int
	calendars   int
	frequencies int
	transfers   int
	stopPoints  int
	stopAreas   int
}

func snapshot(c *Collections) counts {
	return counts{
		journeys:    c.VehicleJourneys.Len(),
		calendars:   c.Calendars.Len(),
		frequencies: c.Frequencies.Len(),
		transfers:   c.Transfers.Len(),
		stopPoints:  c.StopPoints.Len(),
		stopAreas:   c.StopAreas.Len(),
	}
}
