package model

import "fmt"

// Sanitize restores referential integrity after a transformation. Records
// whose optional (or cascade-droppable) references no longer resolve are
// dropped with an aggregated warning; dangling secondary links are cleared.
// A structurally mandatory key left unresolved is a hard error. The pass
// iterates to a fixpoint so cascades complete (removing a calendar drops its
// journeys, which drops their frequencies), and it is idempotent.
func (c *Collections) Sanitize() error {
	w := NewWarningAggregator()

	for changed := true; changed; {
		changed = false

		n := c.VehicleJourneys.Retain(func(vj *VehicleJourney) bool {
			if c.Calendars.Contains(vj.ServiceID) {
				return true
			}
			w.Add(WarningJourneyUnknownCalendar, vj.ID)
			return false
		})
		changed = changed || n > 0

		n = c.Frequencies.Retain(func(f *Frequency) bool {
			if c.VehicleJourneys.Contains(f.VehicleJourneyID) {
				return true
			}
			w.Add(WarningFrequencyUnknownJourney, f.VehicleJourneyID)
			return false
		})
		changed = changed || n > 0

		n = c.Transfers.Retain(func(t *Transfer) bool {
			if c.StopPoints.Contains(t.FromStopPointID) && c.StopPoints.Contains(t.ToStopPointID) {
				return true
			}
			w.Add(WarningTransferUnknownStopPoint, t.FromStopPointID+" -> "+t.ToStopPointID)
			return false
		})
		changed = changed || n > 0

		n = c.TicketPrices.Retain(func(p *TicketPrice) bool {
			if c.Tickets.Contains(p.TicketID) {
				return true
			}
			w.Add(WarningPriceUnknownTicket, p.TicketID)
			return false
		})
		changed = changed || n > 0

		n = c.AdminStations.Retain(func(as *AdminStation) bool {
			if c.StopAreas.Contains(as.StopAreaID) {
				return true
			}
			w.Add(WarningAdminUnknownStopArea, as.AdminID)
			return false
		})
		changed = changed || n > 0
	}

	c.clearDanglingLinks(w)

	if err := c.checkStructuralReferences(); err != nil {
		return err
	}

	w.LogAll("sanitize")
	return nil
}

// clearDanglingLinks blanks optional references whose target disappeared.
// Clearing never cascades, so a single pass is enough.
func (c *Collections) clearDanglingLinks(w *WarningAggregator) {
	clearGeometry := func(id string, ref *string) {
		if *ref != "" && !c.Geometries.Contains(*ref) {
			w.Add(WarningDanglingGeometry, id)
			*ref = ""
		}
	}
	clearEquipment := func(id string, ref *string) {
		if *ref != "" && !c.Equipments.Contains(*ref) {
			w.Add(WarningDanglingEquipment, id)
			*ref = ""
		}
	}

	for _, l := range c.Lines.All() {
		clearGeometry(l.ID, &l.GeometryID)
		l.CommentLinks = c.pruneCommentLinks(l.ID, l.CommentLinks, w)
	}
	for _, r := range c.Routes.All() {
		clearGeometry(r.ID, &r.GeometryID)
		if r.DestinationID != "" && !c.StopAreas.Contains(r.DestinationID) {
			w.Add(WarningDanglingDestination, r.ID)
			r.DestinationID = ""
		}
		r.CommentLinks = c.pruneCommentLinks(r.ID, r.CommentLinks, w)
	}
	for _, vj := range c.VehicleJourneys.All() {
		clearGeometry(vj.ID, &vj.GeometryID)
		if vj.TripPropertyID != "" && !c.TripProperties.Contains(vj.TripPropertyID) {
			w.Add(WarningDanglingTripProperty, vj.ID)
			vj.TripPropertyID = ""
		}
		vj.CommentLinks = c.pruneCommentLinks(vj.ID, vj.CommentLinks, w)
	}
	for _, sa := range c.StopAreas.All() {
		clearGeometry(sa.ID, &sa.GeometryID)
		clearEquipment(sa.ID, &sa.EquipmentID)
		sa.CommentLinks = c.pruneCommentLinks(sa.ID, sa.CommentLinks, w)
	}
	for _, sp := range c.StopPoints.All() {
		clearEquipment(sp.ID, &sp.EquipmentID)
		sp.CommentLinks = c.pruneCommentLinks(sp.ID, sp.CommentLinks, w)
	}
}

func (c *Collections) pruneCommentLinks(ownerID string, links []string, w *WarningAggregator) []string {
	kept := links[:0]
	for _, id := range links {
		if c.Comments.Contains(id) {
			kept = append(kept, id)
		} else {
			w.Add(WarningDanglingComment, fmt.Sprintf("%s -> %s", ownerID, id))
		}
	}
	return kept
}

// checkStructuralReferences re-runs the mandatory key validation; a failure
// here means an earlier transformation corrupted the aggregate in a way the
// sanitizer cannot recover from.
func (c *Collections) checkStructuralReferences() error {
	return c.CheckReferences()
}
