package mergestopareas

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-model/model"
	"github.com/theoremus-urban-solutions/transit-model/utils"
)

// RuleConflictError reports an ambiguous or chained grouping: one identifier
// claimed as a to-merge target by two rules, or used both as a master and as
// a to-merge target. Chain merges are rejected, not resolved transitively.
type RuleConflictError struct {
	ID     string
	First  Rule
	Second Rule
}

func (e *RuleConflictError) Error() string {
	return fmt.Sprintf("rule conflict: stop area %q claimed by %s and %s", e.ID, e.First, e.Second)
}

// MergeStopAreas applies the grouping rules to the collections, rewrites
// every reference to a merged stop area onto its master, removes the merged
// records, re-sanitizes and returns the resulting model together with the
// merge report. Rule validation failures abort the whole invocation; no
// partial model is returned.
func MergeStopAreas(c model.Collections, rules []Rule, maxDistanceMeters float64) (*model.Model, *Report, error) {
	if err := validateRules(rules); err != nil {
		return nil, nil, err
	}

	report := NewReport()
	// merged stop area id -> master id, for reference rewriting
	merged := map[string]string{}

	for _, rule := range rules {
		master, ok := c.StopAreas.GetByID(rule.MasterID)
		if !ok {
			report.addUnmatched(rule.MasterID)
			continue
		}
		for _, mergeID := range rule.ToMergeIDs {
			sa, ok := c.StopAreas.GetByID(mergeID)
			if !ok {
				report.addUnmatched(mergeID)
				continue
			}
			distance := utils.HaversineM(master.Coord.Lat, master.Coord.Lon, sa.Coord.Lat, sa.Coord.Lon)
			if distance > maxDistanceMeters {
				report.addSkipped(rule.MasterID, mergeID, ReasonTooFar, distance)
				continue
			}
			absorb(master, sa)
			merged[mergeID] = rule.MasterID
			report.addApplied(rule.MasterID, mergeID)
		}
	}

	rewriteReferences(&c, merged)
	c.StopAreas.Retain(func(sa *model.StopArea) bool {
		_, gone := merged[sa.ID]
		return !gone
	})

	if err := c.Sanitize(); err != nil {
		return nil, nil, err
	}
	m, err := model.NewModel(c)
	if err != nil {
		return nil, nil, err
	}
	return m, report, nil
}

// validateRules rejects groupings where an identifier is claimed twice or
// where a master is itself merged away by another rule.
func validateRules(rules []Rule) error {
	toMergeOwner := map[string]Rule{}
	masterOwner := map[string]Rule{}
	for _, rule := range rules {
		masterOwner[rule.MasterID] = rule
	}
	for _, rule := range rules {
		for _, id := range rule.ToMergeIDs {
			if prev, ok := toMergeOwner[id]; ok {
				return &RuleConflictError{ID: id, First: prev, Second: rule}
			}
			toMergeOwner[id] = rule
			if owner, ok := masterOwner[id]; ok {
				return &RuleConflictError{ID: id, First: owner, Second: rule}
			}
		}
	}
	return nil
}

// absorb folds the merged stop area's secondary data into the master: its
// comment links, its codes, and its own identifier kept as a secondary code.
func absorb(master, sa *model.StopArea) {
	for _, link := range sa.CommentLinks {
		if !contains(master.CommentLinks, link) {
			master.CommentLinks = append(master.CommentLinks, link)
		}
	}
	master.Codes = append(master.Codes, sa.Codes...)
	master.Codes = append(master.Codes, model.Code{System: "secondary_id", Value: sa.ID})
}

// rewriteReferences points every record that referenced a merged stop area
// at its master instead.
func rewriteReferences(c *model.Collections, merged map[string]string) {
	if len(merged) == 0 {
		return
	}
	for _, sp := range c.StopPoints.All() {
		if master, ok := merged[sp.StopAreaID]; ok {
			sp.StopAreaID = master
		}
	}
	for _, r := range c.Routes.All() {
		if master, ok := merged[r.DestinationID]; ok {
			r.DestinationID = master
		}
	}
	for _, as := range c.AdminStations.All() {
		if master, ok := merged[as.StopAreaID]; ok {
			as.StopAreaID = master
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
