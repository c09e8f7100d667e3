// Package mergestopareas collapses redundant stop areas under a master stop
// area following caller-provided grouping rules, rewriting every reference
// in the model and reporting what was applied, skipped or unmatched.
package mergestopareas

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Rule groups secondary stop areas under one master stop area. File and Line
// locate the rule in its source for error reporting.
type Rule struct {
	MasterID   string
	ToMergeIDs []string
	File       string
	Line       int
}

func (r Rule) String() string {
	if r.File == "" {
		return fmt.Sprintf("rule(master %s)", r.MasterID)
	}
	return fmt.Sprintf("%s:%d (master %s)", r.File, r.Line, r.MasterID)
}

// LoadRules reads grouping rules from delimited-text files with the header
// master_stop_area_id,stop_area_to_merge_id, one pair per row. Rows sharing
// a master within one file are folded into a single rule; rule order follows
// first appearance.
func LoadRules(paths []string) ([]Rule, error) {
	var rules []Rule
	for _, path := range paths {
		fileRules, err := loadRuleFile(path)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}

func loadRuleFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	masterCol, mergeCol := -1, -1
	for i, name := range header {
		switch name {
		case "master_stop_area_id":
			masterCol = i
		case "stop_area_to_merge_id":
			mergeCol = i
		}
	}
	if masterCol < 0 || mergeCol < 0 {
		return nil, fmt.Errorf("%s: missing master_stop_area_id or stop_area_to_merge_id column", path)
	}

	var rules []Rule
	byMaster := map[string]int{}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		master := record[masterCol]
		toMerge := record[mergeCol]
		if master == "" || toMerge == "" {
			return nil, fmt.Errorf("%s:%d: empty identifier", path, line)
		}
		p, ok := byMaster[master]
		if !ok {
			p = len(rules)
			byMaster[master] = p
			rules = append(rules, Rule{MasterID: master, File: path, Line: line})
		}
		rules[p].ToMergeIDs = append(rules[p].ToMergeIDs, toMerge)
	}
	return rules, nil
}
