package config

import (
	"os"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	t.Chdir(t.TempDir())
	if err := os.WriteFile("config.yml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAppConfig(t *testing.T) {
	writeConfig(t, `
input: ./in
output: ./out
mergeStopAreas:
  ruleFiles:
    - rules.csv
  maxDistanceMeters: 150
  reportPath: report.json
restrictValidityPeriod:
  startDate: "2018-05-01"
  endDate: "2018-08-05"
feedInfos:
  feed_publisher_name: test
`)

	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if Config.Input != "./in" || Config.Output != "./out" {
		t.Errorf("paths = %q, %q", Config.Input, Config.Output)
	}
	if Config.MergeStopAreas.MaxDistanceMeters != 150 {
		t.Errorf("maxDistanceMeters = %f, want 150", Config.MergeStopAreas.MaxDistanceMeters)
	}
	if len(Config.MergeStopAreas.RuleFiles) != 1 {
		t.Errorf("ruleFiles = %v", Config.MergeStopAreas.RuleFiles)
	}
	if Config.Restrict.StartDate != "2018-05-01" {
		t.Errorf("startDate = %q", Config.Restrict.StartDate)
	}
	if Config.FeedInfos["feed_publisher_name"] != "test" {
		t.Errorf("feedInfos = %v", Config.FeedInfos)
	}
}

func TestLoadAppConfig_DefaultDistance(t *testing.T) {
	writeConfig(t, "input: ./in\n")
	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if Config.MergeStopAreas.MaxDistanceMeters != 200 {
		t.Errorf("maxDistanceMeters = %f, want default 200", Config.MergeStopAreas.MaxDistanceMeters)
	}
}

func TestLoadAppConfig_InvalidDate(t *testing.T) {
	writeConfig(t, "restrictValidityPeriod:\n  startDate: \"01/05/2018\"\n")
	if err := LoadAppConfig(); err == nil {
		t.Fatal("expected validation error for malformed date")
	}
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := LoadAppConfig(); err == nil {
		t.Fatal("expected error when no config file exists")
	}
}
