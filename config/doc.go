// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It carries the pipeline defaults: dataset paths, merge rules and distance
// threshold, and the validity restriction window.
package config
