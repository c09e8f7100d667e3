package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./transit-model/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg.MergeStopAreas); err != nil {
		return err
	}
	if err := v.Struct(cfg.Restrict); err != nil {
		return err
	}
	Config = cfg
	if Config.MergeStopAreas.MaxDistanceMeters == 0 {
		Config.MergeStopAreas.MaxDistanceMeters = 200
	}
	return nil
}
