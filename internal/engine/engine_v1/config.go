package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v2"

	"github.com/halcyonlab/halcyon/internal/engine"
	"github.com/halcyonlab/halcyon/internal/fees"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// EngineV1Config configures one run of the engine.
type EngineV1Config struct {
	Symbols        []string       `yaml:"symbols" json:"symbols" validate:"required,min=1" jsonschema:"title=Symbols,description=Symbols to trade"`
	Interval       types.Interval `yaml:"interval" json:"interval" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d" jsonschema:"title=Interval,description=Bar interval"`
	Mode           engine.RunMode `yaml:"mode" json:"mode" validate:"required,oneof=backtest live" jsonschema:"title=Mode,description=backtest replays historical data; live polls an exchange"`
	InitialCapital float64        `yaml:"initial_capital" json:"initial_capital" validate:"required,gt=0" jsonschema:"title=Initial Capital,description=Starting cash in quote currency,minimum=0"`
	// RiskFraction is the fraction of cash committed per full-strength
	// signal. Zero means use the default.
	RiskFraction float64 `yaml:"risk_fraction" json:"risk_fraction" validate:"gte=0,lte=1" jsonschema:"title=Risk Fraction,description=Fraction of cash committed per full-strength signal,minimum=0,maximum=1"`
	// HeartbeatSeconds is the pause between live ticks. Ignored in backtest
	// mode.
	HeartbeatSeconds int           `yaml:"heartbeat_seconds" json:"heartbeat_seconds" validate:"gte=0" jsonschema:"title=Heartbeat Seconds,description=Pause between live ticks in seconds"`
	FeeSchedule      fees.Schedule `yaml:"fee_schedule" json:"fee_schedule" jsonschema:"title=Fee Schedule,description=Commission schedule"`
	// StartTime stamps the initial portfolio snapshot; defaults to the wall
	// clock when absent.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the run"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the run"`
}

// EmptyConfig returns a config with every field zeroed.
func EmptyConfig() EngineV1Config {
	return EngineV1Config{
		Symbols:          nil,
		Interval:         "",
		Mode:             "",
		InitialCapital:   0,
		RiskFraction:     0,
		HeartbeatSeconds: 0,
		FeeSchedule:      "",
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}

// UnmarshalYAML implements custom unmarshaling for EngineV1Config so that
// absent start/end times become None rather than zero times.
func (c *EngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		Symbols          []string       `yaml:"symbols"`
		Interval         types.Interval `yaml:"interval"`
		Mode             engine.RunMode `yaml:"mode"`
		InitialCapital   float64        `yaml:"initial_capital"`
		RiskFraction     float64        `yaml:"risk_fraction"`
		HeartbeatSeconds int            `yaml:"heartbeat_seconds"`
		FeeSchedule      fees.Schedule  `yaml:"fee_schedule"`
		StartTime        *time.Time     `yaml:"start_time"`
		EndTime          *time.Time     `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Symbols = config.Symbols
	c.Interval = config.Interval
	c.Mode = config.Mode
	c.InitialCapital = config.InitialCapital
	c.RiskFraction = config.RiskFraction
	c.HeartbeatSeconds = config.HeartbeatSeconds
	c.FeeSchedule = config.FeeSchedule

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// ParseConfig parses and validates YAML configuration content.
func ParseConfig(content string) (EngineV1Config, error) {
	config := EmptyConfig()

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return EngineV1Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := config.Validate(); err != nil {
		return EngineV1Config{}, err
	}

	return config, nil
}

// Validate validates the config fields.
func (c *EngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the EngineV1Config.
func (c *EngineV1Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "fees.Schedule") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: fees.AllSchedules,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "engine-v1-config"
	schema.Description = "Configuration schema for EngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON returns the config schema as indented JSON.
func (c *EngineV1Config) GenerateSchemaJSON() (string, error) {
	schema := c.GenerateSchema()

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config schema", err)
	}

	return string(data), nil
}
