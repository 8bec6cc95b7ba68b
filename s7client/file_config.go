package s7client

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plctalk/go-s7/s7"
)

// FileConfig mirrors the on-disk YAML deployment configuration: one connection
// section plus a named variable table.
//
// Example:
//
//	connection:
//	  name: press-line-1
//	  host: 192.168.0.10
//	  port: 102
//	  rack: 0
//	  slot: 2
//	  liveness_interval_ms: 5000
//	  max_backoff_delay_ms: 60000
//	  keep_alive_cycle: 6
//	variables:
//	  - name: motor_running
//	    type: bool
//	    area: data-block
//	    db: 12
//	    start: 4
//	    bit: 2
//	  - name: oil_temp
//	    type: real
//	    area: data-block
//	    db: 12
//	    start: 8
type FileConfig struct {
	Connection ConnectionSection `yaml:"connection"`
	Variables  []VariableSection `yaml:"variables"`
}

// ConnectionSection holds the connection settings of a FileConfig.
type ConnectionSection struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Rack int    `yaml:"rack"`
	Slot int    `yaml:"slot"`

	LivenessIntervalMs int `yaml:"liveness_interval_ms"`
	MaxBackoffDelayMs  int `yaml:"max_backoff_delay_ms"`

	// KeepAliveCycle is optional; nil keeps the default, 0 disables probes.
	KeepAliveCycle *int `yaml:"keep_alive_cycle"`
}

// VariableSection holds one named variable of a FileConfig.
type VariableSection struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Area  string `yaml:"area"`
	DB    int    `yaml:"db"`
	Start int    `yaml:"start"`
	Bit   uint8  `yaml:"bit"`
}

// LoadFileConfig reads and validates a YAML deployment configuration.
func LoadFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return ParseFileConfig(raw)
}

// ParseFileConfig parses and validates a YAML deployment configuration.
func ParseFileConfig(raw []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fc.normalize()
	if err := fc.validate(); err != nil {
		return nil, err
	}

	return &fc, nil
}

// normalize fills defaulted fields so validation and conversion see complete
// values.
func (fc *FileConfig) normalize() {
	if fc.Connection.Port == 0 {
		fc.Connection.Port = 102
	}
}

func (fc *FileConfig) validate() error {
	if fc.Connection.Host == "" {
		return fmt.Errorf("config: connection.host is required")
	}
	if fc.Connection.LivenessIntervalMs < 0 || fc.Connection.MaxBackoffDelayMs < 0 {
		return fmt.Errorf("config: intervals must not be negative")
	}

	seen := make(map[string]struct{}, len(fc.Variables))
	for i := range fc.Variables {
		v := &fc.Variables[i]
		if v.Name == "" {
			return fmt.Errorf("config: variables[%d] has no name", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("config: duplicate variable name %q", v.Name)
		}
		seen[v.Name] = struct{}{}

		if _, err := v.toVariable(); err != nil {
			return fmt.Errorf("config: variable %q: %w", v.Name, err)
		}
	}

	return nil
}

// ConnectionConfig converts the connection section into a ConnectionConfig.
// Additional options are applied after the file-derived ones, so callers can
// still override the logger or inject a transport dialer.
func (fc *FileConfig) ConnectionConfig(opts ...ConnOption) (*ConnectionConfig, error) {
	conn := fc.Connection

	fileOpts := []ConnOption{
		WithName(conn.Name),
		WithRack(conn.Rack),
		WithSlot(conn.Slot),
	}
	if conn.LivenessIntervalMs > 0 {
		fileOpts = append(fileOpts, WithLivenessInterval(time.Duration(conn.LivenessIntervalMs)*time.Millisecond))
	}
	if conn.MaxBackoffDelayMs > 0 {
		fileOpts = append(fileOpts, WithMaxBackoffDelay(time.Duration(conn.MaxBackoffDelayMs)*time.Millisecond))
	}
	if conn.KeepAliveCycle != nil {
		fileOpts = append(fileOpts, WithKeepAliveCycle(*conn.KeepAliveCycle))
	}

	return NewConnectionConfig(conn.Host, conn.Port, append(fileOpts, opts...)...)
}

// VariableTable converts the variable sections into validated descriptors.
func (fc *FileConfig) VariableTable() ([]*s7.Variable, error) {
	vars := make([]*s7.Variable, 0, len(fc.Variables))
	for i := range fc.Variables {
		v, err := fc.Variables[i].toVariable()
		if err != nil {
			return nil, fmt.Errorf("config: variable %q: %w", fc.Variables[i].Name, err)
		}
		vars = append(vars, v)
	}

	return vars, nil
}

func (vs *VariableSection) toVariable() (*s7.Variable, error) {
	dt, err := s7.ParseDataType(vs.Type)
	if err != nil {
		return nil, err
	}
	area, err := s7.ParseArea(vs.Area)
	if err != nil {
		return nil, err
	}

	v := &s7.Variable{
		Name:     vs.Name,
		Type:     dt,
		Area:     area,
		DBNumber: vs.DB,
		Start:    vs.Start,
		Bit:      vs.Bit,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	return v, nil
}
