package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/trafficlab/internal/pipeline"
	"github.com/signalnine/trafficlab/internal/summary"
)

type Config struct {
	Groups        []string   `yaml:"groups"`
	RunsPerGroup  int        `yaml:"runs_per_group"`
	ReferenceFile string     `yaml:"reference_file"`
	OutputFile    string     `yaml:"output_file"`
	Inputs        Inputs     `yaml:"inputs"`
	History       History    `yaml:"history"`
	Chart         Chart      `yaml:"chart"`
	Simulation    Simulation `yaml:"simulation"`
	Scenarios     []Scenario `yaml:"scenarios"`
}

type Inputs struct {
	Dir             string `yaml:"dir"`
	VehRoutePattern string `yaml:"vehroute_pattern"`
	TripInfoPattern string `yaml:"tripinfo_pattern"`
}

type History struct {
	DB string `yaml:"db"`
}

type Chart struct {
	File string `yaml:"file"`
}

// Simulation holds settings shared by every scenario run.
type Simulation struct {
	Binary         string `yaml:"binary"`
	Image          string `yaml:"image"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
	Parallel       int    `yaml:"parallel"`
	ResultsDir     string `yaml:"results_dir"`
}

// Scenario is one batch-mode simulator setup, run once per seed.
type Scenario struct {
	Name                 string   `yaml:"name"`
	Group                string   `yaml:"group"`
	Dir                  string   `yaml:"dir"`
	Runs                 int      `yaml:"runs"`
	ConfigFile           string   `yaml:"config_file"`
	NetFile              string   `yaml:"net_file"`
	RouteFiles           []string `yaml:"route_files"`
	AdditionalFiles      []string `yaml:"additional_files"`
	Begin                *float64 `yaml:"begin"`
	End                  *float64 `yaml:"end"`
	StepLength           float64  `yaml:"step_length"`
	RoutingAlgorithm     string   `yaml:"routing_algorithm"`
	TimeToTeleport       *float64 `yaml:"time_to_teleport"`
	TimeToImpatience     *float64 `yaml:"time_to_impatience"`
	ReroutingProbability *float64 `yaml:"rerouting_probability"`
	FCDOutput            string   `yaml:"fcd_output"`
	ExtraArgs            []string `yaml:"extra_args"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Groups) == 0 {
		return fmt.Errorf("no groups defined")
	}
	for i, g := range cfg.Groups {
		for _, sub := range summary.SubGroups(g) {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("group %d (%q): empty sub-group name", i, g)
			}
		}
	}
	if cfg.RunsPerGroup == 0 {
		cfg.RunsPerGroup = 10
	}
	if cfg.RunsPerGroup < 1 {
		return fmt.Errorf("runs_per_group must be at least 1")
	}
	if cfg.ReferenceFile == "" {
		return fmt.Errorf("reference_file is required")
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "customized_summary_output.xlsx"
	}
	if cfg.Inputs.Dir == "" {
		cfg.Inputs.Dir = "."
	}
	if cfg.Inputs.VehRoutePattern == "" {
		cfg.Inputs.VehRoutePattern = summary.DefaultPatterns.VehRoute
	}
	if cfg.Inputs.TripInfoPattern == "" {
		cfg.Inputs.TripInfoPattern = summary.DefaultPatterns.TripInfo
	}
	for _, p := range []string{cfg.Inputs.VehRoutePattern, cfg.Inputs.TripInfoPattern} {
		if !strings.Contains(p, summary.GroupPlaceholder) || !strings.Contains(p, summary.RunPlaceholder) {
			return fmt.Errorf("pattern %q must contain %s and %s", p, summary.GroupPlaceholder, summary.RunPlaceholder)
		}
	}

	if cfg.Simulation.Binary == "" {
		cfg.Simulation.Binary = "sumo"
	}
	if cfg.Simulation.TimeoutMinutes == 0 {
		cfg.Simulation.TimeoutMinutes = 60
	}
	if cfg.Simulation.Parallel < 1 {
		cfg.Simulation.Parallel = 1
	}
	if cfg.Simulation.ResultsDir == "" {
		cfg.Simulation.ResultsDir = "results"
	}
	seen := map[string]bool{}
	for i := range cfg.Scenarios {
		s := &cfg.Scenarios[i]
		if s.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenario %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.ConfigFile == "" && s.NetFile == "" {
			return fmt.Errorf("scenario %q: config_file or net_file is required", s.Name)
		}
		if s.Group == "" {
			s.Group = s.Name
		}
		if s.Dir == "" {
			s.Dir = "."
		}
		if s.Runs == 0 {
			s.Runs = cfg.RunsPerGroup
		}
		if s.Runs < 1 {
			return fmt.Errorf("scenario %q: runs must be at least 1", s.Name)
		}
	}
	return nil
}

// Pipeline returns the aggregation settings.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Groups:        c.Groups,
		RunsPerGroup:  c.RunsPerGroup,
		ReferenceFile: c.ReferenceFile,
		OutputFile:    c.OutputFile,
		InputDir:      c.Inputs.Dir,
		Patterns:      c.Patterns(),
	}
}

func (c *Config) Patterns() summary.Patterns {
	return summary.Patterns{VehRoute: c.Inputs.VehRoutePattern, TripInfo: c.Inputs.TripInfoPattern}
}

// Timeout bounds a single simulator run.
func (s Simulation) Timeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// FindScenario returns the named scenario, or nil.
func (c *Config) FindScenario(name string) *Scenario {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i]
		}
	}
	return nil
}
