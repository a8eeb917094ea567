package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all ilnlp configuration.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	ILASP   ILASPConfig   `yaml:"ilasp"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`

	// Template is a path to a custom ILASP program template.
	Template string `yaml:"template"`
}

type SolverConfig struct {
	Backend    string `yaml:"backend"`     // native, clingo
	SAT        string `yaml:"sat"`         // gini, gophersat
	LeastModel string `yaml:"least_model"` // native, solver, mangle, prolog
	Map        string `yaml:"map"`         // maxsat, sat
	Clingo     string `yaml:"clingo"`
	Timeout    string `yaml:"timeout"`
}

type ILASPConfig struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

var (
	ValidBackends     = []string{"native", "clingo"}
	ValidSATSolvers   = []string{"gini", "gophersat"}
	ValidLeastModels  = []string{"native", "solver", "mangle", "prolog"}
	ValidMapSolvers   = []string{"maxsat", "sat"}
	ValidLoggingLevel = []string{"debug", "info", "warn", "error"}
)

func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Backend:    "native",
			SAT:        "gini",
			LeastModel: "native",
			Map:        "maxsat",
			Clingo:     "clingo",
		},
		ILASP: ILASPConfig{
			Path: "ILASP",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadEnv loads the .env file named by ILNLP_ENV (or .env). A missing file
// is not an error.
func LoadEnv() {
	envFile := os.Getenv("ILNLP_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
}

// Load reads configuration from a YAML file on top of the defaults. An
// empty path or a missing file yields the defaults. Environment variables
// override both.
func Load(path string) (*Config, error) {
	LoadEnv()
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ILNLP_SOLVER"); v != "" {
		c.Solver.Backend = v
	}
	if v := os.Getenv("ILNLP_SAT"); v != "" {
		c.Solver.SAT = v
	}
	if v := os.Getenv("ILNLP_LEAST_MODEL"); v != "" {
		c.Solver.LeastModel = v
	}
	if v := os.Getenv("ILNLP_MAP"); v != "" {
		c.Solver.Map = v
	}
	if v := os.Getenv("ILNLP_CLINGO"); v != "" {
		c.Solver.Clingo = v
	}
	if v := os.Getenv("ILNLP_ILASP"); v != "" {
		c.ILASP.Path = v
	}
	if v := os.Getenv("ILNLP_TEMPLATE"); v != "" {
		c.Template = v
	}
	if v := os.Getenv("ILNLP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ILNLP_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// GetTimeout returns the per-run solver timeout; zero means none.
func (c *Config) GetTimeout() time.Duration {
	if c.Solver.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Solver.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func (c *Config) Validate() error {
	if !slices.Contains(ValidBackends, c.Solver.Backend) {
		return fmt.Errorf("invalid solver backend: %s (valid: %v)", c.Solver.Backend, ValidBackends)
	}
	if !slices.Contains(ValidSATSolvers, c.Solver.SAT) {
		return fmt.Errorf("invalid SAT solver: %s (valid: %v)", c.Solver.SAT, ValidSATSolvers)
	}
	if !slices.Contains(ValidLeastModels, c.Solver.LeastModel) {
		return fmt.Errorf("invalid least model backend: %s (valid: %v)", c.Solver.LeastModel, ValidLeastModels)
	}
	if !slices.Contains(ValidMapSolvers, c.Solver.Map) {
		return fmt.Errorf("invalid map solver: %s (valid: %v)", c.Solver.Map, ValidMapSolvers)
	}
	if !slices.Contains(ValidLoggingLevel, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLoggingLevel)
	}
	if c.Solver.Timeout != "" {
		if _, err := time.ParseDuration(c.Solver.Timeout); err != nil {
			return fmt.Errorf("invalid solver timeout: %w", err)
		}
	}
	return nil
}
