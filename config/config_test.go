package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "native", cfg.Solver.Backend)
	assert.Equal(t, "ILASP", cfg.ILASP.Path)
	assert.Zero(t, cfg.GetTimeout())
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("ILNLP_ENV", filepath.Join(t.TempDir(), "missing.env"))
	path := filepath.Join(t.TempDir(), "ilnlp.yaml")
	content := `
solver:
  backend: clingo
  sat: gophersat
  least_model: mangle
  map: sat
  timeout: 30s
ilasp:
  args: ["--version=4", "-na"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "clingo", cfg.Solver.Backend)
	assert.Equal(t, "gophersat", cfg.Solver.SAT)
	assert.Equal(t, "mangle", cfg.Solver.LeastModel)
	assert.Equal(t, "sat", cfg.Solver.Map)
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, []string{"--version=4", "-na"}, cfg.ILASP.Args)
	// Unset keys keep their defaults.
	assert.Equal(t, "clingo", cfg.Solver.Clingo)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("ILNLP_ENV", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Solver, cfg.Solver)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ILNLP_SOLVER", "clingo")
	t.Setenv("ILNLP_SAT", "gophersat")
	t.Setenv("ILNLP_LEAST_MODEL", "prolog")
	t.Setenv("ILNLP_MAP", "sat")
	t.Setenv("ILNLP_CLINGO", "/opt/clingo")
	t.Setenv("ILNLP_ILASP", "/opt/ILASP")
	t.Setenv("ILNLP_TEMPLATE", "task.tmpl")
	t.Setenv("ILNLP_ADDR", ":9000")
	t.Setenv("ILNLP_LOG_LEVEL", "DEBUG")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "clingo", cfg.Solver.Backend)
	assert.Equal(t, "gophersat", cfg.Solver.SAT)
	assert.Equal(t, "prolog", cfg.Solver.LeastModel)
	assert.Equal(t, "sat", cfg.Solver.Map)
	assert.Equal(t, "/opt/clingo", cfg.Solver.Clingo)
	assert.Equal(t, "/opt/ILASP", cfg.ILASP.Path)
	assert.Equal(t, "task.tmpl", cfg.Template)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ILNLP_SAT=gophersat\n"), 0o644))
	t.Setenv("ILNLP_ENV", envFile)
	// Registered so the variable loaded from the file is restored afterwards.
	t.Setenv("ILNLP_SAT", "")
	require.NoError(t, os.Unsetenv("ILNLP_SAT"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gophersat", cfg.Solver.SAT)
}

func TestValidate(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Solver.Backend = "dlv" },
		func(c *Config) { c.Solver.SAT = "minisat" },
		func(c *Config) { c.Solver.LeastModel = "souffle" },
		func(c *Config) { c.Solver.Map = "cdcl" },
		func(c *Config) { c.Logging.Level = "loud" },
		func(c *Config) { c.Solver.Timeout = "soon" },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}
}
