package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Defaults()

	assert.Equal(t, "qa2", cfg.Environment)
	assert.Equal(t, "standard", cfg.UserKey)
	assert.Equal(t, time.Second, cfg.ThinkTime.Min)
	assert.Equal(t, 3*time.Second, cfg.ThinkTime.Max)
	assert.Equal(t, 30*time.Second, cfg.GracefulStop)
}

func TestDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Environment:  "sqa",
		ThinkTime:    ThinkTimeConfig{Min: 100 * time.Millisecond, Max: 200 * time.Millisecond},
		GracefulStop: 5 * time.Second,
	}
	cfg.Defaults()

	assert.Equal(t, "sqa", cfg.Environment)
	assert.Equal(t, 100*time.Millisecond, cfg.ThinkTime.Min)
	assert.Equal(t, 5*time.Second, cfg.GracefulStop)
}

func TestResolveEnvironment_Builtin(t *testing.T) {
	cfg := &Config{Environment: "QA3"}
	env := cfg.ResolveEnvironment(zap.NewNop())

	assert.Equal(t, "QA3", env.Name)
	assert.Equal(t, "https://one.qa3.noosh.com", env.BaseURL)
	assert.NotEmpty(t, env.WorkgroupID)
	assert.NotEmpty(t, env.OAuth.ClientID)
}

func TestResolveEnvironment_ConfigOverridesBuiltin(t *testing.T) {
	cfg := &Config{
		Environment: "qa2",
		Environments: map[string]Environment{
			"qa2": {Name: "LOCAL", BaseURL: "http://localhost:8080", Domain: "qa2.noosh.com"},
		},
	}
	env := cfg.ResolveEnvironment(zap.NewNop())
	assert.Equal(t, "LOCAL", env.Name)
	assert.Equal(t, "http://localhost:8080", env.BaseURL)
}

func TestResolveEnvironment_UnknownFallsBack(t *testing.T) {
	cfg := &Config{Environment: "production"}
	env := cfg.ResolveEnvironment(zap.NewNop())
	assert.Equal(t, "QA2", env.Name)
}

func TestEnvironmentPrefix(t *testing.T) {
	assert.Equal(t, "QA2", Environment{Domain: "qa2.noosh.com"}.Prefix())
	assert.Equal(t, "SQA", Environment{Domain: "sqa.noosh.com"}.Prefix())
}

func TestResolveUser(t *testing.T) {
	cfg := &Config{Environment: "qa2", UserKey: "admin"}
	u := cfg.ResolveUser(zap.NewNop())
	assert.Equal(t, "PLAYWRIGHTADMIN", u.Username)
	assert.Equal(t, "admin", u.Role)
}

func TestResolveUser_UnknownKeyFallsBack(t *testing.T) {
	cfg := &Config{Environment: "qa2", UserKey: "superuser"}
	u := cfg.ResolveUser(zap.NewNop())
	assert.Equal(t, "PLAYWRIGHTMEM1O2", u.Username)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	yaml := `
environment: qa3
user: admin
sharedSession: true
withSpec: true
gracefulStop: 10s
loadProfile:
  phases:
    - name: steady
      duration: 1m
      actors: 5
thresholds:
  http_req_failed:
    rate: "1%"
  http_req_duration:
    p95: 5s
  checks:
    rate: "90%"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "qa3", cfg.Environment)
	assert.True(t, cfg.SharedSession)
	assert.True(t, cfg.WithSpec)
	assert.Equal(t, 10*time.Second, cfg.GracefulStop)
	require.Len(t, cfg.LoadProfile.Phases, 1)
	assert.Equal(t, 5, cfg.LoadProfile.Phases[0].Actors)
	require.NotNil(t, cfg.Thresholds)
	assert.Equal(t, "1%", cfg.Thresholds.HTTPReqFailed.Rate)
	assert.Equal(t, 5*time.Second, cfg.Thresholds.HTTPReqDuration.P95)
	assert.Equal(t, "90%", cfg.Thresholds.Checks.Rate)
	// Unset fields still get defaults.
	assert.Equal(t, time.Second, cfg.ThinkTime.Min)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/run.yaml")
	assert.Error(t, err)
}
