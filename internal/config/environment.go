package config

import (
	"strings"

	"go.uber.org/zap"
)

// Environment describes one target deployment of the Noosh platform.
type Environment struct {
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"baseUrl"`
	Domain      string      `yaml:"domain"`
	WorkgroupID string      `yaml:"workgroupId"`
	OAuth       OAuthClient `yaml:"oauth"`
}

// OAuthClient is the platform-level delegator credential pair used by the
// first step of the delegation flow.
type OAuthClient struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// Prefix returns the environment prefix used in generated entity names,
// derived from the first label of the domain (qa2.noosh.com -> QA2).
func (e Environment) Prefix() string {
	label, _, _ := strings.Cut(e.Domain, ".")
	return strings.ToUpper(label)
}

const DefaultEnvironment = "qa2"

// builtinEnvironments mirrors the QA deployments the test suite targets.
// Credentials here are test fixtures, overridable per run via YAML.
var builtinEnvironments = map[string]Environment{
	"qa2": {
		Name:        "QA2",
		BaseURL:     "https://one.qa2.noosh.com",
		Domain:      "qa2.noosh.com",
		WorkgroupID: "5018408",
		OAuth: OAuthClient{
			ClientID:     "saharadesert",
			ClientSecret: "af7703f8-d5c1-468a-a030-d7c5cc467f03",
		},
	},
	"qa3": {
		Name:        "QA3",
		BaseURL:     "https://one.qa3.noosh.com",
		Domain:      "qa3.noosh.com",
		WorkgroupID: "5018408",
		OAuth: OAuthClient{
			ClientID:     "saharadesert",
			ClientSecret: "af7703f8-d5c1-468a-a030-d7c5cc467f03",
		},
	},
	"sqa": {
		Name:        "SQA",
		BaseURL:     "https://sqa.noosh.com",
		Domain:      "sqa.noosh.com",
		WorkgroupID: "5018408",
		OAuth: OAuthClient{
			ClientID:     "saharadesert",
			ClientSecret: "af7703f8-d5c1-468a-a030-d7c5cc467f03",
		},
	},
}

// ResolveEnvironment looks up an environment by key, preferring entries from
// the config file over the built-in table. An unknown key falls back to the
// default environment with a warning rather than failing the run.
func (c *Config) ResolveEnvironment(log *zap.Logger) Environment {
	key := strings.ToLower(c.Environment)
	if env, ok := c.Environments[key]; ok {
		return env
	}
	if env, ok := builtinEnvironments[key]; ok {
		return env
	}
	log.Warn("unknown environment, using default",
		zap.String("requested", c.Environment),
		zap.String("default", DefaultEnvironment))
	return builtinEnvironments[DefaultEnvironment]
}
