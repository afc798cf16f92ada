package config

import (
	"strings"

	"go.uber.org/zap"
)

// User is one simulated actor's credential pair.
type User struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Role     string `yaml:"role,omitempty" json:"role,omitempty"`
}

const DefaultUserKey = "standard"

// builtinUsers holds the per-environment test accounts. All QA deployments
// share the same fixture accounts.
var builtinUsers = map[string]map[string]User{
	"qa2": {
		"standard": {Username: "PLAYWRIGHTMEM1O2", Password: "Noosh^Playwright_123", Role: "member"},
		"admin":    {Username: "PLAYWRIGHTADMIN", Password: "Noosh^Playwright_Admin123", Role: "admin"},
	},
	"qa3": {
		"standard": {Username: "PLAYWRIGHTMEM1O2", Password: "Noosh^Playwright_123", Role: "member"},
		"admin":    {Username: "PLAYWRIGHTADMIN", Password: "Noosh^Playwright_Admin123", Role: "admin"},
	},
	"sqa": {
		"standard": {Username: "PLAYWRIGHTMEM1O2", Password: "Noosh^Playwright_123", Role: "member"},
		"admin":    {Username: "PLAYWRIGHTADMIN", Password: "Noosh^Playwright_Admin123", Role: "admin"},
	},
}

// ResolveUser looks up the actor credentials for the configured environment
// and user key. Unknown environments or keys fall back to the defaults with
// a warning rather than failing the run.
func (c *Config) ResolveUser(log *zap.Logger) User {
	envKey := strings.ToLower(c.Environment)
	users, ok := builtinUsers[envKey]
	if !ok {
		log.Warn("no users for environment, using default",
			zap.String("requested", c.Environment),
			zap.String("default", DefaultEnvironment))
		users = builtinUsers[DefaultEnvironment]
	}
	if u, ok := users[c.UserKey]; ok {
		return u
	}
	log.Warn("unknown user key, using default",
		zap.String("requested", c.UserKey),
		zap.String("default", DefaultUserKey))
	return users[DefaultUserKey]
}
