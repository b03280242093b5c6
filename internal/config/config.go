package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when no other file is given.
const DefaultEnvFile = ".env"

// Config holds the destination settings for an import run.
type Config struct {
	APIURL       string `env:"DESTINATION_API_URL"`
	IdentityURL  string `env:"DESTINATION_IDENTITY_URL"`
	ClientID     string `env:"DESTINATION_CLIENT_ID"`
	ClientSecret string `env:"DESTINATION_CLIENT_SECRET"`
	FastAPIURL   string `env:"FASTAPI_URL"`
	APIKey       string `env:"API_KEY"`
}

// Load reads envFile, if it exists, and overlays the process environment.
// Variables already set in the process win over the file.
func Load(envFile string) (*Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		if vars != nil {
			fileVars = vars
		}
	}

	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileVars[key]
	}

	return &Config{
		APIURL:       get("DESTINATION_API_URL"),
		IdentityURL:  get("DESTINATION_IDENTITY_URL"),
		ClientID:     get("DESTINATION_CLIENT_ID"),
		ClientSecret: get("DESTINATION_CLIENT_SECRET"),
		FastAPIURL:   get("FASTAPI_URL"),
		APIKey:       get("API_KEY"),
	}, nil
}

// Missing returns the names of unset variables. Nothing is rejected here;
// an empty value shows up later as an authentication or submission failure.
func (c *Config) Missing() []string {
	var missing []string
	for _, kv := range []struct{ key, value string }{
		{"DESTINATION_API_URL", c.APIURL},
		{"DESTINATION_IDENTITY_URL", c.IdentityURL},
		{"DESTINATION_CLIENT_ID", c.ClientID},
		{"DESTINATION_CLIENT_SECRET", c.ClientSecret},
		{"FASTAPI_URL", c.FastAPIURL},
		{"API_KEY", c.APIKey},
	} {
		if strings.TrimSpace(kv.value) == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

// SubmitURL is the endpoint every record is PUT to.
func (c *Config) SubmitURL() string {
	return c.APIURL + "/apirequests"
}
