package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultPort          = "8080"

	OracleOpenAI = "openai"
	OracleLocal  = "local"
)

// ConfigurationError reports a required setting that is missing or unusable.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s is not set", e.Key)
	}
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// Config holds the environment settings read at startup. The OpenAI
// credential is the exception: it's looked up on every request so a key
// exported mid-session is picked up.
type Config struct {
	port string

	openAIBaseURL string
	openAIModel   string
	oracle        string

	outputDir string
	database  string

	discordGuildID  string
	discordAppToken string
	discordClientId string
}

func NewConfig() *Config {
	if apiKey := os.Getenv("OPENAI_API_KEY"); len(apiKey) > 3 {
		slog.Debug("env", "OPENAI_API_KEY", apiKey[0:3]+"...")
	}
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = DefaultPort
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		openAIBaseURL: func() string {
			baseURL := strings.TrimRight(os.Getenv("OPENAI_BASE_URL"), "/")
			if baseURL == "" {
				baseURL = DefaultOpenAIBaseURL
			}
			slog.Debug("env", "OPENAI_BASE_URL", baseURL)
			return baseURL
		}(),
		openAIModel: func() string {
			model := os.Getenv("OPENAI_MODEL")
			if model == "" {
				model = DefaultOpenAIModel
			}
			slog.Debug("env", "OPENAI_MODEL", model)
			return model
		}(),
		oracle: func() string {
			oracle := strings.ToLower(strings.TrimSpace(os.Getenv("NLCAL_ORACLE")))
			switch oracle {
			case "":
				oracle = OracleOpenAI
			case OracleOpenAI, OracleLocal:
			default:
				slog.Warn("unknown NLCAL_ORACLE, using openai", "NLCAL_ORACLE", oracle)
				oracle = OracleOpenAI
			}
			slog.Debug("env", "NLCAL_ORACLE", oracle)
			return oracle
		}(),

		outputDir: func() string {
			outputDir := os.Getenv("NLCAL_OUTPUT_DIR")
			if outputDir == "" {
				outputDir = "."
			}
			slog.Debug("env", "NLCAL_OUTPUT_DIR", outputDir)
			return filepath.Clean(outputDir)
		}(),
		database: func() string {
			database := os.Getenv("NLCAL_DATABASE")
			if database == "" {
				slog.Debug("NLCAL_DATABASE is not set, history is disabled")
			} else {
				slog.Debug("env", "NLCAL_DATABASE", database)
			}
			return database
		}(),

		discordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if len(discordAppToken) > 3 {
				slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:3]+"...")
			}
			return discordAppToken
		}(),
		discordClientId: os.Getenv("DISCORD_CLIENT_ID"),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get OPENAI_API_KEY env. Read fresh on every call.
func (c *Config) GetOpenAIApiKey() (string, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return "", &ConfigurationError{Key: "OPENAI_API_KEY"}
	}
	return apiKey, nil
}

// Get OPENAI_BASE_URL env, without a trailing slash
func (c *Config) GetOpenAIBaseURL() string {
	return c.openAIBaseURL
}

// Get OPENAI_MODEL env
func (c *Config) GetOpenAIModel() string {
	return c.openAIModel
}

// Get NLCAL_ORACLE env, either "openai" or "local"
func (c *Config) GetOracle() string {
	return c.oracle
}

// Force the offline oracle, e.g. from the --offline flag.
func (c *Config) SetOracle(oracle string) {
	c.oracle = oracle
}

// Get NLCAL_OUTPUT_DIR env, default to the working directory
func (c *Config) GetOutputDir() string {
	return c.outputDir
}

func (c *Config) SetOutputDir(dir string) {
	c.outputDir = filepath.Clean(dir)
}

// Get NLCAL_DATABASE env. Empty means history is off.
func (c *Config) GetDatabase() string {
	return c.database
}

// Get DISCORD_GUILD_ID env. Empty registers commands globally.
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() (string, error) {
	if c.discordAppToken == "" {
		return "", &ConfigurationError{Key: "DISCORD_APP_TOKEN"}
	}
	return c.discordAppToken, nil
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientId() (string, error) {
	if c.discordClientId == "" {
		return "", &ConfigurationError{Key: "DISCORD_CLIENT_ID"}
	}
	return c.discordClientId, nil
}
