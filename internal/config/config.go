package config

import "github.com/kelseyhightower/envconfig"

// Config gathers the environment-driven settings for the server process.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModelChat string `envconfig:"OPENAI_MODEL_CHAT" default:"gpt-4o-mini"`
	OpenAIModelNLU  string `envconfig:"OPENAI_MODEL_NLU"`
	NLUTimeoutMS    int    `envconfig:"NLU_TIMEOUT_MS" default:"4000"`

	RMQURL        string `envconfig:"CALLBOT_RMQ_URL"`
	RMQExchange   string `envconfig:"CALLBOT_RMQ_EXCHANGE" default:"preop-callbot-exchange"`
	RMQRoutingKey string `envconfig:"CALLBOT_RMQ_ALERT_QUEUE" default:"clinical-alerts"`

	RedisAddr           string `envconfig:"CALLBOT_REDIS_ADDR"`
	RedisPassword       string `envconfig:"CALLBOT_REDIS_PASSWORD"`
	RedisLockExpiration int    `envconfig:"CALLBOT_REDIS_LOCK_EXPIRATION" default:"30"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.OpenAIModelNLU == "" {
		cfg.OpenAIModelNLU = cfg.OpenAIModelChat
	}
	return &cfg, nil
}
