package config

import (
	"fmt"
	"net/http"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL           string `env:"DB_URI"`
	DatabaseName  string `env:"DB_NAME"`
	BaseURL       string `env:"BASE_URL"`
	Port          string `env:"PORT" env-default:"8080"`
	LoggerEnv     string `env:"LOGGER_ENV" env-default:"development"`
	InviteTTLDays int    `env:"INVITE_TTL_DAYS" env-default:"7"`
}

// New sets up all config related services
func New() *Config {
	cfg := &Config{}
	readErr := cleanenv.ReadEnv(cfg)

	//setup zap logger and replace default logger
	logger, err := setLogger(cfg.LoggerEnv)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	if readErr != nil {
		zap.S().With(readErr).Warn("failed to read environment config")
	}

	return cfg
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
