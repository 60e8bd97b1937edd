package candleline

import (
	"os"
	"strconv"

	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/logger/zerolog"
)

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "CANDLELINE_LOG_LEVEL"
	envLogTimeFormat = "CANDLELINE_LOG_TIME_FORMAT"
	envLogColor      = "CANDLELINE_LOG_COLOR"
	envLogJSON       = "CANDLELINE_LOG_JSON"
)

// DefaultLog is the logger used by charts created without WithLogger
var DefaultLog logger.Logger

func init() {
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// initLogger creates the package logger configured from environment variables
func initLogger() (*zerolog.ZerologAdapter, error) {
	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return zerolog.New(zerolog.Options{
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeLayout: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    logColored,
		JSON:       logJSON,
	})
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolEnv(key, defaultValue string) (bool, error) {
	return strconv.ParseBool(getEnvWithDefault(key, defaultValue))
}
