package logger

import "github.com/rs/zerolog"

type LoggerConfigJson struct {
	LogLevel string `json:"log_level"`
}

type LoggerConfig struct {
	LogLevel zerolog.Level
}

// ConvertToDomain accepts zerolog level names ("debug", "info", ...). Unknown or empty names
// fall back to NoLevel, which NewFromConfig treats as info.
func (lcj LoggerConfigJson) ConvertToDomain() LoggerConfig {
	level, err := zerolog.ParseLevel(lcj.LogLevel)
	if err != nil {
		level = zerolog.NoLevel
	}
	return LoggerConfig{
		LogLevel: level,
	}
}
