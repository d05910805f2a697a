package logger_message

import (
	"github.com/kyp2022/ghostlink/pkg/utilities"
	"github.com/kyp2022/ghostlink/pkg/utilities/timeutil"
)

type LoggerMessage struct {
	Service   string           `json:"service,omitempty"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Timestamp timeutil.TimeUTC `json:"timestamp"`
}

func (lm LoggerMessage) Serialize() ([]byte, error) {
	return utilities.Serialize(lm)
}
