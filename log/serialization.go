package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const wireSource = "slog"

// LogMessageWire is the JSON form of a log record sent from guest to host.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
}

// LogAttrWire represents a single slog attribute for wire transfer.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}

// Decode parses a print message produced by Handler. Plain text lines
// report false.
func Decode(message string) (LogMessageWire, bool) {
	if len(message) == 0 || message[0] != '{' {
		return LogMessageWire{}, false
	}
	var msg LogMessageWire
	if err := json.Unmarshal([]byte(message), &msg); err != nil || msg.Source != wireSource {
		return LogMessageWire{}, false
	}
	return msg, true
}

// SlogLevel parses Level, defaulting to info.
func (m LogMessageWire) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(m.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Args returns the attributes as slog key/value arguments, restoring typed
// values where possible.
func (m LogMessageWire) Args() []any {
	args := make([]any, 0, len(m.Attrs))
	for _, a := range m.Attrs {
		args = append(args, a.Attr())
	}
	return args
}

// Attr converts the wire attribute back to a slog.Attr.
func (a LogAttrWire) Attr() slog.Attr {
	switch a.Type {
	case "int64":
		if v, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
			return slog.Int64(a.Key, v)
		}
	case "uint64":
		if v, err := strconv.ParseUint(a.Value, 10, 64); err == nil {
			return slog.Uint64(a.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(a.Value); err == nil {
			return slog.Bool(a.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(a.Value, 64); err == nil {
			return slog.Float64(a.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, a.Value); err == nil {
			return slog.Time(a.Key, v)
		}
	case "duration":
		if v, err := time.ParseDuration(a.Value); err == nil {
			return slog.Duration(a.Key, v)
		}
	case "json":
		return slog.Any(a.Key, json.RawMessage(a.Value))
	}
	return slog.String(a.Key, a.Value)
}

func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{Key: attr.Key}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = strconv.FormatFloat(attr.Value.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		v := attr.Value.Any()
		if v == nil {
			wire.Type = "any"
			wire.Value = "<nil>"
			break
		}
		if err, isErr := v.(error); isErr {
			wire.Type = "error"
			wire.Value = err.Error()
		} else if data, err := json.Marshal(v); err == nil {
			wire.Type = "json"
			wire.Value = string(data)
		} else {
			wire.Type = "any"
			wire.Value = fmt.Sprintf("%v", v)
		}
	default:
		wire.Type = "any"
		wire.Value = attr.Value.String()
	}
	return wire
}
