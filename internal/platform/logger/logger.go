// Package logger writes one line per event to the standard logger: a level, a
// message and a JSON object of fields. Holder dates of birth never reach the
// output.
package logger

import (
	"encoding/json"
	"log"
	"strings"
)

type Fields map[string]any

const redacted = "******"

func Info(message string, fields Fields) {
	emit("INFO", message, fields)
}

// Error logs message with err recorded under the "error" field.
func Error(message string, err error, fields Fields) {
	if err != nil {
		fields = with(fields, "error", err.Error())
	}
	emit("ERROR", message, fields)
}

func emit(level, message string, fields Fields) {
	b, err := json.Marshal(Redact(fields))
	if err != nil {
		b = []byte(`{"logError":"fields not encodable"}`)
	}
	log.Printf("%s %s %s", level, message, b)
}

// Redact returns a copy of v in which every value keyed by a date-of-birth
// name is masked. Nested Fields, maps and slices are walked; v is not modified.
func Redact(v any) any {
	switch t := v.(type) {
	case nil:
		return Fields{}
	case Fields:
		return redactMap(t)
	case map[string]any:
		return redactMap(t)
	case []Fields:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = redactMap(f)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Redact(item)
		}
		return out
	default:
		return v
	}
}

func redactMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isDateOfBirth(k) {
			out[k] = redacted
			continue
		}
		out[k] = Redact(v)
	}
	return out
}

// isDateOfBirth matches dob, dateOfBirth, date_of_birth, date-of-birth and
// their case variants.
func isDateOfBirth(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer("_", "", "-", "").Replace(k)
	return k == "dob" || k == "dateofbirth"
}

func with(fields Fields, key string, value any) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
