package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// Closed vocabularies. Unknown status values are kept verbatim, unknown outcomes are dropped.
var (
	knownStatus = map[string]struct{}{
		"ok": {}, "fail": {}, "skip": {}, "retry": {}, "rate_limited": {}, "cancelled": {}, "denied": {},
	}
	knownOutcome = map[string]struct{}{
		"ok": {}, "fail": {}, "cancelled": {}, "rate_limited": {}, "hold": {}, "expired": {},
	}
)

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeEnum(vocab map[string]struct{}, raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	_, ok := vocab[v]
	return v, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"flow",
	"node",
	"next",
	"act",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"report_id",
	"field",
	"offset",
	"confirmed",
	"role",
	"count",
	"size",
	"payload_len",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"attempts",
	"backoff_ms",
}
