package commands

import (
	"strconv"
	"strings"
)

// parseArgs turns command line words into positional statement arguments.
// Unless raw is set, integers, floats, true/false and NULL are converted so the
// driver binds them with their natural types.
func parseArgs(words []string, raw bool) []any {
	args := make([]any, len(words))
	for i, w := range words {
		if raw {
			args[i] = w
			continue
		}
		args[i] = inferArg(w)
	}
	return args
}

func inferArg(w string) any {
	if strings.EqualFold(w, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(w, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(w, 64); err == nil && strings.ContainsAny(w, ".eE") {
		return f
	}
	if b, err := strconv.ParseBool(w); err == nil && (strings.EqualFold(w, "true") || strings.EqualFold(w, "false")) {
		return b
	}
	return w
}
