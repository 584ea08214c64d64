package orchestrator

import (
	"strings"

	"github.com/tidwall/gjson"
)

// PluginCall is one detected tool invocation.
type PluginCall struct {
	API   string `json:"API"`
	Query string `json:"query"`
}

// Incomplete reports whether the call is missing its name or query. Such
// entries are dropped with a warning during fan-out, never dispatched.
func (c PluginCall) Incomplete() bool {
	return c.API == "" || c.Query == ""
}

// ExtractPluginCalls locates the call array inside raw detection output.
//
// Models rarely emit bare JSON, so the candidate payload is the greedy span
// from the first '[' to the last ']'. The second return value reports whether
// a valid array was found at all: false means the output is a direct reply,
// true with an empty slice means the model emitted an empty array. Entries
// are returned as parsed, incomplete ones included; filtering them is the
// dispatcher's job so the drop can be logged.
func ExtractPluginCalls(raw string) ([]PluginCall, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return nil, false
	}
	payload := raw[start : end+1]
	if !gjson.Valid(payload) {
		return nil, false
	}
	parsed := gjson.Parse(payload)
	if !parsed.IsArray() {
		return nil, false
	}

	calls := []PluginCall{}
	for _, item := range parsed.Array() {
		calls = append(calls, PluginCall{
			API:   item.Get("API").String(),
			Query: item.Get("query").String(),
		})
	}
	return calls, true
}
