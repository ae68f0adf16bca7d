// Package normalize reduces upstream workflow-engine replies of unknown
// JSON-in-string nesting depth to display-ready text plus an optional
// Vega-Lite chart specification.
package normalize

import (
	"encoding/json"
	"strings"
)

// SchemaMarker identifies a Vega-Lite chart specification
const SchemaMarker = "https://vega.github.io/schema/vega-lite"

// Upstream replies have been observed at nesting depth two; the unwrap is
// generic, with a guard against pathological self-nesting.
const maxUnwrapDepth = 8

// Result is the normalized form of an upstream reply. DisplayText is always
// a string, possibly empty; Chart is nil unless a valid spec was found.
type Result struct {
	DisplayText string
	Chart       map[string]any
}

// Normalize reduces raw upstream text to display text plus an optional chart.
// It never fails: any parse error at any level falls through to treating the
// text as plain.
func Normalize(raw string) Result {
	text, chart := unwrap(raw, 0)

	if inline, remainder, ok := extractInlineChart(text); ok && chart == nil {
		chart = inline
		text = remainder
	}

	return Result{DisplayText: text, Chart: chart}
}

// unwrap follows response/content/message fields through string-encoded JSON
// until it reaches plain text. It returns the recovered text and any chart
// spec found along the way.
func unwrap(raw string, depth int) (string, map[string]any) {
	if depth >= maxUnwrapDepth {
		return raw, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		// Not JSON: the raw text is the display text.
		return raw, nil
	}

	chart := chartFromObject(obj)

	if resp, ok := obj["response"]; ok {
		switch v := resp.(type) {
		case string:
			inner, innerChart := unwrapInner(v, depth+1)
			if chart == nil {
				chart = innerChart
			}
			return inner, chart
		case map[string]any:
			if chart == nil {
				chart = chartFromObject(v)
			}
			if isChart(v) {
				// Chart-only response: nothing textual to show.
				return "", chart
			}
			return prettyPrint(v), chart
		default:
			return prettyPrint(v), chart
		}
	}

	if text, ok := textField(obj); ok {
		return text, chart
	}

	if isChart(obj) {
		return "", chart
	}

	// No recognized field: pretty-print the whole object rather than
	// silently dropping data.
	return prettyPrint(obj), chart
}

// unwrapInner handles a string-valued response field, which may itself be
// JSON-encoded one or more levels deep.
func unwrapInner(s string, depth int) (string, map[string]any) {
	if depth >= maxUnwrapDepth {
		return s, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		// The response value is plain text.
		return s, nil
	}

	chart := chartFromObject(obj)

	if resp, ok := obj["response"]; ok {
		if inner, ok := resp.(string); ok {
			text, innerChart := unwrapInner(inner, depth+1)
			if chart == nil {
				chart = innerChart
			}
			return text, chart
		}
		return prettyPrint(resp), chart
	}

	if status, _ := obj["status"].(string); status == "success" {
		if text, ok := textField(obj); ok {
			return text, chart
		}
	}

	if text, ok := textField(obj); ok {
		return text, chart
	}

	if isChart(obj) {
		return "", chart
	}

	return s, chart
}

// textField returns the first content/message string carried by obj
func textField(obj map[string]any) (string, bool) {
	for _, key := range []string{"content", "message", "output"} {
		if s, ok := obj[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func isChart(obj map[string]any) bool {
	schema, _ := obj["$schema"].(string)
	return strings.HasPrefix(schema, SchemaMarker)
}

// chartFromObject looks for a chart spec at the top level or one level under
// the usual wrapper fields
func chartFromObject(obj map[string]any) map[string]any {
	if isChart(obj) {
		return obj
	}
	for _, key := range []string{"chart", "chart_specification", "chart_data", "chartData"} {
		switch v := obj[key].(type) {
		case map[string]any:
			if isChart(v) {
				return v
			}
		case string:
			var spec map[string]any
			if err := json.Unmarshal([]byte(v), &spec); err == nil && isChart(spec) {
				return spec
			}
		}
	}
	return nil
}

// extractInlineChart finds a schema-marked JSON span embedded in otherwise
// plain text, parses it, and strips its literal from the text.
func extractInlineChart(text string) (map[string]any, string, bool) {
	idx := strings.Index(text, SchemaMarker)
	if idx < 0 {
		return nil, text, false
	}

	start := strings.LastIndex(text[:idx], "{")
	if start < 0 {
		return nil, text, false
	}

	end, ok := matchBrace(text, start)
	if !ok {
		return nil, text, false
	}

	span := text[start : end+1]
	var spec map[string]any
	if err := json.Unmarshal([]byte(span), &spec); err != nil || !isChart(spec) {
		return nil, text, false
	}

	remainder := strings.TrimSpace(text[:start] + text[end+1:])
	return spec, remainder, true
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON string literals
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func prettyPrint(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
