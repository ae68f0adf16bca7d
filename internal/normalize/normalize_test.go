package normalize

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizePlainText(t *testing.T) {
	got := Normalize("Premiums rose 12% in Q4.")
	if got.DisplayText != "Premiums rose 12% in Q4." {
		t.Errorf("DisplayText = %q, want input unchanged", got.DisplayText)
	}
	if got.Chart != nil {
		t.Errorf("Chart = %v, want nil", got.Chart)
	}
}

func TestNormalizeSingleLevelResponse(t *testing.T) {
	got := Normalize(`{"response": "Here are your premium trends."}`)
	if got.DisplayText != "Here are your premium trends." {
		t.Errorf("DisplayText = %q", got.DisplayText)
	}
	if got.Chart != nil {
		t.Errorf("Chart = %v, want nil", got.Chart)
	}
}

func TestNormalizeNestedResponse(t *testing.T) {
	got := Normalize(`{"response": "{\"response\":\"FINAL\"}"}`)
	if got.DisplayText != "FINAL" {
		t.Errorf("DisplayText = %q, want FINAL", got.DisplayText)
	}
}

func TestNormalizeTripleNestedResponse(t *testing.T) {
	inner, _ := json.Marshal(map[string]string{"response": "DEEP"})
	mid, _ := json.Marshal(map[string]string{"response": string(inner)})
	outer, _ := json.Marshal(map[string]string{"response": string(mid)})

	got := Normalize(string(outer))
	if got.DisplayText != "DEEP" {
		t.Errorf("DisplayText = %q, want DEEP", got.DisplayText)
	}
}

func TestNormalizeInnerStatusSuccess(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "content field",
			raw:  `{"response": "{\"status\":\"success\",\"content\":\"All good\"}"}`,
			want: "All good",
		},
		{
			name: "message field",
			raw:  `{"response": "{\"status\":\"success\",\"message\":\"Done\"}"}`,
			want: "Done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.DisplayText != tt.want {
				t.Errorf("DisplayText = %q, want %q", got.DisplayText, tt.want)
			}
		})
	}
}

func TestNormalizeInnerNotJSON(t *testing.T) {
	// The response value does not parse as JSON: it is the display text.
	got := Normalize(`{"response": "just text with a { brace"}`)
	if got.DisplayText != "just text with a { brace" {
		t.Errorf("DisplayText = %q", got.DisplayText)
	}
}

func TestNormalizeNoResponseFieldStringifies(t *testing.T) {
	got := Normalize(`{"foo": "bar"}`)

	want, _ := json.MarshalIndent(map[string]any{"foo": "bar"}, "", "  ")
	if got.DisplayText != string(want) {
		t.Errorf("DisplayText = %q, want pretty-printed object %q", got.DisplayText, want)
	}
}

func TestNormalizeObjectResponseStringifies(t *testing.T) {
	got := Normalize(`{"response": {"rows": 3}}`)
	if !strings.Contains(got.DisplayText, `"rows": 3`) {
		t.Errorf("DisplayText = %q, want pretty-printed object", got.DisplayText)
	}
}

const chartJSON = `{"$schema":"https://vega.github.io/schema/vega-lite/v5.json","mark":"bar","data":{"values":[{"x":1}]}}`

func TestNormalizeTopLevelChart(t *testing.T) {
	got := Normalize(`{"response": "Trend below.", "chart_specification": ` + chartJSON + `}`)
	if got.DisplayText != "Trend below." {
		t.Errorf("DisplayText = %q", got.DisplayText)
	}
	if got.Chart == nil {
		t.Fatal("Chart = nil, want spec")
	}
	if got.Chart["mark"] != "bar" {
		t.Errorf("Chart mark = %v, want bar", got.Chart["mark"])
	}
}

func TestNormalizeChartOnlyResponse(t *testing.T) {
	got := Normalize(chartJSON)
	if got.Chart == nil {
		t.Fatal("Chart = nil, want spec")
	}
	if got.DisplayText != "" {
		t.Errorf("DisplayText = %q, want empty for chart-only reply", got.DisplayText)
	}
}

func TestNormalizeInlineChartExtraction(t *testing.T) {
	text := "Here is the premium trend: " + chartJSON + " as requested."
	got := Normalize(text)

	if got.Chart == nil {
		t.Fatal("Chart = nil, want extracted spec")
	}
	if strings.Contains(got.DisplayText, "$schema") {
		t.Errorf("DisplayText still contains the chart span: %q", got.DisplayText)
	}
	if !strings.Contains(got.DisplayText, "Here is the premium trend:") {
		t.Errorf("DisplayText lost surrounding prose: %q", got.DisplayText)
	}
	if !strings.Contains(got.DisplayText, "as requested.") {
		t.Errorf("DisplayText lost trailing prose: %q", got.DisplayText)
	}
}

func TestNormalizeInlineChartInsideResponseString(t *testing.T) {
	wrapper, _ := json.Marshal(map[string]string{
		"response": "Chart: " + chartJSON,
	})

	got := Normalize(string(wrapper))
	if got.Chart == nil {
		t.Fatal("Chart = nil, want extracted spec")
	}
	if strings.Contains(got.DisplayText, "vega.github.io") {
		t.Errorf("DisplayText still contains the chart span: %q", got.DisplayText)
	}
}

func TestNormalizeMalformedInlineChartLeftAlone(t *testing.T) {
	text := "see https://vega.github.io/schema/vega-lite/v5.json for details"
	got := Normalize(text)
	if got.Chart != nil {
		t.Errorf("Chart = %v, want nil for non-JSON marker mention", got.Chart)
	}
	if got.DisplayText != text {
		t.Errorf("DisplayText = %q, want unchanged", got.DisplayText)
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"null",
		"[1,2,3]",
		`{"response": 42}`,
		`{"response": null}`,
		`{"response": "{\"response\": {\"deep\": true}}"}`,
		strings.Repeat(`{"response":"`, 20) + "x" + strings.Repeat(`"}`, 20),
	}

	for _, in := range inputs {
		got := Normalize(in)
		_ = got.DisplayText // must always be a string, possibly empty
	}
}

func TestNormalizeSelfNestingDepthGuard(t *testing.T) {
	// Build a blob nested deeper than the guard; it must terminate and
	// return a string.
	raw := "bottom"
	for i := 0; i < 12; i++ {
		b, _ := json.Marshal(map[string]string{"response": raw})
		raw = string(b)
	}

	got := Normalize(raw)
	if got.DisplayText == "" {
		t.Error("DisplayText empty, want some recovered text")
	}
}
