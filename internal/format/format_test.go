package format

import (
	"strings"
	"testing"

	"github.com/amax-bi/anna-gateway/internal/domain"
)

func TestRenderPlainParagraph(t *testing.T) {
	blocks := Render("Premiums rose 12%\nacross all regions.")

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Kind != domain.BlockParagraph {
		t.Errorf("Kind = %q, want paragraph", blocks[0].Kind)
	}
	if blocks[0].HTML != "Premiums rose 12%<br>across all regions." {
		t.Errorf("HTML = %q, line break not preserved", blocks[0].HTML)
	}
}

func TestRenderSectionConvention(t *testing.T) {
	text := "ANSWER:\nPremiums rose 12% in Q4.\n\n" +
		"KEY INSIGHTS:\n- Auto led growth\n- Home stayed flat\n• Claims fell\n\n" +
		"MY TAKE:\nMomentum should continue into Q1."

	blocks := Render(text)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(blocks), blocks)
	}

	if blocks[0].Kind != domain.BlockAnswer {
		t.Errorf("blocks[0].Kind = %q, want answer", blocks[0].Kind)
	}
	if !strings.Contains(blocks[0].HTML, "Premiums rose 12% in Q4.") {
		t.Errorf("answer HTML = %q", blocks[0].HTML)
	}

	if blocks[1].Kind != domain.BlockInsights {
		t.Errorf("blocks[1].Kind = %q, want insights", blocks[1].Kind)
	}
	wantItems := []string{"Auto led growth", "Home stayed flat", "Claims fell"}
	if len(blocks[1].Items) != len(wantItems) {
		t.Fatalf("got %d items, want %d", len(blocks[1].Items), len(wantItems))
	}
	for i, want := range wantItems {
		if blocks[1].Items[i] != want {
			t.Errorf("Items[%d] = %q, want %q", i, blocks[1].Items[i], want)
		}
	}

	if blocks[2].Kind != domain.BlockTake {
		t.Errorf("blocks[2].Kind = %q, want take", blocks[2].Kind)
	}
}

func TestRenderUnclassifiedBlocksKeepOrder(t *testing.T) {
	blocks := Render("First paragraph.\n\nANSWER: inline answer\n\nLast paragraph.")

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	kinds := []string{domain.BlockParagraph, domain.BlockAnswer, domain.BlockParagraph}
	for i, want := range kinds {
		if blocks[i].Kind != want {
			t.Errorf("blocks[%d].Kind = %q, want %q", i, blocks[i].Kind, want)
		}
	}
}

func TestRenderInlineEmphasis(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**bold** move", "<strong>bold</strong> move"},
		{"an *italic* word", "an <em>italic</em> word"},
		{"mix **b** and *i*", "mix <strong>b</strong> and <em>i</em>"},
	}

	for _, tt := range tests {
		got := renderInline(tt.input)
		if got != tt.want {
			t.Errorf("renderInline(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRenderEscapesUpstreamMarkup(t *testing.T) {
	blocks := Render(`<script>alert("x")</script> is **not** allowed`)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	html := blocks[0].HTML
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML = %q, script tag not escaped", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("HTML = %q, want escaped script tag", html)
	}
	if !strings.Contains(html, "<strong>not</strong>") {
		t.Errorf("HTML = %q, emphasis should still render", html)
	}
}

func TestRenderEmptyText(t *testing.T) {
	if blocks := Render("   \n\n  "); len(blocks) != 0 {
		t.Errorf("got %d blocks for blank input, want 0", len(blocks))
	}
}
