// Package format maps normalized display text into structured UI blocks,
// recognizing the ANSWER / KEY INSIGHTS / MY TAKE section convention used by
// the BI workflow's answers.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/amax-bi/anna-gateway/internal/domain"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	blankRe  = regexp.MustCompile(`\n\s*\n`)
)

// Render splits display text into labeled blocks. Text not following the
// section convention renders as plain paragraphs in original order.
func Render(displayText string) []domain.Block {
	var blocks []domain.Block

	for _, chunk := range blankRe.Split(strings.TrimSpace(displayText), -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		kind, body := classify(chunk)
		switch kind {
		case domain.BlockInsights:
			blocks = append(blocks, insightsBlock(body))
		default:
			blocks = append(blocks, domain.Block{
				Kind: kind,
				HTML: renderInline(body),
			})
		}
	}

	return blocks
}

// classify matches a leading section marker and strips it from the body
func classify(chunk string) (string, string) {
	upper := strings.ToUpper(chunk)
	switch {
	case strings.HasPrefix(upper, "ANSWER:"):
		return domain.BlockAnswer, strings.TrimSpace(chunk[len("ANSWER:"):])
	case strings.HasPrefix(upper, "KEY INSIGHTS:"):
		return domain.BlockInsights, strings.TrimSpace(chunk[len("KEY INSIGHTS:"):])
	case strings.HasPrefix(upper, "MY TAKE:"):
		return domain.BlockTake, strings.TrimSpace(chunk[len("MY TAKE:"):])
	case strings.HasPrefix(upper, "TAKE:"):
		return domain.BlockTake, strings.TrimSpace(chunk[len("TAKE:"):])
	}
	return domain.BlockParagraph, chunk
}

// insightsBlock renders bullet lines as individual list items; anything else
// in the block stays in its HTML body
func insightsBlock(body string) domain.Block {
	block := domain.Block{Kind: domain.BlockInsights}

	var prose []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if item, ok := bulletItem(trimmed); ok {
			block.Items = append(block.Items, renderInline(item))
		} else if trimmed != "" {
			prose = append(prose, trimmed)
		}
	}
	if len(prose) > 0 {
		block.HTML = renderInline(strings.Join(prose, "\n"))
	}

	return block
}

func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}

// renderInline escapes the text, then converts **bold** and *italic* markers
// to presentational markup. Escaping first keeps upstream content from
// injecting markup of its own.
func renderInline(text string) string {
	escaped := html.EscapeString(text)
	escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = italicRe.ReplaceAllString(escaped, "<em>$1</em>")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
