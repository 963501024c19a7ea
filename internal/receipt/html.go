package receipt

import (
	"html"
	"strings"
)

const (
	bodyStyle    = "margin:0;padding:20px;background:#f4f4f7;font-family:Arial,Helvetica,sans-serif;color:#1f1f29"
	receiptStyle = "max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px"
	ruleStyle    = "border:none;border-top:2px solid #7c3aed;margin:16px 0"
)

// writeHTML renders the HTML receipt from the same document as writeText.
// All user-supplied text is escaped.
func writeHTML(doc document) string {
	var b strings.Builder
	esc := html.EscapeString

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + esc(doc.title) + "</title>\n</head>\n")
	b.WriteString("<body style=\"" + bodyStyle + "\">\n")
	b.WriteString("<div class=\"receipt\" style=\"" + receiptStyle + "\">\n")

	lastRule := false
	for _, s := range doc.sections {
		if s.ruleBefore && !lastRule {
			b.WriteString("<hr style=\"" + ruleStyle + "\">\n")
		}
		lastRule = false

		b.WriteString("<section class=\"" + s.key + "\">\n")
		if s.heading != "" {
			if s.key == "header" {
				b.WriteString("<h1>" + esc(s.heading) + "</h1>\n")
			} else {
				b.WriteString("<h2>" + esc(s.heading) + "</h2>\n")
			}
		}
		writeHTMLLines(&b, s.lines)
		b.WriteString("</section>\n")

		if s.ruleAfter {
			b.WriteString("<hr style=\"" + ruleStyle + "\">\n")
			lastRule = true
		}
	}

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

// writeHTMLLines groups consecutive fields into a table and consecutive
// items into a list; notes and amounts become paragraphs.
func writeHTMLLines(b *strings.Builder, lines []line) {
	esc := html.EscapeString
	for i := 0; i < len(lines); {
		switch lines[i].kind {
		case lineField:
			b.WriteString("<table>\n")
			for ; i < len(lines) && lines[i].kind == lineField; i++ {
				b.WriteString("<tr><th align=\"left\">" + esc(lines[i].label) + ":</th><td>" + esc(lines[i].value) + "</td></tr>\n")
			}
			b.WriteString("</table>\n")
		case lineItem:
			b.WriteString("<ul>\n")
			for ; i < len(lines) && lines[i].kind == lineItem; i++ {
				b.WriteString("<li>" + esc(lines[i].text()) + "</li>\n")
			}
			b.WriteString("</ul>\n")
		case lineAmount:
			b.WriteString("<p class=\"amount\"><strong>" + esc(lines[i].text()) + "</strong></p>\n")
			i++
		default:
			b.WriteString("<p>" + esc(lines[i].text()) + "</p>\n")
			i++
		}
	}
}
