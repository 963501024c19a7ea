package receipt

import "strings"

const textRule = "━━━━━━━━━━━━━━━━━━━━━"

// writeText renders the plain-text receipt.  Delimiters never repeat:
// a rule closing one section doubles as the rule opening the next.
func writeText(doc document) string {
	var b strings.Builder
	lastRule := false

	rule := func() {
		if !lastRule {
			b.WriteString(textRule + "\n")
			lastRule = true
		}
	}

	for i, s := range doc.sections {
		if s.ruleBefore {
			if i > 0 && !lastRule {
				b.WriteString("\n")
			}
			rule()
		}
		if i > 0 && !s.ruleBefore {
			b.WriteString("\n")
		}
		if s.heading != "" {
			b.WriteString(s.heading + "\n")
			lastRule = false
		}
		for _, l := range s.lines {
			if l.kind == lineItem {
				b.WriteString("  • " + l.text() + "\n")
			} else {
				b.WriteString(l.text() + "\n")
			}
			lastRule = false
		}
		if s.ruleAfter {
			rule()
		}
	}
	return b.String()
}
