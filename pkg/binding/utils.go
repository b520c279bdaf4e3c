package binding

import (
	"strings"

	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
)

// maskSecret masks sensitive information for logging
func maskSecret(s string) string {
	if len(s) <= constants.MinSecretLengthForMasking {
		return "***"
	}
	return s[:constants.SecretMaskPrefixLength] + "***" + s[len(s)-constants.SecretMaskSuffixLength:]
}

// truncateTail cuts s to at most maxLen runes, ending with "..." when cut
func truncateTail(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// renderPlainText flattens a message and its embeds for platforms without
// rich embeds
func renderPlainText(msg radarcord.Message) string {
	var b strings.Builder
	if msg.Content != "" {
		b.WriteString(msg.Content)
	}
	for _, e := range msg.Embeds {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if e.Title != "" {
			b.WriteString(e.Title)
			b.WriteString("\n")
		}
		if e.Description != "" {
			b.WriteString(e.Description)
			b.WriteString("\n")
		}
		for _, f := range e.Fields {
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(f.Value)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
