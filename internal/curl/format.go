package curl

import (
	"strings"

	"github.com/artpar/reqtabs/internal/core"
)

// Format renders rec as a curl command. Pretty output puts each option on
// its own continuation line.
func Format(rec *core.Record, pretty bool) string {
	parts := []string{"curl"}

	if method := strings.ToUpper(rec.Method()); method != "GET" {
		parts = append(parts, "-X", method)
	}

	headers := rec.Headers()
	for _, key := range rec.HeaderKeys() {
		parts = append(parts, "-H", key+": "+headers[key])
	}

	if body := rec.Body(); body != "" {
		if rec.BodyType() == core.BodyTypeJSON && headers["Content-Type"] == "" {
			parts = append(parts, "-H", "Content-Type: application/json")
		}
		parts = append(parts, "--data-raw", body)
	}

	parts = append(parts, rec.FullURL())

	if pretty {
		return formatPretty(parts)
	}
	return formatInline(parts)
}

func formatInline(parts []string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = shellQuote(part)
	}
	return strings.Join(quoted, " ")
}

func formatPretty(parts []string) string {
	var b strings.Builder
	b.WriteString("curl")

	for i := 1; i < len(parts); i++ {
		part := parts[i]
		b.WriteString(" \\\n  ")
		b.WriteString(shellQuote(part))
		if strings.HasPrefix(part, "-") && i+1 < len(parts) {
			i++
			b.WriteString(" ")
			b.WriteString(shellQuote(parts[i]))
		}
	}
	return b.String()
}

// shellQuote wraps s in single quotes when a POSIX shell would otherwise
// split or expand it.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'$`\\!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
