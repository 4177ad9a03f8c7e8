package page

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// DialogButton renders a button that loads a dialog into the dialog root.
func DialogButton(url, label, class string) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<button type="button" class="btn btn-sm %s" hx-get="%s" hx-target="#dialog-root">%s</button>`,
		template.HTMLEscapeString(class),
		template.HTMLEscapeString(url),
		template.HTMLEscapeString(label),
	))
}

// Buttons joins rendered buttons into one cell.
func Buttons(buttons ...template.HTML) template.HTML {
	parts := make([]string, len(buttons))
	for i, b := range buttons {
		parts[i] = string(b)
	}
	return template.HTML(`<div class="actions">` + strings.Join(parts, "") + `</div>`)
}

// Badge renders a status label. The tone picks its colour.
func Badge(text, tone string) template.HTML {
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		template.HTMLEscapeString(tone), template.HTMLEscapeString(text)))
}

// StatusTone maps backend status values to badge tones.
func StatusTone(status string) string {
	switch status {
	case "AVAILABLE", "APPROVED", "COMPLETED":
		return "success"
	case "OCCUPIED", "PENDING":
		return "warning"
	case "MAINTENANCE", "REJECTED":
		return "danger"
	default:
		return "neutral"
	}
}

// FormatDate renders a server timestamp, or a dash when it is unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// Money renders an amount with two decimals.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
