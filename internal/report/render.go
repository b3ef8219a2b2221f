package report

import (
	"fmt"
	"strings"

	"github.com/huellitas-unexpo/rescuebot/core/telegram/format"
)

const (
	headerSummary   = "*✅ Summary of your report:*"
	headerReport    = "⚠️ *NEW REPORT* ⚠️"
	headerAnonymous = "⚠️ *NEW ANONYMOUS REPORT* ⚠️"
)

// Summary renders the report for the reporter to review before confirming (Markdown).
func Summary(r Report) string {
	var b strings.Builder
	b.WriteString(headerSummary)
	b.WriteString("\n\n")
	writeFields(&b, r)
	return b.String()
}

// Final renders the report posted to the rescuers' group (Markdown).
// Anonymous reports carry neither contact details nor the sender's identity.
func Final(r Report, from Sender) string {
	var b strings.Builder
	if r.Anonymous() {
		b.WriteString(headerAnonymous)
		b.WriteString("\n\n")
	} else {
		b.WriteString(headerReport)
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "*From:* %s (ID: `%d`)\n", from.handle(), from.ID)
	}
	writeFields(&b, r)
	return b.String()
}

func writeFields(b *strings.Builder, r Report) {
	writeField(b, "Animal type", r.AnimalType)
	writeField(b, "Location", r.Location)
	writeField(b, "Health status", r.HealthStatus)
	if !r.Anonymous() {
		writeField(b, "Contact name", r.ContactName)
		writeField(b, "Contact phone", r.ContactPhone)
	}
	writeField(b, "Description", r.Description)
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "*%s:* %s\n", label, escape(value))
}

func (s Sender) handle() string {
	switch {
	case s.Username != "":
		return "@" + escape(s.Username)
	case s.FirstName != "":
		return escape(s.FirstName)
	}
	return "unknown"
}

func escape(s string) string {
	out, _ := format.EscapeMarkdown(s, format.MarkdownV1)
	return out
}
