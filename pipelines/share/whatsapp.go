package share

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const (
	maxMessageLen  = 2000
	truncatedLen   = 1900
	truncateNotice = "\n\n[Message truncated - full details available on request]"
)

// WhatsAppLink builds a click-to-chat link. With a phone number the link
// opens a chat with that number, otherwise WhatsApp Web's share screen.
func WhatsAppLink(message, phone string) string {
	encoded := quote(message)
	if digits := Digits(phone); digits != "" {
		return fmt.Sprintf("https://wa.me/%s?text=%s", digits, encoded)
	}
	return "https://web.whatsapp.com/send?text=" + encoded
}

// Digits keeps only the decimal digits of a phone number
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ComposeMessage builds the share text for a company brief. Long bodies
// are cut so the link stays within WhatsApp's limits.
func ComposeMessage(company, body, videoPath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Placement brief: %s*\n\n", strings.TrimSpace(company))
	sb.WriteString(strings.TrimSpace(body))
	if videoPath != "" {
		fmt.Fprintf(&sb, "\n\nVideo: %s", videoPath)
	}
	return Truncate(sb.String())
}

// Truncate shortens messages longer than 2000 characters
func Truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= maxMessageLen {
		return message
	}
	cut := strings.TrimRightFunc(string(runes[:truncatedLen]), unicode.IsSpace)
	return cut + truncateNotice
}

// quote percent-encodes a query value with spaces as %20
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
