package notify

import (
	"fmt"
	"html"
	"strings"
)

func RequestReceivedText(senderName, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💌 <b>New match request</b>\n\n%s sent you a request.", html.EscapeString(senderName))
	if message != "" {
		fmt.Fprintf(&b, "\n\n<i>%s</i>", html.EscapeString(message))
	}
	b.WriteString("\n\nOpen the app to accept or decline.")
	return b.String()
}

func RequestSentText(receiverName string, requestsLeft int) string {
	return fmt.Sprintf("📨 Your request to %s was sent.\n\nRequests left: %d",
		html.EscapeString(receiverName), requestsLeft)
}

func RequestAcceptedText(otherName string, chatDays int) string {
	return fmt.Sprintf("🎉 <b>It's a match!</b>\n\nYou and %s can now chat for %d days.",
		html.EscapeString(otherName), chatDays)
}

func RequestRejectedText(receiverName string) string {
	return fmt.Sprintf("😔 %s declined your request.", html.EscapeString(receiverName))
}

func MessagePostedText(senderName, content string) string {
	preview := content
	if r := []rune(preview); len(r) > 100 {
		preview = string(r[:100]) + "…"
	}
	return fmt.Sprintf("💬 <b>%s</b>:\n%s", html.EscapeString(senderName), html.EscapeString(preview))
}

func PaymentSubmittedText(userName, tariff string, amount int64) string {
	return fmt.Sprintf("💳 <b>New payment</b>\n\nUser: %s\nTariff: %s\nAmount: %d",
		html.EscapeString(userName), html.EscapeString(tariff), amount)
}

func PaymentApprovedText(tariff string, requests, days int) string {
	return fmt.Sprintf("✅ <b>Payment approved!</b>\n\n%s is active for %d days.\nRequests available: %d",
		html.EscapeString(tariff), days, requests)
}

func PaymentRejectedText(comment string) string {
	text := "❌ <b>Payment rejected</b>\n\nPlease send a valid receipt or contact support."
	if comment != "" {
		text += "\n\n" + html.EscapeString(comment)
	}
	return text
}
