// Package markup builds Telegram HTML fragments for mentions and
// in-chat message links.
package markup

import (
	"fmt"
	"html"

	tgmodels "github.com/go-telegram/bot/models"
)

// Mention renders a clickable user mention for HTML parse mode.
func Mention(userID int64, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

// UserLink renders a mention of a Telegram user by first name.
func UserLink(user *tgmodels.User) string {
	if user == nil {
		return ""
	}
	return Mention(user.ID, user.FirstName)
}

// MessageLink renders an HTML link to a message (or topic) inside a
// private supergroup. Telegram's t.me/c/ links address the chat by its
// internal id, the supergroup prefix stripped.
func MessageLink(chatID int64, messageID int, text string) string {
	return fmt.Sprintf(`<a href="https://t.me/c/%d/%d">%s</a>`,
		internalChatID(chatID), messageID, html.EscapeString(text))
}

// ChatLink returns the t.me/c/ URL of the chat itself, for keyboard
// buttons pointing at topics.
func ChatLink(chatID int64) string {
	return fmt.Sprintf("https://t.me/c/%d", internalChatID(chatID))
}

// internalChatID strips the -100 supergroup marker: the absolute value
// modulo 10^12 is what t.me/c/ expects.
func internalChatID(chatID int64) int64 {
	if chatID < 0 {
		chatID = -chatID
	}
	return chatID % 1_000_000_000_000
}
