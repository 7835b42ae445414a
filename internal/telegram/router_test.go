package telegram

import (
	"testing"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/stretchr/testify/assert"
)

func textUpdate(private bool, text string) *tgmodels.Update {
	chat := tgmodels.Chat{ID: 1, Type: "supergroup"}
	if private {
		chat.Type = "private"
	}
	return &tgmodels.Update{
		Message: &tgmodels.Message{
			Chat: chat,
			From: &tgmodels.User{ID: 42},
			Text: text,
		},
	}
}

func TestMatchCommand(t *testing.T) {
	match := matchCommand(showBdaysCommand)

	tests := []struct {
		name string
		u    *tgmodels.Update
		want bool
	}{
		{"bare command", textUpdate(false, "/show_bdays"), true},
		{"command with bot name", textUpdate(false, "/show_bdays@forward_bot"), true},
		{"command with argument", textUpdate(false, "/show_bdays now"), true},
		{"different command", textUpdate(false, "/show_bdays_extra"), false},
		{"plain text", textUpdate(false, "show_bdays"), false},
		{"no message", &tgmodels.Update{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, match(tt.u))
		})
	}
}

func TestMatchPrivate(t *testing.T) {
	match := matchPrivate(matchCommand(welcomePicCommand))

	assert.True(t, match(textUpdate(true, "/welcome_pic")))
	assert.False(t, match(textUpdate(false, "/welcome_pic")))
	assert.False(t, match(textUpdate(true, "hello")))
}
