package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a community member as seen by one chat. The same Telegram
// user joining another tracked chat gets a separate record, so the
// logical key is (telegram_id, chat_id).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	TelegramID int64              `bson:"telegram_id"`
	ChatID     int64              `bson:"chat_id"`
	FirstName  string             `bson:"first_name"`
	LastName   string             `bson:"last_name,omitempty"`
	Username   string             `bson:"username,omitempty"`
	// Birthday is pinned to the reference year (see internal/birthday);
	// nil means the user never submitted one.
	Birthday  *time.Time `bson:"birthday,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// HasBirthday reports whether the user submitted a birthday.
func (u *User) HasBirthday() bool {
	return u.Birthday != nil
}
