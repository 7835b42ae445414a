package models

// WelcomePicture is the single-slot Telegram file id shown in welcome
// posts. Only one document ever exists; saving replaces it.
type WelcomePicture struct {
	ID     string `bson:"_id"`
	FileID string `bson:"file_id"`
}

// WelcomePictureSlot is the fixed _id of the only welcome picture
// document.
const WelcomePictureSlot = "current"
