package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/logger"
	"forward_bot/internal/telegram/markup"
	"forward_bot/internal/telegram/repository"
)

const welcomeMessage = `Ну здравствуй, %s!

Добро пожаловать в наше <tg-spoiler>греховное</tg-spoiler> уютное сообщество. Всем уже не терпится с тобой познакомиться! Заполняй анкету, просмотри правила и, конечно же, устраивайся поудобнее 🫦

PS. Заполнение анкеты носит исключительно ознакомительный характер, ролевить насильно никого мы не заставляем.`

const (
	rulesButtonCaption  = "Правила"
	guideButtonCaption  = "Путеводитель"
	surveyButtonCaption = "Анкета"

	welcomePicNotAdminMsg = "You're not authorized to change welcome photo."
	welcomePicQueryMsg    = "Please send exactly one photo."
	welcomePicRepromptMsg = "You did not send a photo, please send a photo."
	welcomePicDoneMsg     = "New welcome picture added."
)

// wizardState 欢迎图片会话状态
type wizardState int

const (
	stateAwaitingPicture wizardState = iota
	statePictureStored
)

// welcomeWizard 按用户跟踪欢迎图片会话
// 只有两个状态，displayed 状态落库后会话立即销毁。
type welcomeWizard struct {
	mu       sync.Mutex
	sessions map[int64]wizardState
}

func newWelcomeWizard() *welcomeWizard {
	return &welcomeWizard{sessions: make(map[int64]wizardState)}
}

// begin 为用户开启会话
func (w *welcomeWizard) begin(userID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[userID] = stateAwaitingPicture
}

// active 会话是否在进行中
func (w *welcomeWizard) active(userID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sessions[userID]
	return ok
}

// advance 显式状态迁移：收到图片则结束会话，否则停在原地等待
func (w *welcomeWizard) advance(userID int64, gotPhoto bool) wizardState {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !gotPhoto {
		return stateAwaitingPicture
	}
	delete(w.sessions, userID)
	return statePictureStored
}

// handleWelcomePicCommand 处理私聊的 /welcome_pic 命令
// 只有社区群管理员可以更换欢迎图片。
func (b *Bot) handleWelcomePicCommand(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}

	admins, err := botInstance.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{
		ChatID: b.cfg.ChatID,
	})
	if err != nil {
		logger.L().Errorf("Failed to list chat administrators: %v", err)
		return
	}

	if !isAdmin(admins, msg.From.ID) {
		b.sendMessage(ctx, msg.Chat.ID, welcomePicNotAdminMsg)
		return
	}

	b.wizard.begin(msg.From.ID)
	b.sendMessage(ctx, msg.Chat.ID, welcomePicQueryMsg)
}

// handleWelcomePicSession 推进进行中的欢迎图片会话
func (b *Bot) handleWelcomePicSession(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	msg := update.Message

	if b.wizard.advance(msg.From.ID, len(msg.Photo) > 0) != statePictureStored {
		b.sendMessage(ctx, msg.Chat.ID, welcomePicRepromptMsg)
		return
	}

	if err := b.pictures.Save(ctx, msg.Photo[0].FileID); err != nil {
		logger.L().Errorf("Failed to save welcome picture: %v", err)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, welcomePicDoneMsg)
}

// handleWelcomePost 新成员入群时发欢迎贴
func (b *Bot) handleWelcomePost(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	newcomer := msg.NewChatMembers[0]

	text := fmt.Sprintf(welcomeMessage, markup.UserLink(&newcomer))
	keyboard := b.welcomeKeyboard()

	fileID, err := b.pictures.Load(ctx)
	if errors.Is(err, repository.ErrNoPicture) {
		// 没有图片照样发欢迎语
		b.sendWelcomeText(ctx, msg.Chat.ID, msg.MessageThreadID, text, keyboard)
		return
	}
	if err != nil {
		logger.L().Errorf("Failed to load welcome picture: %v", err)
		b.sendWelcomeText(ctx, msg.Chat.ID, msg.MessageThreadID, text, keyboard)
		return
	}

	_, err = botInstance.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: msg.MessageThreadID,
		Photo:           &tgmodels.InputFileString{Data: fileID},
		Caption:         text,
		ParseMode:       tgmodels.ParseModeHTML,
		ReplyMarkup:     keyboard,
	})
	if err != nil {
		logger.L().Errorf("Failed to send welcome photo: %v", err)
	}
}

func (b *Bot) sendWelcomeText(ctx context.Context, chatID int64, threadID int, text string, keyboard *tgmodels.InlineKeyboardMarkup) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
		ParseMode:       tgmodels.ParseModeHTML,
		ReplyMarkup:     keyboard,
	})
	if err != nil {
		logger.L().Errorf("Failed to send welcome message: %v", err)
	}
}

// welcomeKeyboard 指向群规/指南/问卷话题的按钮行
func (b *Bot) welcomeKeyboard() *tgmodels.InlineKeyboardMarkup {
	chatLink := markup.ChatLink(b.cfg.ChatID)
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: rulesButtonCaption, URL: fmt.Sprintf("%s/%d", chatLink, b.cfg.RulesThreadID)},
				{Text: guideButtonCaption, URL: fmt.Sprintf("%s/%d", chatLink, b.cfg.GuideThreadID)},
				{Text: surveyButtonCaption, URL: fmt.Sprintf("%s/%d", chatLink, b.cfg.SurveyThreadID)},
			},
		},
	}
}

func isAdmin(admins []tgmodels.ChatMember, userID int64) bool {
	for _, admin := range admins {
		switch admin.Type {
		case tgmodels.ChatMemberTypeOwner:
			if admin.Owner != nil && admin.Owner.User != nil && admin.Owner.User.ID == userID {
				return true
			}
		case tgmodels.ChatMemberTypeAdministrator:
			if admin.Administrator != nil && admin.Administrator.User.ID == userID {
				return true
			}
		}
	}
	return false
}
