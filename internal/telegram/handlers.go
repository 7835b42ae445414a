package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/birthday"
	"forward_bot/internal/logger"
)

const (
	showBdaysCommand  = "show_bdays"
	welcomePicCommand = "welcome_pic"

	addBdaySuccessID = "add_bday_success"

	addBdayInlineTitle = "Add birthday"
	addBdayPendingMsg  = "Adding birthday..."
	addBdayFailMsg     = "Date format is invalid. Try something like 25-07"
	addBdayErrorMsg    = "Some error happened, try again later or contact maintainer."
	addBdaySuccessMsg  = "Birthday added - %s"
	addBdayButtonText  = "Add your birthday too!"
)

// handleIntakeMessage 收稿话题消息走转发状态机
func (b *Bot) handleIntakeMessage(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	if err := b.forwarding.Process(ctx, update.Message); err != nil {
		logger.L().Errorf("Intake forwarding failed: chat_id=%d message_id=%d err=%v",
			update.Message.Chat.ID, update.Message.ID, err)
	}
}

// handleShowBirthdays 处理 /show_bdays 命令
func (b *Bot) handleShowBirthdays(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	msg := update.Message

	text, err := b.birthdays.CalendarText(ctx, msg.Chat.ID)
	if err != nil {
		logger.L().Errorf("Failed to build birthday calendar: chat_id=%d err=%v", msg.Chat.ID, err)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, text, msg.ID)
}

// handleInlineQuery 响应生日登记的 inline 查询
// 合法的日期得到唯一一条可选结果，非法输入得到空列表。
func (b *Bot) handleInlineQuery(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	query := update.InlineQuery

	var results []tgmodels.InlineQueryResult
	if birthday.IsValid(strings.TrimSpace(query.Query)) {
		results = append(results, &tgmodels.InlineQueryResultArticle{
			ID:    addBdaySuccessID,
			Title: addBdayInlineTitle,
			InputMessageContent: &tgmodels.InputTextMessageContent{
				MessageText: addBdayPendingMsg,
			},
			ReplyMarkup: addBdayInlineMarkup(),
		})
	}

	_, err := botInstance.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: query.ID,
		Results:       results,
		CacheTime:     0,
	})
	if err != nil {
		logger.L().Errorf("Failed to answer inline query: %v", err)
	}
}

// handleChosenInlineResult 处理选中的 inline 结果，落库生日
// 失败时把挂起的 inline 消息改成失败提示；日期非法属于用户错误，
// 只提示不记日志。
func (b *Bot) handleChosenInlineResult(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	res := update.ChosenInlineResult

	if res.ResultID != addBdaySuccessID {
		return
	}
	if res.InlineMessageID == "" {
		// The result article always carries a keyboard, so Telegram
		// must hand back an inline message id.
		logger.L().Errorf("Chosen inline result without inline_message_id: user_id=%d", res.From.ID)
		return
	}

	raw := strings.TrimSpace(res.Query)
	err := b.birthdays.AddBirthday(ctx, &res.From, b.cfg.ChatID, raw)
	if errors.Is(err, birthday.ErrInvalidFormat) {
		b.editInlineMessage(ctx, res.InlineMessageID, addBdayFailMsg)
		return
	}
	if err != nil {
		b.editInlineMessage(ctx, res.InlineMessageID, addBdayErrorMsg)
		logger.L().Errorf("Failed to add birthday: user_id=%d err=%v", res.From.ID, err)
		return
	}

	b.editInlineMessage(ctx, res.InlineMessageID, fmt.Sprintf(addBdaySuccessMsg, raw))
}

// addBdayInlineMarkup 挂在 inline 结果上的再次登记按钮
// switch_inline_query_current_chat 为空串即可重新打开 inline 输入。
func addBdayInlineMarkup() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{
					Text:                         addBdayButtonText,
					SwitchInlineQueryCurrentChat: "",
				},
			},
		},
	}
}
