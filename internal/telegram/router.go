package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/logger"
)

// route 一条显式派发规则：谓词 + handler
type route struct {
	name   string
	match  func(u *tgmodels.Update) bool
	handle bot.HandlerFunc
}

// buildRoutes 构造有序派发表，按声明顺序逐条匹配，命中即止；
// 没有任何规则命中的更新直接丢弃。
func (b *Bot) buildRoutes() []route {
	return []route{
		{
			name:   "intake-forward",
			match:  b.matchIntakeMessage,
			handle: b.handleIntakeMessage,
		},
		{
			name:   "show-bdays",
			match:  matchCommand(showBdaysCommand),
			handle: b.handleShowBirthdays,
		},
		{
			name:   "birthday-chosen-result",
			match:  func(u *tgmodels.Update) bool { return u.ChosenInlineResult != nil },
			handle: b.handleChosenInlineResult,
		},
		{
			name:   "birthday-inline-query",
			match:  func(u *tgmodels.Update) bool { return u.InlineQuery != nil },
			handle: b.handleInlineQuery,
		},
		{
			name:   "welcome-post",
			match:  b.matchNewMembers,
			handle: b.handleWelcomePost,
		},
		{
			name:   "welcome-pic-command",
			match:  matchPrivate(matchCommand(welcomePicCommand)),
			handle: b.handleWelcomePicCommand,
		},
		{
			name:   "welcome-pic-session",
			match:  matchPrivate(b.matchWizardSession),
			handle: b.handleWelcomePicSession,
		},
	}
}

// dispatch bot 的默认 handler：查表并把命中的工作交给工作池
func (b *Bot) dispatch(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
	for _, r := range b.routes {
		if !r.match(update) {
			continue
		}

		b.pool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Route:       r.name,
			Handler:     r.handle,
		})
		return
	}

	logger.L().Debugf("Update matched no route, dropped: update_id=%d", update.ID)
}

func (b *Bot) matchIntakeMessage(u *tgmodels.Update) bool {
	return u.Message != nil &&
		u.Message.Chat.ID == b.cfg.ChatID &&
		b.forwarding.Topology().IsIntakeThread(u.Message.MessageThreadID)
}

func (b *Bot) matchNewMembers(u *tgmodels.Update) bool {
	return u.Message != nil &&
		u.Message.Chat.ID == b.cfg.ChatID &&
		len(u.Message.NewChatMembers) > 0
}

func (b *Bot) matchWizardSession(u *tgmodels.Update) bool {
	return u.Message != nil &&
		u.Message.From != nil &&
		b.wizard.active(u.Message.From.ID)
}

// matchCommand 匹配 "/cmd" 及 "/cmd@botname" 形式的消息
func matchCommand(command string) func(u *tgmodels.Update) bool {
	prefix := "/" + command
	return func(u *tgmodels.Update) bool {
		if u.Message == nil {
			return false
		}
		text := u.Message.Text
		if !strings.HasPrefix(text, prefix) {
			return false
		}
		rest := text[len(prefix):]
		return rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "@")
	}
}

// matchPrivate 限定谓词只在私聊中生效
func matchPrivate(next func(u *tgmodels.Update) bool) func(u *tgmodels.Update) bool {
	return func(u *tgmodels.Update) bool {
		return u.Message != nil &&
			u.Message.Chat.Type == "private" &&
			next(u)
	}
}
