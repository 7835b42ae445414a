// Package forwarding relocates discussion replies from the intake
// threads of a community supergroup into its discussion thread.
package forwarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/logger"
	"forward_bot/internal/telegram/cleanup"
	"forward_bot/internal/telegram/markup"
)

const (
	// discussionThreadName labels the link in the transient
	// acknowledgment posted back into the intake thread.
	discussionThreadName = "Обсуждения"

	intakeAckTemplate = "%s, Ваш комментарий перенаправлен в %s"
	backRefTemplate   = "Comment to your post forwarded here, %s"
)

// Decision is the outcome of classifying one inbound message.
type Decision int

const (
	// DecisionIgnore covers messages outside the intake threads and
	// intake posts carrying media: the intake thread exists for the
	// media itself, only plain commentary gets relocated.
	DecisionIgnore Decision = iota
	// DecisionRejectLink drops messages with url/text_link entities.
	// Links are not allowed to propagate into the discussion thread.
	DecisionRejectLink
	// DecisionRelayReply relocates both the replied-to original and the
	// reply itself.
	DecisionRelayReply
	// DecisionForwardOnly relocates just the message.
	DecisionForwardOnly
)

// Client is the slice of the Telegram API the engine drives.
type Client interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*tgmodels.Message, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*tgmodels.MessageID, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Topology is the static thread layout of the community chat. It is
// built once from configuration and never mutated.
type Topology struct {
	ChatID             int64
	IntakeThreadIDs    []int
	DiscussionThreadID int
}

// IsIntakeThread reports whether the thread id is one of the intake
// threads.
func (t Topology) IsIntakeThread(threadID int) bool {
	for _, id := range t.IntakeThreadIDs {
		if id == threadID {
			return true
		}
	}
	return false
}

// IsIntakeRoot reports whether the message id is the root message of an
// intake thread. In forum supergroups a topic's root message id equals
// the topic id, so the same list serves both checks.
func (t Topology) IsIntakeRoot(messageID int) bool {
	return t.IsIntakeThread(messageID)
}

// Engine applies the relocation state machine to inbound messages.
type Engine struct {
	topology    Topology
	client      Client
	tracker     *cleanup.Tracker
	deleteDelay time.Duration
}

// New creates an engine over an immutable topology.
func New(topology Topology, client Client, tracker *cleanup.Tracker, deleteDelay time.Duration) *Engine {
	return &Engine{
		topology:    topology,
		client:      client,
		tracker:     tracker,
		deleteDelay: deleteDelay,
	}
}

// Topology exposes the engine's thread layout for routing predicates.
func (e *Engine) Topology() Topology {
	return e.topology
}

// Classify decides what to do with a message. It is pure: transition
// rules are checked in order, first match wins.
func (e *Engine) Classify(msg *tgmodels.Message) Decision {
	if msg == nil || msg.Chat.ID != e.topology.ChatID || !e.topology.IsIntakeThread(msg.MessageThreadID) {
		return DecisionIgnore
	}

	if hasDisallowedContent(msg) {
		return DecisionIgnore
	}

	if hasLinkEntity(msg) {
		return DecisionRejectLink
	}

	if msg.ReplyToMessage != nil && !e.topology.IsIntakeRoot(msg.ReplyToMessage.ID) {
		return DecisionRelayReply
	}

	return DecisionForwardOnly
}

// Process runs the full relocation transaction for one message. Steps
// are strictly sequential; apart from the forward-rejection fallback no
// failure is compensated, a half-done relocation is left as is.
func (e *Engine) Process(ctx context.Context, msg *tgmodels.Message) error {
	switch e.Classify(msg) {
	case DecisionIgnore:
		return nil

	case DecisionRejectLink:
		logger.L().Debugf("Dropping intake message with link entity: chat_id=%d message_id=%d", msg.Chat.ID, msg.ID)
		return nil

	case DecisionRelayReply:
		if err := e.relayOriginal(ctx, msg.ReplyToMessage); err != nil {
			return err
		}
	}

	return e.relocate(ctx, msg)
}

// relayOriginal moves the replied-to message into the discussion thread
// and posts a back-reference naming its author under the relayed copy.
func (e *Engine) relayOriginal(ctx context.Context, original *tgmodels.Message) error {
	relayedID, err := e.forwardWithFallback(ctx, original.ID)
	if err != nil {
		return err
	}

	_, err = e.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    e.topology.ChatID,
		Text:      fmt.Sprintf(backRefTemplate, markup.UserLink(original.From)),
		ParseMode: tgmodels.ParseModeHTML,
		ReplyParameters: &tgmodels.ReplyParameters{
			MessageID: relayedID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post back-reference: %w", err)
	}

	return nil
}

// forwardWithFallback forwards a message into the discussion thread,
// degrading to a copy when Telegram refuses the forward (source
// deleted, forwarding restricted).
func (e *Engine) forwardWithFallback(ctx context.Context, messageID int) (int, error) {
	forwarded, err := e.client.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:          e.topology.ChatID,
		FromChatID:      e.topology.ChatID,
		MessageID:       messageID,
		MessageThreadID: e.topology.DiscussionThreadID,
	})
	if err == nil {
		return forwarded.ID, nil
	}
	if !errors.Is(err, bot.ErrorBadRequest) {
		return 0, fmt.Errorf("failed to forward message %d: %w", messageID, err)
	}

	logger.L().Debugf("Forward refused for message %d, copying instead: %v", messageID, err)
	copied, err := e.client.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:          e.topology.ChatID,
		FromChatID:      e.topology.ChatID,
		MessageID:       messageID,
		MessageThreadID: e.topology.DiscussionThreadID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy message %d: %w", messageID, err)
	}

	return copied.ID, nil
}

// relocate forwards the message itself, deletes the intake original and
// leaves a transient acknowledgment pointing at the discussion thread.
func (e *Engine) relocate(ctx context.Context, msg *tgmodels.Message) error {
	forwarded, err := e.client.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:          e.topology.ChatID,
		FromChatID:      e.topology.ChatID,
		MessageID:       msg.ID,
		MessageThreadID: e.topology.DiscussionThreadID,
	})
	if err != nil {
		return fmt.Errorf("failed to forward message %d: %w", msg.ID, err)
	}

	if _, err := e.client.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    e.topology.ChatID,
		MessageID: msg.ID,
	}); err != nil {
		return fmt.Errorf("failed to delete original message %d: %w", msg.ID, err)
	}

	ack, err := e.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          e.topology.ChatID,
		MessageThreadID: msg.MessageThreadID,
		Text: fmt.Sprintf(intakeAckTemplate,
			markup.UserLink(msg.From),
			markup.MessageLink(e.topology.ChatID, forwarded.ID, discussionThreadName)),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to post acknowledgment: %w", err)
	}

	e.tracker.ScheduleDelete(e.topology.ChatID, ack.ID, e.deleteDelay)

	logger.L().Infof("Relocated intake message: chat_id=%d message_id=%d forwarded_id=%d",
		msg.Chat.ID, msg.ID, forwarded.ID)
	return nil
}

// hasDisallowedContent matches messages that must stay in the intake
// thread untouched: automated authors and media posts.
func hasDisallowedContent(msg *tgmodels.Message) bool {
	if msg.From != nil && msg.From.IsBot {
		return true
	}
	return len(msg.Photo) > 0 ||
		msg.Video != nil ||
		msg.Audio != nil ||
		msg.Document != nil ||
		msg.Animation != nil
}

// hasLinkEntity reports whether the message carries a url or text_link
// entity.
func hasLinkEntity(msg *tgmodels.Message) bool {
	for _, entity := range msg.Entities {
		if entity.Type == tgmodels.MessageEntityTypeURL || entity.Type == tgmodels.MessageEntityTypeTextLink {
			return true
		}
	}
	return false
}
