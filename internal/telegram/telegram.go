package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.mongodb.org/mongo-driver/mongo"

	"forward_bot/internal/config"
	"forward_bot/internal/logger"
	"forward_bot/internal/telegram/cleanup"
	"forward_bot/internal/telegram/forwarding"
	"forward_bot/internal/telegram/repository"
	"forward_bot/internal/telegram/service"
)

// Bot Telegram Bot 服务
// 把转发状态机、生日业务和欢迎流程接到轮询派发上。
type Bot struct {
	bot *bot.Bot
	cfg *config.Config

	users    repository.UserRepository
	pictures repository.PictureRepository

	birthdays  *service.BirthdayService
	congrats   *service.CongratsService
	forwarding *forwarding.Engine
	cleanup    *cleanup.Tracker
	wizard     *welcomeWizard

	pool   *WorkerPool
	routes []route
}

// New 创建 Telegram Bot 实例
func New(cfg *config.Config, db *mongo.Database) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}

	telegramBot := &Bot{
		cfg:      cfg,
		users:    repository.NewUserRepository(db),
		pictures: repository.NewPictureRepository(db),
		wizard:   newWelcomeWizard(),
	}

	b, err := bot.New(cfg.BotToken, bot.WithDefaultHandler(
		func(ctx context.Context, botInstance *bot.Bot, update *tgmodels.Update) {
			telegramBot.dispatch(ctx, botInstance, update)
		},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	telegramBot.bot = b

	topology := forwarding.Topology{
		ChatID:             cfg.ChatID,
		IntakeThreadIDs:    cfg.IntakeThreadIDs,
		DiscussionThreadID: cfg.DiscussionThreadID,
	}

	telegramBot.cleanup = cleanup.NewTracker(b)
	telegramBot.forwarding = forwarding.New(topology, b, telegramBot.cleanup, cfg.DeleteDelay)
	telegramBot.birthdays = service.NewBirthdayService(telegramBot.users)
	telegramBot.congrats = service.NewCongratsService(telegramBot.birthdays, b)

	// 队列深度给够余量，满了宁可丢弃也不阻塞轮询
	telegramBot.pool = NewWorkerPool(cfg.WorkerPoolSize, cfg.WorkerPoolSize*4)
	telegramBot.routes = telegramBot.buildRoutes()

	if err := telegramBot.users.EnsureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure user indexes: %w", err)
	}

	logger.L().Info("Telegram bot initialized successfully")
	return telegramBot, nil
}

// Start 启动 Bot（阻塞式，轮询到 ctx 取消为止）
// 启动前先跑一次当日生日祝贺，与外部 cron 的独立入口互补。
func (b *Bot) Start(ctx context.Context) {
	if err := b.congrats.DispatchTodaysCongratulations(ctx); err != nil {
		logger.L().Errorf("Startup congratulation dispatch failed: %v", err)
	}

	logger.L().Info("Starting Telegram bot...")
	b.bot.Start(ctx)
	logger.L().Info("Telegram bot stopped")
}

// Stop 停机收尾：排空工作池，撤销未触发的清理任务
func (b *Bot) Stop() {
	b.pool.Shutdown()
	b.cleanup.Close()
}
