// One-shot congratulation dispatch for external schedulers: send
// today's birthday announcements and exit.
package main

import (
	"context"
	"time"

	"github.com/go-telegram/bot"

	"forward_bot/internal/config"
	"forward_bot/internal/logger"
	"forward_bot/internal/mongo"
	"forward_bot/internal/telegram/repository"
	"forward_bot/internal/telegram/service"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	mongoClient, err := mongo.InitFromConfig(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize MongoDB: %v", err)
	}

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		logger.L().Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	users := repository.NewUserRepository(mongoClient.Database())
	birthdays := service.NewBirthdayService(users)
	congrats := service.NewCongratsService(birthdays, b)

	if err := congrats.DispatchTodaysCongratulations(ctx); err != nil {
		logger.L().Errorf("Congratulation dispatch failed: %v", err)
	}

	if err := mongoClient.Close(ctx); err != nil {
		logger.L().Errorf("Failed to close MongoDB: %v", err)
	}
}
