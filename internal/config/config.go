package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用程序配置
// 进程启动时从环境变量加载一次，之后只读。
type Config struct {
	BotToken string // Telegram Bot API Token

	ChatID             int64         // 目标社区群 ID
	IntakeThreadIDs    []int         // 收稿话题 ID 列表
	DiscussionThreadID int           // 讨论话题 ID
	DeleteDelay        time.Duration // 临时提示消息的删除延时

	RulesThreadID  int // 欢迎消息按钮：群规话题
	GuideThreadID  int // 欢迎消息按钮：指南话题
	SurveyThreadID int // 欢迎消息按钮：问卷话题

	MongoURI    string // MongoDB 连接 URI
	MongoDBName string // MongoDB 数据库名称

	WorkerPoolSize int // Handler 并发上限
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDBName: os.Getenv("MONGO_DB_NAME"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "forward_bot"
	}

	chatID, err := strconv.ParseInt(os.Getenv("CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CHAT_ID: %w", err)
	}
	cfg.ChatID = chatID

	cfg.IntakeThreadIDs, err = parseThreadIDs(os.Getenv("IMAGE_THREADS"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse IMAGE_THREADS: %w", err)
	}
	if len(cfg.IntakeThreadIDs) == 0 {
		return nil, fmt.Errorf("IMAGE_THREADS must list at least one thread id")
	}

	cfg.DiscussionThreadID, err = requiredInt("COMMENT_THREAD")
	if err != nil {
		return nil, err
	}

	// 秒数，允许小数
	delaySeconds, err := strconv.ParseFloat(os.Getenv("DELETE_DELAY"), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DELETE_DELAY: %w", err)
	}
	cfg.DeleteDelay = time.Duration(delaySeconds * float64(time.Second))

	cfg.RulesThreadID, err = requiredInt("RULES_THREAD")
	if err != nil {
		return nil, err
	}
	cfg.GuideThreadID, err = requiredInt("GUIDE_THREAD")
	if err != nil {
		return nil, err
	}
	cfg.SurveyThreadID, err = requiredInt("SURVEY_THREAD")
	if err != nil {
		return nil, err
	}

	// 解析WORKER_POOL_SIZE（默认 10，对应平台侧的并发处理上限）
	poolSizeStr := os.Getenv("WORKER_POOL_SIZE")
	if poolSizeStr == "" {
		cfg.WorkerPoolSize = 10
	} else {
		size, err := strconv.Atoi(poolSizeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WORKER_POOL_SIZE: %w", err)
		}
		if size < 1 {
			return nil, fmt.Errorf("WORKER_POOL_SIZE must be >= 1, got %d", size)
		}
		cfg.WorkerPoolSize = size
	}

	return cfg, nil
}

// parseThreadIDs 解析逗号分隔的话题ID字符串
// 支持格式: "123" 或 "123,456"
func parseThreadIDs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid thread ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func requiredInt(name string) (int, error) {
	value, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return value, nil
}
