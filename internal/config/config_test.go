package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CHAT_ID", "-1001234567890")
	t.Setenv("IMAGE_THREADS", "10, 20")
	t.Setenv("COMMENT_THREAD", "99")
	t.Setenv("DELETE_DELAY", "7.5")
	t.Setenv("RULES_THREAD", "2")
	t.Setenv("GUIDE_THREAD", "3")
	t.Setenv("SURVEY_THREAD", "4")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("WORKER_POOL_SIZE", "")
}

func TestLoad(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(-1001234567890), cfg.ChatID)
	assert.Equal(t, []int{10, 20}, cfg.IntakeThreadIDs)
	assert.Equal(t, 99, cfg.DiscussionThreadID)
	assert.Equal(t, 7500*time.Millisecond, cfg.DeleteDelay)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "forward_bot", cfg.MongoDBName)
	assert.Equal(t, 10, cfg.WorkerPoolSize)
}

func TestLoadMissingToken(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadChatID(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CHAT_ID", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEmptyThreadList(t *testing.T) {
	setValidEnv(t)
	t.Setenv("IMAGE_THREADS", " , ")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadPoolSize(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WORKER_POOL_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}
