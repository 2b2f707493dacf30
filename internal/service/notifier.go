package service

import (
	"context"
	"fmt"
	"time"
	"treasure_hunt_backend/pkg/logger"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Notifier tells organizers about hunt milestones. Implementations log their
// own failures; callers never see them.
type Notifier interface {
	ParticipantRegistered(ctx context.Context, name string)
	QuestCompleted(ctx context.Context, participantName, questName string)
}

type NopNotifier struct{}

func (NopNotifier) ParticipantRegistered(context.Context, string)  {}
func (NopNotifier) QuestCompleted(context.Context, string, string) {}

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

const notifyTimeout = 5 * time.Second

// TelegramNotifier posts to a single organizer chat.
type TelegramNotifier struct {
	sender messageSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{sender: b, chatID: chatID}, nil
}

func (n *TelegramNotifier) ParticipantRegistered(ctx context.Context, name string) {
	n.send(ctx, fmt.Sprintf("New participant joined the hunt: %s", name))
}

func (n *TelegramNotifier) QuestCompleted(ctx context.Context, participantName, questName string) {
	n.send(ctx, fmt.Sprintf("%s completed %s!", participantName, questName))
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	// the request that triggered the message may already be finished
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		logger.Log.Warn("Failed to send telegram notification", zap.Int64("chat_id", n.chatID), zap.Error(err))
	}
}
