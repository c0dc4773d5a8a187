package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageSender часть *bot.Bot, которая нужна для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// TelegramNotifier отправляет уведомления в чат пользователя, если он привязал Telegram
type TelegramNotifier struct {
	sender          MessageSender
	users           userLookup
	defaultLocation *time.Location
	logger          *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, users userLookup, defaultLocation *time.Location, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:          sender,
		users:           users,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, notification model.Notification) error {
	user, err := n.users.GetByID(ctx, notification.RecipientID)
	if err != nil {
		return fmt.Errorf("get recipient: %w", err)
	}

	if user == nil || user.TelegramChatID == nil {
		n.logger.Debug("Recipient has no telegram chat, skipping",
			zap.String("recipient_id", notification.RecipientID.String()),
			zap.String("kind", string(notification.Kind)),
		)
		return nil
	}

	loc := n.defaultLocation
	if user.Timezone != "" {
		if userLoc, err := time.LoadLocation(user.Timezone); err == nil {
			loc = userLoc
		}
	}

	_, err = n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *user.TelegramChatID,
		Text:   MessageText(notification.Kind, notification.Reservation, loc),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
