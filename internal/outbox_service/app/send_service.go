package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ozmsg/gateway/internal/outbox_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// SendService submits outbound messages through the carrier and records them.
type SendService struct {
	messageRepo domain.MessageRepository
	userRepo    userdomain.UserRepository
	sender      provider.Sender
	logger      *slog.Logger
}

// NewSendService creates a new SendService.
func NewSendService(messageRepo domain.MessageRepository, userRepo userdomain.UserRepository, sender provider.Sender, logger *slog.Logger) *SendService {
	return &SendService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		sender:      sender,
		logger:      logger.With("component", "send_service"),
	}
}

// SendInput is a validated, canonicalized send request.
type SendInput struct {
	UserID      uuid.UUID
	To          domain.Recipients
	From        string
	Content     string
	Type        string
	ScheduledAt *time.Time
}

// Send debits the user's credits (one per recipient), submits the message to
// the carrier, and persists the outcome. A carrier failure still persists
// the message with status failed.
func (s *SendService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	if len(in.To) == 0 {
		return nil, domain.ErrNoRecipients
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	from := in.From
	if from == "" {
		from = user.PersonalMobile
	}

	cost := len(in.To)
	if err := s.userRepo.DebitCredits(ctx, in.UserID, cost); err != nil {
		if errors.Is(err, userdomain.ErrInsufficientCredits) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	msg := domain.NewMessage(uuid.New(), in.UserID, in.To, from, in.Content, in.Type, in.ScheduledAt)

	res, sendErr := s.sender.Send(ctx, provider.SendRequest{
		To:           in.To,
		From:         from,
		Content:      in.Content,
		ScheduleSend: in.ScheduledAt,
	})
	if sendErr != nil {
		s.logger.ErrorContext(ctx, "Provider send failed", "error", sendErr, "user_id", in.UserID, "recipients", len(in.To))
		msg.Status = domain.StatusFailed
	} else {
		msg.ProviderID = res.MessageID
		if msg.Status != domain.StatusScheduled {
			now := time.Now().UTC()
			msg.SentAt = &now
		}
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist outbound message", "error", err, "message_id", msg.ID)
		return nil, err
	}

	if sendErr != nil {
		return msg, fmt.Errorf("provider send failed: %w", sendErr)
	}

	s.logger.InfoContext(ctx, "Outbound message sent",
		"message_id", msg.ID, "user_id", in.UserID, "recipients", len(in.To), "provider_id", msg.ProviderID)
	return msg, nil
}
