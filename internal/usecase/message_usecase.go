package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
)

const maxMessageLength = 2000

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	claimRepo   repository.ClaimRepository
	profileRepo repository.ProfileRepository
	notifier    MessageNotifier
	rateLimiter RateLimiter
	now         func() time.Time
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	claimRepo repository.ClaimRepository,
	profileRepo repository.ProfileRepository,
	notifier MessageNotifier,
	rateLimiter RateLimiter,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		claimRepo:   claimRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// MessageEvent is the realtime payload pushed to the other participant.
type MessageEvent struct {
	Type    string              `json:"type"`
	ClaimID string              `json:"claim_id"`
	Message *entity.MessageView `json:"message"`
}

const EventNewMessage = "new_message"

func (uc *MessageUseCase) SendMessage(ctx context.Context, identityID, claimID, content string) (*entity.Message, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, errors.BadRequest("content must be at most 2000 characters", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}

	claim, err := uc.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !claim.IsParticipant(profile.ID) {
		return nil, errors.Forbidden("Not authorized to message on this claim", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(profile.ID, ActionSendMessage); !allowed {
			return nil, errors.TooManyRequests("Too many messages", wait)
		}
	}

	message := &entity.Message{
		ClaimID:         claim.ID,
		SenderProfileID: profile.ID,
		Content:         content,
		CreatedAt:       uc.now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("Failed to store message on claim %s: %v", claimID, err)
		return nil, err
	}

	uc.notify(ctx, claim, profile, message)
	return message, nil
}

// notify pushes the message to the other participant if they are connected.
// Failures are logged and never fail the send.
func (uc *MessageUseCase) notify(ctx context.Context, claim *entity.Claim, sender *entity.Profile, message *entity.Message) {
	if uc.notifier == nil {
		return
	}

	recipientID := claim.DonorProfileID
	if sender.ID == claim.DonorProfileID {
		recipientID = claim.ReceiverProfileID
	}

	recipient, err := uc.profileRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.Warn("Cannot notify %s about message %s: %v", recipientID, message.ID, err)
		return
	}

	event := MessageEvent{
		Type:    EventNewMessage,
		ClaimID: claim.ID,
		Message: &entity.MessageView{Message: message, Sender: sender.Summary()},
	}
	if err := uc.notifier.SendJSON(recipient.IdentityID, event); err != nil {
		logger.Debug("Message %s not pushed to %s: %v", message.ID, recipientID, err)
	}
}

// GetMessages returns the claim's chat oldest first. Callers outside the
// claim get an empty list rather than an error.
func (uc *MessageUseCase) GetMessages(ctx context.Context, identityID, claimID string) ([]*entity.MessageView, error) {
	empty := []*entity.MessageView{}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return empty, nil
	}

	claim, err := uc.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return empty, nil
		}
		return nil, err
	}
	if !claim.IsParticipant(profile.ID) {
		return empty, nil
	}

	messages, err := uc.messageRepo.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, err
	}

	j := newJoiner(uc.profileRepo, nil)
	views := make([]*entity.MessageView, 0, len(messages))
	for _, m := range messages {
		sender, err := j.summary(ctx, m.SenderProfileID)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.MessageView{Message: m, Sender: sender})
	}

	return views, nil
}
