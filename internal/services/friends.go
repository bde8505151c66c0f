package services

import (
	"context"

	"habitlink/internal/metrics"
	"habitlink/internal/models"
	"habitlink/internal/repository"
)

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friends  repository.FriendRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	notifier *Notifier
}

func NewFriendService(friends repository.FriendRepository, users repository.UserRepository, settings repository.SettingsRepository, notifier *Notifier) *FriendService {
	return &FriendService{friends: friends, users: users, settings: settings, notifier: notifier}
}

func (s *FriendService) AreFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	return s.friends.AreFriends(ctx, userID1, userID2)
}

// SendFriendRequest creates a pending request from sender to recipient.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, recipientID uint) (req *models.FriendRequest, err error) {
	defer func() { metrics.FriendRequests.WithLabelValues(metrics.Outcome(models.ErrorCode(err))).Inc() }()

	if senderID == recipientID {
		return nil, models.NewValidationError("You cannot send a friend request to yourself")
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	friends, err := s.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, models.NewAlreadyFriendsError()
	}

	pending, err := s.friends.FindPendingBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewRequestExistsError()
	}

	settings, err := s.settings.Get(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowFriendRequests {
		return nil, models.NewRecipientNotAcceptingError("This user is not accepting friend requests")
	}

	req = &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestPending,
	}
	if err := s.friends.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	req.Sender = *sender
	req.Recipient = *recipient

	s.notifier.FriendRequestSent(ctx, sender, recipient, settings)
	return req, nil
}

// loadForRecipient fetches a request the actor may resolve.
func (s *FriendService) loadForRecipient(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	req, err := s.friends.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != actorID {
		return nil, models.NewNotAuthorizedError("You can only respond to friend requests sent to you")
	}
	if req.Status != models.FriendRequestPending {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "This friend request has already been processed"}
	}
	return req, nil
}

// AcceptFriendRequest marks the request accepted and creates the friendship.
// A second accept of the same request fails with NOT_FOUND.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	req, err := s.loadForRecipient(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.friends.ResolveRequest(ctx, requestID, models.FriendRequestAccepted); err != nil {
		return nil, err
	}
	req.Status = models.FriendRequestAccepted

	s.notifier.FriendRequestAccepted(ctx, &req.Recipient, req.SenderID)
	return req, nil
}

func (s *FriendService) RejectFriendRequest(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	req, err := s.loadForRecipient(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.friends.ResolveRequest(ctx, requestID, models.FriendRequestRejected); err != nil {
		return nil, err
	}
	req.Status = models.FriendRequestRejected
	return req, nil
}

func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	removed, err := s.friends.RemoveFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !removed {
		return &models.AppError{Code: models.CodeNotFound, Message: "You are not friends with this user"}
	}
	return nil
}

func (s *FriendService) GetIncomingFriendRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.friends.GetIncoming(ctx, userID)
}

func (s *FriendService) GetOutgoingFriendRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.friends.GetOutgoing(ctx, userID)
}

func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friends.GetFriends(ctx, userID)
}

// GetFriendshipStatus describes the relation from viewer's side. The
// request id is set for pending states so the page can act on it.
func (s *FriendService) GetFriendshipStatus(ctx context.Context, viewerID, targetID uint) (models.FriendshipStatus, uint, error) {
	if viewerID == 0 || viewerID == targetID {
		return models.FriendshipNone, 0, nil
	}
	friends, err := s.friends.AreFriends(ctx, viewerID, targetID)
	if err != nil {
		return "", 0, err
	}
	if friends {
		return models.FriendshipFriends, 0, nil
	}
	pending, err := s.friends.FindPendingBetween(ctx, viewerID, targetID)
	if err != nil {
		return "", 0, err
	}
	if pending == nil {
		return models.FriendshipNone, 0, nil
	}
	if pending.SenderID == viewerID {
		return models.FriendshipPendingSent, pending.ID, nil
	}
	return models.FriendshipPendingReceived, pending.ID, nil
}
