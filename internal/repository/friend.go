package repository

import (
	"context"
	"errors"

	"habitlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository stores directed friend requests and the symmetric
// friendship edges created from accepted requests.
type FriendRepository interface {
	// CreateRequest fails with RequestExists when the same sender already
	// has a pending request to the same recipient.
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id uint) (*models.FriendRequest, error)
	// FindPendingBetween looks in both directions and returns nil when no
	// pending request exists.
	FindPendingBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	// ResolveRequest moves a pending request to status. Accepting also
	// creates the edge. Both happen in one transaction and the status
	// update only matches pending rows, so a request resolves at most once.
	ResolveRequest(ctx context.Context, id uint, status models.FriendRequestStatus) error
	GetIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	GetOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error)

	AreFriends(ctx context.Context, userID1, userID2 uint) (bool, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	// RemoveFriendship reports whether an edge was deleted.
	RemoveFriendship(ctx context.Context, userID1, userID2 uint) (bool, error)
}

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewRequestExistsError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetRequest(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).Preload("Sender").Preload("Recipient").First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friend request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *friendRepository) FindPendingBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND status = ?",
			userID1, userID2, userID2, userID1, models.FriendRequestPending).
		Order("id DESC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *friendRepository) ResolveRequest(ctx context.Context, id uint, status models.FriendRequestStatus) error {
	var notPending bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.FriendRequest
		if err := tx.First(&req, id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", id, models.FriendRequestPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			notPending = true
			return nil
		}

		if status != models.FriendRequestAccepted {
			return nil
		}
		edge := models.NewFriendship(req.SenderID, req.RecipientID)
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(edge).Error; err != nil {
			return err
		}
		// a crossing request in the other direction is settled by the same edge
		return tx.Model(&models.FriendRequest{}).
			Where("sender_id = ? AND recipient_id = ? AND status = ?",
				req.RecipientID, req.SenderID, models.FriendRequestPending).
			Update("status", models.FriendRequestAccepted).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Friend request", id)
		}
		return models.NewInternalError(err)
	}
	if notPending {
		return &models.AppError{Code: models.CodeNotFound, Message: "This friend request has already been processed"}
	}
	return nil
}

func (r *friendRepository) GetIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Sender").
		Order("created_at DESC, id DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *friendRepository) GetOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Recipient").
		Order("created_at DESC, id DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *friendRepository) AreFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	if userID1 == 0 || userID2 == 0 || userID1 == userID2 {
		return false, nil
	}
	low, high := models.FriendPair(userID1, userID2)
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *friendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(userID))
	}
	return ids, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := r.FriendIDs(ctx, userID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username ASC, id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *friendRepository) RemoveFriendship(ctx context.Context, userID1, userID2 uint) (bool, error) {
	low, high := models.FriendPair(userID1, userID2)
	res := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
