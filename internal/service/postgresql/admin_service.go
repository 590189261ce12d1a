package service

import (
	entity "book-market/internal/domain"
	mongorepo "book-market/internal/repository/mongodb"
	repo "book-market/internal/repository/postgresql"

	"github.com/google/uuid"
)

type AdminService struct {
	userRepo     repo.UserRepository
	sellPostRepo repo.SellPostRepository
	logRepo      mongorepo.LogRepository
	notifier     *Notifier
}

func NewAdminService(userRepo repo.UserRepository, sellPostRepo repo.SellPostRepository, logRepo mongorepo.LogRepository, notifier *Notifier) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		sellPostRepo: sellPostRepo,
		logRepo:      logRepo,
		notifier:     notifier,
	}
}

func (s *AdminService) ListUsers(limit, offset int) ([]entity.User, error) {
	return s.userRepo.ListUsers(limit, offset)
}

func (s *AdminService) SetUserActive(adminID, userID uuid.UUID, active bool) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SetUserActive(userID, active); err != nil {
		return err
	}

	action := "admin.user_block"
	if active {
		action = "admin.user_unblock"
	}
	s.notifier.Audit(adminID, action, "user", userID, nil)
	return nil
}

// ModerateSellPost hides or restores a listing, bypassing the seller-only
// ownership rule.
func (s *AdminService) ModerateSellPost(adminID, postID uuid.UUID, hide bool) error {
	post, err := s.sellPostRepo.GetSellPostByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrSellPostNotFound
	}

	target := entity.SellPostAvailable
	action := "admin.post_restore"
	if hide {
		target = entity.SellPostHidden
		action = "admin.post_hide"
	}
	if !post.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	if err := s.sellPostRepo.UpdateSellPostStatus(postID, target); err != nil {
		return err
	}
	s.notifier.Audit(adminID, action, "sell_post", postID, nil)
	return nil
}

func (s *AdminService) ListActivities(limit int64) ([]entity.ActivityLog, error) {
	return s.logRepo.ListActivities(limit)
}
