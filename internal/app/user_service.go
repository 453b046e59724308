package app

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

// UserProfile is a user as seen by the viewer.
type UserProfile struct {
	model.User
	IsSubscribed bool
}

// AuthorCard is a followed author with a preview of their recipes.
type AuthorCard struct {
	UserProfile
	Recipes      []model.Recipe
	RecipesCount int64
}

type subscriptionStore interface {
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Create(ctx context.Context, sub *model.Subscription) error
	Delete(ctx context.Context, userID, authorID uint) (int64, error)
	ListAuthors(ctx context.Context, userID uint, offset, limit int) ([]model.User, int64, error)
	SubscribedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}

type UserService struct {
	users    *repository.UserRepository
	subs     subscriptionStore
	recipes  *repository.RecipeRepository
	images   ImageStore
	activity *ActivityLog
}

func NewUserService(
	users *repository.UserRepository,
	subs *repository.SubscriptionRepository,
	recipes *repository.RecipeRepository,
	images ImageStore,
	activity *ActivityLog,
) *UserService {
	return &UserService{
		users:    users,
		subs:     subs,
		recipes:  recipes,
		images:   images,
		activity: activity,
	}
}

func (s *UserService) List(ctx context.Context, viewerID uint, offset, limit int) ([]UserProfile, int64, error) {
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := s.profiles(ctx, viewerID, users)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	profiles, err := s.profiles(ctx, viewerID, []model.User{*user})
	if err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (s *UserService) profiles(ctx context.Context, viewerID uint, users []model.User) ([]UserProfile, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := s.subs.SubscribedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserProfile, len(users))
	for i, u := range users {
		out[i] = UserProfile{User: u, IsSubscribed: subscribed[u.ID]}
	}
	return out, nil
}

// Subscribe makes userID follow authorID and returns the author card with at
// most recipesLimit recipes (all when recipesLimit <= 0).
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*AuthorCard, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrNotFound
	}

	err = s.insertSubscription(ctx, userID, authorID)
	metrics.RecordMembership("subscription", "add", err)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivitySubscribed, authorID)

	cards, err := s.cards(ctx, []model.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *UserService) insertSubscription(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfSubscription
	}
	exists, err := s.subs.Exists(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadySubscribed
	}
	if err := s.subs.Create(ctx, &model.Subscription{UserID: userID, AuthorID: authorID}); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrAlreadySubscribed
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrNotFound
	}

	removed, err := s.subs.Delete(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if removed == 0 {
		metrics.RecordMembership("subscription", "remove", ErrNotSubscribed)
		return ErrNotSubscribed
	}
	metrics.RecordMembership("subscription", "remove", nil)
	s.activity.Record(ctx, userID, model.ActivityUnsubscribed, authorID)
	return nil
}

// Subscriptions lists the authors userID follows, newest subscription first.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, offset, limit, recipesLimit int) ([]AuthorCard, int64, error) {
	authors, total, err := s.subs.ListAuthors(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	cards, err := s.cards(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// cards builds author cards for a viewer who follows every author given.
func (s *UserService) cards(ctx context.Context, authors []model.User, recipesLimit int) ([]AuthorCard, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]AuthorCard, len(authors))
	for i, a := range authors {
		recipes, err := s.recipes.ListByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		cards[i] = AuthorCard{
			UserProfile:  UserProfile{User: a, IsSubscribed: true},
			Recipes:      recipes,
			RecipesCount: counts[a.ID],
		}
	}
	return cards, nil
}

// SetAvatar stores a new avatar image and returns its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}

	url, err := s.images.SaveImage(ctx, "users", dataURI)
	if errors.Is(err, storage.ErrInvalidImage) {
		return "", FieldError("avatar", "Upload a valid image.")
	}
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		s.discardImage(ctx, url)
		return "", err
	}
	if user.Avatar != "" {
		s.discardImage(ctx, user.Avatar)
	}
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Avatar == "" {
		return ErrNoAvatar
	}
	if err := s.users.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	s.discardImage(ctx, user.Avatar)
	return nil
}

func (s *UserService) discardImage(ctx context.Context, url string) {
	if err := s.images.DeleteImage(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("delete avatar failed")
	}
}

func (s *UserService) Activity(ctx context.Context, userID uint, limit int) ([]model.ActivityEvent, error) {
	return s.activity.List(ctx, userID, limit)
}
