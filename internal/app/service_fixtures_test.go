package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"foodgram/internal/repository"
	"foodgram/internal/storage"
	"foodgram/internal/testutil"
)

const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR4nGMAAQAABQABDQottAAAAABJRU5ErkJggg=="

type memoryImages struct {
	mu      sync.Mutex
	next    int
	stored  map[string]bool
	removed []string
}

func newMemoryImages() *memoryImages {
	return &memoryImages{stored: map[string]bool{}}
}

func (m *memoryImages) SaveImage(_ context.Context, prefix, dataURI string) (string, error) {
	if _, err := storage.DecodeDataURI(dataURI); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	url := "http://media.test/" + prefix + "/" + strings.Repeat("i", m.next) + ".png"
	m.stored[url] = true
	return url, nil
}

func (m *memoryImages) DeleteImage(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, url)
	m.removed = append(m.removed, url)
	return nil
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *memoryRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[id] = ttl
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

type services struct {
	db       *gorm.DB
	images   *memoryImages
	revoker  *memoryRevoker
	recipes  *RecipeService
	users    *UserService
	auth     *AuthService
	catalog  *CatalogService
	activity *ActivityLog
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	images := newMemoryImages()
	revoker := &memoryRevoker{}

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	activity := NewActivityLog(nil, repository.NewActivityRepository(db))

	return &services{
		db:      db,
		images:  images,
		revoker: revoker,
		recipes: NewRecipeService(
			recipeRepo,
			repository.NewFavoriteRepository(db),
			repository.NewShoppingCartRepository(db),
			subRepo,
			NewRecipeValidator(ingredientRepo, tagRepo),
			images,
			activity,
			"http://foodgram.test/",
		),
		users:    NewUserService(userRepo, subRepo, recipeRepo, images, activity),
		auth:     NewAuthService(userRepo, revoker, images, "test-secret", time.Hour).WithBcryptCost(4),
		catalog:  NewCatalogService(tagRepo, ingredientRepo),
		activity: activity,
	}
}
