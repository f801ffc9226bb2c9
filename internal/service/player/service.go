package player

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"euchre-service/internal/model"
	pkgAuth "euchre-service/pkg/auth"
	"euchre-service/pkg/cache"
	appErr "euchre-service/pkg/errors"
	"euchre-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 32

type Service struct {
	db    *gorm.DB
	cache *cache.Cache
}

type LoginResult struct {
	Token    string       `json:"token"`
	ExpireAt time.Time    `json:"expireAt"`
	Player   model.Player `json:"player"`
}

// NewService builds the player service. c may be nil.
func NewService(db *gorm.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// Register creates a player with a fresh stable id and returns a token for it.
func (s *Service) Register(ctx context.Context, name string) (*LoginResult, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	p := model.Player{
		ID:     uuid.NewString(),
		Name:   name,
		Status: "active",
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	logger.Log.Info("player registered", zap.String("playerID", p.ID), zap.String("name", p.Name))
	return s.issue(p)
}

// Refresh re-issues a token for an existing player, e.g. before a reconnect.
func (s *Service) Refresh(ctx context.Context, playerID string) (*LoginResult, error) {
	p, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.issue(*p)
}

// Get returns a player, served from the local cache when possible.
func (s *Service) Get(ctx context.Context, playerID string) (*model.Player, error) {
	if playerID == "" {
		return nil, appErr.ErrPlayerNotFound
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey(playerID)); ok {
			if p, ok := v.(model.Player); ok {
				return &p, nil
			}
		}
	}

	var p model.Player
	if err := s.db.WithContext(ctx).Where("id = ?", playerID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrPlayerNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(cacheKey(playerID), p)
	}
	return &p, nil
}

func (s *Service) Rename(ctx context.Context, playerID, name string) (*model.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("id = ?", playerID).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, appErr.ErrPlayerNotFound
	}
	if s.cache != nil {
		s.cache.Delete(cacheKey(playerID))
	}
	return s.Get(ctx, playerID)
}

// Touch records that the player was just seen on a connection.
func (s *Service) Touch(ctx context.Context, playerID string) {
	now := time.Now()
	if err := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("id = ?", playerID).
		Update("last_seen_at", now).Error; err != nil {
		logger.Log.Warn("update last seen failed", zap.String("playerID", playerID), zap.Error(err))
		return
	}
	if s.cache != nil {
		s.cache.Delete(cacheKey(playerID))
	}
}

func (s *Service) issue(p model.Player) (*LoginResult, error) {
	if strings.EqualFold(p.Status, "banned") {
		return nil, appErr.ErrPlayerBanned
	}
	token, expireAt, err := pkgAuth.GeneratePlayerToken(p.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpireAt: expireAt, Player: p}, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", appErr.ErrInvalidName
	}
	return name, nil
}

func cacheKey(playerID string) string {
	return "player:" + playerID
}
