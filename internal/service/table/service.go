package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"euchre-service/internal/euchre"
	"euchre-service/internal/model"
	appErr "euchre-service/pkg/errors"
	"euchre-service/pkg/logger"
	"euchre-service/pkg/utils/random"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	codeLength      = 6
)

type Config struct {
	SeatLockTTL  time.Duration
	PresenceTTL  time.Duration
	WinningScore int
}

func defaultConfig() Config {
	return Config{
		SeatLockTTL:  5 * time.Second,
		PresenceTTL:  90 * time.Second,
		WinningScore: euchre.DefaultWinScore,
	}
}

type Option func(*Config)

func WithPresenceTTL(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PresenceTTL = d
		}
	}
}

func WithWinningScore(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.WinningScore = n
		}
	}
}

// Service is the table lobby. rdb may be nil, which disables the seat lock
// and presence tracking.
type Service struct {
	db  *gorm.DB
	rdb *redis.Client
	cfg Config
}

func NewService(db *gorm.DB, rdb *redis.Client, opts ...Option) *Service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{db: db, rdb: rdb, cfg: cfg}
}

// Start returns tables left "playing" by a previous process to the lobby.
// Game state lives in memory only.
func (s *Service) Start(ctx context.Context) error {
	res := s.db.WithContext(ctx).
		Model(&model.Table{}).
		Where("status = ?", model.TableStatusPlaying).
		Update("status", model.TableStatusLobby)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Log.Warn("tables reset to lobby after restart", zap.Int64("count", res.RowsAffected))
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*TableInfo, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Euchre table"
	}
	if len(name) > 64 {
		return nil, appErr.ErrInvalidName
	}
	winning := p.WinningScore
	if winning <= 0 {
		winning = s.cfg.WinningScore
	}

	var hash string
	if p.Passcode != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(p.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	seatsJSON, err := json.Marshal(Seats{})
	if err != nil {
		return nil, err
	}

	var created model.Table
	for attempt := 0; attempt < 3; attempt++ {
		created = model.Table{
			Code:         random.TableCode(codeLength),
			Name:         name,
			OwnerID:      p.OwnerID,
			PasscodeHash: hash,
			Status:       model.TableStatusLobby,
			WinningScore: winning,
			SeatsJSON:    datatypes.JSON(seatsJSON),
		}
		err = s.db.WithContext(ctx).Create(&created).Error
		if err == nil || !isDuplicate(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Info("table created",
		zap.Int64("tableID", created.ID),
		zap.String("code", created.Code),
		zap.String("owner", p.OwnerID),
	)
	info := s.toInfo(ctx, created)
	return &info, nil
}

func (s *Service) List(ctx context.Context, status string, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	query := s.db.WithContext(ctx).Model(&model.Table{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var tables []model.Table
	if total > 0 {
		if err := query.
			Order("id DESC").
			Limit(size).
			Offset((page - 1) * size).
			Find(&tables).Error; err != nil {
			return nil, err
		}
	}

	items := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		items = append(items, s.toInfo(ctx, t))
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, tableID int64) (*TableInfo, error) {
	t, err := s.load(ctx, s.db, tableID)
	if err != nil {
		return nil, err
	}
	info := s.toInfo(ctx, *t)
	return &info, nil
}

// Join claims a seat. Joining again with no seat preference, or with the
// seat already held, returns the held seat.
func (s *Service) Join(ctx context.Context, req JoinRequest) (euchre.Role, error) {
	if req.PlayerID == "" {
		return "", appErr.ErrUnauthorized
	}
	if req.Seat != "" && !req.Seat.Valid() {
		return "", appErr.ErrInvalidSeat
	}

	unlock, err := s.lock(ctx, req.TableID)
	if err != nil {
		return "", err
	}
	defer unlock()

	var role euchre.Role
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.load(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		seats, err := decodeSeats(t.SeatsJSON)
		if err != nil {
			return err
		}

		if held, ok := seats.roleOf(req.PlayerID); ok {
			if req.Seat != "" && req.Seat != held {
				return appErr.ErrAlreadySeated
			}
			role = held
			return nil
		}
		if t.Status != model.TableStatusLobby {
			return appErr.ErrGameInProgress
		}
		if t.PasscodeHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(t.PasscodeHash), []byte(req.Passcode)); err != nil {
				return appErr.ErrInvalidPasscode
			}
		}

		role, err = seats.claim(req.Seat)
		if err != nil {
			return err
		}
		seats[role] = Seat{PlayerID: req.PlayerID, Name: req.Name}
		return s.saveSeats(tx, t.ID, seats)
	})
	if err != nil {
		return "", err
	}

	logger.Log.Info("player seated",
		zap.Int64("tableID", req.TableID),
		zap.String("playerID", req.PlayerID),
		zap.String("role", string(role)),
	)
	return role, nil
}

// Leave frees the player's seat. Only allowed while the table is in the
// lobby.
func (s *Service) Leave(ctx context.Context, tableID int64, playerID string) error {
	unlock, err := s.lock(ctx, tableID)
	if err != nil {
		return err
	}
	defer unlock()

	var role euchre.Role
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.load(ctx, tx, tableID)
		if err != nil {
			return err
		}
		seats, err := decodeSeats(t.SeatsJSON)
		if err != nil {
			return err
		}
		held, ok := seats.roleOf(playerID)
		if !ok {
			return appErr.ErrNotSeated
		}
		if t.Status != model.TableStatusLobby {
			return appErr.ErrGameInProgress
		}
		role = held
		delete(seats, held)
		return s.saveSeats(tx, t.ID, seats)
	})
	if err != nil {
		return err
	}

	s.ClearPresence(ctx, tableID, role)
	logger.Log.Info("player left table",
		zap.Int64("tableID", tableID),
		zap.String("playerID", playerID),
		zap.String("role", string(role)),
	)
	return nil
}

// Seats returns the stored seat map of a table.
func (s *Service) Seats(ctx context.Context, tableID int64) (Seats, error) {
	t, err := s.load(ctx, s.db, tableID)
	if err != nil {
		return nil, err
	}
	return decodeSeats(t.SeatsJSON)
}

// ValidateTableAccess checks that playerID holds a seat at tableID.
func (s *Service) ValidateTableAccess(ctx context.Context, playerID string, tableID int64) (euchre.Role, error) {
	if playerID == "" {
		return "", appErr.ErrUnauthorized
	}
	seats, err := s.Seats(ctx, tableID)
	if err != nil {
		return "", err
	}
	role, ok := seats.roleOf(playerID)
	if !ok {
		return "", appErr.ErrTableAccessDenied
	}
	return role, nil
}

func (s *Service) SetStatus(ctx context.Context, tableID int64, status string) error {
	return s.db.WithContext(ctx).
		Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("status", status).Error
}

// TouchPresence marks a seat as online for PresenceTTL. owner identifies
// the connection holding the key.
func (s *Service) TouchPresence(ctx context.Context, tableID int64, role euchre.Role, owner string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, buildPresenceKey(tableID, role), owner, s.cfg.PresenceTTL).Err(); err != nil {
		logger.Log.Warn("presence update failed", zap.Int64("tableID", tableID), zap.Error(err))
	}
}

var releasePresenceScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleasePresence clears the seat's presence only while owner still holds it.
func (s *Service) ReleasePresence(ctx context.Context, tableID int64, role euchre.Role, owner string) {
	if s.rdb == nil || role == "" {
		return
	}
	if err := releasePresenceScript.Run(ctx, s.rdb, []string{buildPresenceKey(tableID, role)}, owner).Err(); err != nil {
		logger.Log.Warn("presence release failed", zap.Int64("tableID", tableID), zap.Error(err))
	}
}

func (s *Service) ClearPresence(ctx context.Context, tableID int64, role euchre.Role) {
	if s.rdb == nil || role == "" {
		return
	}
	s.rdb.Del(ctx, buildPresenceKey(tableID, role))
}

// PresenceInterval is how often a live connection should refresh presence.
func (s *Service) PresenceInterval() time.Duration {
	return s.cfg.PresenceTTL / 3
}

func (s *Service) online(ctx context.Context, tableID int64) map[euchre.Role]bool {
	out := make(map[euchre.Role]bool, len(euchre.PlayerOrder))
	if s.rdb == nil {
		return out
	}
	keys := make([]string, len(euchre.PlayerOrder))
	for i, r := range euchre.PlayerOrder {
		keys[i] = buildPresenceKey(tableID, r)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Log.Warn("presence lookup failed", zap.Int64("tableID", tableID), zap.Error(err))
		return out
	}
	for i, v := range vals {
		if v != nil {
			out[euchre.PlayerOrder[i]] = true
		}
	}
	return out
}

func (s *Service) lock(ctx context.Context, tableID int64) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}
	key := buildSeatLockKey(tableID)
	got, err := s.rdb.SetNX(ctx, key, 1, s.cfg.SeatLockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !got {
		return nil, appErr.ErrTableBusy
	}
	return func() { s.rdb.Del(context.Background(), key) }, nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, tableID int64) (*model.Table, error) {
	if tableID <= 0 {
		return nil, appErr.ErrTableNotFound
	}
	var t model.Table
	if err := db.WithContext(ctx).First(&t, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) saveSeats(tx *gorm.DB, tableID int64, seats Seats) error {
	raw, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return tx.Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("seats_json", datatypes.JSON(raw)).Error
}

func (s *Service) toInfo(ctx context.Context, t model.Table) TableInfo {
	seats, err := decodeSeats(t.SeatsJSON)
	if err != nil {
		logger.Log.Warn("corrupt seats_json", zap.Int64("tableID", t.ID), zap.Error(err))
		seats = Seats{}
	}
	online := s.online(ctx, t.ID)
	info := TableInfo{
		ID:           t.ID,
		Code:         t.Code,
		Name:         t.Name,
		OwnerID:      t.OwnerID,
		Status:       t.Status,
		HasPasscode:  t.PasscodeHash != "",
		WinningScore: t.WinningScore,
		CreatedAt:    t.CreatedAt,
	}
	for _, r := range euchre.PlayerOrder {
		seat := seats[r]
		info.Seats = append(info.Seats, SeatInfo{
			Role:     r,
			PlayerID: seat.PlayerID,
			Name:     seat.Name,
			Online:   online[r],
		})
	}
	return info
}

func decodeSeats(raw datatypes.JSON) (Seats, error) {
	seats := Seats{}
	if len(raw) == 0 {
		return seats, nil
	}
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (s Seats) roleOf(playerID string) (euchre.Role, bool) {
	for _, r := range euchre.PlayerOrder {
		if seat, ok := s[r]; ok && seat.PlayerID == playerID {
			return r, true
		}
	}
	return "", false
}

func (s Seats) claim(preferred euchre.Role) (euchre.Role, error) {
	if preferred != "" {
		if _, taken := s[preferred]; taken {
			return "", appErr.ErrSeatTaken
		}
		return preferred, nil
	}
	for _, r := range euchre.PlayerOrder {
		if _, taken := s[r]; !taken {
			return r, nil
		}
	}
	return "", appErr.ErrTableFull
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func buildSeatLockKey(tableID int64) string {
	return fmt.Sprintf("table:lock:%d", tableID)
}

func buildPresenceKey(tableID int64, role euchre.Role) string {
	return fmt.Sprintf("table:presence:%d:%s", tableID, role)
}
