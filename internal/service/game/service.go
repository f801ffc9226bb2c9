package game

import (
	"context"
	"errors"
	"sync"

	"euchre-service/internal/euchre"
	"euchre-service/internal/model"
	"euchre-service/internal/service/table"
	appErr "euchre-service/pkg/errors"
	"euchre-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Publisher relays game events; *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Option func(*Service)

// WithPublisher enables the event relay on "<subject>.<tableID>".
func WithPublisher(p Publisher, subject string) Option {
	return func(s *Service) {
		s.pub = p
		s.subject = subject
	}
}

// WithSessionOptions adds engine options to every new session.
func WithSessionOptions(opts ...euchre.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// Service owns the per-table runtimes and records their results.
type Service struct {
	db     *gorm.DB
	tables *table.Service

	pub         Publisher
	subject     string
	sessionOpts []euchre.Option

	runtimes sync.Map // int64 -> *TableRuntime
}

func NewService(db *gorm.DB, tables *table.Service, opts ...Option) *Service {
	s := &Service{db: db, tables: tables}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRuntime returns the live runtime of a table, creating it from the
// stored seats on first use.
func (s *Service) GetRuntime(ctx context.Context, tableID int64) (*TableRuntime, error) {
	if v, ok := s.runtimes.Load(tableID); ok {
		return v.(*TableRuntime), nil
	}

	var t model.Table
	if err := s.db.WithContext(ctx).First(&t, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrTableNotFound
		}
		return nil, err
	}
	seats, err := s.tables.Seats(ctx, tableID)
	if err != nil {
		return nil, err
	}

	opts := []euchre.Option{
		euchre.WithLogger(logger.Named("euchre").With(zap.Int64("tableID", tableID))),
		euchre.WithWinningScore(t.WinningScore),
	}
	opts = append(opts, s.sessionOpts...)
	rt := newTableRuntime(tableID, euchre.NewSession(opts...), s.recordEvent)
	for _, r := range euchre.PlayerOrder {
		seat, ok := seats[r]
		if !ok {
			continue
		}
		if _, err := rt.session.Join(euchre.PlayerID(seat.PlayerID), seat.Name, r); err != nil {
			rt.close()
			return nil, err
		}
	}

	actual, loaded := s.runtimes.LoadOrStore(tableID, rt)
	if loaded {
		rt.close()
		return actual.(*TableRuntime), nil
	}
	if t.Status != model.TableStatusLobby {
		if err := s.tables.SetStatus(ctx, tableID, model.TableStatusLobby); err != nil {
			logger.Log.Warn("reset table status failed", zap.Int64("tableID", tableID), zap.Error(err))
		}
	}
	logger.Log.Info("table runtime created", zap.Int64("tableID", tableID), zap.Int("seated", len(seats)))
	return rt, nil
}

// SeatJoined mirrors a lobby seat claim into a loaded runtime.
func (s *Service) SeatJoined(ctx context.Context, tableID int64, playerID, name string, role euchre.Role) error {
	rt, err := s.GetRuntime(ctx, tableID)
	if err != nil {
		return err
	}
	_, err = rt.Join(euchre.PlayerID(playerID), name, role)
	return err
}

// SeatLeft mirrors a lobby seat release into a loaded runtime.
func (s *Service) SeatLeft(tableID int64, playerID string) error {
	v, ok := s.runtimes.Load(tableID)
	if !ok {
		return nil
	}
	return v.(*TableRuntime).Leave(euchre.PlayerID(playerID))
}

// Close stops every runtime and waits for pending records to be written.
func (s *Service) Close() {
	s.runtimes.Range(func(key, value interface{}) bool {
		value.(*TableRuntime).close()
		s.runtimes.Delete(key)
		return true
	})
}
