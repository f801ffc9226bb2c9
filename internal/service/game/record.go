package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"euchre-service/internal/euchre"
	"euchre-service/internal/model"
	"euchre-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recordTimeout = 5 * time.Second

type HandHistory struct {
	HandNumber  int             `json:"handNumber"`
	Dealer      string          `json:"dealer"`
	Trump       string          `json:"trump"`
	Maker       string          `json:"maker"`
	Caller      string          `json:"caller"`
	GoingAlone  bool            `json:"goingAlone"`
	MakerTricks int             `json:"makerTricks"`
	ScoringTeam string          `json:"scoringTeam"`
	Points      int             `json:"points"`
	Euchred     bool            `json:"euchred"`
	Team1Score  int             `json:"team1Score"`
	Team2Score  int             `json:"team2Score"`
	Tricks      json.RawMessage `json:"tricks,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type GameHistory struct {
	GameID     string          `json:"gameId"`
	Status     string          `json:"status"`
	Winner     string          `json:"winner,omitempty"`
	Team1Score int             `json:"team1Score"`
	Team2Score int             `json:"team2Score"`
	Seats      json.RawMessage `json:"seats,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	EndedAt    *time.Time      `json:"endedAt,omitempty"`
	Hands      []HandHistory   `json:"hands"`
}

// recordEvent runs on the runtime's record worker, one event at a time
// and in the order the engine produced them.
func (s *Service) recordEvent(job recordJob) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	var err error
	switch job.Event.Kind {
	case euchre.EventGameStarted:
		err = s.recordGameStarted(ctx, job)
	case euchre.EventHandScored:
		err = s.recordHand(ctx, job)
	case euchre.EventGameOver:
		err = s.recordGameOver(ctx, job)
	case euchre.EventGameReset:
		err = s.tables.SetStatus(ctx, job.TableID, model.TableStatusLobby)
	}
	if err != nil {
		logger.Log.Error("record game event failed",
			zap.Int64("tableID", job.TableID),
			zap.String("event", string(job.Event.Kind)),
			zap.String("gameID", job.Event.GameID),
			zap.Error(err),
		)
	}
	s.publish(job)
}

func (s *Service) recordGameStarted(ctx context.Context, job recordJob) error {
	seats, err := json.Marshal(job.Seats)
	if err != nil {
		return err
	}
	rec := model.GameRecord{
		TableID:   job.TableID,
		GameID:    job.Event.GameID,
		Status:    model.TableStatusPlaying,
		SeatsJSON: datatypes.JSON(seats),
		StartedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
			return err
		}
		return tx.Model(&model.Table{}).
			Where("id = ?", job.TableID).
			Update("status", model.TableStatusPlaying).Error
	})
}

func (s *Service) recordHand(ctx context.Context, job recordJob) error {
	h := job.Event.Hand
	if h == nil {
		return fmt.Errorf("hand_scored event without hand result")
	}
	tricks, err := json.Marshal(h.Tricks)
	if err != nil {
		return err
	}
	rec := model.HandRecord{
		TableID:     job.TableID,
		GameID:      job.Event.GameID,
		HandNumber:  h.HandNumber,
		Dealer:      string(h.Dealer),
		Trump:       string(h.Trump),
		Maker:       string(h.Maker),
		Caller:      string(h.Caller),
		GoingAlone:  h.GoingAlone,
		MakerTricks: h.MakerTricks,
		ScoringTeam: string(h.ScoringTeam),
		Points:      h.Points,
		Euchred:     h.Euchred,
		Team1Score:  h.Team1Score,
		Team2Score:  h.Team2Score,
		TricksJSON:  datatypes.JSON(tricks),
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Model(&model.GameRecord{}).
			Where("game_id = ?", job.Event.GameID).
			Updates(map[string]interface{}{
				"team1_score": h.Team1Score,
				"team2_score": h.Team2Score,
				"hands":       gorm.Expr("hands + 1"),
			}).Error
	})
}

func (s *Service) recordGameOver(ctx context.Context, job recordJob) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.GameRecord{}).
			Where("game_id = ?", job.Event.GameID).
			Updates(map[string]interface{}{
				"status":      model.TableStatusFinished,
				"winner":      string(job.Event.Winner),
				"team1_score": job.Event.Team1Score,
				"team2_score": job.Event.Team2Score,
				"ended_at":    &now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Table{}).
			Where("id = ?", job.TableID).
			Update("status", model.TableStatusFinished).Error
	})
}

func (s *Service) publish(job recordJob) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(struct {
		TableID int64 `json:"tableId"`
		euchre.Event
	}{job.TableID, job.Event})
	if err != nil {
		return
	}
	subject := fmt.Sprintf("%s.%d", s.subject, job.TableID)
	if err := s.pub.Publish(subject, payload); err != nil {
		logger.Log.Warn("publish game event failed", zap.String("subject", subject), zap.Error(err))
	}
}

// History returns the finished and in-progress games of a table, newest
// first, with their scored hands.
func (s *Service) History(ctx context.Context, tableID int64, limit int) ([]GameHistory, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var games []model.GameRecord
	if err := s.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("id DESC").
		Limit(limit).
		Find(&games).Error; err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return []GameHistory{}, nil
	}

	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.GameID)
	}
	var hands []model.HandRecord
	if err := s.db.WithContext(ctx).
		Where("game_id IN ?", ids).
		Order("hand_number ASC").
		Find(&hands).Error; err != nil {
		return nil, err
	}
	byGame := make(map[string][]HandHistory, len(games))
	for _, h := range hands {
		byGame[h.GameID] = append(byGame[h.GameID], HandHistory{
			HandNumber:  h.HandNumber,
			Dealer:      h.Dealer,
			Trump:       h.Trump,
			Maker:       h.Maker,
			Caller:      h.Caller,
			GoingAlone:  h.GoingAlone,
			MakerTricks: h.MakerTricks,
			ScoringTeam: h.ScoringTeam,
			Points:      h.Points,
			Euchred:     h.Euchred,
			Team1Score:  h.Team1Score,
			Team2Score:  h.Team2Score,
			Tricks:      json.RawMessage(h.TricksJSON),
			CreatedAt:   h.CreatedAt,
		})
	}

	out := make([]GameHistory, 0, len(games))
	for _, g := range games {
		gh := GameHistory{
			GameID:     g.GameID,
			Status:     g.Status,
			Winner:     g.Winner,
			Team1Score: g.Team1Score,
			Team2Score: g.Team2Score,
			Seats:      json.RawMessage(g.SeatsJSON),
			StartedAt:  g.StartedAt,
			EndedAt:    g.EndedAt,
			Hands:      byGame[g.GameID],
		}
		if gh.Hands == nil {
			gh.Hands = []HandHistory{}
		}
		out = append(out, gh)
	}
	return out, nil
}
