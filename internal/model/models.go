package model

import (
	"time"

	"gorm.io/datatypes"
)

// Players

type Player struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"` // uuid, stable across reconnects
	Name       string     `gorm:"size:64;not null" json:"name"`
	Status     string     `gorm:"size:16;default:active;not null" json:"status"` // active/banned
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Tables

const (
	TableStatusLobby    = "lobby"
	TableStatusPlaying  = "playing"
	TableStatusFinished = "finished"
)

type Table struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Code         string `gorm:"size:8;uniqueIndex;not null"`
	Name         string `gorm:"size:64"`
	OwnerID      string `gorm:"size:36;index"`
	PasscodeHash string `gorm:"size:128"`
	Status       string `gorm:"size:16;default:lobby;not null"`
	WinningScore int
	SeatsJSON    datatypes.JSON // role -> {playerId, name}
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Game history

type GameRecord struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TableID    int64  `gorm:"index"`
	GameID     string `gorm:"size:36;uniqueIndex"`
	Status     string `gorm:"size:16"` // playing/finished
	Winner     string `gorm:"size:8"`
	Team1Score int
	Team2Score int
	Hands      int
	SeatsJSON  datatypes.JSON
	StartedAt  time.Time
	EndedAt    *time.Time
}

type HandRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	TableID     int64  `gorm:"index"`
	GameID      string `gorm:"size:36;index"`
	HandNumber  int
	Dealer      string `gorm:"size:8"`
	Trump       string `gorm:"size:10"`
	Maker       string `gorm:"size:8"`
	Caller      string `gorm:"size:8"`
	GoingAlone  bool
	MakerTricks int
	ScoringTeam string `gorm:"size:8"`
	Points      int
	Euchred     bool
	Team1Score  int
	Team2Score  int
	TricksJSON  datatypes.JSON
	CreatedAt   time.Time
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Player{},
		&Table{},
		&GameRecord{},
		&HandRecord{},
	}
}
