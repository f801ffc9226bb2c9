package table_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"euchre-service/internal/euchre"
	"euchre-service/internal/model"
	"euchre-service/internal/service/table"
	appErr "euchre-service/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*gorm.DB, *table.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db, table.NewService(db, nil, table.WithWinningScore(7))
}

func createTable(t *testing.T, svc *table.Service, passcode string) *table.TableInfo {
	t.Helper()
	info, err := svc.Create(context.Background(), table.CreateParams{
		OwnerID:  "owner",
		Name:     "Friday night",
		Passcode: passcode,
	})
	if err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	return info
}

func TestCreateTable(t *testing.T) {
	db, svc := newService(t)

	info := createTable(t, svc, "secret")
	if info.ID == 0 || len(info.Code) != 6 {
		t.Fatalf("unexpected table: %+v", info)
	}
	if !info.HasPasscode {
		t.Fatalf("expected passcode flag")
	}
	if info.WinningScore != 7 {
		t.Fatalf("expected default winning score 7, got %d", info.WinningScore)
	}
	if info.Status != model.TableStatusLobby {
		t.Fatalf("expected lobby status, got %s", info.Status)
	}
	if len(info.Seats) != 4 {
		t.Fatalf("expected four seat slots, got %d", len(info.Seats))
	}

	var stored model.Table
	if err := db.First(&stored, info.ID).Error; err != nil {
		t.Fatalf("failed to load table: %v", err)
	}
	if stored.PasscodeHash == "" || stored.PasscodeHash == "secret" {
		t.Fatalf("passcode must be stored hashed")
	}
}

func TestJoinPicksFirstFreeSeat(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	want := []euchre.Role{euchre.North, euchre.East, euchre.South, euchre.West}
	for i, r := range want {
		role, err := svc.Join(ctx, table.JoinRequest{
			TableID:  info.ID,
			PlayerID: fmt.Sprintf("p%d", i),
			Name:     fmt.Sprintf("Player %d", i),
		})
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		if role != r {
			t.Fatalf("join %d: expected %s, got %s", i, r, role)
		}
	}

	_, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "p5", Name: "Late"})
	if !errors.Is(err, appErr.ErrTableFull) {
		t.Fatalf("expected ErrTableFull, got %v", err)
	}
}

func TestJoinSeatChoice(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	role, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Seat: euchre.South})
	if err != nil || role != euchre.South {
		t.Fatalf("expected South, got %s (%v)", role, err)
	}

	_, err = svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "b", Name: "B", Seat: euchre.South})
	if !errors.Is(err, appErr.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}

	_, err = svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "b", Name: "B", Seat: euchre.Role("center")})
	if !errors.Is(err, appErr.ErrInvalidSeat) {
		t.Fatalf("expected ErrInvalidSeat, got %v", err)
	}
}

func TestRejoinReturnsHeldSeat(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	if _, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Seat: euchre.West}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	role, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A"})
	if err != nil || role != euchre.West {
		t.Fatalf("expected held seat West, got %s (%v)", role, err)
	}
	_, err = svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Seat: euchre.North})
	if !errors.Is(err, appErr.ErrAlreadySeated) {
		t.Fatalf("expected ErrAlreadySeated, got %v", err)
	}
}

func TestJoinPasscode(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "hunter2")

	_, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Passcode: "wrong"})
	if !errors.Is(err, appErr.ErrInvalidPasscode) {
		t.Fatalf("expected ErrInvalidPasscode, got %v", err)
	}
	if _, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Passcode: "hunter2"}); err != nil {
		t.Fatalf("join with passcode failed: %v", err)
	}
}

func TestJoinUnknownTable(t *testing.T) {
	_, svc := newService(t)

	_, err := svc.Join(context.Background(), table.JoinRequest{TableID: 999, PlayerID: "a", Name: "A"})
	if !errors.Is(err, appErr.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	if err := svc.Leave(ctx, info.ID, "nobody"); !errors.Is(err, appErr.ErrNotSeated) {
		t.Fatalf("expected ErrNotSeated, got %v", err)
	}
	if _, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Seat: euchre.East}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := svc.Leave(ctx, info.ID, "a"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	seats, err := svc.Seats(ctx, info.ID)
	if err != nil {
		t.Fatalf("seats failed: %v", err)
	}
	if len(seats) != 0 {
		t.Fatalf("expected empty seats, got %+v", seats)
	}
}

func TestSeatsLockedWhilePlaying(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	if _, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A"}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := svc.SetStatus(ctx, info.ID, model.TableStatusPlaying); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	_, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "b", Name: "B"})
	if !errors.Is(err, appErr.ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress on join, got %v", err)
	}
	if err := svc.Leave(ctx, info.ID, "a"); !errors.Is(err, appErr.ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress on leave, got %v", err)
	}
	// A seated player reconnecting mid-game still gets their seat.
	role, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A"})
	if err != nil || role != euchre.North {
		t.Fatalf("expected held seat North, got %s (%v)", role, err)
	}
}

func TestValidateTableAccess(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	info := createTable(t, svc, "")

	if _, err := svc.Join(ctx, table.JoinRequest{TableID: info.ID, PlayerID: "a", Name: "A", Seat: euchre.South}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	role, err := svc.ValidateTableAccess(ctx, "a", info.ID)
	if err != nil || role != euchre.South {
		t.Fatalf("expected South, got %s (%v)", role, err)
	}
	if _, err := svc.ValidateTableAccess(ctx, "b", info.ID); !errors.Is(err, appErr.ErrTableAccessDenied) {
		t.Fatalf("expected ErrTableAccessDenied, got %v", err)
	}
	if _, err := svc.ValidateTableAccess(ctx, "", info.ID); !errors.Is(err, appErr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStartResetsPlayingTables(t *testing.T) {
	ctx := context.Background()
	db, svc := newService(t)
	info := createTable(t, svc, "")

	if err := svc.SetStatus(ctx, info.ID, model.TableStatusPlaying); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	var stored model.Table
	if err := db.First(&stored, info.ID).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored.Status != model.TableStatusLobby {
		t.Fatalf("expected lobby after restart, got %s", stored.Status)
	}
}

func TestListTables(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	first := createTable(t, svc, "")
	second := createTable(t, svc, "")
	if err := svc.SetStatus(ctx, first.ID, model.TableStatusFinished); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	all, err := svc.List(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.Total != 2 || len(all.Items) != 2 {
		t.Fatalf("expected two tables, got %+v", all)
	}
	if all.Items[0].ID != second.ID {
		t.Fatalf("expected newest table first")
	}

	lobby, err := svc.List(ctx, model.TableStatusLobby, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if lobby.Total != 1 || lobby.Items[0].ID != second.ID {
		t.Fatalf("expected only the lobby table, got %+v", lobby)
	}
}
