package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"euchre-service/internal/config"
	"euchre-service/internal/euchre"
	"euchre-service/internal/middleware"
	"euchre-service/internal/service"
	"euchre-service/internal/service/table"
	"euchre-service/internal/ws"
	appErr "euchre-service/pkg/errors"
	"euchre-service/pkg/logger"
	"euchre-service/pkg/response"

	"github.com/arl/statsviz"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Player, services.Table, services.Game)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/players", handler.RegisterPlayer)

		playerGroup := v1.Group("/players")
		playerGroup.Use(middleware.AuthRequired())
		{
			playerGroup.POST("/refresh", handler.RefreshToken)
			playerGroup.GET("/me", handler.GetMe)
			playerGroup.PUT("/me", handler.RenameMe)
		}

		v1.GET("/tables", handler.ListTables)
		v1.GET("/tables/:id", handler.GetTable)
		v1.GET("/tables/:id/history", handler.TableHistory)

		tableGroup := v1.Group("/tables")
		tableGroup.Use(middleware.AuthRequired())
		{
			tableGroup.POST("", handler.CreateTable)
			tableGroup.POST("/:id/join", handler.JoinTable)
			tableGroup.POST("/:id/leave", handler.LeaveTable)
			tableGroup.GET("/:id/state", handler.TableState)
		}
	}

	r.GET("/ws/table/:tableId", wsHandler.HandleTableWS)

	if config.GlobalConfig != nil && config.GlobalConfig.Debug.Statsviz {
		mux := http.NewServeMux()
		if err := statsviz.Register(mux); err != nil {
			logger.Log.Warn("statsviz disabled", zap.Error(err))
			return
		}
		r.GET("/debug/statsviz/*filepath", gin.WrapH(mux))
	}
}

type registerBody struct {
	Name string `json:"name" binding:"required"`
}

type renameBody struct {
	Name string `json:"name" binding:"required"`
}

type createTableBody struct {
	Name         string `json:"name"`
	Passcode     string `json:"passcode"`
	WinningScore int    `json:"winningScore" binding:"omitempty,min=1,max=100"`
}

type joinTableBody struct {
	Seat     string `json:"seat"`
	Passcode string `json:"passcode"`
}

func (h *Handler) RegisterPlayer(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.services.Player.Register(c.Request.Context(), body.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, resp)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	resp, err := h.services.Player.Refresh(c.Request.Context(), playerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *Handler) GetMe(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.services.Player.Get(c.Request.Context(), playerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *Handler) RenameMe(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body renameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.services.Player.Rename(c.Request.Context(), playerID, body.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *Handler) ListTables(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))

	result, err := h.services.Table.List(c.Request.Context(), status, page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Page(c, result.Items, result.Total, page, size)
}

func (h *Handler) CreateTable(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body createTableBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	info, err := h.services.Table.Create(c.Request.Context(), table.CreateParams{
		OwnerID:      playerID,
		Name:         body.Name,
		Passcode:     body.Passcode,
		WinningScore: body.WinningScore,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, info)
}

func (h *Handler) GetTable(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	info, err := h.services.Table.Get(c.Request.Context(), tableID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, info)
}

func (h *Handler) JoinTable(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	var body joinTableBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	var seat euchre.Role
	if s := strings.TrimSpace(body.Seat); s != "" {
		r, ok := euchre.ParseRole(s)
		if !ok {
			response.Error(c, http.StatusBadRequest, appErr.ErrInvalidSeat.Error())
			return
		}
		seat = r
	}

	ctx := c.Request.Context()
	p, err := h.services.Player.Get(ctx, playerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	role, err := h.services.Table.Join(ctx, table.JoinRequest{
		TableID:  tableID,
		PlayerID: playerID,
		Name:     p.Name,
		Seat:     seat,
		Passcode: body.Passcode,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	if err := h.services.Game.SeatJoined(ctx, tableID, playerID, p.Name, role); err != nil {
		// The runtime moved past the lobby after the seat was stored.
		if leaveErr := h.services.Table.Leave(ctx, tableID, playerID); leaveErr != nil {
			logger.Log.Warn("undo seat claim failed",
				zap.Int64("tableID", tableID),
				zap.String("playerID", playerID),
				zap.Error(leaveErr),
			)
		}
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"tableId": tableID, "seat": role})
}

func (h *Handler) LeaveTable(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if rt, err := h.services.Game.GetRuntime(ctx, tableID); err == nil && rt.Phase() != euchre.PhaseLobby {
		response.Error(c, http.StatusConflict, appErr.ErrGameInProgress.Error())
		return
	}
	if err := h.services.Table.Leave(ctx, tableID, playerID); err != nil {
		h.handleError(c, err)
		return
	}
	if err := h.services.Game.SeatLeft(tableID, playerID); err != nil {
		logger.Log.Warn("runtime seat release failed",
			zap.Int64("tableID", tableID),
			zap.String("playerID", playerID),
			zap.Error(err),
		)
	}
	response.Success(c, gin.H{})
}

func (h *Handler) TableHistory(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	limit, err := parsePositiveIntQuery(c, "limit", 10)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	if _, err := h.services.Table.Get(ctx, tableID); err != nil {
		h.handleError(c, err)
		return
	}
	games, err := h.services.Game.History(ctx, tableID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"games": games})
}

// TableState returns the caller's redacted view, for clients that poll
// instead of holding a websocket.
func (h *Handler) TableState(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	role, err := h.services.Table.ValidateTableAccess(ctx, playerID, tableID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	rt, err := h.services.Game.GetRuntime(ctx, tableID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, rt.View(role))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var re *euchre.RuleError
	switch {
	case errors.As(err, &re):
		response.Error(c, http.StatusConflict, re.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErr.ErrPlayerBanned),
		errors.Is(err, appErr.ErrTableAccessDenied),
		errors.Is(err, appErr.ErrInvalidPasscode):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrPlayerNotFound),
		errors.Is(err, appErr.ErrTableNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalidName),
		errors.Is(err, appErr.ErrInvalidSeat):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrTableFull),
		errors.Is(err, appErr.ErrSeatTaken),
		errors.Is(err, appErr.ErrAlreadySeated),
		errors.Is(err, appErr.ErrNotSeated),
		errors.Is(err, appErr.ErrGameInProgress):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrTableBusy):
		response.Error(c, http.StatusTooManyRequests, err.Error())
	default:
		logger.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}

func parseTableID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid table id")
		return 0, false
	}
	return id, true
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}
