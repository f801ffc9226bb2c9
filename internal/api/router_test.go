package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"euchre-service/internal/api"
	"euchre-service/internal/config"
	"euchre-service/internal/model"
	"euchre-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.GlobalConfig = &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", Expire: 1},
		Game:  config.GameConfig{WinningScore: 10, PresenceTTLSeconds: 90},
		Cache: config.CacheConfig{MaxCost: 1000, TTLSeconds: 60},
		NATS:  config.NATSConfig{Subject: "euchre.events"},
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	services := service.NewContainer(db, nil, nil)
	t.Cleanup(services.Close)

	r := gin.New()
	api.RegisterRoutes(r, services)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func register(t *testing.T, r *gin.Engine, name string) (string, string) {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/v1/players", "", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, code, env.Msg)
	var out struct {
		Token  string `json:"token"`
		Player struct {
			ID string `json:"id"`
		} `json:"player"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.Player.ID
}

func createTable(t *testing.T, r *gin.Engine, token string, body map[string]interface{}) int64 {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/v1/tables", token, body)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	var info struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	return info.ID
}

func TestPing(t *testing.T) {
	r := newRouter(t)
	code, _ := do(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newRouter(t)

	code, _ := do(t, r, http.MethodGet, "/api/v1/players/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/tables", "garbage", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPlayerProfile(t *testing.T) {
	r := newRouter(t)
	token, _ := register(t, r, "Alice")

	code, env := do(t, r, http.MethodPut, "/api/v1/players/me", token, map[string]string{"name": "Alicia"})
	require.Equal(t, http.StatusOK, code, env.Msg)

	code, env = do(t, r, http.MethodGet, "/api/v1/players/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Alicia")

	code, _ = do(t, r, http.MethodPut, "/api/v1/players/me", token, map[string]string{"name": strings.Repeat("z", 40)})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTableLobbyFlow(t *testing.T) {
	r := newRouter(t)

	tokens := make([]string, 5)
	for i := range tokens {
		tokens[i], _ = register(t, r, fmt.Sprintf("P%d", i))
	}
	tableID := createTable(t, r, tokens[0], map[string]interface{}{"name": "Lobby", "passcode": "pw"})
	joinPath := fmt.Sprintf("/api/v1/tables/%d/join", tableID)

	code, _ := do(t, r, http.MethodPost, joinPath, tokens[0], map[string]string{"passcode": "nope"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := do(t, r, http.MethodPost, joinPath, tokens[0], map[string]string{"passcode": "pw", "seat": "south"})
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.Contains(t, string(env.Data), `"seat":"south"`)

	code, _ = do(t, r, http.MethodPost, joinPath, tokens[1], map[string]string{"passcode": "pw", "seat": "south"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, r, http.MethodPost, joinPath, tokens[1], map[string]string{"passcode": "pw", "seat": "middle"})
	assert.Equal(t, http.StatusBadRequest, code)

	for i := 1; i < 4; i++ {
		code, env = do(t, r, http.MethodPost, joinPath, tokens[i], map[string]string{"passcode": "pw"})
		require.Equal(t, http.StatusOK, code, env.Msg)
	}
	code, _ = do(t, r, http.MethodPost, joinPath, tokens[4], map[string]string{"passcode": "pw"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d/state", tableID), tokens[0], nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	var view struct {
		Phase          string   `json:"phase"`
		Seat           string   `json:"seat"`
		AllowedActions []string `json:"allowedActions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "LOBBY", view.Phase)
	assert.Equal(t, "south", view.Seat)
	assert.Contains(t, view.AllowedActions, "request_start_game")

	code, _ = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d/state", tableID), tokens[4], nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tables/%d/leave", tableID), tokens[3], nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	code, env = do(t, r, http.MethodPost, joinPath, tokens[4], map[string]string{"passcode": "pw"})
	require.Equal(t, http.StatusOK, code, env.Msg)

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d", tableID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"hasPasscode":true`)

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d/history", tableID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"games":[]}`, string(env.Data))
}

func TestListTablesAndNotFound(t *testing.T) {
	r := newRouter(t)
	token, _ := register(t, r, "Host")
	createTable(t, r, token, map[string]interface{}{"name": "One"})
	createTable(t, r, token, map[string]interface{}{"name": "Two", "winningScore": 5})

	code, env := do(t, r, http.MethodGet, "/api/v1/tables?status=lobby&size=1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
		Size  int               `json:"size"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Size)

	code, _ = do(t, r, http.MethodGet, "/api/v1/tables?page=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodGet, "/api/v1/tables/4242", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, http.MethodGet, "/api/v1/tables/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
