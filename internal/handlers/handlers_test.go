package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServices(db *gorm.DB, notifier services.ChatNotifier, drafter services.GoalDrafter) Services {
	store := repository.NewStore(db)
	engine := policy.NewEngine(store)
	emitter := events.NewEmitter(&events.Recorder{}, nil)

	return Services{
		Auth:       services.NewAuthService(store.Users()),
		Boards:     services.NewBoardService(store, engine, emitter),
		Categories: services.NewCategoryService(store, engine, emitter),
		Goals:      services.NewGoalService(store, engine, emitter),
		Comments:   services.NewCommentService(store, engine, emitter),
		BotUsers:   services.NewBotUserService(store, notifier, emitter, nil),
		Drafter:    drafter,
	}
}

// boardFixture is a board owned by owner with a writer, a reader and one goal.
type boardFixture struct {
	owner    *models.User
	writer   *models.User
	reader   *models.User
	outsider *models.User
	board    *models.Board
	category *models.GoalCategory
	goal     *models.Goal
}

func newBoardFixture(t *testing.T, db *gorm.DB) boardFixture {
	t.Helper()
	f := boardFixture{
		owner:    testutil.CreateUser(t, db, "owner"),
		writer:   testutil.CreateUser(t, db, "writer"),
		reader:   testutil.CreateUser(t, db, "reader"),
		outsider: testutil.CreateUser(t, db, "outsider"),
	}
	f.board = testutil.CreateBoard(t, db, "Home", f.owner, map[*models.User]models.Role{
		f.writer: models.RoleWriter,
		f.reader: models.RoleReader,
	})
	f.category = testutil.CreateCategory(t, db, f.board, f.owner, "Work")
	f.goal = testutil.CreateGoal(t, db, f.category, f.owner, "Ship release")
	return f
}

// authContext builds a test context as if RequireAuth had run for userID.
func authContext(method, url string, body any, userID uint64, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		data, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func idParam(id uint64) gin.Param {
	return gin.Param{Key: "id", Value: strconv.FormatUint(id, 10)}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// apiClient drives the full router with a session cookie.
type apiClient struct {
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func newTestRouter(t *testing.T, db *gorm.DB, svc Services) *gin.Engine {
	t.Helper()
	return NewRouter(svc, cookie.NewStore([]byte("test-secret")), db, nil)
}

func (a *apiClient) do(method, url string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader).WithContext(context.Background())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		a.cookies = cookies
	}
	return w
}

// login signs up (if needed) and logs in username.
func (a *apiClient) login(username string) {
	a.t.Helper()
	creds := map[string]string{"username": username, "password": "supersecret"}
	a.do(http.MethodPost, "/api/auth/signup", creds)
	w := a.do(http.MethodPost, "/api/auth/login", creds)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
}
