package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/motion"
)

func newMotionsRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	h := NewMotions(motion.NewRepository(db))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("memberID", uint64(3))
		c.Set("identity", "alice")
	})
	r.GET("/motions", h.List)
	r.POST("/motions", h.Create)
	r.GET("/motions/:id", h.Show)
	r.POST("/motions/:id/votes", h.Vote)

	return r, mock
}

func detailsRow(endedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "means", "created_at", "ended_at",
		"is_approved", "theme_id", "theme_label", "author_id",
		"author_identity", "score",
	}).AddRow(
		7, "Open the borders", "Full text", "Petition",
		endedAt.Add(-24*time.Hour), endedAt,
		true, 2, "Politics", 3, "alice", 4.0,
	)
}

func TestMotionsList(t *testing.T) {
	r, mock := newMotionsRouter(t)

	mock.ExpectQuery("SELECT m.id, m.title, m.created_at, m.ended_at").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "created_at", "ended_at", "has_already_voted",
		}).AddRow(7, "Open the borders", time.Now().UTC(), time.Now().UTC().Add(24*time.Hour), true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/motions", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Open the borders"`)
	assert.Contains(t, w.Body.String(), `"hasAlreadyVoted":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMotionsVote(t *testing.T) {
	t.Run("second ballot on a motion conflicts", func(t *testing.T) {
		r, mock := newMotionsRouter(t)

		mock.ExpectQuery("SELECT m.id, m.title, m.description").
			WillReturnRows(detailsRow(time.Now().UTC().Add(24 * time.Hour)))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `motion_vote_tokens`").
			WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/motions/7/votes",
			strings.NewReader(`{"choice":true}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vote on an unknown motion is not found", func(t *testing.T) {
		r, mock := newMotionsRouter(t)

		mock.ExpectQuery("SELECT m.id, m.title, m.description").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "means", "created_at",
				"ended_at", "is_approved", "theme_id", "theme_label",
				"author_id", "author_identity", "score",
			}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/motions/99/votes",
			strings.NewReader(`{"choice":false}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing choice is rejected before any query", func(t *testing.T) {
		r, mock := newMotionsRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/motions/7/votes",
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMotionsCreate(t *testing.T) {
	t.Run("unknown theme is unprocessable", func(t *testing.T) {
		r, mock := newMotionsRouter(t)

		mock.ExpectQuery("SELECT \\* FROM `motion_themes`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "label", "duration"}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/motions",
			strings.NewReader(`{"title":"A motion","description":"Body","themeId":99}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("markup in the description is stripped before insert", func(t *testing.T) {
		r, mock := newMotionsRouter(t)

		mock.ExpectQuery("SELECT \\* FROM `motion_themes`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "label", "duration"}).
				AddRow(2, "Politics", 30))
		mock.ExpectExec("INSERT INTO `motions`").
			WillReturnResult(sqlmock.NewResult(11, 1))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/motions",
			strings.NewReader(`{"title":"A motion","description":"<script>x()</script><p>Body</p>","themeId":2}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Body")
		assert.NotContains(t, w.Body.String(), "script")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
