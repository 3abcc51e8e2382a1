package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelfrec/pkg/binder"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/database"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/migrations"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *viewstate.State) {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	paginator, err := pagination.NewPaginator(4, 24, 12)
	require.NoError(t, err)
	provider := recommendations.ProviderFunc(func(context.Context, int, int) ([]models.Item, error) {
		return nil, nil
	})
	state := viewstate.New(viewstate.Options{
		Paginator:   paginator,
		Coordinator: recommendations.NewCoordinator(provider, 10),
	})

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutes(e, db, state)
	return e, state
}

func TestReplaceAndClearCatalog(t *testing.T) {
	t.Parallel()

	e, state := newTestServer(t)

	body := `{
		"users": [{"id": 3}, {"id": 4}],
		"items": [
			{"id": "A", "title": "Alpha", "publication_year": "1990"},
			{"id": "B", "title": "Beta", "publication_year": "2010", "owner_user_id": 4}
		],
		"ratings": [{"user_id": 3, "item_id": "A", "value": 7}]
	}`
	req := httptest.NewRequest(http.MethodPut, "/test/catalog", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"users":2,"items":2,"ratings":1}`, rr.Body.String())

	userID, ok := state.DefaultUserID()
	require.True(t, ok)
	assert.Equal(t, 3, userID)
	v := state.View()
	assert.Equal(t, 2, v.Stats.TotalUsers)
	assert.Equal(t, 1, v.Stats.PoolSize, "only the unowned item is visible without a user")

	req = httptest.NewRequest(http.MethodDelete, "/test/catalog", nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	_, ok = state.DefaultUserID()
	assert.False(t, ok)
	assert.Equal(t, 0, state.View().Stats.PoolSize)
}
