package views

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelfrec/pkg/binder"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/config"
	"github.com/shishobooks/shelfrec/pkg/database"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/migrations"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, provider recommendations.Provider) (*echo.Echo, *viewstate.State) {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	seed, err := catalog.LoadSeed("")
	require.NoError(t, err)
	catalogService := catalog.NewService(db)
	require.NoError(t, catalogService.Load(ctx, seed))
	items, err := catalogService.ListItems(ctx)
	require.NoError(t, err)

	paginator, err := pagination.NewPaginator(4, 24, 12)
	require.NoError(t, err)
	state := viewstate.New(viewstate.Options{
		Paginator:   paginator,
		Coordinator: recommendations.NewCoordinator(provider, 10),
	})
	state.SetBase(items)
	state.SetUsers(seed.Users)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutes(e, state, catalogService)
	return e, state
}

func do(e *echo.Echo, method, target, payload string) *httptest.ResponseRecorder {
	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) ViewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var v ViewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func titles(items []ItemResponse) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func noRecommendations() recommendations.Provider {
	return recommendations.ProviderFunc(func(context.Context, int, int) ([]models.Item, error) {
		return []models.Item{}, nil
	})
}

func TestHandlerRetrieve_InitialView(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	v := decodeView(t, do(e, http.MethodGet, "/view", ""))
	assert.Equal(t, models.ViewModeOwned, v.Mode)
	assert.Nil(t, v.ActiveUserID)
	assert.Equal(t, pipeline.SortTitle, v.Sort)
	assert.Equal(t, 1, v.Page.CurrentPage)
	assert.Equal(t, 12, v.Page.PageSize)
	// Without a user only the unowned books are visible.
	assert.Equal(t, 3, v.Stats.PoolSize)
	assert.Equal(t, 8, v.Stats.TotalUsers)
	assert.Equal(t, recommendations.StateIdle, v.Recommendations.State)
	for _, item := range v.Page.Items {
		assert.NotEmpty(t, item.CoverURL)
		assert.Positive(t, item.Year)
	}
}

func TestHandlerUpdate(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	v := decodeView(t, do(e, http.MethodPost, "/view", `{"sort":"year-asc","page_size":1}`))
	assert.Equal(t, pipeline.SortYearAsc, v.Sort)
	assert.Equal(t, 4, v.Page.PageSize, "page size is clamped to the minimum")
	require.NotEmpty(t, v.Page.Items)
	for i := 1; i < len(v.Page.Items); i++ {
		assert.LessOrEqual(t, v.Page.Items[i-1].Year, v.Page.Items[i].Year)
	}

	v = decodeView(t, do(e, http.MethodPost, "/view", `{"page":99}`))
	assert.Equal(t, v.Page.TotalPages, v.Page.CurrentPage, "page is clamped to the last page")
}

func TestHandlerUpdate_Filters(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	all := decodeView(t, do(e, http.MethodGet, "/view", ""))
	require.NotEmpty(t, all.Page.Items)
	author := all.Page.Items[0].Author

	v := decodeView(t, do(e, http.MethodPost, "/view", `{"author":"`+strings.ToUpper(author)+`"}`))
	require.NotEmpty(t, v.Page.Items)
	for _, item := range v.Page.Items {
		assert.Contains(t, strings.ToLower(item.Author), strings.ToLower(author))
	}
	assert.Equal(t, strings.ToUpper(author), v.Filter.Author)

	v = decodeView(t, do(e, http.MethodPost, "/view", `{"search":"zzz-no-such-title"}`))
	assert.Empty(t, v.Page.Items)
	assert.Equal(t, 0, v.Stats.FilteredCount)
	assert.Equal(t, 1, v.Page.TotalPages)
}

func TestHandlerUpdate_InvertedYearsAreNormalized(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	v := decodeView(t, do(e, http.MethodPost, "/view", `{"year_min":2020,"year_max":1950}`))
	assert.Equal(t, 1950, v.Filter.Years.Min)
	assert.Equal(t, 2020, v.Filter.Years.Max)
}

func TestHandlerUpdate_Validation(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	rr := do(e, http.MethodPost, "/view", `{"sort":"shuffle"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"sort" must be one of the following`)

	rr = do(e, http.MethodPost, "/view", `{"mode":"everything"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(e, http.MethodPost, "/view", `{"colour":"red"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `Unknown Parameter \"colour\"`)
}

func TestHandlerReset(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	decodeView(t, do(e, http.MethodPost, "/view", `{"search":"zzz","sort":"rating-desc","year_min":2000}`))

	v := decodeView(t, do(e, http.MethodPost, "/view/reset", ""))
	assert.Empty(t, v.Filter.Query)
	assert.Equal(t, pipeline.SortTitle, v.Sort)
	assert.Equal(t, v.Stats.YearBounds, v.Filter.Years)
	assert.Equal(t, 1, v.Page.CurrentPage)
	assert.Equal(t, v.Stats.PoolSize, v.Stats.FilteredCount)
}

func TestHandlerRefresh_NoActiveUser(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	rr := do(e, http.MethodPost, "/recommendations/refresh", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandlerRefresh(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := recommendations.ProviderFunc(func(_ context.Context, userID, _ int) ([]models.Item, error) {
		calls++
		if calls > 1 {
			return nil, &recommendations.StatusError{StatusCode: http.StatusBadGateway}
		}
		return []models.Item{{ID: "REC-1", Title: "Recommended", PublicationYear: "2001"}}, nil
	})
	e, state := newTestServer(t, provider)

	state.SwitchUser(context.Background(), 2)

	rr := do(e, http.MethodPost, "/recommendations/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp FetchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, recommendations.OutcomeFailed, resp.Fetch.Outcome)
	assert.Equal(t, 2, resp.Fetch.UserID)
	assert.Equal(t, recommendations.StateFailed, resp.View.Recommendations.State)
	assert.NotEmpty(t, resp.View.Recommendations.Error)
	assert.Equal(t, 0, resp.View.Recommendations.Count)
}

func TestHandlerRefresh_ProviderErrorIsNotAnHTTPError(t *testing.T) {
	t.Parallel()

	provider := recommendations.ProviderFunc(func(context.Context, int, int) ([]models.Item, error) {
		return nil, errors.New("connection refused")
	})
	e, state := newTestServer(t, provider)
	state.SwitchUser(context.Background(), 5)

	rr := do(e, http.MethodPost, "/recommendations/refresh", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerTopRated(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t, noRecommendations())

	rr := do(e, http.MethodGet, "/top-rated", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Items []ItemResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "The Kite Runner", resp.Items[0].Title)
	require.NotNil(t, resp.Items[0].Score)
	assert.InDelta(t, 10.0, *resp.Items[0].Score, 0.001)

	rr = do(e, http.MethodGet, "/top-rated?limit=5", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 5)

	rr = do(e, http.MethodGet, "/top-rated?limit=100", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
