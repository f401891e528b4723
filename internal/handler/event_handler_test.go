package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	"github.com/noah-isme/event-calendar-api/internal/models"
	"github.com/noah-isme/event-calendar-api/pkg/civil"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
)

type eventServiceMock struct {
	query   dto.EventListQuery
	created dto.EventRequest
	id      string
	rebase  dto.RebaseYearRequest
	err     error
}

func (m *eventServiceMock) view() *dto.ResolvedEvent {
	d := civil.MustParse("2024-12-25")
	return &dto.ResolvedEvent{Event: models.Event{ID: "e1", Title: "Christmas", DateType: models.DateTypeFixed, StartDate: &d}, ResolvedDate: &d, Pattern: "2024-12-25"}
}

func (m *eventServiceMock) List(ctx context.Context, query dto.EventListQuery) ([]dto.ResolvedEvent, *models.Pagination, error) {
	m.query = query
	if m.err != nil {
		return nil, nil, m.err
	}
	return []dto.ResolvedEvent{*m.view()}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 1}, nil
}

func (m *eventServiceMock) Get(ctx context.Context, id string) (*dto.ResolvedEvent, error) {
	m.id = id
	if m.err != nil {
		return nil, m.err
	}
	return m.view(), nil
}

func (m *eventServiceMock) Create(ctx context.Context, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return m.view(), nil
}

func (m *eventServiceMock) Update(ctx context.Context, id string, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	m.id = id
	m.created = req
	return m.view(), m.err
}

func (m *eventServiceMock) Delete(ctx context.Context, id string) error {
	m.id = id
	return m.err
}

func (m *eventServiceMock) Preview(ctx context.Context, req dto.EventRequest) (*dto.ResolvedEvent, error) {
	m.created = req
	return m.view(), m.err
}

func (m *eventServiceMock) RebaseYear(ctx context.Context, req dto.RebaseYearRequest) (*dto.RebaseYearResult, error) {
	m.rebase = req
	return &dto.RebaseYearResult{Year: req.Year, Updated: 4}, m.err
}

func eventRouter(svc eventService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEventHandler(svc)
	r := gin.New()
	r.GET("/events", h.List)
	r.POST("/events", h.Create)
	r.POST("/events/preview", h.Preview)
	r.POST("/events/rebase-year", h.RebaseYear)
	r.GET("/events/:id", h.Get)
	r.PUT("/events/:id", h.Update)
	r.DELETE("/events/:id", h.Delete)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestEventHandlerListParsesQuery(t *testing.T) {
	svc := &eventServiceMock{}
	w := serve(eventRouter(svc), http.MethodGet, "/events?date_type=nth&page=2&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.EventListQuery{DateType: "nth", Page: 2, PageSize: 10}, svc.query)

	var body struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination models.Pagination        `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2024-12-25", body.Data[0]["resolved_date"])
	assert.Equal(t, 1, body.Pagination.TotalCount)
}

func TestEventHandlerListRejectsBadPage(t *testing.T) {
	w := serve(eventRouter(&eventServiceMock{}), http.MethodGet, "/events?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerCreate(t *testing.T) {
	svc := &eventServiceMock{}
	w := serve(eventRouter(svc), http.MethodPost, "/events", `{"title":"Christmas","date_type":"fixed","start_date":"2024-12-25"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Christmas", svc.created.Title)
	require.NotNil(t, svc.created.StartDate)
	assert.Equal(t, "2024-12-25", svc.created.StartDate.String())
}

func TestEventHandlerCreateRejectsMalformedJSON(t *testing.T) {
	w := serve(eventRouter(&eventServiceMock{}), http.MethodPost, "/events", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(eventRouter(&eventServiceMock{}), http.MethodPost, "/events", `{"title":"X","date_type":"fixed","start_date":"2024-02-30"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerGetNotFound(t *testing.T) {
	svc := &eventServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "event not found")}
	w := serve(eventRouter(svc), http.MethodGet, "/events/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing", svc.id)
}

func TestEventHandlerUpdateDeletePreviewRebase(t *testing.T) {
	svc := &eventServiceMock{}
	r := eventRouter(svc)

	w := serve(r, http.MethodPut, "/events/e1", `{"title":"Xmas","date_type":"fixed","start_date":"2024-12-25"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "e1", svc.id)
	assert.Equal(t, "Xmas", svc.created.Title)

	w = serve(r, http.MethodDelete, "/events/e1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodPost, "/events/preview", `{"title":"P","date_type":"nth","nth_occurrence":-1,"day_of_week":5,"month":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.created.NthOccurrence)
	assert.Equal(t, -1, *svc.created.NthOccurrence)

	w = serve(r, http.MethodPost, "/events/rebase-year", `{"year":2026}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2026, svc.rebase.Year)
	assert.Contains(t, w.Body.String(), `"updated":4`)
}
