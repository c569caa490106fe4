package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/infrastructure/storage"
	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// -------------------------------------------------------------------
// MOCKS
// -------------------------------------------------------------------

type mockPricingService struct {
	mock.Mock
}

func (m *mockPricingService) GetApplicableDiscount(ctx context.Context, serviceID, modelID uuid.UUID) (*model.Discount, error) {
	args := m.Called(ctx, serviceID, modelID)
	if v := args.Get(0); v != nil {
		return v.(*model.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPricingService) GetPriceWithDiscount(ctx context.Context, serviceID, modelID uuid.UUID, originalPrice decimal.Decimal) (*model.PriceWithDiscount, error) {
	args := m.Called(ctx, serviceID, modelID, originalPrice)
	if v := args.Get(0); v != nil {
		return v.(*model.PriceWithDiscount), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) CreateDiscount(ctx context.Context, req *model.CreateDiscountRequest) (*model.DiscountResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*model.DiscountResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) GetDiscount(ctx context.Context, id uuid.UUID) (*model.DiscountResponse, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.DiscountResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) GetDiscountByCode(ctx context.Context, code string) (*model.DiscountInfo, error) {
	args := m.Called(ctx, code)
	if v := args.Get(0); v != nil {
		return v.(*model.DiscountInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) ListDiscounts(ctx context.Context, filter *model.ListDiscountsFilter) ([]*model.DiscountResponse, int, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]*model.DiscountResponse), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockAdminService) UpdateDiscount(ctx context.Context, id uuid.UUID, req *model.UpdateDiscountRequest) (*model.DiscountResponse, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*model.DiscountResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) UpdateDiscountStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	return m.Called(ctx, id, isActive).Error(0)
}

func (m *mockAdminService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdminService) DeactivateStaleDiscounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAdminService) ExportDiscounts(ctx context.Context, filter *model.ListDiscountsFilter, w io.Writer) (int, error) {
	args := m.Called(ctx, filter, w)
	return args.Int(0), args.Error(1)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLinker struct {
	mock.Mock
}

func (m *mockLinker) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

type fixture struct {
	pricing *mockPricingService
	admin   *mockAdminService
	tasks   *mockEnqueuer
	reports *mockLinker
	router  *gin.Engine
}

func newFixture() *fixture {
	f := &fixture{
		pricing: new(mockPricingService),
		admin:   new(mockAdminService),
		tasks:   new(mockEnqueuer),
		reports: new(mockLinker),
	}

	public := NewPublicHandler(f.pricing, f.admin)
	admin := NewAdminHandler(f.admin, f.tasks, f.reports, 15*time.Minute)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/pricing/quote", public.Quote)
	api.GET("/discounts/code/:code", public.GetByCode)

	adm := api.Group("/admin/discounts")
	adm.Use(func(c *gin.Context) {
		c.Set(shared.ContextKeyUserID, uuid.MustParse("00000000-0000-0000-0000-0000000000aa"))
		c.Next()
	})
	adm.POST("", admin.CreateDiscount)
	adm.GET("", admin.ListDiscounts)
	adm.GET("/export", admin.ExportDiscounts)
	adm.POST("/export", admin.RequestExportReport)
	adm.GET("/export/:taskId", admin.GetExportReport)
	adm.POST("/deactivate-stale", admin.DeactivateStale)
	adm.GET("/:id", admin.GetDiscount)
	adm.PUT("/:id", admin.UpdateDiscount)
	adm.PATCH("/:id/status", admin.UpdateStatus)
	adm.DELETE("/:id", admin.DeleteDiscount)

	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (response.Response, map[string]interface{}) {
	t.Helper()
	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	data, _ := env.Data.(map[string]interface{})
	return env, data
}

// -------------------------------------------------------------------
// PUBLIC
// -------------------------------------------------------------------

func TestPublicHandler_Quote(t *testing.T) {
	serviceID, modelID := uuid.New(), uuid.New()
	body := `{"service_id":"` + serviceID.String() + `","model_id":"` + modelID.String() + `","original_price":"1200"}`

	t.Run("discounted quote", func(t *testing.T) {
		f := newFixture()
		d := &model.Discount{ID: uuid.New(), Code: "BRAND20"}
		f.pricing.On("GetPriceWithDiscount", mock.Anything, serviceID, modelID, mock.AnythingOfType("decimal.Decimal")).
			Return(&model.PriceWithDiscount{
				OriginalPrice:   decimal.NewFromInt(1200),
				DiscountedPrice: decimal.NewFromInt(990),
				HasDiscount:     true,
				Discount:        d,
			}, nil)

		w := f.do(http.MethodPost, "/api/v1/pricing/quote", body)
		require.Equal(t, http.StatusOK, w.Code)

		env, data := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "990", data["discounted_price"])
		assert.Equal(t, "210", data["savings"])
		assert.Equal(t, true, data["has_discount"])
	})

	t.Run("missing model id", func(t *testing.T) {
		f := newFixture()
		w := f.do(http.MethodPost, "/api/v1/pricing/quote", `{"service_id":"`+serviceID.String()+`","original_price":"10"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.pricing.AssertNotCalled(t, "GetPriceWithDiscount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		f := newFixture()
		w := f.do(http.MethodPost, "/api/v1/pricing/quote", `{"service_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative price", func(t *testing.T) {
		f := newFixture()
		f.pricing.On("GetPriceWithDiscount", mock.Anything, serviceID, modelID, mock.Anything).
			Return(nil, model.ErrInvalidPrice)

		w := f.do(http.MethodPost, "/api/v1/pricing/quote", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		env, _ := decodeEnvelope(t, w)
		assert.Equal(t, string(model.ErrCodeInvalidPrice), env.Error.Code)
	})

	t.Run("storage failure is 503, not full price", func(t *testing.T) {
		f := newFixture()
		f.pricing.On("GetPriceWithDiscount", mock.Anything, serviceID, modelID, mock.Anything).
			Return(nil, errors.New("load discounts: connection refused"))

		w := f.do(http.MethodPost, "/api/v1/pricing/quote", body)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		env, _ := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, string(model.ErrCodeServiceUnavailable), env.Error.Code)
	})
}

func TestPublicHandler_GetByCode(t *testing.T) {
	f := newFixture()
	f.admin.On("GetDiscountByCode", mock.Anything, "welcome").
		Return(&model.DiscountInfo{Code: "WELCOME", Name: "Welcome offer"}, nil)
	f.admin.On("GetDiscountByCode", mock.Anything, "gone").
		Return(nil, model.ErrDiscountNotFound)

	w := f.do(http.MethodGet, "/api/v1/discounts/code/welcome", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	assert.Equal(t, "WELCOME", data["code"])

	w = f.do(http.MethodGet, "/api/v1/discounts/code/gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// -------------------------------------------------------------------
// ADMIN
// -------------------------------------------------------------------

func TestAdminHandler_CreateDiscount(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture()
		f.admin.On("CreateDiscount", mock.Anything, mock.MatchedBy(func(r *model.CreateDiscountRequest) bool {
			return r.Code == "NEW10" && r.DiscountValue.Equal(decimal.NewFromInt(10))
		})).Return(&model.DiscountResponse{Discount: &model.Discount{Code: "NEW10"}}, nil)

		w := f.do(http.MethodPost, "/api/v1/admin/discounts",
			`{"code":"NEW10","name":"New ten","discount_type":"percentage","discount_value":10,"scope_type":"all_services"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation details are returned", func(t *testing.T) {
		f := newFixture()
		verr := model.NewValidationError(errors.New("brand_id: brand_id is required for brand scope."))
		f.admin.On("CreateDiscount", mock.Anything, mock.Anything).Return(nil, verr)

		w := f.do(http.MethodPost, "/api/v1/admin/discounts", `{"code":"X"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		env, _ := decodeEnvelope(t, w)
		assert.Equal(t, string(model.ErrCodeValidationFailed), env.Error.Code)
		assert.NotNil(t, env.Error.Details)
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newFixture()
		f.admin.On("CreateDiscount", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateCode)

		w := f.do(http.MethodPost, "/api/v1/admin/discounts", `{"code":"TAKEN"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAdminHandler_UpdateAndStatus(t *testing.T) {
	id := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture()
		w := f.do(http.MethodPut, "/api/v1/admin/discounts/not-a-uuid", `{"name":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("max uses below current", func(t *testing.T) {
		f := newFixture()
		f.admin.On("UpdateDiscount", mock.Anything, id, mock.Anything).
			Return(nil, model.ErrMaxUsesBelowCurrent.WithDetails(map[string]interface{}{"max_uses": 1, "current_uses": 4}))

		w := f.do(http.MethodPut, "/api/v1/admin/discounts/"+id.String(), `{"max_uses":1}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		env, _ := decodeEnvelope(t, w)
		assert.Equal(t, string(model.ErrCodeMaxUsesTooLow), env.Error.Code)
		details, ok := env.Error.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(4), details["current_uses"])
	})

	t.Run("status requires is_active", func(t *testing.T) {
		f := newFixture()
		w := f.do(http.MethodPatch, "/api/v1/admin/discounts/"+id.String()+"/status", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.admin.AssertNotCalled(t, "UpdateDiscountStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status switched off", func(t *testing.T) {
		f := newFixture()
		f.admin.On("UpdateDiscountStatus", mock.Anything, id, false).Return(nil)

		w := f.do(http.MethodPatch, "/api/v1/admin/discounts/"+id.String()+"/status", `{"is_active":false}`)
		require.Equal(t, http.StatusOK, w.Code)
		f.admin.AssertExpectations(t)
	})

	t.Run("delete missing", func(t *testing.T) {
		f := newFixture()
		f.admin.On("DeleteDiscount", mock.Anything, id).Return(model.ErrDiscountNotFound)

		w := f.do(http.MethodDelete, "/api/v1/admin/discounts/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminHandler_ListDiscounts(t *testing.T) {
	f := newFixture()
	items := []*model.DiscountResponse{{Discount: &model.Discount{Code: "A"}}}
	f.admin.On("ListDiscounts", mock.Anything, mock.AnythingOfType("*model.ListDiscountsFilter")).
		Run(func(args mock.Arguments) {
			filter := args.Get(1).(*model.ListDiscountsFilter)
			filter.Normalize()
		}).
		Return(items, 45, nil)

	w := f.do(http.MethodGet, "/api/v1/admin/discounts?status=active&page=2&limit=20", "")
	require.Equal(t, http.StatusOK, w.Code)

	env, _ := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 45, env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestAdminHandler_ExportDiscounts(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		f := newFixture()
		f.admin.On("ExportDiscounts", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(1).(*model.ListDiscountsFilter).Normalize()
				_, _ = args.Get(2).(io.Writer).Write([]byte("PK-fake-xlsx"))
			}).
			Return(1, nil)

		w := f.do(http.MethodGet, "/api/v1/admin/discounts/export", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, shared.XLSXContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "discounts_all.xlsx")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
	})

	t.Run("enqueue report", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
			var p shared.ExportDiscountReportPayload
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				return false
			}
			return task.Type() == shared.TypeExportDiscountReport && p.Status == model.StatusExpired &&
				p.RequestedBy.String() == "00000000-0000-0000-0000-0000000000aa"
		})).Return(&asynq.TaskInfo{ID: "task-1", Queue: shared.QueueLow}, nil)

		w := f.do(http.MethodPost, "/api/v1/admin/discounts/export?status=expired", "")
		require.Equal(t, http.StatusAccepted, w.Code)

		_, data := decodeEnvelope(t, w)
		assert.Equal(t, "task-1", data["task_id"])
		assert.Equal(t, "reports/discounts/task-1.xlsx", data["report_key"])
	})

	t.Run("queue down", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis: connection refused"))

		w := f.do(http.MethodPost, "/api/v1/admin/discounts/export", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAdminHandler_GetExportReport(t *testing.T) {
	const taskID = "7d1f4a52-9a43-4c1e-9d0e-3f2c1b9e8a01"
	path := "/api/v1/admin/discounts/export/" + taskID

	t.Run("signed link", func(t *testing.T) {
		f := newFixture()
		f.reports.On("PresignedGetURL", mock.Anything, "reports/discounts/"+taskID+".xlsx", 15*time.Minute).
			Return("http://minio:9000/repairhub/reports/discounts/"+taskID+".xlsx?X-Amz-Signature=abc", nil)

		w := f.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)

		_, data := decodeEnvelope(t, w)
		assert.Equal(t, taskID, data["task_id"])
		assert.Contains(t, data["url"], "X-Amz-Signature")
		assert.Equal(t, float64(900), data["expires_in"])
	})

	t.Run("not built yet", func(t *testing.T) {
		f := newFixture()
		f.reports.On("PresignedGetURL", mock.Anything, mock.Anything, mock.Anything).
			Return("", fmt.Errorf("reports/discounts/%s.xlsx: %w", taskID, storage.ErrObjectNotFound))

		w := f.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, w.Code)

		env, _ := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(model.ErrCodeReportNotReady), env.Error.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture()
		f.reports.On("PresignedGetURL", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("dial tcp: connection refused"))

		w := f.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("malformed task id", func(t *testing.T) {
		f := newFixture()

		w := f.do(http.MethodGet, "/api/v1/admin/discounts/export/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.reports.AssertNotCalled(t, "PresignedGetURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage not configured", func(t *testing.T) {
		f := newFixture()
		admin := NewAdminHandler(f.admin, f.tasks, nil, time.Minute)

		r := gin.New()
		r.GET("/export/:taskId", admin.GetExportReport)
		req := httptest.NewRequest(http.MethodGet, "/export/"+taskID, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAdminHandler_DeactivateStale(t *testing.T) {
	f := newFixture()
	f.admin.On("DeactivateStaleDiscounts", mock.Anything).Return(int64(2), nil)

	w := f.do(http.MethodPost, "/api/v1/admin/discounts/deactivate-stale", "")
	require.Equal(t, http.StatusOK, w.Code)

	_, data := decodeEnvelope(t, w)
	assert.Equal(t, float64(2), data["deactivated"])
}
