package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogModel "repairhub-backend/internal/domains/catalog/model"
	"repairhub-backend/internal/shared/response"
)

type stubCatalogService struct {
	detail *catalogModel.ServiceDetailResponse
	err    error
}

func (s *stubCatalogService) GetServiceDetail(context.Context, uuid.UUID, uuid.UUID) (*catalogModel.ServiceDetailResponse, error) {
	return s.detail, s.err
}

func serve(t *testing.T, svc *stubCatalogService, path string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/v1/services/:serviceId/models/:modelId", NewCatalogHandler(svc).GetServiceDetail)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCatalogHandler_GetServiceDetail(t *testing.T) {
	serviceID, modelID := uuid.New(), uuid.New()
	path := "/api/v1/services/" + serviceID.String() + "/models/" + modelID.String()

	t.Run("ok", func(t *testing.T) {
		w, env := serve(t, &stubCatalogService{detail: &catalogModel.ServiceDetailResponse{
			ServiceID:       serviceID,
			ModelID:         modelID,
			OriginalPrice:   decimal.NewFromInt(1000),
			DiscountedPrice: decimal.NewFromInt(890),
			Savings:         decimal.NewFromInt(110),
			HasDiscount:     true,
		}}, path)

		require.Equal(t, http.StatusOK, w.Code)
		data := env.Data.(map[string]interface{})
		assert.Equal(t, "890", data["discounted_price"])
	})

	t.Run("bad id", func(t *testing.T) {
		w, _ := serve(t, &stubCatalogService{}, "/api/v1/services/nope/models/"+modelID.String())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not offered", func(t *testing.T) {
		w, env := serve(t, &stubCatalogService{err: catalogModel.ErrServicePriceNotFound}, path)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, string(catalogModel.ErrCodeServicePriceNotFound), env.Error.Code)
	})

	t.Run("pricing unavailable", func(t *testing.T) {
		w, env := serve(t, &stubCatalogService{err: errors.New("db down")}, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Nil(t, env.Data)
	})
}
