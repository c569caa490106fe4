package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	"repairhub-backend/internal/config"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchObject"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("dial tcp: connection refused")))
}

func TestMinIOStorage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("minio tests skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewMinIOStorage(ctx, config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: ctr.Username,
		SecretKey: ctr.Password,
		Bucket:    "repairhub-test",
	})
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		_, err := store.PresignedGetURL(ctx, "reports/discounts/missing.xlsx", time.Minute)
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("upload then download through the signed link", func(t *testing.T) {
		key := "reports/discounts/task-1.xlsx"
		location, err := store.Upload(ctx, key, []byte("PK-report"), "application/octet-stream")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(location, "/repairhub-test/"+key), location)

		link, err := store.PresignedGetURL(ctx, key, time.Minute)
		require.NoError(t, err)

		resp, err := http.Get(link)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="task-1.xlsx"`)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "PK-report", string(body))
	})

	t.Run("existing bucket is reused", func(t *testing.T) {
		_, err := NewMinIOStorage(ctx, config.StorageConfig{
			Endpoint:  endpoint,
			AccessKey: ctr.Username,
			SecretKey: ctr.Password,
			Bucket:    "repairhub-test",
		})
		assert.NoError(t, err)
	})
}
