package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/middlewarectx"
)

func TestRateLimitMiddleware(t *testing.T) {
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	statuses := make(map[int]int)
	for range 60 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
		statuses[rec.Code]++
	}

	// Лимитер общий на процесс: всплеск пропускается, остаток серии
	// упирается в 429 независимо от того, чьи это запросы.
	assert.Positive(t, statuses[http.StatusOK])
	assert.Positive(t, statuses[http.StatusTooManyRequests])
}
