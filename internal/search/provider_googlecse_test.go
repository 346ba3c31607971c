package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSETestProvider(t *testing.T, handler http.HandlerFunc) *GoogleCSEProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGoogleCSEProvider(GoogleCSEConfig{
		APIKey:       "test-key",
		CX:           "test-cx",
		Domains:      []string{"whitehouse.gov"},
		Retries:      2,
		RateLimitRPS: 1000,
	})
	p.endpoint = srv.URL

	return p
}

func TestGoogleCSE_SearchParsesItems(t *testing.T) {
	var gotQuery, gotHL, gotLR string

	p := newCSETestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotHL = r.URL.Query().Get("hl")
		gotLR = r.URL.Query().Get("lr")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"link":"https://www.whitehouse.gov/remarks/1","title":"Remarks","snippet":"the president said"},
			{"link":"","formattedUrl":"https://www.whitehouse.gov/remarks/2","title":"Briefing","snippet":"..."}
		]}`))
	})

	results, err := p.Search(context.Background(), "트럼프 베네수엘라", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "트럼프 베네수엘라 site:whitehouse.gov", gotQuery)
	assert.Equal(t, "ko", gotHL)
	assert.Equal(t, "lang_ko", gotLR)

	assert.Equal(t, "https://www.whitehouse.gov/remarks/1", results[0].URL)
	assert.Equal(t, "whitehouse.gov", results[0].Source)
	assert.Equal(t, "https://www.whitehouse.gov/remarks/2", results[1].URL)
}

func TestGoogleCSE_EnglishLocale(t *testing.T) {
	var gotHL, gotGL, gotLR string

	p := newCSETestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotHL = r.URL.Query().Get("hl")
		gotGL = r.URL.Query().Get("gl")
		gotLR = r.URL.Query().Get("lr")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := p.Search(context.Background(), "Donald Trump Venezuela airspace", 3)
	require.NoError(t, err)

	assert.Equal(t, "en", gotHL)
	assert.Equal(t, "us", gotGL)
	assert.Empty(t, gotLR)
}

func TestGoogleCSE_RetriesOnThrottle(t *testing.T) {
	var calls atomic.Int32

	p := newCSETestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"link":"https://www.whitehouse.gov/remarks/1"}]}`))
	})

	results, err := p.Search(context.Background(), "query", 1)
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGoogleCSE_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32

	p := newCSETestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := p.Search(context.Background(), "query", 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogleCSE_DedupesAcrossPages(t *testing.T) {
	var calls atomic.Int32

	p := newCSETestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)

		w.Header().Set("Content-Type", "application/json")
		// Same link on every page; pagination must stop once the page
		// yields nothing new and the result set stops growing.
		_, _ = w.Write([]byte(`{"items":[{"link":"https://www.whitehouse.gov/remarks/1"}]}`))
	})

	results, err := p.Search(context.Background(), "query", 3)
	require.NoError(t, err)

	assert.Len(t, results, 1)
}

func TestGoogleCSE_IsAvailable(t *testing.T) {
	assert.False(t, NewGoogleCSEProvider(GoogleCSEConfig{}).IsAvailable())
	assert.False(t, NewGoogleCSEProvider(GoogleCSEConfig{APIKey: "k"}).IsAvailable())
	assert.True(t, NewGoogleCSEProvider(GoogleCSEConfig{APIKey: "k", CX: "c"}).IsAvailable())
}
