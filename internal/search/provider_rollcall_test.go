package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRollcallTestProvider(t *testing.T, handler http.HandlerFunc) *RollcallProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewRollcallProvider(RollcallConfig{
		Enabled:      true,
		BaseURL:      srv.URL,
		RateLimitRPS: 1000,
	})
}

func TestRollcall_SearchReturnsTranscriptsNewestFirst(t *testing.T) {
	var gotQ, gotSort string

	p := newRollcallTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotSort = r.URL.Query().Get("sort")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"permalink":"https://rollcall.com/factbase/trump/transcript/old","title":"Old remarks","date":"2025-08-01 10:00:00"},
			{"permalink":"https://rollcall.com/factbase/trump/transcript/new","title":"New remarks","date":"2025-08-14 18:30:00"},
			{"permalink":"https://rollcall.com/news/not-a-source","title":"News article","date":"2025-08-15 09:00:00"}
		]}`))
	})

	results, err := p.Search(context.Background(), "Donald Trump Venezuela", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Donald+Trump+Venezuela", gotQ)
	assert.Equal(t, "date", gotSort)

	assert.Equal(t, "https://rollcall.com/factbase/trump/transcript/new", results[0].URL)
	assert.Equal(t, "https://rollcall.com/factbase/trump/transcript/old", results[1].URL)
	assert.Equal(t, "rollcall.com", results[0].Source)
	assert.False(t, results[0].PublishedAt.IsZero())
}

func TestRollcall_BareArrayResponse(t *testing.T) {
	p := newRollcallTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"link":"https://rollcall.com/factbase/trump/transcript/x","date":"2025-08-14"}]`))
	})

	results, err := p.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "https://rollcall.com/factbase/trump/transcript/x", results[0].URL)
}

func TestRollcall_TruncatesToMaxResults(t *testing.T) {
	p := newRollcallTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"url":"https://rollcall.com/transcript/1","date":"2025-08-01"},
			{"url":"https://rollcall.com/transcript/2","date":"2025-08-02"},
			{"url":"https://rollcall.com/transcript/3","date":"2025-08-03"}
		]}`))
	})

	results, err := p.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://rollcall.com/transcript/3", results[0].URL)
}

func TestRollcall_EmptyQueryShortCircuits(t *testing.T) {
	called := false

	p := newRollcallTestProvider(t, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	results, err := p.Search(context.Background(), "   ", 5)
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.False(t, called)
}

func TestRollcall_ServerErrorSurfaces(t *testing.T) {
	p := newRollcallTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.Search(context.Background(), "query", 5)
	assert.ErrorIs(t, err, errRollcallStatus)
}

func TestRollcall_DisabledIsUnavailable(t *testing.T) {
	p := NewRollcallProvider(RollcallConfig{Enabled: false})
	assert.False(t, p.IsAvailable())
}
