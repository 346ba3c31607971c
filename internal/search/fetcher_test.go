package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetcherTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func transcriptHTML() string {
	paragraphs := []string{
		"Thank you very much everybody, it is wonderful to be here today.",
		"We will close the airspace over Venezuela completely, effective immediately.",
		"This decision was made after consultations with our national security team.",
		"I want to thank the members of Congress who supported this measure today.",
		"We will continue to monitor the situation and provide updates as needed.",
	}

	var b strings.Builder

	b.WriteString("<!DOCTYPE html><html><head><title>Remarks by the President</title></head><body><article>")

	for _, p := range paragraphs {
		for i := 0; i < 4; i++ {
			b.WriteString("<p>" + p + "</p>")
		}
	}

	b.WriteString("</article></body></html>")

	return b.String()
}

func TestFetcher_FetchExtractsSentences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(transcriptHTML()))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	page, err := f.Fetch(context.Background(), srv.URL+"/transcript")
	require.NoError(t, err)

	assert.NotEmpty(t, page.Text)
	assert.NotEmpty(t, page.Sentences)
	assert.Contains(t, page.Text, "close the airspace over Venezuela")
}

func TestFetcher_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(make([]byte, 2048))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrPageInvalid)
}

func TestFetcher_RejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrPageInvalid)
}

func TestFetcher_RejectsTinyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>short</body></html>"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrPageInvalid)
}

func TestFetcher_RejectsBadURL(t *testing.T) {
	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	_, err := f.Fetch(context.Background(), "not-a-url")
	assert.ErrorIs(t, err, ErrPageInvalid)
}

func TestFetcher_FetchAllDropsInvalidCandidates(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(transcriptHTML()))
	}))
	t.Cleanup(good.Close)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	t.Cleanup(bad.Close)

	f := NewFetcher(FetcherConfig{}, fetcherTestLogger())

	hydrated := f.FetchAll(context.Background(), []Candidate{
		{URL: bad.URL, Source: "bad.example.com"},
		{URL: good.URL, Source: "good.example.com"},
	})

	require.Len(t, hydrated, 1)
	assert.Equal(t, "good.example.com", hydrated[0].Source)
	assert.NotEmpty(t, hydrated[0].Sentences)
}
