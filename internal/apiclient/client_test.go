package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/khobor/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:            srv.URL,
		Timeout:            2 * time.Second,
		RetryCount:         retries,
		BreakerFailRatio:   1,
		BreakerMinRequests: 100,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListNewsEncodesParams(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		got = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"newsList": []map[string]any{{"id": "1", "slug": "a"}, {"id": "2", "slug": "b"}},
			"total":    2,
		})
	}, 0)

	featured := true
	list, err := c.ListNews(context.Background(), models.ListParams{
		Page: 2, Limit: 12, Category: "sports", Featured: &featured, Search: "ঢাকা",
	}, "")
	require.NoError(t, err)

	assert.Len(t, list.NewsList, 2)
	require.NotNil(t, list.Total)
	assert.Equal(t, int64(2), *list.Total)

	assert.Contains(t, got, "page=2")
	assert.Contains(t, got, "limit=12")
	assert.Contains(t, got, "category=sports")
	assert.Contains(t, got, "featured=true")
	assert.NotContains(t, got, "author_id")
	assert.NotContains(t, got, "sort")
}

func TestNewsBySlugEmptyIssuesNoRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, 0)

	_, err := c.NewsBySlug(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptySlug)
	assert.Zero(t, calls.Load())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{
			name: "plain text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "News not found", http.StatusNotFound)
			},
			status:  http.StatusNotFound,
			message: "News not found",
		},
		{
			name: "json message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			},
			status:  http.StatusUnauthorized,
			message: "Invalid credentials",
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
			},
			status:  http.StatusConflict,
			message: "Conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, 0)
			_, err := c.NewsBySlug(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, tt.message, MessageOf(err, "fallback"))
		})
	}
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/x", r.URL.Path)
		http.Error(w, "not found", http.StatusNotFound)
	}, 2)

	_, err := c.NewsBySlug(context.Background(), "x")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestGetRetriedOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, []models.Category{{ID: "1", Name: "Sports", Slug: "sports"}})
	}, 2)

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}, 2)

	_, err := c.Categories(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMutationNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 2)

	err := c.DeleteCategory(context.Background(), "tok", "7")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoginAndBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var creds models.Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds.Password != "secret" {
				http.Error(w, "Invalid email or password", http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"token": "jwt-token"})
		case "/auth/me":
			assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, models.AdminUser{ID: "u1", Name: "Admin"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, 0)

	ctx := context.Background()

	_, err := c.Login(ctx, models.Credentials{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid email or password", MessageOf(err, ""))

	token, err := c.Login(ctx, models.Credentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)

	me, err := c.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Admin", me.Name)
}

func TestCreateNewsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Headline here", r.FormValue("title"))
		assert.Equal(t, "3", r.FormValue("category_id"))
		assert.Equal(t, "true", r.FormValue("is_featured"))

		f, hdr, err := r.FormFile("thumbnail")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "pic.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(body))

		writeJSON(w, http.StatusCreated, map[string]string{"id": "9"})
	}, 0)

	err := c.CreateNews(context.Background(), "tok", models.NewsInput{
		Title:      "Headline here",
		CategoryID: "3",
		Excerpt:    "A short excerpt",
		Content:    "<p>Body of the article</p>",
		IsFeatured: true,
		ThumbnailFile: &models.Upload{
			Filename:    "pic.png",
			ContentType: "image/png",
			Reader:      strings.NewReader("PNGDATA"),
		},
	})
	require.NoError(t, err)
}

func TestUpdateNewsKeepsThumbnailURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/news/42", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://cdn.example.com/a.jpg", r.FormValue("thumbnail"))
		w.WriteHeader(http.StatusOK)
	}, 0)

	err := c.UpdateNews(context.Background(), "tok", "42", models.NewsInput{
		Title:     "Headline here",
		Thumbnail: "https://cdn.example.com/a.jpg",
	})
	require.NoError(t, err)
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://cdn.example.com/u.png"})
	}, 0)

	url, err := c.Upload(context.Background(), "tok", models.Upload{
		Filename: "u.png", ContentType: "image/png", Reader: strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/u.png", url)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		BaseURL:            srv.URL,
		Timeout:            time.Second,
		BreakerFailRatio:   0.5,
		BreakerMinRequests: 2,
		BreakerTimeout:     time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := c.Homepage(ctx)
		require.Error(t, err)
	}

	_, err := c.Homepage(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err), "open breaker fails fast without a response")
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "missing", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		BaseURL:            srv.URL,
		Timeout:            time.Second,
		BreakerFailRatio:   0.5,
		BreakerMinRequests: 2,
	})

	for i := 0; i < 5; i++ {
		_, err := c.NewsBySlug(context.Background(), "gone")
		require.True(t, IsNotFound(err))
	}
	assert.Equal(t, int32(5), calls.Load())
}
