package cms

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/cache"
	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/storage"
)

const testToken = "tok"

// fakeAPI is an in-memory backend. It accepts testToken only.
type fakeAPI struct {
	mu         sync.Mutex
	categories []models.Category
	users      []models.AdminUser
	news       []models.News
	created    []models.NewsInput
	listParams []models.ListParams
	listTokens []string
	total      int64
	statsErr   error

	categoryCalls atomic.Int32
	userCalls     atomic.Int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		categories: []models.Category{
			{ID: "1", Name: "Sports", NameBN: "খেলা", Slug: "sports"},
			{ID: "2", Name: "Economy", NameBN: "অর্থনীতি", Slug: "economy"},
		},
		users: []models.AdminUser{{ID: "u1", Name: "Admin", Email: "admin@news.com", Role: "admin"}},
		news: []models.News{
			{ID: "n1", Slug: "first-story", Title: "First story", CategoryID: "1", Thumbnail: "https://cdn.example.com/1.jpg", Status: "published"},
		},
	}
}

func (f *fakeAPI) auth(token string) error {
	if token != testToken {
		return &apiclient.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return nil
}

func (f *fakeAPI) Login(ctx context.Context, creds models.Credentials) (string, error) {
	if creds.Email == "admin@news.com" && creds.Password == "secret" {
		return testToken, nil
	}
	return "", &apiclient.Error{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*models.AdminUser, error) {
	if err := f.auth(token); err != nil {
		return nil, err
	}
	return &f.users[0], nil
}

func (f *fakeAPI) Stats(ctx context.Context, token string) (*models.DashboardStats, error) {
	if err := f.auth(token); err != nil {
		return nil, err
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.DashboardStats{
		TotalNews:     12,
		TotalUsers:    3,
		TotalViews:    45210,
		CategoryStats: []models.CategoryViewStat{{Name: "Sports", Value: 400}, {Name: "Economy", Value: 100}},
		TopNews:       []models.NewsViewStat{{Title: "First story", Views: 900}},
	}, nil
}

func (f *fakeAPI) Users(ctx context.Context, token string) ([]models.AdminUser, error) {
	f.userCalls.Add(1)
	if err := f.auth(token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AdminUser(nil), f.users...), nil
}

func (f *fakeAPI) CreateUser(ctx context.Context, token string, user models.NewUser) error {
	if err := f.auth(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return &apiclient.Error{Status: http.StatusConflict, Message: "Email already exists"}
		}
	}
	f.users = append(f.users, models.AdminUser{ID: "u" + user.Email, Name: user.Name, Email: user.Email, Role: "admin"})
	return nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, token string, change models.PasswordChange) error {
	if change.OldPassword != "secret" {
		return &apiclient.Error{Status: http.StatusUnauthorized, Message: "Old password is incorrect"}
	}
	return f.auth(token)
}

func (f *fakeAPI) Categories(ctx context.Context) ([]models.Category, error) {
	f.categoryCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeAPI) CreateCategory(ctx context.Context, token string, in models.CategoryInput) error {
	if err := f.auth(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, models.Category{ID: "9", Name: in.Name, NameBN: in.NameBN, Slug: strings.ToLower(in.Name)})
	return nil
}

func (f *fakeAPI) UpdateCategory(ctx context.Context, token, id string, in models.CategoryInput) error {
	if err := f.auth(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Name = in.Name
			f.categories[i].NameBN = in.NameBN
			return nil
		}
	}
	return &apiclient.Error{Status: http.StatusNotFound, Message: "Category not found"}
}

func (f *fakeAPI) DeleteCategory(ctx context.Context, token, id string) error {
	if err := f.auth(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return &apiclient.Error{Status: http.StatusBadRequest, Message: "Category has news attached"}
}

func (f *fakeAPI) ListNews(ctx context.Context, params models.ListParams, token string) (*models.NewsList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listParams = append(f.listParams, params)
	f.listTokens = append(f.listTokens, token)
	list := &models.NewsList{NewsList: append([]models.News(nil), f.news...)}
	if f.total > 0 {
		total := f.total
		list.Total = &total
	}
	return list, nil
}

func (f *fakeAPI) NewsBySlug(ctx context.Context, slug string) (*models.News, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.news {
		if n.Slug == slug {
			return &n, nil
		}
	}
	return nil, &apiclient.Error{Status: http.StatusNotFound, Message: "News not found"}
}

func (f *fakeAPI) Homepage(ctx context.Context) (*models.Homepage, error) {
	return &models.Homepage{}, nil
}

func (f *fakeAPI) CreateNews(ctx context.Context, token string, in models.NewsInput) error {
	if err := f.auth(token); err != nil {
		return err
	}
	if in.ThumbnailFile != nil && in.ThumbnailFile.Reader != nil {
		body, _ := io.ReadAll(in.ThumbnailFile.Reader)
		in.ThumbnailFile.Reader = bytes.NewReader(body)
		in.ThumbnailFile.Size = int64(len(body))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return nil
}

func (f *fakeAPI) UpdateNews(ctx context.Context, token, id string, in models.NewsInput) error {
	if err := f.auth(token); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return nil
}

func (f *fakeAPI) DeleteNews(ctx context.Context, token, id string) error {
	return f.auth(token)
}

func newTestApp(t *testing.T, api *fakeAPI) *fiber.App {
	t.Helper()
	cfg := config.FromEnv()
	cfg.MaxUploadSize = 2 << 20
	svc := services.New(api, query.NewClient(cache.NewMemoryStore(), time.Minute))
	return NewApp(cfg, api, svc, storage.Inline{})
}

func do(t *testing.T, app *fiber.App, req *http.Request, signedIn bool) (*http.Response, string) {
	t.Helper()
	if signedIn {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testToken})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	for _, path := range []string{"/", "/categories", "/news", "/users", "/news/edit/covid-19.update"} {
		resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, path, nil), false)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/static/cms.css", nil), false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/login", nil), false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Admin Login")
}

func TestGateSendsSignedInUsersHome(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/login", nil), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestExpiredTokenIsCleared(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: expired})
	resp, _ := do(t, app, req, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	c := cookie(resp, middleware.SessionCookie)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestLoginWithInvalidCredentials(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, body := do(t, app, postForm("/login", url.Values{
		"email":    {"admin@news.com"},
		"password": {"wrong"},
	}), false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")
	assert.Nil(t, cookie(resp, middleware.SessionCookie))

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginRequiresBothFields(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, body := do(t, app, postForm("/login", url.Values{"email": {"admin@news.com"}}), false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email and password are required")
	assert.Nil(t, cookie(resp, middleware.SessionCookie))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, _ := do(t, app, postForm("/login", url.Values{
		"email":    {"admin@news.com"},
		"password": {"secret"},
	}), false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	c := cookie(resp, middleware.SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, testToken, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(middleware.SessionTTL/time.Second), c.MaxAge)
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/logout", nil), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	c := cookie(resp, middleware.SessionCookie)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil), true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "45,210")
	assert.Contains(t, body, "width: 25%")
	assert.Contains(t, body, "admin@news.com")
}

func TestDashboardSurvivesStatsFailure(t *testing.T) {
	api := newFakeAPI()
	api.statsErr = &apiclient.Error{Status: http.StatusInternalServerError, Message: "boom"}
	app := newTestApp(t, api)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil), true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No data yet.")
}

func TestRejectedTokenEndsSession(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "revoked"})
	resp, _ := do(t, app, req, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	c := cookie(resp, middleware.SessionCookie)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestDeleteCategoryRefreshesListing(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	_, body := do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), true)
	assert.Contains(t, body, "Economy")
	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), true)
	assert.Contains(t, body, "Economy")
	assert.Equal(t, int32(1), api.categoryCalls.Load(), "listing is served from cache")

	resp, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/categories/2/delete", nil), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/categories", resp.Header.Get("Location"))
	flash := cookie(resp, flashCookie)
	require.NotNil(t, flash)
	assert.Contains(t, flash.Value, "Category+deleted+successfully")

	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), true)
	assert.NotContains(t, body, "Economy")
	assert.Contains(t, body, "Sports")
	assert.Equal(t, int32(2), api.categoryCalls.Load())
}

func TestDeleteCategoryFailureFlashesBackendMessage(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/categories/404/delete", nil), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	flash := cookie(resp, flashCookie)
	require.NotNil(t, flash)
	v, err := url.QueryUnescape(flash.Value)
	require.NoError(t, err)
	assert.Equal(t, "error|Category has news attached", v)
}

func TestFlashIsShownOnce(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: url.QueryEscape("success|Category deleted successfully")})
	resp, body := do(t, app, req, true)
	assert.Contains(t, body, "Category deleted successfully")
	c := cookie(resp, flashCookie)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestCreateCategoryValidation(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	resp, body := do(t, app, postForm("/categories/create", url.Values{"name": {"X"}}), true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Name must be at least 2 characters")

	resp, _ = do(t, app, postForm("/categories/create", url.Values{"name": {"Culture"}, "name_bn": {"সংস্কৃতি"}}), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), true)
	assert.Contains(t, body, "সংস্কৃতি")
}

func TestEditCategory(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/categories/edit/1", nil), true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Sports"`)
	assert.Contains(t, body, "/categories/1/update")

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/categories/edit/77", nil), true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, postForm("/categories/1/update", url.Values{"name": {"Games"}}), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/categories", nil), true)
	assert.Contains(t, body, "Games")
}

func TestNewsTable(t *testing.T) {
	api := newFakeAPI()
	api.total = 25
	app := newTestApp(t, api)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/news?page=2&sort=views_desc", nil), true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "First story")
	assert.Contains(t, body, "Page 2 of 3")

	require.Len(t, api.listParams, 1)
	assert.Equal(t, models.ListParams{Page: 2, Limit: NewsPageSize, Sort: "views_desc"}, api.listParams[0])
	assert.Equal(t, testToken, api.listTokens[0])

	do(t, app, httptest.NewRequest(http.MethodGet, "/news", nil), true)
	require.Len(t, api.listParams, 2, "the table is never cached")
	assert.Equal(t, 1, api.listParams[1].Page)
	assert.Equal(t, "latest", api.listParams[1].Sort)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/news?sort=random", nil), true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type part struct {
	name, filename, contentType string
	body                        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.name+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validNewsFields() map[string]string {
	return map[string]string{
		"title":       "Parliament passes budget",
		"category_id": "2",
		"excerpt":     "The budget passed after a long debate.",
		"content":     "<p>The budget was passed late on Tuesday night.</p>",
		"is_featured": "true",
	}
}

func TestCreateNewsValidation(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	resp, body := do(t, app, multipartRequest(t, "/news/create", map[string]string{"title": "abc"}), true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Title must be at least 5 characters")
	assert.Contains(t, body, "Category is required")
	assert.Contains(t, body, "Excerpt must be at least 10 characters")
	assert.Contains(t, body, "Content must be at least 20 characters")
	assert.Contains(t, body, "Thumbnail is required")
	assert.Empty(t, api.created)
}

func TestCreateNewsRejectsLargeImage(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	big := bytes.Repeat([]byte{0xff}, (2<<20)+1)
	resp, body := do(t, app, multipartRequest(t, "/news/create", validNewsFields(),
		part{name: "thumbnail", filename: "big.jpg", contentType: "image/jpeg", body: big}), true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Image is too large. Please select an image smaller than 2MB.")
	assert.Empty(t, api.created)
}

func TestCreateNewsForwardsThumbnail(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	resp, _ := do(t, app, multipartRequest(t, "/news/create", validNewsFields(),
		part{name: "thumbnail", filename: "pic.png", contentType: "image/png", body: []byte("PNGDATA")}), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/news", resp.Header.Get("Location"))

	require.Len(t, api.created, 1)
	in := api.created[0]
	assert.Equal(t, "Parliament passes budget", in.Title)
	assert.Equal(t, "2", in.CategoryID)
	assert.True(t, in.IsFeatured)
	require.NotNil(t, in.ThumbnailFile)
	assert.Equal(t, "pic.png", in.ThumbnailFile.Filename)
	assert.Equal(t, int64(7), in.ThumbnailFile.Size)
}

func TestUpdateNewsKeepsStoredThumbnail(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/news/edit/first-story", nil), true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="First story"`)
	assert.Contains(t, body, "https://cdn.example.com/1.jpg")

	fields := validNewsFields()
	delete(fields, "is_featured")
	resp, _ = do(t, app, multipartRequest(t, "/news/edit/first-story", fields), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	require.Len(t, api.created, 1)
	assert.Equal(t, "https://cdn.example.com/1.jpg", api.created[0].Thumbnail)
	assert.Nil(t, api.created[0].ThumbnailFile)
	assert.False(t, api.created[0].IsFeatured)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/news/edit/missing", nil), true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsers(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)

	_, body := do(t, app, httptest.NewRequest(http.MethodGet, "/users", nil), true)
	assert.Contains(t, body, "User Management")
	assert.Contains(t, body, "admin@news.com")

	resp, body := do(t, app, postForm("/users", url.Values{"name": {"Karim"}, "email": {"not-an-email"}}), true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email address")
	assert.Contains(t, body, "Password is required")

	resp, _ = do(t, app, postForm("/users", url.Values{
		"name": {"Karim"}, "email": {"karim@news.com"}, "password": {"pass1234"},
	}), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	flash := cookie(resp, flashCookie)
	require.NotNil(t, flash)
	assert.Contains(t, flash.Value, "User+created+successfully")

	calls := api.userCalls.Load()
	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/users", nil), true)
	assert.Contains(t, body, "karim@news.com")
	assert.Equal(t, calls+1, api.userCalls.Load())
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t, newFakeAPI())

	resp, _ := do(t, app, postForm("/users/password", url.Values{
		"old_password": {"wrong"}, "new_password": {"next-secret"},
	}), true)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Nil(t, cookie(resp, middleware.SessionCookie), "a wrong old password keeps the session")
	flash := cookie(resp, flashCookie)
	require.NotNil(t, flash)
	v, _ := url.QueryUnescape(flash.Value)
	assert.Equal(t, "error|Old password is incorrect", v)

	resp, _ = do(t, app, postForm("/users/password", url.Values{
		"old_password": {"secret"}, "new_password": {"next-secret"},
	}), true)
	flash = cookie(resp, flashCookie)
	require.NotNil(t, flash)
	v, _ = url.QueryUnescape(flash.Value)
	assert.Equal(t, "success|Password updated successfully", v)
}
