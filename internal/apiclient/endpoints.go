package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/bilgisen/khobor/internal/models"
)

// ErrEmptySlug is returned by NewsBySlug when there is nothing to look up.
var ErrEmptySlug = errors.New("apiclient: empty slug")

// ErrNoToken is returned by Login when the backend accepted the credentials
// but sent no token back.
var ErrNoToken = errors.New("apiclient: login response carried no token")

// EncodeListParams builds the GET /news query string, omitting zero values.
func EncodeListParams(p models.ListParams) url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.AuthorID != "" {
		v.Set("author_id", p.AuthorID)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Featured != nil {
		v.Set("featured", strconv.FormatBool(*p.Featured))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/categories", out: &out})
	return out, err
}

// ListNews fetches one page of news. The token is optional; the CMS sends it
// so drafts are included.
func (c *Client) ListNews(ctx context.Context, params models.ListParams, token string) (*models.NewsList, error) {
	var out models.NewsList
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/news",
		token:    token,
		prepare: func(r *resty.Request) {
			r.SetQueryParamsFromValues(EncodeListParams(params))
		},
		out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NewsBySlug(ctx context.Context, slug string) (*models.News, error) {
	if slug == "" {
		return nil, ErrEmptySlug
	}
	var out models.News
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/news/{slug}",
		prepare:  func(r *resty.Request) { r.SetPathParam("slug", slug) },
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Homepage(ctx context.Context) (*models.Homepage, error) {
	var out models.Homepage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/news/homepage", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/stats", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/auth/login",
		prepare:  func(r *resty.Request) { r.SetBody(creds) },
		out:      &out,
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.AdminUser, error) {
	var out models.AdminUser
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/auth/me", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Users(ctx context.Context, token string) ([]models.AdminUser, error) {
	var out []models.AdminUser
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users", token: token, out: &out})
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, token string, user models.NewUser) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/users",
		token:    token,
		prepare:  func(r *resty.Request) { r.SetBody(user) },
	})
}

func (c *Client) ChangePassword(ctx context.Context, token string, change models.PasswordChange) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/users/change-password",
		token:    token,
		prepare:  func(r *resty.Request) { r.SetBody(change) },
	})
}

func (c *Client) CreateCategory(ctx context.Context, token string, in models.CategoryInput) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/categories",
		token:    token,
		prepare:  func(r *resty.Request) { r.SetBody(in) },
	})
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, in models.CategoryInput) error {
	return c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "/categories/{id}",
		token:    token,
		prepare: func(r *resty.Request) {
			r.SetPathParam("id", id).SetBody(in)
		},
	})
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/categories/{id}",
		token:    token,
		prepare:  func(r *resty.Request) { r.SetPathParam("id", id) },
	})
}

func (c *Client) CreateNews(ctx context.Context, token string, in models.NewsInput) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/news",
		token:    token,
		prepare:  func(r *resty.Request) { setNewsForm(r, in) },
	})
}

func (c *Client) UpdateNews(ctx context.Context, token, id string, in models.NewsInput) error {
	return c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "/news/{id}",
		token:    token,
		prepare: func(r *resty.Request) {
			r.SetPathParam("id", id)
			setNewsForm(r, in)
		},
	})
}

func (c *Client) DeleteNews(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/news/{id}",
		token:    token,
		prepare:  func(r *resty.Request) { r.SetPathParam("id", id) },
	})
}

// Upload stores an image through the backend and returns its public URL.
func (c *Client) Upload(ctx context.Context, token string, file models.Upload) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/upload",
		token:    token,
		prepare: func(r *resty.Request) {
			r.SetMultipartField("file", file.Filename, file.ContentType, file.Reader)
		},
		out: &out,
	})
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &Error{Status: http.StatusBadGateway, Message: "upload response carried no url"}
	}
	return out.URL, nil
}

func setNewsForm(r *resty.Request, in models.NewsInput) {
	fields := map[string]string{
		"title":       in.Title,
		"category_id": in.CategoryID,
		"excerpt":     in.Excerpt,
		"content":     in.Content,
		"is_featured": strconv.FormatBool(in.IsFeatured),
	}
	if in.ThumbnailFile == nil {
		fields["thumbnail"] = in.Thumbnail
	}
	r.SetMultipartFormData(fields)
	if f := in.ThumbnailFile; f != nil {
		r.SetMultipartField("thumbnail", f.Filename, f.ContentType, f.Reader)
	}
}
