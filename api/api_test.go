package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rpupo63/blogroll/database"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type stubIdentity map[string]*services.Identity

func (s stubIdentity) Verify(_ context.Context, email, password string) (*services.Identity, error) {
	identity, ok := s[email+":"+password]
	if !ok {
		return nil, errs.NewIdentityRejectedError(http.StatusForbidden)
	}
	return identity, nil
}

type stubFetcher map[string][]services.FeedEntry

func (s stubFetcher) Fetch(_ context.Context, feedURL string) ([]services.FeedEntry, []error) {
	entries, ok := s[feedURL]
	if !ok {
		return nil, []error{errs.NewNotFoundError("feed")}
	}
	return entries, nil
}

type testApp struct {
	handler http.Handler
	svc     *aggregator.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.Open(database.Config{
		Type:     "sqlite",
		DSN:      filepath.Join(t.TempDir(), "api.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	d := database.New(db)
	require.NoError(t, d.Migrate(context.Background()))

	identity := stubIdentity{
		"a@x.com:pw": {FirstName: "Ada", LastName: "Lovelace", HSID: 1, Image: "https://img/ada.png"},
		"b@x.com:pw": {FirstName: "Bob", LastName: "Barker", HSID: 2, Image: "https://img/bob.png"},
	}
	fetcher := stubFetcher{
		"http://example.com/atom.xml": {
			{Link: "http://example.com/one", Title: "First &amp; best", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Link: "http://example.com/two", Title: "Second post", Published: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	svc := aggregator.New(d, identity, fetcher, aggregator.Options{SiteURL: "http://blogroll.test"})

	router, err := newRouter(svc, withConfig(map[string]string{
		"SESSION_SECRET": "test-secret",
		"SITE_URL":       "http://blogroll.test",
	}))
	require.NoError(t, err)

	return &testApp{handler: router, svc: svc}
}

func (a *testApp) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

// signUp creates the account and returns its session cookie.
func (a *testApp) signUp(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := a.do(http.MethodPost, "/create_account", url.Values{"email": {email}, "password": {"pw"}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/add_blog", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie
}

func TestPagesRequireSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/new", "/add_blog", "/item/ABC123", "/profile/1"} {
		rec := app.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/log_in?next="+url.QueryEscape(path), rec.Header().Get("Location"), path)
	}

	rec := app.do(http.MethodGet, "/feed", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodGet, "/new", nil, &http.Cookie{Name: sessionCookieName, Value: "forged.token.value"})
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = app.do(http.MethodGet, "/", nil)
	assert.Equal(t, "/new", rec.Header().Get("Location"))
}

func TestLogIn(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "a@x.com")

	t.Run("form renders", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/log_in?next=/item/XYZ", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="next" value="/item/XYZ"`)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/log_in", url.Values{"email": {"nobody@x.com"}, "password": {"pw"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "/create_account")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/log_in", url.Values{"email": {"a@x.com"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Auth Failed!")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("missing password", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/log_in", url.Values{"email": {"a@x.com"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password")
	})

	t.Run("success goes to the timeline", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/log_in", url.Values{"email": {"a@x.com"}, "password": {"pw"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/new", rec.Header().Get("Location"))
		assert.NotNil(t, sessionCookie(rec))
	})

	t.Run("success honours a local next", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/log_in", url.Values{"email": {"a@x.com"}, "password": {"pw"}, "next": {"/item/XYZ"}})
		assert.Equal(t, "/item/XYZ", rec.Header().Get("Location"))

		rec = app.do(http.MethodPost, "/log_in", url.Values{"email": {"a@x.com"}, "password": {"pw"}, "next": {"//evil.test/"}})
		assert.Equal(t, "/new", rec.Header().Get("Location"))
	})
}

func TestCreateAccount(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "a@x.com")

	rec := app.do(http.MethodPost, "/create_account", url.Values{"email": {"a@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "/log_in")

	rec = app.do(http.MethodPost, "/create_account", url.Values{"email": {"c@x.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "(403)")
}

func TestBlogTimelineAndFeed(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp(t, "a@x.com")

	rec := app.do(http.MethodPost, "/add_blog", url.Values{"feed_url": {""}}, ada)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "I didn't get your feed URL")

	rec = app.do(http.MethodPost, "/add_blog", url.Values{"feed_url": {"example.com/atom.xml"}}, ada)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/new", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/new", nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Second post")
	assert.Contains(t, body, "Ada Lovelace")
	assert.Less(t, strings.Index(body, "Second post"), strings.Index(body, "First &amp;amp; best"))

	rec = app.do(http.MethodGet, "/feed", nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "http://blogroll.test/item/")
	assert.Contains(t, rec.Body.String(), "http://example.com/two")

	rec = app.do(http.MethodGet, "/profile/1", nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://example.com/")
	assert.Contains(t, rec.Body.String(), "Refresh your profile")
}

func TestItemComments(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp(t, "a@x.com")
	bob := app.signUp(t, "b@x.com")
	rec := app.do(http.MethodPost, "/add_blog", url.Values{"feed_url": {"http://example.com/atom.xml"}}, ada)
	require.Equal(t, http.StatusFound, rec.Code)

	posts, err := app.svc.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	path := "/item/" + posts[0].Slug

	rec = app.do(http.MethodPost, path, url.Values{"content": {""}}, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No comments yet.")

	rec = app.do(http.MethodPost, path, url.Values{"content": {"hi <b>there</b>"}}, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "hi &lt;b&gt;there&lt;/b&gt;")
	assert.Contains(t, body, `href="/profile/2">Bob</a>`)

	rec = app.do(http.MethodGet, path, nil, ada)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hi &lt;b&gt;there&lt;/b&gt;")

	rec = app.do(http.MethodGet, "/item/NOPE00", nil, ada)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodPost, "/item/NOPE00", url.Values{"content": {"hello"}}, ada)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp(t, "a@x.com")
	bob := app.signUp(t, "b@x.com")

	rec := app.do(http.MethodPost, "/profile/1", url.Values{"github": {"hijack"}}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/profile/1", nil, bob)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Refresh your profile")

	rec = app.do(http.MethodPost, "/profile/1", url.Values{"github": {"ada"}}, ada)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://github.com/ada")

	rec = app.do(http.MethodGet, "/profile/999", nil, ada)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(http.MethodGet, "/profile/abc", nil, ada)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogOut(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp(t, "a@x.com")

	rec := app.do(http.MethodPost, "/log_out", nil, ada)
	assert.Equal(t, http.StatusFound, rec.Code)
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestSessionManager(t *testing.T) {
	m := newSessionManager("secret", time.Hour, false)
	rec := httptest.NewRecorder()
	require.NoError(t, m.issue(rec, 42))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	userID, err := m.read(req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	other := newSessionManager("other-secret", time.Hour, false)
	_, err = other.read(req)
	assert.Error(t, err)

	expired := newSessionManager("secret", -time.Minute, false)
	rec = httptest.NewRecorder()
	require.NoError(t, expired.issue(rec, 42))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: rec.Result().Cookies()[0].Value})
	_, err = m.read(req)
	assert.Error(t, err)
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/item/x", localPath("/item/x", "/new"))
	assert.Equal(t, "/new", localPath("http://evil.test/", "/new"))
	assert.Equal(t, "/new", localPath("//evil.test/", "/new"))
	assert.Equal(t, "/new", localPath("", "/new"))
}
