package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visiobyte/inkwell/internal/app"
	"github.com/visiobyte/inkwell/internal/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8080")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_CONNECTION", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")

	application, err := app.New(config.Load())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	server := httptest.NewServer(SetupRoutes(application))
	t.Cleanup(server.Close)
	return server, application
}

func postJSON(t *testing.T, client *http.Client, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func getJSON(t *testing.T, client *http.Client, url string, out any) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp
}

func TestFullUserJourney(t *testing.T) {
	server, application := newTestServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	// Register
	resp, _ := postJSON(t, client, server.URL+"/auth/register", map[string]string{
		"username":         "dana",
		"email":            "dana@example.com",
		"password":         "a-decent-secret",
		"confirm_password": "a-decent-secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Login before verification is refused
	resp, _ = postJSON(t, client, server.URL+"/auth/login", map[string]string{
		"email":    "dana@example.com",
		"password": "a-decent-secret",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Read the code out of the database, standing in for the email
	var code string
	err = application.DB.Get(&code, `SELECT token FROM auth_tokens WHERE used_at IS NULL ORDER BY created_at DESC LIMIT 1`)
	require.NoError(t, err)

	resp, _ = postJSON(t, client, server.URL+"/auth/verify-email", map[string]string{
		"email": "dana@example.com",
		"code":  code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Login sets the auth cookie
	resp, _ = postJSON(t, client, server.URL+"/auth/login", map[string]string{
		"email":    "dana@example.com",
		"password": "a-decent-secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Publish a post
	resp, created := postJSON(t, client, server.URL+"/posts", map[string]string{
		"title":    "My First Post",
		"content":  "# Hello\n\nSome content.",
		"category": "journal",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := created["id"].(string)
	postSlug := created["slug"].(string)
	assert.Equal(t, "my-first-post", postSlug)

	// Like it
	resp, likeBody := postJSON(t, client, server.URL+"/posts/"+postID+"/like", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, likeBody["liked"])

	// Comment on it
	resp, _ = postJSON(t, client, server.URL+"/posts/"+postID+"/comments", map[string]string{
		"content": "first!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The public view reflects the engagement
	var shown map[string]any
	resp = getJSON(t, client, server.URL+"/posts/"+postSlug, &shown)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), shown["likes"])

	// The profile aggregates it
	var profile map[string]any
	resp = getJSON(t, client, server.URL+"/users/dana", &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), profile["total_likes"])
	assert.Equal(t, float64(1), profile["total_comments"])

	// Delete cascades; the post and its engagement disappear
	req, err := http.NewRequest(http.MethodDelete, server.URL+"/posts/"+postID, nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, client, server.URL+"/posts/"+postSlug, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, client, server.URL+"/users/dana", &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), profile["total_likes"])
}

func TestAuthRequiredForWrites(t *testing.T) {
	server, _ := newTestServer(t)
	client := &http.Client{}

	resp, err := client.Post(server.URL+"/posts", "application/json", bytes.NewReader([]byte(`{"title":"x","content":"y"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/profile", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
