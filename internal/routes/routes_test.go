package routes

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/filecab/filecab/internal/app"
	"github.com/filecab/filecab/internal/config"
	"github.com/filecab/filecab/internal/db"
	"github.com/filecab/filecab/internal/repository"
	"github.com/filecab/filecab/internal/service"
	"github.com/filecab/filecab/internal/session"
	"github.com/filecab/filecab/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUploader stands in for S3 so the HTTP flow can run without external
// storage. It echoes back the metadata the real adapter would report.
type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) Upload(name string, size int64, file io.Reader) (*storage.Upload, error) {
	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return nil, err
	}
	f.uploads++
	return &storage.Upload{
		Name: name,
		Size: n,
		URL:  fmt.Sprintf("https://files.test/uploads/%s", name),
	}, nil
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	userRepository := repository.NewUserRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)

	sessions := session.NewManager(session.NewStore(database), userRepository, session.Config{
		TTL:           time.Hour,
		SweepInterval: time.Minute,
		CookieName:    "filecab_session",
	})

	return &app.App{
		Cfg: &config.Config{
			AppName: "Filecab",
			AppEnv:  "development",
		},
		DB:          database,
		Sessions:    sessions,
		AuthService: service.NewAuthService(userRepository, sessions),
		FileService: service.NewFileService(folderRepository, fileRepository),
		Uploader:    &fakeUploader{},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, *app.App) {
	t.Helper()

	application := newTestApp(t)
	server := httptest.NewServer(SetupRoutes(application))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{Jar: jar}
	return server, client, application
}

// noRedirect returns a client sharing the jar that reports redirects instead
// of following them.
func noRedirect(client *http.Client) *http.Client {
	return &http.Client{
		Jar: client.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func register(t *testing.T, client *http.Client, base, name, email, password string) {
	t.Helper()

	resp, err := client.PostForm(base+"/auth/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func login(t *testing.T, client *http.Client, base, email, password string) {
	t.Helper()

	resp, err := client.PostForm(base+"/auth/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasSuffix(resp.Request.URL.Path, "/dashboard"))
}

func uploadFile(t *testing.T, client *http.Client, base, filename, contents string, folderID *int64) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folderID != nil {
		require.NoError(t, mw.WriteField("folderId", strconv.FormatInt(*folderID, 10)))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, base+"/files/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestProtectedRoutesRedirectAnonymousUsers(t *testing.T) {
	server, client, _ := newTestServer(t)
	direct := noRedirect(client)

	for _, path := range []string{"/dashboard", "/files", "/files/upload"} {
		resp, err := direct.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/auth?mode=login", resp.Header.Get("Location"), path)
	}
}

func TestHomePageIsPublic(t *testing.T) {
	server, client, _ := newTestServer(t)

	resp, err := client.Get(server.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Filecab")
}

func TestLoginWithBadCredentialsStaysOnLoginPage(t *testing.T) {
	server, client, _ := newTestServer(t)

	register(t, client, server.URL, "Alice", "alice@example.com", "password123")

	resp, err := noRedirect(client).PostForm(server.URL+"/auth/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrongpassword"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth?mode=login", resp.Header.Get("Location"))
}

func TestRegisterLoginUploadAndBrowse(t *testing.T) {
	server, client, application := newTestServer(t)

	register(t, client, server.URL, "Alice", "alice@example.com", "password123")
	login(t, client, server.URL, "alice@example.com", "password123")

	// Logged-in users are kept off the auth page.
	resp, err := noRedirect(client).Get(server.URL + "/auth?mode=login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, err = client.PostForm(server.URL+"/files/folder", url.Values{"folderName": {"Receipts"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	alice, err := repository.NewUserRepository(application.DB).ByEmail("alice@example.com")
	require.NoError(t, err)
	folders, err := application.FileService.Folders(alice.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)

	resp = uploadFile(t, client, server.URL, "a.pdf", "pdf bytes", &folders[0].ID)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = uploadFile(t, client, server.URL, "b.txt", "text bytes", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(server.URL + "/dashboard")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Receipts")
	assert.Contains(t, body, "a.pdf")
	assert.Contains(t, body, "b.txt")

	resp, err = client.Get(server.URL + "/files")
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Contains(t, body, "a.pdf")
	assert.Contains(t, body, "b.txt")
}

func TestUploadIntoForeignFolderIsNotFound(t *testing.T) {
	server, client, application := newTestServer(t)

	register(t, client, server.URL, "Alice", "alice@example.com", "password123")
	login(t, client, server.URL, "alice@example.com", "password123")

	resp, err := client.PostForm(server.URL+"/files/folder", url.Values{"folderName": {"Receipts"}})
	require.NoError(t, err)
	resp.Body.Close()

	alice, err := repository.NewUserRepository(application.DB).ByEmail("alice@example.com")
	require.NoError(t, err)
	folders, err := application.FileService.Folders(alice.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	folderID := folders[0].ID

	resp, err = client.Get(server.URL + "/auth/logout")
	require.NoError(t, err)
	resp.Body.Close()

	register(t, client, server.URL, "Bob", "bob@example.com", "password123")
	login(t, client, server.URL, "bob@example.com", "password123")

	// Bob guessing Alice's folder id gets a 404, same as a folder that never
	// existed.
	resp = uploadFile(t, client, server.URL, "x.txt", "payload", &folderID)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	missing := int64(99999)
	resp = uploadFile(t, client, server.URL, "x.txt", "payload", &missing)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice's folder is untouched.
	folders, err = application.FileService.FoldersWithFiles(alice.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Empty(t, folders[0].Files)
}

func TestFolderRenameAndDeleteOverHTTP(t *testing.T) {
	server, client, application := newTestServer(t)

	register(t, client, server.URL, "Alice", "alice@example.com", "password123")
	login(t, client, server.URL, "alice@example.com", "password123")

	resp, err := client.PostForm(server.URL+"/files/folder", url.Values{"folderName": {"Receipts"}})
	require.NoError(t, err)
	resp.Body.Close()

	alice, err := repository.NewUserRepository(application.DB).ByEmail("alice@example.com")
	require.NoError(t, err)
	folders, err := application.FileService.Folders(alice.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	folderID := folders[0].ID

	resp, err = client.PostForm(fmt.Sprintf("%s/files/folder/update/%d", server.URL, folderID), url.Values{"newName": {"Invoices"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	folders, err = application.FileService.Folders(alice.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Invoices", folders[0].Name)

	resp, err = client.PostForm(fmt.Sprintf("%s/files/folder/delete/%d", server.URL, folderID), url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	folders, err = application.FileService.Folders(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestLogoutEndsTheSession(t *testing.T) {
	server, client, _ := newTestServer(t)

	register(t, client, server.URL, "Alice", "alice@example.com", "password123")
	login(t, client, server.URL, "alice@example.com", "password123")

	resp, err := client.Get(server.URL + "/auth/logout")
	require.NoError(t, err)
	resp.Body.Close()

	direct := noRedirect(client)
	resp, err = direct.Get(server.URL + "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth?mode=login", resp.Header.Get("Location"))
}
