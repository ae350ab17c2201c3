package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/internal/assistant"
	"placement/internal/auth"
	"placement/internal/config"
	"placement/internal/jobfeed"
	"placement/internal/portal"
	"placement/internal/resume"
	"placement/internal/store"
	"placement/internal/web/flash"
)

type stubCompleter struct {
	answer string
	err    error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.answer, s.err }

type env struct {
	t      *testing.T
	srv    *Server
	router *gin.Engine
	db     *store.DB
	cfg    config.App
}

func newEnv(t *testing.T, completer assistant.Completer) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	db, err := store.NewDB(filepath.Join(dir, "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	cfg := config.App{
		Env:            "test",
		SecretKey:      "test-secret",
		SessionTTL:     time.Hour,
		MaxUploadBytes: 64 << 10,
		ResumeDir:      filepath.Join(dir, "resumes"),
		ProfilePicDir:  filepath.Join(dir, "profile_pics"),
	}
	repo := portal.NewRepository(db.Client)
	resumes := portal.NewResumes(repo)
	srv, err := NewServer(Deps{
		Config:       cfg,
		DB:           db,
		Accounts:     portal.NewAccounts(repo),
		Board:        portal.NewBoard(repo),
		Applications: portal.NewApplications(repo),
		Feedback:     portal.NewFeedback(repo),
		ChatLogs:     portal.NewChatLogs(repo),
		Reports:      portal.NewReports(repo),
		Resumes:      resumes,
		Intake:       resume.NewIntake(cfg.ResumeDir, resumes),
		Jobs:         jobfeed.New(jobfeed.Config{}, nil),
		Assistant: assistant.New(completer, assistant.RetryConfig{
			MaxRetries: 1, InitialWait: time.Millisecond, Multiplier: 2,
		}),
		Avatars: LocalAvatars{Dir: cfg.ProfilePicDir},
	})
	require.NoError(t, err)
	return &env{t: t, srv: srv, router: srv.Router(), db: db, cfg: cfg}
}

func (e *env) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func (e *env) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (e *env) count(table string) int {
	var n int
	require.NoError(e.t, e.db.Client.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func (e *env) register(username, role string) {
	w := e.postForm("/register", url.Values{
		"username": {username}, "email": {username + "@college.edu"}, "password": {"pw-" + username}, "role": {role},
	})
	require.Equal(e.t, http.StatusFound, w.Code)
	require.Equal(e.t, "/login", w.Header().Get("Location"))
}

func (e *env) admin(username string) {
	_, err := e.srv.Accounts.Register(context.Background(), portal.RegisterInput{
		Username: username, Email: username + "@college.edu", Password: "pw-" + username, Role: "admin",
	})
	require.NoError(e.t, err)
}

func (e *env) login(username string) *http.Cookie {
	w := e.postForm("/login", url.Values{"email": {username + "@college.edu"}, "password": {"pw-" + username}})
	require.Equal(e.t, http.StatusFound, w.Code)
	c := cookie(w, auth.CookieName)
	require.NotNil(e.t, c, "login must set the session cookie")
	return c
}

func (e *env) placement(company string) int64 {
	id, err := e.srv.Board.Create(context.Background(), portal.Placement{Company: company, Role: "Engineer", Location: "Pune",
		Description: "Build services."})
	require.NoError(e.t, err)
	return id
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			found = c
		}
	}
	return found
}

func flashes(t *testing.T, w *httptest.ResponseRecorder) []flash.Message {
	t.Helper()
	c := cookie(w, "flash")
	if c == nil {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	require.NoError(t, err)
	var msgs []flash.Message
	require.NoError(t, json.Unmarshal(raw, &msgs))
	return msgs
}

func TestRegisterDuplicateWarns(t *testing.T) {
	e := newEnv(t, nil)
	e.register("asha", "")

	w := e.postForm("/register", url.Values{"username": {"asha"}, "email": {"x@college.edu"}, "password": {"p"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	msgs := flashes(t, w)
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Warning, msgs[0].Category)
	assert.Equal(t, "Username or email already exists.", msgs[0].Text)
	assert.Equal(t, 1, e.count("users"))
}

func TestPublicRegisterCannotCreateAdmin(t *testing.T) {
	e := newEnv(t, nil)
	w := e.postForm("/register", url.Values{
		"username": {"mallory"}, "email": {"mallory@college.edu"}, "password": {"p"}, "role": {"admin"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	assert.Equal(t, flash.Danger, flashes(t, w)[0].Category)
	assert.Zero(t, e.count("users"))

	w = e.get("/register")
	assert.NotContains(t, w.Body.String(), `value="admin"`)

	e.srv.Config.AllowAdminSignup = true
	e.register("tpo", "admin")
	w = e.postForm("/login", url.Values{"email": {"tpo"}, "password": {"pw-tpo"}})
	assert.Equal(t, "/admin_dashboard", w.Header().Get("Location"))
}

func TestLoginWrongPasswordSetsNoSession(t *testing.T) {
	e := newEnv(t, nil)
	e.register("ravi", "student")

	w := e.postForm("/login", url.Values{"email": {"ravi"}, "password": {"nope"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, cookie(w, auth.CookieName))
	assert.Equal(t, "Invalid credentials!", flashes(t, w)[0].Text)

	w = e.postForm("/login", url.Values{"email": {"ravi"}, "password": {"pw-ravi"}})
	assert.Equal(t, "/student_dashboard", w.Header().Get("Location"))
	session := cookie(w, auth.CookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = e.get("/student_dashboard", session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome, ravi")
}

func TestAdminLandsOnAdminDashboard(t *testing.T) {
	e := newEnv(t, nil)
	e.admin("tpo")
	e.register("asha", "student")

	w := e.postForm("/login", url.Values{"email": {"tpo"}, "password": {"pw-tpo"}})
	assert.Equal(t, "/admin_dashboard", w.Header().Get("Location"))
	admin := cookie(w, auth.CookieName)

	w = e.get("/admin_dashboard", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.get("/reports", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Success rate: 0.00%")

	student := e.login("asha")
	w = e.get("/admin_dashboard", student)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Access denied!", flashes(t, w)[0].Text)

	w = e.get("/manage_students")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestApplyTwiceWarns(t *testing.T) {
	e := newEnv(t, nil)
	e.register("asha", "")
	session := e.login("asha")
	pid := e.placement("Google")
	path := "/apply/" + itoa(pid)

	w := e.postForm(path, nil, session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, flash.Success, flashes(t, w)[0].Category)

	w = e.postForm(path, nil, session)
	assert.Equal(t, http.StatusFound, w.Code)
	msgs := flashes(t, w)
	require.Len(t, msgs, 1)
	assert.Equal(t, flash.Warning, msgs[0].Category)
	assert.Equal(t, "You have already applied for this placement.", msgs[0].Text)
	assert.Equal(t, 1, e.count("applications"))

	w = e.get("/placements", session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Applied")

	w = e.postForm(path, nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAdminManagesApplications(t *testing.T) {
	e := newEnv(t, nil)
	e.admin("tpo")
	e.register("asha", "")
	admin, student := e.login("tpo"), e.login("asha")

	w := e.postForm("/manage_placements", url.Values{"company": {"Infosys"}, "role": {"Java Developer"}, "location": {"Hyderabad"}}, admin)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, e.count("placements"))

	var pid int64
	require.NoError(t, e.db.Client.QueryRow(`SELECT id FROM placements`).Scan(&pid))
	e.postForm("/apply/"+itoa(pid), nil, student)

	var appID int64
	require.NoError(t, e.db.Client.QueryRow(`SELECT id FROM applications`).Scan(&appID))

	w = e.postForm("/update_status/"+itoa(appID), url.Values{"status": {"Shortlisted"}}, admin)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, flash.Success, flashes(t, w)[0].Category)

	w = e.postForm("/update_status/"+itoa(appID), url.Values{"status": {"Hired"}}, admin)
	assert.Equal(t, flash.Warning, flashes(t, w)[0].Category)

	var status string
	require.NoError(t, e.db.Client.QueryRow(`SELECT status FROM applications WHERE id = $1`, appID).Scan(&status))
	assert.Equal(t, "Shortlisted", status)

	for _, path := range []string{"/view_applications/" + itoa(pid), "/admin/applications", "/manage_students",
		"/manage_placements", "/edit_placement/" + itoa(pid)} {
		w = e.get(path, admin)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	var uid int64
	require.NoError(t, e.db.Client.QueryRow(`SELECT id FROM users WHERE username = 'asha'`).Scan(&uid))
	for _, path := range []string{"/students/edit_student/" + itoa(uid), "/students/student_resumes/" + itoa(uid),
		"/students/" + itoa(uid) + "/applications"} {
		w = e.get(path, admin)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = e.postForm("/delete_placement/"+itoa(pid), nil, admin)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, e.count("applications"))

	w = e.postForm("/students/delete/"+itoa(uid), nil, admin)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, e.count("users"))
}

func multipartBody(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestResumeReviewRejectsExecutable(t *testing.T) {
	e := newEnv(t, nil)
	body, ct := multipartBody(t, "resume", "cv.exe", []byte("MZ"), nil)
	req := httptest.NewRequest(http.MethodPost, "/resume_review", body)
	req.Header.Set("Content-Type", ct)
	w := e.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"File type not allowed"}`, w.Body.String())
	assert.Zero(t, e.count("resumes"))
	_, err := os.Stat(e.cfg.ResumeDir)
	assert.True(t, os.IsNotExist(err))

	body, ct = multipartBody(t, "", "", nil, map[string]string{"x": "y"})
	req = httptest.NewRequest(http.MethodPost, "/resume_review", body)
	req.Header.Set("Content-Type", ct)
	w = e.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No file selected"}`, w.Body.String())
}

func TestResumeReviewAccepted(t *testing.T) {
	e := newEnv(t, nil)
	body, ct := multipartBody(t, "resume", "cv.txt", []byte("Education\nSkills: Go, SQL\nasha@college.edu"), nil)
	req := httptest.NewRequest(http.MethodPost, "/resume_review", body)
	req.Header.Set("Content-Type", ct)
	w := e.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Result resume.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.HasEmail)
	assert.Contains(t, resp.Result.SectionsFound, "education")
	assert.Equal(t, 1, e.count("resumes"))
}

func TestBodyLimit(t *testing.T) {
	e := newEnv(t, nil)
	body, ct := multipartBody(t, "resume", "big.txt", bytes.Repeat([]byte("a"), 128<<10), nil)
	req := httptest.NewRequest(http.MethodPost, "/resume_review", body)
	req.Header.Set("Content-Type", ct)
	w := e.do(req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, e.count("resumes"))
}

func askJSON(e *env, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, cookies...)
}

func TestAskNotConfigured(t *testing.T) {
	e := newEnv(t, nil)
	w := askJSON(e, "/ask", `{"question":"How do I prepare?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"LLM not configured"}`, w.Body.String())

	w = askJSON(e, "/ask", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.get("/ask")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestAskAnswersAndLogs(t *testing.T) {
	e := newEnv(t, stubCompleter{answer: "Practice aptitude daily."})
	e.register("asha", "")
	session := e.login("asha")

	w := askJSON(e, "/ask", `{"question":"I am asha@college.edu, tips?"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Practice aptitude daily."}`, w.Body.String())

	var stored string
	require.NoError(t, e.db.Client.QueryRow(`SELECT message FROM chat_logs WHERE role = 'user'`).Scan(&stored))
	assert.Equal(t, "I am [REDACTED_EMAIL], tips?", stored)
	assert.Equal(t, 2, e.count("chat_logs"))

	w = askJSON(e, "/chat", `{"message":"anonymous question"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, e.count("chat_logs"), "anonymous chats are not stored")
}

func TestAskUpstreamFailure(t *testing.T) {
	e := newEnv(t, stubCompleter{err: errors.New("boom")})
	w := askJSON(e, "/ask", `{"question":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"LLM request failed after retries: boom"}`, w.Body.String())
}

type hangingCompleter struct{}

func (hangingCompleter) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAskHangingUpstreamRepliesWithinWriteTimeout(t *testing.T) {
	e := newEnv(t, hangingCompleter{})
	const writeTimeout = time.Second
	e.srv.Config.WriteTimeout = writeTimeout

	ts := httptest.NewUnstartedServer(e.router)
	ts.Config.WriteTimeout = writeTimeout
	ts.Start()
	defer ts.Close()

	start := time.Now()
	resp, err := ts.Client().Post(ts.URL+"/ask", "application/json", strings.NewReader(`{"question":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body["error"], "LLM request failed after retries"), body["error"])
	assert.Less(t, time.Since(start), writeTimeout)
}

func TestAskBudget(t *testing.T) {
	assert.Equal(t, 28*time.Second, askBudget(30*time.Second))
	assert.Equal(t, 450*time.Millisecond, askBudget(500*time.Millisecond))
	assert.Zero(t, askBudget(0))
}

func TestSearchAPIAndJobs(t *testing.T) {
	e := newEnv(t, nil)
	e.placement("Google")
	e.placement("Zomato")

	w := e.get("/api/search_placements?q=goo")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results []portal.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Google", resp.Results[0].Company)
	assert.Equal(t, "Engineer", resp.Results[0].Title)

	w = e.get("/api/jobs?q=go")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jobs":[]}`, w.Body.String())
}

func TestRateRequiresLoginAndValidates(t *testing.T) {
	e := newEnv(t, nil)
	w := e.postForm("/rate", url.Values{"rating": {"5"}})
	assert.Equal(t, "/login", w.Header().Get("Location"))

	e.register("asha", "")
	session := e.login("asha")
	w = e.postForm("/rate", url.Values{"rating": {"9"}}, session)
	assert.Equal(t, "Invalid rating. Please select between 1 and 5 stars.", flashes(t, w)[0].Text)
	assert.Zero(t, e.count("feedback"))

	w = e.postForm("/rate", url.Values{"rating": {"4"}, "comment": {"useful"}}, session)
	assert.Equal(t, flash.Success, flashes(t, w)[0].Category)

	w = e.get("/rate")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "useful")
}

func TestProfileUploads(t *testing.T) {
	e := newEnv(t, nil)
	e.register("asha", "")
	session := e.login("asha")
	fields := map[string]string{"username": "asha", "email": "asha@college.edu", "skills": "go"}

	body, ct := multipartBody(t, "profile_pic", "me.exe", []byte("x"), fields)
	req := httptest.NewRequest(http.MethodPost, "/profile", body)
	req.Header.Set("Content-Type", ct)
	w := e.do(req, session)
	assert.Equal(t, flash.Warning, flashes(t, w)[0].Category)

	body, ct = multipartBody(t, "profile_pic", "me.png", []byte("png"), fields)
	req = httptest.NewRequest(http.MethodPost, "/profile", body)
	req.Header.Set("Content-Type", ct)
	w = e.do(req, session)
	assert.Equal(t, flash.Success, flashes(t, w)[0].Category)

	var pic string
	require.NoError(t, e.db.Client.QueryRow(`SELECT profile_pic FROM users WHERE username = 'asha'`).Scan(&pic))
	assert.True(t, strings.HasSuffix(pic, "_me.png"))

	w = e.get("/uploads/profile_pics/"+pic, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = e.get("/uploads/profile_pics/"+pic)
	assert.Equal(t, http.StatusFound, w.Code, "uploads require login")
	w = e.get("/uploads/resumes/missing.pdf", session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUpdateFailureDiscardsUploads(t *testing.T) {
	e := newEnv(t, nil)
	e.register("asha", "")
	e.register("ravi", "")
	session := e.login("asha")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"username": "ravi", "email": "asha@college.edu"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range map[string]string{"profile_pic": "me.png", "resume": "cv.pdf"} {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(req, session)

	assert.Equal(t, "Username or email already exists.", flashes(t, w)[0].Text)
	for _, dir := range []string{e.cfg.ProfilePicDir, e.cfg.ResumeDir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, dir)
	}
}

func TestHealthzAndNotFound(t *testing.T) {
	e := newEnv(t, nil)
	w := e.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","db":true}`, w.Body.String())

	w = e.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
