package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bradfitz/iter"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/fields"
	"github.com/sanctra/sanctra/utils"
)

func testDashService(t *testing.T) *Service {
	t.Helper()
	db, err := utils.Database(filepath.Join(t.TempDir(), "dash.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&fields.Render{}); err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	return &Service{Db: db, Logger: logger}
}

func seedRenders(t *testing.T, s *Service, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		row := fields.Render{
			Site:       fmt.Sprintf("Site %d", i),
			Region:     "Nowhere",
			SampleRate: 22050,
			DurationS:  2.5,
			DurationMS: int64(10 + i),
			Seed:       int64(i),
			Bytes:      44 + i,
			RequestID:  fmt.Sprintf("req-%d", i),
			ClientIP:   "127.0.0.1",
		}
		if err := s.Db.Create(&row).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func dashEngine(s *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/dashboard/login", s.LoginHandler)
	engine.GET("/dashboard/renders", s.RendersLog)
	engine.GET("/dashboard/renders/:id", s.RenderByID)
	engine.GET("/dashboard/count", s.RendersCount)
	engine.GET("/dashboard/sites/top", s.TopSites)
	return engine
}

func getJSON(t *testing.T, engine *gin.Engine, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("bad json from %s: %v", path, err)
		}
	}
	return w
}

func TestRendersLog(t *testing.T) {
	s := testDashService(t)
	seedRenders(t, s, 60)
	engine := dashEngine(s)

	var resp struct {
		Result []fields.Render `json:"result"`
		Paging map[string]int  `json:"paging"`
	}
	if w := getJSON(t, engine, "/dashboard/renders", &resp); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Result) != 50 {
		t.Fatalf("page 1 rows = %d, want 50", len(resp.Result))
	}
	if resp.Result[0].ID != 60 || resp.Result[49].ID != 11 {
		t.Errorf("expected newest first: got ids %d..%d", resp.Result[0].ID, resp.Result[49].ID)
	}
	if resp.Paging["previous"] != 1 || resp.Paging["next"] != 2 {
		t.Errorf("paging = %v", resp.Paging)
	}

	resp.Result = nil
	if w := getJSON(t, engine, "/dashboard/renders?page=2", &resp); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Result) != 10 {
		t.Fatalf("page 2 rows = %d, want 10", len(resp.Result))
	}
	if resp.Result[0].ID != 10 {
		t.Errorf("page 2 should start at id 10, got %d", resp.Result[0].ID)
	}
}

func TestRenderByID(t *testing.T) {
	s := testDashService(t)
	seedRenders(t, s, 3)
	engine := dashEngine(s)

	var resp struct {
		Result fields.Render `json:"result"`
	}
	if w := getJSON(t, engine, "/dashboard/renders/2", &resp); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Result.Site != "Site 2" || resp.Result.Seed != 2 {
		t.Errorf("row = %+v", resp.Result)
	}

	w := getJSON(t, engine, "/dashboard/renders/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d, want 404", w.Code)
	}
	want := `{"code":"not_found","message":"render not found"}`
	if got := w.Body.String(); got != want {
		t.Errorf("missing id body = %s, want %s", got, want)
	}
}

func TestRendersCount(t *testing.T) {
	s := testDashService(t)
	seedRenders(t, s, 7)
	engine := dashEngine(s)

	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if w := getJSON(t, engine, "/dashboard/count", &resp); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Result.Count != 7 {
		t.Errorf("count = %d, want 7", resp.Result.Count)
	}
}

func TestTopSitesWithoutRedis(t *testing.T) {
	engine := dashEngine(testDashService(t))

	var resp struct {
		Result []map[string]any `json:"result"`
	}
	if w := getJSON(t, engine, "/dashboard/sites/top", &resp); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Result) != 0 {
		t.Errorf("expected empty list without redis, got %v", resp.Result)
	}
}

func TestBrowserDashboard(t *testing.T) {
	s := testDashService(t)
	seedRenders(t, s, 3)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	renderer := multitemplate.NewRenderer()
	renderer.AddFromFilesFuncs("dashboard", template.FuncMap{
		"N":    iter.N,
		"time": TimeFormatter,
		"inc":  func(i int) int { return i + 1 },
	}, "template/index.html")
	engine.HTMLRender = renderer
	engine.GET("/dashboard/", s.BrowserDashboard)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %q", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Site 3", "Site 1", "3 total", `<span class="current">1</span>`} {
		if !strings.Contains(body, want) {
			t.Errorf("page: missing %q", want)
		}
	}
}

func loginService(t *testing.T, password, totpSecret string) *Service {
	t.Helper()
	s := testDashService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s.SanctraConfig = fields.SanctraConfig{
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
		AdminTOTPSecret:   totpSecret,
	}
	auth := &gateway.JWTAuth{SanctraConfig: s.SanctraConfig, Key: []byte("test-dashboard-key")}
	s.Auth = auth
	return s
}

func postLogin(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	s := loginService(t, "hunter2xxx", "")
	engine := dashEngine(s)

	w := postLogin(t, engine, `{"username":"admin","password":"hunter2xxx"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %q", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	if _, err := s.Auth.VerifyJWT(resp.Token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}

	for name, body := range map[string]string{
		"wrong password": `{"username":"admin","password":"wrong"}`,
		"wrong user":     `{"username":"root","password":"hunter2xxx"}`,
	} {
		if w := postLogin(t, engine, body); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}

	if w := postLogin(t, engine, `{"username":"admin"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", w.Code)
	}
}

func TestLoginHandlerTOTP(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "sanctra", AccountName: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	s := loginService(t, "hunter2xxx", key.Secret())
	engine := dashEngine(s)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	w := postLogin(t, engine, `{"username":"admin","password":"hunter2xxx","otp":"`+code+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %q", w.Code, w.Body.String())
	}

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	if w := postLogin(t, engine, `{"username":"admin","password":"hunter2xxx","otp":"`+wrong+`"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad otp: status = %d, want 401", w.Code)
	}
}

func TestLoginHandlerUnconfigured(t *testing.T) {
	s := testDashService(t)
	engine := dashEngine(s)
	if w := postLogin(t, engine, `{"username":"admin","password":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
