package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/docdrop/pkg/configs"
	"github.com/yeisme/docdrop/pkg/internal/model"
	"github.com/yeisme/docdrop/pkg/internal/storage"
	"github.com/yeisme/docdrop/pkg/middleware"
	"github.com/yeisme/docdrop/pkg/web"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

var uploadsHrefRe = regexp.MustCompile(`href="(/uploads/[^"]+)"`)

// newTestServer 以临时目录和独立 SQLite 库搭起完整 HTTP 栈.
func newTestServer(t *testing.T, maxUploadMB int) (*gin.Engine, *storage.Manager) {
	t.Helper()

	dir := t.TempDir()
	cfgYAML := fmt.Sprintf(`db:
  type: sqlite
  database: "%s"
store:
  upload_dir: "%s"
  qrcode_dir: "%s"
  max_upload_mb: %d
  external_base: "http://localhost:5000"
`,
		filepath.Join(dir, "docdrop_test"),
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "qrcodes"),
		maxUploadMB,
	)

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	if err := configs.InitConfig(cfgPath); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	mgr, err := storage.New(t.Context(), configs.GetConfig())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}

	t.Cleanup(func() { _ = mgr.Close() })

	if err := mgr.GetDBClient().GetDB().AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.SetHTMLTemplate(web.Templates())
	engine.Use(gin.Recovery(), middleware.StorageMiddleware(mgr))

	return RegisterGroup(engine), mgr
}

// multipartBody 构造登记表单请求体.
func multipartBody(t *testing.T, name, email, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", name); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}

	if email != "" {
		if err := w.WriteField("email", email); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}

	fw, err := w.CreateFormFile("document", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}

	if _, err := fw.Write(content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func doRegister(t *testing.T, engine *gin.Engine, name, email, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, name, email, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec
}

func TestRegisterFlowRoundTrip(t *testing.T) {
	engine, _ := newTestServer(t, 10)

	rec := doRegister(t, engine, "Alice", "alice@example.com", "report.pdf", pdfContent)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /register = %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/qr/") {
		t.Fatalf("unexpected redirect target %q", location)
	}

	token := strings.TrimPrefix(location, "/qr/")

	// 确认页包含二维码图片与访问链接
	qrPage := get(engine, location)
	if qrPage.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", location, qrPage.Code)
	}

	if !strings.Contains(qrPage.Body.String(), "/qrcodes/"+token+".png") {
		t.Fatal("qr page does not reference the qr image")
	}

	// 二维码图片可访问且是 PNG
	qrImg := get(engine, "/qrcodes/"+token+".png")
	if qrImg.Code != http.StatusOK {
		t.Fatalf("GET qr image = %d", qrImg.Code)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	if !bytes.HasPrefix(qrImg.Body.Bytes(), pngMagic) {
		t.Fatal("qr image is not a PNG")
	}

	// 文档页可按令牌访问
	docPage := get(engine, "/d/"+token)
	if docPage.Code != http.StatusOK {
		t.Fatalf("GET /d/%s = %d", token, docPage.Code)
	}

	m := uploadsHrefRe.FindStringSubmatch(docPage.Body.String())
	if m == nil {
		t.Fatal("document page does not link the stored file")
	}

	// 取回的文档与上传内容逐字节一致
	fileRes := get(engine, m[1])
	if fileRes.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", m[1], fileRes.Code)
	}

	got, err := io.ReadAll(fileRes.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, pdfContent) {
		t.Fatal("served document differs from upload")
	}
}

func TestUnknownTokenIs404(t *testing.T) {
	engine, _ := newTestServer(t, 10)

	rec := get(engine, "/d/does-not-exist")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /d/<unknown> = %d, want 404", rec.Code)
	}
}

func TestRejectUnsupportedTypeLeavesNoTrace(t *testing.T) {
	engine, mgr := newTestServer(t, 10)

	rec := doRegister(t, engine, "Eve", "", "payload.exe", []byte("MZ\x90\x00"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("POST /register = %d, want 415", rec.Code)
	}

	assertNoTrace(t, mgr)
}

func TestRejectTooLargeLeavesNoTrace(t *testing.T) {
	engine, mgr := newTestServer(t, 1)

	big := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, bytes.Repeat([]byte{0xAB}, 1<<20)...)

	rec := doRegister(t, engine, "Big", "", "big.png", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("POST /register = %d, want 413", rec.Code)
	}

	assertNoTrace(t, mgr)
}

func TestRegisterValidationFails(t *testing.T) {
	engine, mgr := newTestServer(t, 10)

	rec := doRegister(t, engine, "", "", "doc.pdf", pdfContent)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /register without name = %d, want 400", rec.Code)
	}

	// 失败时带错误信息重新渲染登记表单
	if !strings.Contains(rec.Body.String(), `action="/register"`) {
		t.Fatal("rejection response does not re-render the registration form")
	}

	if !strings.Contains(rec.Body.String(), `class="error"`) {
		t.Fatal("rejection response does not show an error message")
	}

	assertNoTrace(t, mgr)
}

func TestWhitespaceNameIsRejected(t *testing.T) {
	engine, mgr := newTestServer(t, 10)

	rec := doRegister(t, engine, "   ", "", "doc.pdf", pdfContent)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /register with blank name = %d, want 400", rec.Code)
	}

	assertNoTrace(t, mgr)
}

func TestIndexListsRegisteredUsers(t *testing.T) {
	engine, _ := newTestServer(t, 10)

	doRegister(t, engine, "Listed User", "", "doc.pdf", pdfContent)

	rec := get(engine, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "Listed User") {
		t.Fatal("index page does not list the registered user")
	}
}

func TestUploadsMissingFileIs404(t *testing.T) {
	engine, _ := newTestServer(t, 10)

	rec := get(engine, "/uploads/no-such-file.pdf")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /uploads/<missing> = %d, want 404", rec.Code)
	}
}

func TestHealthDB(t *testing.T) {
	engine, _ := newTestServer(t, 10)

	rec := get(engine, "/health/db")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health/db = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestConcurrentRegistrations(t *testing.T) {
	engine, mgr := newTestServer(t, 10)

	const n = 50

	var (
		mu     sync.Mutex
		tokens = make(map[string]struct{}, n)
	)

	// 请求体在主 goroutine 预先构造，避免在子 goroutine 里触发 t.Fatalf
	bodies := make([]*bytes.Buffer, n)
	contentTypes := make([]string, n)

	for i := range n {
		bodies[i], contentTypes[i] = multipartBody(t, fmt.Sprintf("user-%d", i), "", "doc.pdf", pdfContent)
	}

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			body, contentType := bodies[i], contentTypes[i]
			req := httptest.NewRequest(http.MethodPost, "/register", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusSeeOther {
				return fmt.Errorf("status %d: %s", rec.Code, rec.Body.String())
			}

			mu.Lock()
			defer mu.Unlock()

			tokens[strings.TrimPrefix(rec.Header().Get("Location"), "/qr/")] = struct{}{}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent registration failed: %v", err)
	}

	if len(tokens) != n {
		t.Fatalf("got %d distinct tokens, want %d", len(tokens), n)
	}

	var count int64
	if err := mgr.GetDBClient().GetDB().Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	if count != n {
		t.Fatalf("got %d rows, want %d", count, n)
	}
}

// assertNoTrace 断言被拒绝的登记既没有落库也没有留下文件.
func assertNoTrace(t *testing.T, mgr *storage.Manager) {
	t.Helper()

	var count int64
	if err := mgr.GetDBClient().GetDB().Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	if count != 0 {
		t.Fatalf("expected no rows, found %d", count)
	}

	entries, err := os.ReadDir(mgr.GetUploadStore().Root())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 0 {
		t.Fatalf("expected no uploaded files, found %d", len(entries))
	}
}
