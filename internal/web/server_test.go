package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/auth"
	"github.com/JonMunkholm/dsr/internal/config"
	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

const testPassword = "s3cret-pass"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Security.RequireAuth = true
	cfg.Security.APIKeys = []string{"test-key"}
	cfg.Outlet.Name = "Koramangala"
	cfg.Outlet.Currency = "INR"
	cfg.Outlet.TimeZone = "UTC"
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	service := core.NewService(core.NewMemoryStore(), core.ServiceConfig{
		Calculator:           reconcile.NewCalculator(reconcile.DefaultOpeningBalance, nil),
		Location:             time.UTC,
		MaxConcurrentImports: 1,
		MaxImportWait:        100 * time.Millisecond,
	})
	authService := auth.NewService(auth.NewMemoryUserStore(), auth.NewTokenIssuer("test-secret", time.Hour))

	s := NewServer(service, authService, testConfig(), nil)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	return s
}

// do sends a request to the router. body may be nil, a string or a value
// encoded as JSON.
func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, rec, &resp)
	return resp.Code
}

// signIn registers a user and returns its token.
func signIn(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/register", "", credentials{Email: "staff@example.com", Password: testPassword})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session auth.Session
	decode(t, rec, &session)
	return session.Token
}

// sampleEntry reconciles to a 100 short with amounts typed as on the form.
func sampleEntry(date string) map[string]any {
	return map[string]any{
		"date":      date,
		"totalSale": "10,000",
		"sales": map[string]any{
			"pos":           3000,
			"swiggy":        "1000",
			"zomatoOnline":  500,
			"zomatoCash":    200,
			"uengageOnline": 300,
			"uengageCash":   "₹100",
		},
		"expenses":      []map[string]any{{"description": "Milk", "amount": 400}},
		"denominations": map[string]int{"500": 19, "100": 3},
		"comment":       "evening shift",
	}
}

func createEntry(t *testing.T, s *Server, token, date string) reconcile.Entry {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/entries", token, sampleEntry(date))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var e reconcile.Entry
	decode(t, rec, &e)
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_DatabaseDown(t *testing.T) {
	base := newTestServer(t)
	s := NewServer(base.service, base.auth, base.cfg, failingPinger{})

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	if token == "" {
		t.Fatal("register returned no token")
	}

	tests := []struct {
		name       string
		path       string
		creds      credentials
		wantStatus int
		wantCode   string
	}{
		{"duplicate email", "/api/auth/register", credentials{"Staff@Example.com", testPassword}, http.StatusConflict, "AUTH002"},
		{"bad email", "/api/auth/register", credentials{"not-an-email", testPassword}, http.StatusBadRequest, "AUTH004"},
		{"short password", "/api/auth/register", credentials{"new@example.com", "abc"}, http.StatusBadRequest, "AUTH005"},
		{"wrong password", "/api/auth/login", credentials{"staff@example.com", "wrong-pass"}, http.StatusUnauthorized, "AUTH001"},
		{"unknown user", "/api/auth/login", credentials{"nobody@example.com", testPassword}, http.StatusUnauthorized, "AUTH001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, "", tt.creds)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}

	rec := do(t, s, http.MethodPost, "/api/auth/login", "", credentials{"staff@example.com", testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var session auth.Session
	decode(t, rec, &session)
	if session.User.Email != "staff@example.com" {
		t.Errorf("session email = %q", session.User.Email)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/entries", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/entries", "forged.token.value", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/outlet", nil)
	req.Header.Set("X-API-Key", "test-key")
	apiRec := httptest.NewRecorder()
	s.Router().ServeHTTP(apiRec, req)
	if apiRec.Code != http.StatusOK {
		t.Errorf("api key status = %d, want 200", apiRec.Code)
	}
}

func TestOutlet(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	rec := do(t, s, http.MethodGet, "/api/outlet", token, nil)
	var out outletResponse
	decode(t, rec, &out)

	if out.Name != "Koramangala" {
		t.Errorf("Name = %q", out.Name)
	}
	if !out.OpeningBalance.Equal(decimal.NewFromInt(5100)) {
		t.Errorf("OpeningBalance = %s, want 5100", out.OpeningBalance)
	}
	if len(out.Notes) != 9 || out.Notes[0] != 500 || out.Notes[8] != 1 {
		t.Errorf("Notes = %v", out.Notes)
	}
	if _, err := time.Parse(reconcile.DateLayout, out.Today); err != nil {
		t.Errorf("Today = %q: %v", out.Today, err)
	}
}

func TestPreviewEntry(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	rec := do(t, s, http.MethodPost, "/api/entries/preview", token, sampleEntry("2024-03-10"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var f reconcile.Figures
	decode(t, rec, &f)

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"CounterCash", f.CounterCash, 4900},
		{"TotalExpense", f.TotalExpense, 400},
		{"CashInHand", f.CashInHand, 9900},
		{"PhysicalCash", f.PhysicalCash, 9800},
		{"Difference", f.Difference, -100},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
}

func TestCreateEntry(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	e := createEntry(t, s, token, "2024-03-10")
	if e.ID == "" {
		t.Error("created entry has no id")
	}
	if e.CreatedBy != "staff@example.com" {
		t.Errorf("CreatedBy = %q", e.CreatedBy)
	}
	if !e.Difference.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("Difference = %s, want -100", e.Difference)
	}

	rec := do(t, s, http.MethodPost, "/api/entries", token, sampleEntry("2024-03-10"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "ENT001" {
		t.Errorf("duplicate code = %q, want ENT001", code)
	}

	confirmed := sampleEntry("2024-03-10")
	confirmed["confirmDuplicate"] = true
	rec = do(t, s, http.MethodPost, "/api/entries", token, confirmed)
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirmed status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/entries?start=2024-03-01&end=2024-03-31", token, nil)
	var list struct {
		Range   core.DateRange    `json:"range"`
		Entries []reconcile.Entry `json:"entries"`
	}
	decode(t, rec, &list)
	if len(list.Entries) != 2 {
		t.Errorf("listed %d entries, want 2", len(list.Entries))
	}
}

func TestCreateEntry_Rejected(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	zeroSale := sampleEntry("2024-03-10")
	zeroSale["totalSale"] = 0

	badAmount := sampleEntry("2024-03-10")
	badAmount["totalSale"] = "ten thousand"

	subPaisa := sampleEntry("2024-03-10")
	subPaisa["totalSale"] = "100.005"

	unknownField := sampleEntry("2024-03-10")
	unknownField["tip"] = 50

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"zero sale", zeroSale, "VAL000"},
		{"bad amount", badAmount, "VAL002"},
		{"more than two decimals", subPaisa, "VAL000"},
		{"unknown field", unknownField, "REQ003"},
		{"malformed json", `{"date":`, "REQ003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/entries", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestEntryLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	e := createEntry(t, s, token, "2024-03-10")

	rec := do(t, s, http.MethodGet, "/api/entries/"+e.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/entries/"+e.ID+"/expenses", token, nil)
	var breakdown core.ExpenseBreakdown
	decode(t, rec, &breakdown)
	if len(breakdown.Expenses) != 1 || breakdown.Expenses[0].Description != "Milk" {
		t.Errorf("Expenses = %+v", breakdown.Expenses)
	}
	if !breakdown.Total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Total = %s, want 400", breakdown.Total)
	}

	rec = do(t, s, http.MethodDelete, "/api/entries/"+e.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/entries/"+e.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "ENT002" {
		t.Errorf("code = %q, want ENT002", code)
	}
}

func TestDashboardAndHistory(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	createEntry(t, s, token, "2024-03-12")
	createEntry(t, s, token, "2024-03-10")
	createEntry(t, s, token, "2024-04-01")

	rec := do(t, s, http.MethodGet, "/api/history?start=2024-03-01&end=2024-03-31", token, nil)
	var hist core.History
	decode(t, rec, &hist)
	if len(hist.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(hist.Rows))
	}
	if hist.Rows[0].Date != "2024-03-10" {
		t.Errorf("first row = %s, want oldest first", hist.Rows[0].Date)
	}
	if hist.Summary.ShortDays != 2 {
		t.Errorf("ShortDays = %d, want 2", hist.Summary.ShortDays)
	}

	rec = do(t, s, http.MethodGet, "/api/dashboard?start=2024-03-01&end=2024-03-31", token, nil)
	var dash core.Dashboard
	decode(t, rec, &dash)
	if !dash.Summary.TotalSales.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("TotalSales = %s, want 20000", dash.Summary.TotalSales)
	}
	if len(dash.Chart) != 2 {
		t.Errorf("chart points = %d, want 2", len(dash.Chart))
	}

	rec = do(t, s, http.MethodGet, "/api/history?start=2024-03-31&end=2024-03-01", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reversed range status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "VAL003" {
		t.Errorf("code = %q, want VAL003", code)
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	createEntry(t, s, token, "2024-03-10")

	rec := do(t, s, http.MethodGet, "/api/export/csv?start=2024-03-01&end=2024-03-31", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	want := `attachment; filename="dsr_report_2024-03-01_to_2024-03-31.csv"`
	if got := rec.Header().Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	lines := strings.Split(rec.Body.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header and one row", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2024-03-10,") || !strings.HasSuffix(lines[1], `"evening shift"`) {
		t.Errorf("row = %q", lines[1])
	}

	rec = do(t, s, http.MethodGet, "/api/export/xlsx?start=2024-03-01&end=2024-03-31", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx body is not a zip archive")
	}
}

const legacyCSV = `Date,Total Sale,POS,Swiggy,Zomato Online,Zomato Cash,Uengage Online,Uengage Cash,Counter Cash,Expenses,Net Physical,Short/Excess,Comments
2024-03-01,"10,000",3000,1000,500,200,300,100,4900,400,4700,-100,"evening, late"
2024-03-02,8000,2000,,,,,,6000,0,6000,0,
Total,18000,5000,1000,500,200,300,100,10900,400,10700,-100,
`

func importRequest(t *testing.T, token, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != "" {
		fw, err := mw.CreateFormFile("file", "march.csv")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestImport(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	createEntry(t, s, token, "2024-03-02")

	tests := []struct {
		name         string
		fields       map[string]string
		wantStatus   int
		wantImported int
	}{
		{"dry run", map[string]string{"dryRun": "true"}, http.StatusOK, 2},
		{"skip duplicates", map[string]string{"skipDuplicates": "true"}, http.StatusCreated, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, importRequest(t, token, legacyCSV, tt.fields))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var result core.ImportResult
			decode(t, rec, &result)
			if result.Imported != tt.wantImported {
				t.Errorf("Imported = %d, want %d", result.Imported, tt.wantImported)
			}
			if result.Duplicates != 1 {
				t.Errorf("Duplicates = %d, want 1", result.Duplicates)
			}
			if result.FileName != "march.csv" {
				t.Errorf("FileName = %q", result.FileName)
			}
		})
	}

	rec := do(t, s, http.MethodGet, "/api/entries?all=true", token, nil)
	var list struct {
		Entries []reconcile.Entry `json:"entries"`
	}
	decode(t, rec, &list)
	if len(list.Entries) != 2 {
		t.Errorf("entries after import = %d, want 2", len(list.Entries))
	}
}

func TestImport_Rejected(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	tests := []struct {
		name       string
		content    string
		wantStatus int
		wantCode   string
	}{
		{"no file", "", http.StatusBadRequest, "FILE004"},
		{"no data rows", "Date,Total Sale\nTotal,0\n", http.StatusUnprocessableEntity, "IMP001"},
		{"too large", strings.Repeat("x", 2<<20), http.StatusRequestEntityTooLarge, "FILE001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, importRequest(t, token, tt.content, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}

	rec := do(t, s, http.MethodGet, "/api/import/status", token, nil)
	var status core.ImportLimiterStatus
	decode(t, rec, &status)
	if status.Active != 0 || status.MaxConcurrent != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestAuditLog(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	e := createEntry(t, s, token, "2024-03-10")
	do(t, s, http.MethodDelete, "/api/entries/"+e.ID, token, nil)

	rec := do(t, s, http.MethodGet, "/api/audit-log?limit=2", token, nil)
	var body struct {
		Entries []core.AuditEntry `json:"entries"`
		Count   int               `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 2 {
		t.Fatalf("count = %d, want 2", body.Count)
	}
	if body.Entries[0].Action != core.ActionEntryDelete {
		t.Errorf("newest action = %q, want %q", body.Entries[0].Action, core.ActionEntryDelete)
	}
	if body.Entries[0].UserEmail != "staff@example.com" {
		t.Errorf("UserEmail = %q", body.Entries[0].UserEmail)
	}
}

func TestPrintReport(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	createEntry(t, s, token, "2024-03-10")

	rec := do(t, s, http.MethodGet, "/report/print?start=2024-03-01&end=2024-03-31", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	html := rec.Body.String()
	for _, want := range []string{"Koramangala Daily Sales Report", "<td>2024-03-10</td>", "evening shift"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}

	rec = do(t, s, http.MethodGet, "/report/print?start=bad", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Code: VAL003") {
		t.Errorf("error page = %s", rec.Body.String())
	}
}

func TestEntryStream(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)
	createEntry(t, s, token, "2024-03-10")

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/entries/stream?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap streamMessage
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snap.Type != "snapshot" || len(snap.Entries) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	created := createEntry(t, s, token, "2024-03-11")

	var ev streamMessage
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != string(core.ChangeCreated) {
		t.Errorf("event type = %q, want created", ev.Type)
	}
	if len(ev.Entries) != 1 || ev.Entries[0].ID != created.ID {
		t.Errorf("event entries = %+v", ev.Entries)
	}
}

func TestEntryStream_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/entries/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v, want 401", resp)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&reconcile.ValidationError{Problems: []string{"x"}}, http.StatusBadRequest},
		{fmt.Errorf("%w: 2024-03-10", core.ErrDuplicateDate), http.StatusConflict},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrNoValidRecords, http.StatusUnprocessableEntity},
		{core.ErrTooManyImports, http.StatusTooManyRequests},
		{auth.ErrEmailTaken, http.StatusConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("empty file"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	got := []bool{rl.allow("10.0.0.1"), rl.allow("10.0.0.1"), rl.allow("10.0.0.1"), rl.allow("10.0.0.2")}
	want := []bool{true, true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("limit not reset after window")
	}
}
