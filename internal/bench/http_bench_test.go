package bench

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/pkg/app"
	_ "github.com/SFillip/el-backend/pkg/auth/hs256" // Register hs256 auth provider.
	"github.com/SFillip/el-backend/pkg/config"
	"github.com/SFillip/el-backend/pkg/domain"
)

const benchDay = "2024-03-10"

func newBenchApp(b *testing.B) (*app.Application, string) {
	b.Helper()
	gin.SetMode(gin.ReleaseMode)

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis start: %v", err)
	}
	b.Cleanup(mr.Close)

	cfg, err := config.LoadConfigOptional("")
	if err != nil {
		b.Fatal(err)
	}
	cfg.LogLevel = "error"
	cfg.RedisAddr = mr.Addr()
	cfg.Auth.Secret = "bench-secret-0123456789"

	a, err := app.NewApplication(cfg)
	if err != nil {
		b.Fatalf("app init: %v", err)
	}
	app.SetupMappings(a)
	b.Cleanup(func() { _ = a.TracingShutdown(context.Background()) })

	ctx := context.Background()
	user := &domain.User{Username: "bench", Name: "Bench", Privilege: domain.PrivilegeUser}
	if err := a.Users.Register(ctx, user, "bench-pass"); err != nil {
		b.Fatalf("register: %v", err)
	}

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	telemetry := a.Store.Telemetry()
	for hour := 0; hour < 24; hour++ {
		sample := domain.Sample{
			Station:    "Graz",
			Timestamp:  day.Add(time.Duration(hour) * time.Hour),
			Images:     4,
			Brightness: 50,
		}
		if err := telemetry.Append(ctx, user.ID, sample); err != nil {
			b.Fatalf("append: %v", err)
		}
	}

	status, resp := doJSONRequest(b, a.Engine, http.MethodPost, "/Authenticate", "",
		[]byte(`{"username":"bench","password":"bench-pass"}`), nil)
	if status != http.StatusOK {
		b.Fatalf("login status %d body=%s", status, string(resp))
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp, &login); err != nil || login.Token == "" {
		b.Fatalf("login parse failed: err=%v body=%s", err, string(resp))
	}
	return a, login.Token
}

func doJSONRequest(b *testing.B, h http.Handler, method, path, bearerToken string, body []byte, hdrs map[string]string) (int, []byte) {
	b.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(string(body)))
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdrs {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func BenchmarkHTTP_SendTimes(b *testing.B) {
	a, token := newBenchApp(b)
	hdrs := map[string]string{
		"referencedatetime": benchDay + "T12:00:00Z",
		"clientdatetime":    benchDay + "T12:00:00Z",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		status, resp := doJSONRequest(b, a.Engine, http.MethodGet, "/SendTimes", token, nil, hdrs)
		if status != http.StatusOK {
			b.Fatalf("send times status %d body=%s", status, string(resp))
		}
	}
}

func BenchmarkService_SendTimes(b *testing.B) {
	a, token := newBenchApp(b)
	ctx := context.Background()

	claims, err := a.Validator.Validate(token)
	if err != nil {
		b.Fatalf("validate: %v", err)
	}
	anchor := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	window := domain.TimeWindow{Reference: anchor, Client: anchor, HasClient: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rows, err := a.Stats.SendTimes(ctx, claims.Subject, window)
		if err != nil {
			b.Fatalf("SendTimes: %v", err)
		}
		if len(rows) != 1 {
			b.Fatalf("expected 1 station, got %d", len(rows))
		}
	}
}
