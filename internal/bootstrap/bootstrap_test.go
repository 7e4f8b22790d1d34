package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"

	"poolkeeper/internal/ports"
	"poolkeeper/internal/transport/httpapi"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
app:
  timezone: UTC
database:
  driver: sqlite
  dsn: %s
http:
  addr: 127.0.0.1:0
scheduler:
  enabled: false
auth:
  default_user_email: Owner@Example.com
  default_password: secret
`, filepath.Join(dir, "data", "pool.sqlite"))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func testOptions(configFile string, extra ...fx.Option) []fx.Option {
	return append([]fx.Option{
		Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		fx.Provide(
			fx.Annotate(
				func() string { return configFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
	}, extra...)
}

func TestServeModuleGraphIsComplete(t *testing.T) {
	configFile := writeConfig(t)
	if err := fx.ValidateApp(testOptions(configFile, ServeModule)...); err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestInitSchemaIsRepeatable(t *testing.T) {
	configFile := writeConfig(t)

	var app *App
	var srv *httpapi.Server
	var pinger ports.Pinger
	fxApp := fx.New(testOptions(configFile, ServeModule, fx.Populate(&app, &srv, &pinger))...)
	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx.New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		_ = fxApp.Stop(context.Background())
	})

	for i := 0; i < 2; i++ {
		if err := app.InitSchema(ctx); err != nil {
			t.Fatalf("InitSchema() run %d error = %v", i+1, err)
		}
	}

	types, err := app.Readings.ListTypes(ctx)
	if err != nil {
		t.Fatalf("ListTypes() error = %v", err)
	}
	if len(types) != 8 {
		t.Fatalf("active reading types = %d, want 8", len(types))
	}
	if types[0].Slug != "th" {
		t.Fatalf("first reading type = %q, want th", types[0].Slug)
	}

	user, err := app.Users.Resolve(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}
	if srv.Addr() == "127.0.0.1:0" {
		t.Fatalf("server address not bound: %s", srv.Addr())
	}

	if err := pinger.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	defer resp.Body.Close()
	var ready struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		t.Fatalf("decode /readyz: %v", err)
	}
	if resp.StatusCode != http.StatusOK || ready.Status != "ready" {
		t.Fatalf("GET /readyz = %d %q, want 200 ready", resp.StatusCode, ready.Status)
	}
}
