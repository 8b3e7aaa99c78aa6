package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "notesd-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if testCleanup != nil {
		testCleanup()
	}
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// AuthKey represents an access key pair for authentication.
type AuthKey struct {
	AccessKey string
	SecretKey string
	OwnerID   string
}

// ServerConfig holds configuration for starting the notesd server.
type ServerConfig struct {
	Port        int
	DBType      string // sqlite, postgres
	DBDSN       string
	Table       string
	AuthMode    string // none, sigv4, header
	ErrorStatus string // uniform, typed
	AuthKeys    []AuthKey
}

// buildBinary compiles the notesd binary once per test run.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "notesd")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/notesd")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the directory holding go.mod.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile writes a config file for cfg and returns its path.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	if cfg.Table == "" {
		cfg.Table = "notes"
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = "header"
	}
	if cfg.ErrorStatus == "" {
		cfg.ErrorStatus = "uniform"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `server:
  port: %d
  error_status: %s

database:
  type: %s
  dsn: "%s"
  tables:
    notes: %s

auth:
  mode: %s
  header: X-Owner-Id
  region: us-east-1
  service: execute-api
`,
		cfg.Port,
		cfg.ErrorStatus,
		cfg.DBType,
		cfg.DBDSN,
		cfg.Table,
		cfg.AuthMode,
	)

	if len(cfg.AuthKeys) > 0 {
		sb.WriteString("  keys:\n    inline:\n")
		for _, key := range cfg.AuthKeys {
			fmt.Fprintf(&sb, "      - access_key: %s\n        secret_key: %s\n        owner_id: %s\n",
				key.AccessKey, key.SecretKey, key.OwnerID)
		}
	}

	sb.WriteString("\nlog:\n  level: error\n")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configPath, []byte(sb.String()), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// migrateDatabase runs the migrate command against the configured database.
func migrateDatabase(t *testing.T, configPath string) {
	t.Helper()

	cmd := exec.Command(buildBinary(t), "migrate", "--config", configPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "migrate database: %s", output)
}

// startServer migrates the database and starts notesd.
// Returns the base URL and a cleanup function that must be called to stop the server.
func startServer(t *testing.T, cfg ServerConfig) (string, func()) {
	t.Helper()

	configPath := createConfigFile(t, cfg)
	migrateDatabase(t, configPath)

	cmd := exec.Command(buildBinary(t), "serve", "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	require.NoError(t, err, "start server")

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	waitForServer(t, baseURL, 10*time.Second)

	cleanup := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	}

	return baseURL, cleanup
}

// waitForServer polls the health endpoint until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	addr := l.Addr().(*net.TCPAddr)
	port := addr.Port

	require.NoError(t, l.Close(), "close port")

	return port
}
