package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const EnvLogDir = "TRIPDESK_LOG_DIR"

// LogsBaseDir is where session and network logs land unless configured otherwise.
func LogsBaseDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return filepath.Clean(ExpandHome(dir))
	}
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return filepath.Join(".tripdesk", "logs")
	}
	return filepath.Join(home, ".tripdesk", "logs")
}

// ExpandHome resolves a leading "~" against the user's home directory.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}

// NetworkLogPath is the JSONL file the api transport appends to.
func NetworkLogPath(baseDir string) string {
	if strings.TrimSpace(baseDir) == "" {
		baseDir = LogsBaseDir()
	}
	return filepath.Join(baseDir, "network.jsonl")
}

// ErrorLogPath is the JSONL file that collects warnings and errors from every session.
func ErrorLogPath(baseDir string) string {
	if strings.TrimSpace(baseDir) == "" {
		baseDir = LogsBaseDir()
	}
	return filepath.Join(baseDir, "errors.jsonl")
}
