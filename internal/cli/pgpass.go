package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// pgpassPath returns the platform-appropriate .pgpass file path.
func pgpassPath() string {
	if custom := os.Getenv("PGPASSFILE"); custom != "" {
		return custom
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "postgresql", "pgpass.conf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// writePgpassEntry adds or updates the .pgpass entry for host, port,
// database and user.
func writePgpassEntry(cfg *pgcsv.ConnectionConfig) error {
	path := pgpassPath()
	if path == "" {
		return fmt.Errorf("cannot determine home directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	host := escapePgpass(cfg.Host)
	port := fmt.Sprintf("%d", cfg.Port)
	db := escapePgpass(cfg.Database)
	user := escapePgpass(cfg.Username)
	password := escapePgpass(cfg.Password)

	newEntry := fmt.Sprintf("%s:%s:%s:%s:%s", host, port, db, user, password)
	matchPrefix := fmt.Sprintf("%s:%s:%s:%s:", host, port, db, user)

	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if existing := strings.TrimRight(string(data), "\n"); existing != "" {
			lines = strings.Split(existing, "\n")
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read existing .pgpass: %w", err)
	}

	found := false
	for i, line := range lines {
		if strings.HasPrefix(line, matchPrefix) {
			lines[i] = newEntry
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, newEntry)
	}

	content := strings.Join(lines, "\n") + "\n"

	// libpq ignores the file unless it is 0600 on Unix
	return os.WriteFile(path, []byte(content), 0600)
}

// escapePgpass escapes colons and backslashes in a .pgpass field value.
func escapePgpass(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}
