package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const DefaultStateDir = "~/.coffeechatted"

// ExpandHomePath replaces a leading ~ with the user's home directory. The
// path is returned unchanged when the home directory cannot be resolved.
func ExpandHomePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

func ResolveStateDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultStateDir
	}
	return filepath.Clean(ExpandHomePath(dir))
}

// ResolveStateChildDir joins name (or fallback when name is empty) under the
// state dir. An absolute or ~ name is used as is.
func ResolveStateChildDir(stateDir, name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~") {
		return filepath.Clean(ExpandHomePath(name))
	}
	return filepath.Join(ResolveStateDir(stateDir), name)
}

func ResolveStateFile(stateDir, filename string) string {
	filename = strings.TrimSpace(filename)
	if filepath.IsAbs(filename) || strings.HasPrefix(filename, "~") {
		return filepath.Clean(ExpandHomePath(filename))
	}
	return filepath.Join(ResolveStateDir(stateDir), filename)
}
