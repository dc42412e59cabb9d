package paths

import (
	"os"
	"path/filepath"
)

const (
	AppDirName     = "favpack"
	ConfigFileName = "favpack-config.json"
	LogFileName    = "favpack.log"
	DBFileName     = "favpack.db"
	CooldownFile   = "cooldown.json"
	DirPerm        = 0755
	FilePerm       = 0644
)

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DataDir returns the platform-specific data directory for favpack:
//   - Windows: %APPDATA%\favpack
//   - Unix:    ~/.config/favpack
//
// Falls back to os.TempDir()/favpack if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}

// ConfigPath returns the per-user config file location.
func ConfigPath() string {
	return filepath.Join(DataDir(), ConfigFileName)
}

// CooldownKey returns the cooldown state key for a hook type and kind.
func CooldownKey(hookType, kind string) string {
	return hookType + "/" + kind
}
