package drive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/hubtree/pkg/config"
)

// Open returns the drive cfg selects. The mem backend starts from
// Defaults.
func Open(cfg config.Config) (Drive, error) {
	switch cfg.Drive.Backend {
	case config.BackendMem:
		return NewMemDrive(Defaults()), nil
	case config.BackendSQLite:
		path := cfg.Drive.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "hubtree.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return OpenSQLite(path, cfg.PollDuration())
	case config.BackendDir, "":
		return OpenDir(cfg.Drive.Path, DirOptions{
			Debounce:     cfg.DebounceDuration(),
			PollInterval: cfg.PollDuration(),
			ForcePoll:    cfg.Drive.ForcePoll,
		})
	}
	return nil, fmt.Errorf("%w: unknown drive backend %q", config.ErrInvalid, cfg.Drive.Backend)
}
