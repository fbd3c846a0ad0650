package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetAgimlConfigDir returns the path to the agiml configuration directory.
// The directory is located inside the user's configuration directory
// as <UserConfigDir>/.agiml, unless overridden by AGIML_CONFIG_HOME.
func GetAgimlConfigDir() (string, error) {
	if agimlConfigHome := os.Getenv("AGIML_CONFIG_HOME"); agimlConfigHome != "" {
		return agimlConfigHome, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(cfg, ".agiml"), nil
}

// ExpandHome replaces a leading '~' with the home directory of the user.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
