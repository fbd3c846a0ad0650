package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// ErrUserInitiatedExit signals that the user asked to quit, such as by
// requesting help or version info. It's not a failure.
var ErrUserInitiatedExit = errors.New("user initiated exit")

// CreateConfigDir at configDirPath, including the specs directory, if it doesn't exist.
func CreateConfigDir(configDirPath string) error {
	if _, err := os.Stat(configDirPath); os.IsNotExist(err) {
		err := setupAgimlConfigDir(configDirPath)
		if err != nil {
			return fmt.Errorf("failed to setup config dotdir: %w", err)
		}
	}
	return nil
}

func setupAgimlConfigDir(configPath string) error {
	specsDir := filepath.Join(configPath, "specs")
	if err := os.MkdirAll(specsDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create .agiml + .agiml/specs directory: %w", err)
	}
	ancli.PrintOK(fmt.Sprintf("created .agiml directory at: '%v'\n", configPath))
	return nil
}

func createDefaultConfigFile[T any](configFilePath string, dflt *T) error {
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		if misc.Truthy(os.Getenv("DEBUG")) {
			ancli.PrintOK(fmt.Sprintf("attempting to create file: '%v'\n", configFilePath))
		}
		err := CreateFile(configFilePath, dflt)
		if err != nil {
			return fmt.Errorf("failed to write config: '%v', error: %w", configFilePath, err)
		}
	}
	return nil
}

// FindConfigFile returns the path of the first of configFileNames which exists
// within configDirPath. If none exist, the path of the first name is returned
// alongside false.
func FindConfigFile(configDirPath string, configFileNames ...string) (string, bool) {
	for _, name := range configFileNames {
		p := filepath.Join(configDirPath, name)
		if _, err := os.Stat(p); !errors.Is(err, fs.ErrNotExist) {
			return p, true
		}
	}
	if len(configFileNames) == 0 {
		return "", false
	}
	return filepath.Join(configDirPath, configFileNames[0]), false
}

// LoadConfigFromFile reads the first existing of configFileNames within
// configDirPath on top of dflt, so that keys missing from the file keep their
// default. If no file exists, one is created from dflt. The value dflt points
// to is used as the base of the returned config and should not be shared.
func LoadConfigFromFile[T any](
	configDirPath string,
	configFileNames []string,
	dflt *T,
) (T, string, error) {
	err := CreateConfigDir(configDirPath)
	if err != nil {
		var nilVal T
		return nilVal, "", err
	}

	configPath, exists := FindConfigFile(configDirPath, configFileNames...)
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("attempting to load file: %v\n", configPath))
	}
	if !exists {
		err = createDefaultConfigFile(configPath, dflt)
		if err != nil {
			var nilVal T
			return nilVal, "", err
		}
	}

	conf := *dflt
	err = ReadAndUnmarshal(configPath, &conf)
	if err != nil {
		return conf, configPath, fmt.Errorf("failed to unmarshal config '%v', error: %w", configPath, err)
	}

	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("found config: %+v\n", conf))
	}
	return conf, configPath, nil
}

func ReturnNonDefault[T comparable](a, b, defaultVal T) (T, error) {
	if a != defaultVal && b != defaultVal {
		return defaultVal, fmt.Errorf("values are mutually exclusive")
	}
	if a != defaultVal {
		return a, nil
	}
	if b != defaultVal {
		return b, nil
	}
	return defaultVal, nil
}
