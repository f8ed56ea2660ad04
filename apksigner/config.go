package apksigner

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/pkg/errors"
)

// ConfigFileName is looked up in the user's home directory.
const ConfigFileName = "apkutil.json"

// Config holds the signing credentials.
type Config struct {
	KeystorePath string `json:"keystore_path"`
	KeyAlias     string `json:"ks-key-alias"`
	KeystorePass string `json:"ks-pass"`
}

// ConfigError is returned when the signing config is missing or unusable.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Missing or invalid %s: %s", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig reads <homeDir>/apkutil.json. A leading ~ in keystore_path stands for homeDir.
func LoadConfig(fileManager fileutil.FileManager, homeDir string) (Config, error) {
	pth := filepath.Join(homeDir, ConfigFileName)

	f, err := fileManager.Open(pth)
	if err != nil {
		return Config{}, &ConfigError{Path: pth, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	var config Config
	if err := json.NewDecoder(f).Decode(&config); err != nil {
		return Config{}, &ConfigError{Path: pth, Err: errors.Wrap(err, "failed to parse JSON")}
	}

	for _, field := range []struct{ key, value string }{
		{"keystore_path", config.KeystorePath},
		{"ks-key-alias", config.KeyAlias},
		{"ks-pass", config.KeystorePass},
	} {
		if field.value == "" {
			return Config{}, &ConfigError{Path: pth, Err: errors.Errorf("%s is not set", field.key)}
		}
	}

	if strings.HasPrefix(config.KeystorePath, "~") {
		config.KeystorePath = filepath.Join(homeDir, strings.TrimPrefix(config.KeystorePath, "~"))
	}

	return config, nil
}
