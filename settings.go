package main

import (
	"path/filepath"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/env"
)

// Settings ...
type Settings struct {
	AndroidHome    string `env:"ANDROID_HOME"`
	AndroidSDKRoot string `env:"ANDROID_SDK_ROOT"`
	Home           string `env:"HOME"`
	UserProfile    string `env:"USERPROFILE"`
	LocalAppData   string `env:"LOCALAPPDATA"`
	DebugMode      string `env:"APKUTIL_DEBUG"`
}

// ParseSettings reads the process environment once.
func ParseSettings(envRepo env.Repository) (Settings, error) {
	var s Settings
	if err := stepconf.NewInputParser(envRepo).Parse(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// HomeDir returns HOME, falling back to USERPROFILE and finally to the filesystem root.
func (s Settings) HomeDir() string {
	switch {
	case s.Home != "":
		return s.Home
	case s.UserProfile != "":
		return s.UserProfile
	default:
		return string(filepath.Separator)
	}
}

// SDKRoot returns ANDROID_HOME, else ANDROID_SDK_ROOT, else the default install location of Android Studio on goos.
func (s Settings) SDKRoot(goos string) string {
	if s.AndroidHome != "" {
		return s.AndroidHome
	}
	if s.AndroidSDKRoot != "" {
		return s.AndroidSDKRoot
	}

	home := s.HomeDir()
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Android", "sdk")
	case "windows":
		if s.LocalAppData != "" {
			return filepath.Join(s.LocalAppData, "Android", "Sdk")
		}
		return filepath.Join(home, "AppData", "Local", "Android", "Sdk")
	default:
		return filepath.Join(home, "Android", "Sdk")
	}
}

// Debug ...
func (s Settings) Debug() bool {
	return s.DebugMode == "true"
}
