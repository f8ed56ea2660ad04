package apktool

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"gopkg.in/yaml.v3"
)

// MetadataFileName is written by apktool into the root of every decoded tree.
const MetadataFileName = "apktool.yml"

// VersionInfo ...
type VersionInfo struct {
	VersionCode string `yaml:"versionCode"`
	VersionName string `yaml:"versionName"`
}

// Metadata is the subset of apktool.yml apkutil reports on.
type Metadata struct {
	Version     string            `yaml:"version"`
	APKFileName string            `yaml:"apkFileName"`
	SDKInfo     map[string]string `yaml:"sdkInfo"`
	VersionInfo VersionInfo       `yaml:"versionInfo"`
}

func (m Metadata) String() string {
	s := fmt.Sprintf("%s (versionName: %s, versionCode: %s", m.APKFileName, m.VersionInfo.VersionName, m.VersionInfo.VersionCode)
	if minSDK, ok := m.SDKInfo["minSdkVersion"]; ok {
		s += ", minSdkVersion: " + minSDK
	}
	if targetSDK, ok := m.SDKInfo["targetSdkVersion"]; ok {
		s += ", targetSdkVersion: " + targetSDK
	}
	return s + ")"
}

// ReadMetadata parses the apktool.yml of a decoded tree.
func ReadMetadata(fileManager fileutil.FileManager, dir string) (Metadata, error) {
	f, err := fileManager.Open(filepath.Join(dir, MetadataFileName))
	if err != nil {
		return Metadata{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	var metadata Metadata
	if err := yaml.NewDecoder(f).Decode(&metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse %s: %w", MetadataFileName, err)
	}

	return metadata, nil
}
