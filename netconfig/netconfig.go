// Package netconfig writes a network security config that trusts user installed certificates.
package netconfig

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/go-utils/pathutil"
	"github.com/bitrise-io/go-utils/v2/fileutil"
)

// FileName ...
const FileName = "network_security_config.xml"

// Content trusts both system and user certificate authorities for every domain.
const Content = `<?xml version="1.0" encoding="utf-8"?>
<network-security-config>
    <base-config>
        <trust-anchors>
            <certificates src="system" />
            <certificates src="user" />
        </trust-anchors>
    </base-config>
</network-security-config>`

// Path returns the location of the config inside a decoded apk tree.
func Path(root string) string {
	return filepath.Join(root, "res", "xml", FileName)
}

// Write creates or overwrites res/xml/network_security_config.xml under root.
func Write(fileManager fileutil.FileManager, root string) (string, error) {
	pth := Path(root)
	if err := pathutil.EnsureDirExist(filepath.Dir(pth)); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(pth), err)
	}

	if err := fileManager.WriteBytes(pth, []byte(Content)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", pth, err)
	}

	return pth, nil
}
