package androidartifact

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/avast/apkparser"
)

// DumpManifest decodes the binary AndroidManifest.xml of the apk and writes it to w as indented XML.
// Unresolvable resource references are kept as raw ids.
func (i Inspector) DumpManifest(apkPth string, w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")

	zipErr, resErr, manErr := apkparser.ParseApk(apkPth, enc)
	if zipErr != nil {
		return fmt.Errorf("failed to unzip the APK: %s", zipErr)
	}
	if resErr != nil {
		i.logger.Warnf("Failed to parse resources, references will not be resolved: %s", resErr)
	}
	if manErr != nil {
		return fmt.Errorf("failed to parse AndroidManifest.xml: %s", manErr)
	}

	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
