// Package sensitive finds files in a decoded apk tree that may leak build artifacts or source code.
package sensitive

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultPatterns are matched against the file base names.
var DefaultPatterns = []string{
	"*.md", "*.cpp", "*.c", "*.h", "*.java", "*.kts", "*.bat", "*.sh",
	"*.template", "*.gradle", "*.json", "*.yml", "*.txt",
}

// DefaultAllowList holds path suffixes of files that are expected in every decoded apk.
var DefaultAllowList = []string{
	"apktool.yml",
	"/assets/google-services-desktop.json",
	"/assets/bin/Data/RuntimeInitializeOnLoads.json",
	"/assets/bin/Data/ScriptingAssemblies.json",
}

// Scanner ...
type Scanner struct {
	Patterns  []string
	AllowList []string
}

// NewScanner returns a Scanner with the default patterns and allow-list.
func NewScanner() Scanner {
	return Scanner{
		Patterns:  DefaultPatterns,
		AllowList: DefaultAllowList,
	}
}

// Scan returns the files under root matching any pattern and no allow-list suffix.
// Each file is reported once, in lexical walk order. Hidden files and directories are skipped
// and unreadable entries are ignored, so a missing root yields no results.
// A symlinked root is followed, hits are still reported under root.
func (s Scanner) Scan(root string) []string {
	var hits []string
	seen := map[string]bool{}

	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		walkRoot = resolved
	}

	_ = filepath.WalkDir(walkRoot, func(walked string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		pth := walked
		if walkRoot != root {
			rel, err := filepath.Rel(walkRoot, walked)
			if err != nil {
				return nil
			}
			pth = filepath.Join(root, rel)
		}

		if walked != walkRoot && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || seen[pth] {
			return nil
		}
		if s.matches(d.Name()) && !s.allowed(pth) {
			seen[pth] = true
			hits = append(hits, pth)
		}
		return nil
	})

	return hits
}

func (s Scanner) matches(name string) bool {
	for _, pattern := range s.Patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (s Scanner) allowed(pth string) bool {
	slashed := filepath.ToSlash(pth)
	for _, suffix := range s.AllowList {
		if strings.HasSuffix(slashed, suffix) {
			return true
		}
	}
	return false
}
