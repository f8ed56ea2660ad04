package toolpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func lookPathReturning(pth string, err error) LookPathFunc {
	return func(string) (string, error) {
		return pth, err
	}
}

func Test_Resolve_ScriptExtension(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		found    string
		existing []string
		want     string
	}{
		{
			name:  "non-windows path is returned as is",
			goos:  "linux",
			found: "/usr/local/bin/apktool",
			want:  "/usr/local/bin/apktool",
		},
		{
			name:  "windows path with extension is returned as is",
			goos:  "windows",
			found: "C:/tools/apktool.exe",
			want:  "C:/tools/apktool.exe",
		},
		{
			name:     "windows path without extension prefers .cmd",
			goos:     "windows",
			found:    "C:/tools/apktool",
			existing: []string{"C:/tools/apktool.cmd", "C:/tools/apktool.bat"},
			want:     "C:/tools/apktool.cmd",
		},
		{
			name:     "windows path without extension falls back to .bat",
			goos:     "windows",
			found:    "C:/tools/apktool",
			existing: []string{"C:/tools/apktool.bat"},
			want:     "C:/tools/apktool.bat",
		},
		{
			name:  "windows path without extension and no script sibling",
			goos:  "windows",
			found: "C:/tools/apktool",
			want:  "C:/tools/apktool",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(mocks.PathChecker)
			for _, pth := range tt.existing {
				checker.On("IsPathExists", pth).Return(true, nil)
			}
			checker.On("IsPathExists", mock.Anything).Return(false, nil)

			r := newResolver(tt.goos, lookPathReturning(tt.found, nil), "", checker, log.NewLogger())
			got, err := r.Resolve("apktool")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Resolve_NotFound(t *testing.T) {
	r := newResolver("linux", lookPathReturning("", errors.New("executable file not found in $PATH")), "", new(mocks.PathChecker), log.NewLogger())

	_, err := r.Resolve("apktool")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "apktool", notFound.Name)
	assert.EqualError(t, err, "apktool not found. Please install and make sure it's in PATH.")
}

func Test_Resolve_BuildToolsFallback(t *testing.T) {
	sdkRoot := t.TempDir()
	for _, version := range []string{"29.0.2", "30.0.3"} {
		dir := filepath.Join(sdkRoot, "build-tools", version)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zipalign"), []byte("#!/bin/sh\n"), 0755))
	}
	evaluatedRoot, err := filepath.EvalSymlinks(sdkRoot)
	require.NoError(t, err)

	r := newResolver("linux", lookPathReturning("", errors.New("not found")), sdkRoot, pathutil.NewPathChecker(), log.NewLogger())

	got, err := r.Resolve("zipalign")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(evaluatedRoot, "build-tools", "30.0.3", "zipalign"), got)

	_, err = r.Resolve("apktool")
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func Test_Resolve_PathWinsOverBuildTools(t *testing.T) {
	sdkRoot := t.TempDir()
	dir := filepath.Join(sdkRoot, "build-tools", "30.0.3")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapt"), nil, 0755))

	r := newResolver("linux", lookPathReturning("/usr/bin/aapt", nil), sdkRoot, pathutil.NewPathChecker(), log.NewLogger())

	got, err := r.Resolve("aapt")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/aapt", got)
}
