package apktool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/mocks"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const apktoolPth = "/usr/local/bin/apktool"

func newTestApktool(resolver *mocks.Resolver, r *mocks.Runner) Apktool {
	return New(resolver, r, pathutil.NewPathModifier(), fileutil.NewFileManager(), log.NewLogger())
}

func foundResolver() *mocks.Resolver {
	resolver := new(mocks.Resolver)
	resolver.On("Resolve", ToolName).Return(apktoolPth, nil)
	return resolver
}

func TestDecode(t *testing.T) {
	tmpDir := t.TempDir()
	apkPth := filepath.Join(tmpDir, "app-release.apk")
	wantDir := filepath.Join(tmpDir, "app-release")

	tests := []struct {
		name     string
		opts     DecodeOptions
		wantArgs []string
		res      runner.Result
		wantErr  bool
	}{
		{
			name:     "plain decode",
			wantArgs: []string{apktoolPth, "d", apkPth, "-o", wantDir},
			res:      runner.Result{Stdout: "I: Using Apktool 2.9.3 on app-release.apk\n"},
		},
		{
			name:     "no resources and no sources",
			opts:     DecodeOptions{NoResources: true, NoSources: true},
			wantArgs: []string{apktoolPth, "d", apkPth, "-o", wantDir, "-r", "-s"},
		},
		{
			name:     "overwrite warning only",
			wantArgs: []string{apktoolPth, "d", apkPth, "-o", wantDir},
			res:      runner.Result{Stderr: outcome.OverwriteWarning},
		},
		{
			name:     "stderr fails",
			wantArgs: []string{apktoolPth, "d", apkPth, "-o", wantDir},
			res:      runner.Result{Stderr: "Input file (app-release.apk) was not found or was not readable."},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mocks.Runner)
			r.On("Run", runner.Invocation{Args: tt.wantArgs}).Return(tt.res, nil).Once()

			dir, err := newTestApktool(foundResolver(), r).Decode(apkPth, tt.opts)

			r.AssertExpectations(t)
			if tt.wantErr {
				var execErr *outcome.ExecutionError
				require.True(t, errors.As(err, &execErr))
				assert.Equal(t, tt.res.Stderr, execErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, wantDir, dir)
		})
	}
}

func TestDecode_ToolNotFound(t *testing.T) {
	resolver := new(mocks.Resolver)
	resolver.On("Resolve", ToolName).Return("", &toolpath.NotFoundError{Name: ToolName})
	r := new(mocks.Runner)

	_, err := newTestApktool(resolver, r).Decode("app.apk", DecodeOptions{})

	var notFound *toolpath.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	r.AssertNotCalled(t, "Run", mock.Anything)
}

func TestBuild(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "app-release")
	outPth := filepath.Join(tmpDir, "out.apk")

	tests := []struct {
		name     string
		opts     BuildOptions
		wantArgs []string
		res      runner.Result
		wantErr  bool
	}{
		{
			name:     "built marker",
			wantArgs: []string{apktoolPth, "b", dir, "-o", outPth},
			res:      runner.Result{Stdout: "I: Building apk file...\nI: Built apk...\n", Stderr: "W: noise"},
		},
		{
			name:     "aapt2",
			opts:     BuildOptions{UseAAPT2: true},
			wantArgs: []string{apktoolPth, "b", dir, "-o", outPth, "--use-aapt2"},
			res:      runner.Result{Stdout: "I: Built apk...\n"},
		},
		{
			name:     "missing marker",
			wantArgs: []string{apktoolPth, "b", dir, "-o", outPth},
			res:      runner.Result{Stdout: "I: Building resources...\n", Stderr: "brut.androlib.AndrolibException: could not exec aapt"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mocks.Runner)
			r.On("Run", runner.Invocation{Args: tt.wantArgs}).Return(tt.res, nil).Once()

			err := newTestApktool(foundResolver(), r).Build(dir, outPth, tt.opts)

			r.AssertExpectations(t)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeDir(t *testing.T) {
	assert.Equal(t, "/work/app", DecodeDir("/work/app.apk"))
	assert.Equal(t, "/work/app.v2", DecodeDir("/work/app.v2.apk"))
	assert.Equal(t, "/work/app", DecodeDir("/work/app"))
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	content := `apkFileName: app-release.apk
compressionType: false
sdkInfo:
  minSdkVersion: '21'
  targetSdkVersion: '33'
sharedLibrary: false
version: 2.9.3
versionInfo:
  versionCode: '42'
  versionName: 1.4.2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFileName), []byte(content), 0644))

	got, err := ReadMetadata(fileutil.NewFileManager(), dir)

	require.NoError(t, err)
	assert.Equal(t, Metadata{
		Version:     "2.9.3",
		APKFileName: "app-release.apk",
		SDKInfo:     map[string]string{"minSdkVersion": "21", "targetSdkVersion": "33"},
		VersionInfo: VersionInfo{VersionCode: "42", VersionName: "1.4.2"},
	}, got)
	assert.Equal(t, "app-release.apk (versionName: 1.4.2, versionCode: 42, minSdkVersion: 21, targetSdkVersion: 33)", got.String())
}

func TestReadMetadata_Missing(t *testing.T) {
	_, err := ReadMetadata(fileutil.NewFileManager(), t.TempDir())
	assert.Error(t, err)
}
