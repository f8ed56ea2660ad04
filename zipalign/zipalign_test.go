package zipalign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/apkutil/mocks"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const zipalignPth = "/sdk/build-tools/34.0.0/zipalign"

// fakeZipalign writes content to the output argument like zipalign does and returns res.
func fakeZipalign(content string, res runner.Result) func(runner.Invocation) runner.Result {
	return func(inv runner.Invocation) runner.Result {
		out := inv.Args[len(inv.Args)-1]
		if err := os.WriteFile(out, []byte(content), 0644); err != nil {
			panic(err)
		}
		return res
	}
}

func setup(t *testing.T) (string, *mocks.Resolver) {
	apkPth := filepath.Join(t.TempDir(), "app.apk")
	require.NoError(t, os.WriteFile(apkPth, []byte("original"), 0644))

	resolver := new(mocks.Resolver)
	resolver.On("Resolve", ToolName).Return(zipalignPth, nil)

	return apkPth, resolver
}

func TestAlign_ReplacesOriginal(t *testing.T) {
	apkPth, resolver := setup(t)
	tmpPth := filepath.Join(filepath.Dir(apkPth), TempFileName)

	r := new(mocks.Runner)
	r.On("Run", runner.Invocation{Args: []string{zipalignPth, "-f", "-p", "4", apkPth, tmpPth}}).
		Return(fakeZipalign("aligned", runner.Result{}), nil)

	err := New(resolver, r, fileutil.NewFileManager(), log.NewLogger()).Align(apkPth)

	require.NoError(t, err)
	got, err := os.ReadFile(apkPth)
	require.NoError(t, err)
	assert.Equal(t, "aligned", string(got))
	assert.NoFileExists(t, tmpPth)
	r.AssertExpectations(t)
}

func TestAlign_FailureKeepsOriginal(t *testing.T) {
	apkPth, resolver := setup(t)
	tmpPth := filepath.Join(filepath.Dir(apkPth), TempFileName)

	r := new(mocks.Runner)
	r.On("Run", mock.Anything).Return(fakeZipalign("half written", runner.Result{Stderr: "Unable to open 'app.apk' as zip archive"}), nil)

	err := New(resolver, r, fileutil.NewFileManager(), log.NewLogger()).Align(apkPth)

	assert.EqualError(t, err, "zipalign failed: Unable to open 'app.apk' as zip archive")
	got, err := os.ReadFile(apkPth)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
	assert.NoFileExists(t, tmpPth)
}

func TestAlign_FailureWithoutOutput(t *testing.T) {
	apkPth, resolver := setup(t)

	r := new(mocks.Runner)
	r.On("Run", mock.Anything).Return(runner.Result{Stderr: "zipalign: invalid option"}, nil)

	err := New(resolver, r, fileutil.NewFileManager(), log.NewLogger()).Align(apkPth)

	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(apkPth), TempFileName))
}

func TestAlign_ApkNamedLikeTempOutput(t *testing.T) {
	apkPth := filepath.Join(t.TempDir(), TempFileName)
	require.NoError(t, os.WriteFile(apkPth, []byte("original"), 0644))

	resolver := new(mocks.Resolver)
	resolver.On("Resolve", ToolName).Return(zipalignPth, nil)
	r := new(mocks.Runner)
	r.On("Run", mock.Anything).Return(runner.Result{Stderr: "Unable to open"}, nil)

	err := New(resolver, r, fileutil.NewFileManager(), log.NewLogger()).Align(apkPth)

	assert.Error(t, err)
	got, err := os.ReadFile(apkPth)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
	r.AssertNotCalled(t, "Run", mock.Anything)
}
