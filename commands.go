package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitrise-steplib/apkutil/apktool"
	"github.com/bitrise-steplib/apkutil/netconfig"
	"github.com/spf13/pflag"
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

type command struct {
	name  string
	usage string
	run   func(a app, args []string) error
}

var commands = []command{
	{name: "decode", usage: "<apk> [-r|--no-res] [-s|--no-src]", run: decodeCmd},
	{name: "build", usage: "<dir> <out-apk> [--aapt2]", run: buildCmd},
	{name: "align", usage: "<apk>", run: alignCmd},
	{name: "sign", usage: "<apk>", run: signCmd},
	{name: "packagename", usage: "<apk>", run: packageNameCmd},
	{name: "manifest", usage: "<apk>", run: manifestCmd},
	{name: "repack", usage: "<dir> <out-apk> [--aapt2]", run: repackCmd},
	{name: "screenshot", usage: "", run: screenshotCmd},
	{name: "pull", usage: "<keyword>", run: pullCmd},
	{name: "scan", usage: "<dir>", run: scanCmd},
	{name: "gen-netconfig", usage: "<dir>", run: genNetconfigCmd},
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func parseArgs(flags *pflag.FlagSet, args []string, want int) ([]string, error) {
	flags.SetOutput(io.Discard)
	if err := flags.Parse(args); err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	if flags.NArg() != want {
		return nil, &usageError{msg: fmt.Sprintf("expected %d argument(s), got %d", want, flags.NArg())}
	}
	return flags.Args(), nil
}

func decodeCmd(a app, args []string) error {
	flags := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	var opts apktool.DecodeOptions
	flags.BoolVarP(&opts.NoResources, "no-res", "r", false, "do not decode resources")
	flags.BoolVarP(&opts.NoSources, "no-src", "s", false, "do not decode sources")

	pos, err := parseArgs(flags, args, 1)
	if err != nil {
		return err
	}

	a.logger.Infof("Decoding %s", pos[0])
	dir, err := a.apktool.Decode(pos[0], opts)
	if err != nil {
		return err
	}
	a.logger.Donef("Decoded to %s", dir)
	return nil
}

func buildFlags(name string) (*pflag.FlagSet, *apktool.BuildOptions) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	var opts apktool.BuildOptions
	flags.BoolVar(&opts.UseAAPT2, "aapt2", false, "build with aapt2")
	return flags, &opts
}

func buildCmd(a app, args []string) error {
	flags, opts := buildFlags("build")
	pos, err := parseArgs(flags, args, 2)
	if err != nil {
		return err
	}

	a.logger.Infof("Building %s", pos[0])
	if err := a.apktool.Build(pos[0], pos[1], *opts); err != nil {
		return err
	}
	a.logger.Donef("Built %s", pos[1])
	return nil
}

func alignCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("align", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	a.logger.Infof("Aligning %s", pos[0])
	if err := a.aligner.Align(pos[0]); err != nil {
		return err
	}
	a.logger.Donef("Aligned %s", pos[0])
	return nil
}

func signCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("sign", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	a.logger.Infof("Signing %s", pos[0])
	if err := a.signer.Sign(pos[0]); err != nil {
		return err
	}
	a.logger.Donef("Signed %s", pos[0])
	return nil
}

func packageNameCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("packagename", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	info, err := a.inspector.PackageName(pos[0])
	if err != nil {
		return err
	}
	for _, line := range info.RawLines {
		a.logger.Printf("%s", strings.TrimSpace(line))
	}
	a.logger.Donef("%s", info.PackageName)
	return nil
}

func manifestCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("manifest", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	return a.inspector.DumpManifest(pos[0], os.Stdout)
}

func repackCmd(a app, args []string) error {
	flags, opts := buildFlags("repack")
	pos, err := parseArgs(flags, args, 2)
	if err != nil {
		return err
	}

	return repack(a, pos[0], pos[1], *opts)
}

// repack builds dir into outApk, then aligns and signs it. The first failing step stops the pipeline.
func repack(a app, dir, outApk string, opts apktool.BuildOptions) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"build", func() error { return a.apktool.Build(dir, outApk, opts) }},
		{"align", func() error { return a.aligner.Align(outApk) }},
		{"sign", func() error { return a.signer.Sign(outApk) }},
	}

	for _, step := range steps {
		a.logger.Infof("Repack: %s", step.name)
		if err := step.run(); err != nil {
			return fmt.Errorf("repack stopped at %s: %w", step.name, err)
		}
	}

	a.logger.Donef("Repacked %s", outApk)
	return nil
}

func screenshotCmd(a app, args []string) error {
	if _, err := parseArgs(pflag.NewFlagSet("screenshot", pflag.ContinueOnError), args, 0); err != nil {
		return err
	}

	b, err := a.bridge()
	if err != nil {
		return err
	}

	pth, err := b.Screenshot()
	if err != nil {
		return err
	}
	a.logger.Donef("Screenshot saved to %s", pth)
	return nil
}

func pullCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("pull", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	b, err := a.bridge()
	if err != nil {
		return err
	}

	pulled, err := b.PullPackages(pos[0])
	if err != nil {
		return err
	}
	a.logger.Donef("Pulled %d apk(s)", len(pulled))
	return nil
}

func scanCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("scan", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	a.logger.Infof("Sensitive files:")
	hits := a.scanner.Scan(pos[0])
	if len(hits) == 0 {
		a.logger.Infof("None")
		return nil
	}
	for _, pth := range hits {
		a.logger.Warnf("%s", pth)
	}
	return nil
}

func genNetconfigCmd(a app, args []string) error {
	pos, err := parseArgs(pflag.NewFlagSet("gen-netconfig", pflag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	pth, err := netconfig.Write(a.fileManager, pos[0])
	if err != nil {
		return err
	}
	a.logger.Donef("Generated %s", pth)
	a.logger.Printf(`Reference it from the <application> element: android:networkSecurityConfig="@xml/network_security_config"`)
	return nil
}
