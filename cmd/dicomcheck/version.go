package main

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// buildInfo is filled from debug.ReadBuildInfo() at init.
var buildInfo = struct {
	Version   string
	GoVersion string
	Commit    string
	BuildTime string
	Modified  bool
}{
	Version:   "unknown",
	GoVersion: "unknown",
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	buildInfo.Version = info.Main.Version
	buildInfo.GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			buildInfo.Commit = setting.Value
		case "vcs.time":
			buildInfo.BuildTime = setting.Value
		case "vcs.modified":
			buildInfo.Modified = setting.Value == "true"
		}
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "short",
			Usage: "Print only the version",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		if command.Bool("short") {
			fmt.Println(buildInfo.Version)
			return nil
		}

		fmt.Printf("dicomcheck %s\n", buildInfo.Version)
		fmt.Printf("go: %s\n", buildInfo.GoVersion)
		if buildInfo.Commit != "" {
			commit := buildInfo.Commit
			if buildInfo.Modified {
				commit += " (dirty)"
			}
			fmt.Printf("commit: %s\n", commit)
		}
		if buildInfo.BuildTime != "" {
			fmt.Printf("built: %s\n", buildInfo.BuildTime)
		}
		return nil
	},
}
