package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/infracollect/dicomcheck/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var validateCommand = &cli.Command{
	Name:  "validate-config",
	Usage: "Validate a run configuration file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "archive",
			Value: "archive.zip",
			Usage: "Archive path used to expand ${ARCHIVE_NAME} while validating",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "config",
			UsageText: "The configuration file to validate",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		configFilename := command.StringArg("config")
		if configFilename == "" {
			return fmt.Errorf("no config file provided")
		}

		data, err := readConfigFile(configFilename)
		if err != nil {
			return fmt.Errorf("failed to read config file '%s': %w", configFilename, err)
		}

		logger = logger.With(zap.String("config_filename", configFilename))
		logger.Debug("validating config file")

		cfg, err := runner.ParseCheckConfig(data)
		if err != nil {
			fmt.Println(formatValidationError(err))
			return fmt.Errorf("config file '%s' is invalid", configFilename)
		}

		variables, err := runner.BuildVariables(command.String("archive"), time.Now(), command.StringSlice("allowed-env"))
		if err != nil {
			return fmt.Errorf("failed to build variables: %w", err)
		}

		if err := runner.ExpandTemplates(&cfg, variables); err != nil {
			return fmt.Errorf("failed to expand templates: %w", err)
		}

		fmt.Printf("✓ Config file '%s' is valid\n", configFilename)
		return nil
	},
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "config has %d validation error(s):", len(validationErrs))
		for _, fe := range validationErrs {
			fmt.Fprintf(&sb, "\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag())
			if fe.Param() != "" {
				fmt.Fprintf(&sb, " (param: %s)", fe.Param())
			}
		}
		return errors.New(sb.String())
	}
	return err
}
