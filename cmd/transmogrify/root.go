package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/convert"
)

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

var errNotConvertible = errors.New("input is not a recognized MCP server configuration")

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transmogrify [file|-]",
		Short: "Convert MCP server JSON into LibreChat YAML",
		Long: `transmogrify reads an MCP server configuration written for Claude Desktop, Cline or VS Code
(mcpServers, servers or mcp.servers) and prints the mcpServers block for librechat.yaml.
The configuration is read from the named file, or from stdin when the argument is "-" or missing.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelName, _ := cmd.Flags().GetString("log-level")
			level, err := log.ParseLevel(levelName)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
		RunE: runConvert,
	}

	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.Flags().String("mode", "policy", "Quoting mode: policy or regex")
	cmd.Flags().StringP("output", "o", "", "Write the YAML to this file instead of stdout")
	cmd.Flags().Bool("copy", false, "Also copy the YAML to the system clipboard")

	cmd.AddCommand(newServeCommand())

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	output, _ := cmd.Flags().GetString("output")
	copyOut, _ := cmd.Flags().GetBool("copy")

	mode, err := convert.ParseMode(modeName)
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	input, err := readInput(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	// Blank input is not an error, there is just nothing to print.
	if strings.TrimSpace(input) == "" {
		log.Debug("empty input")
		return nil
	}

	result, err := convert.New(convert.WithMode(mode)).Run(input)
	if err != nil {
		log.WithError(err).WithField("source", source).Debug("conversion failed")
		return errNotConvertible
	}

	log.WithFields(log.Fields{
		"shape":   result.Shape.String(),
		"servers": len(result.Servers),
		"mode":    mode.String(),
	}).Info("converted configuration")

	if output != "" {
		if err := os.WriteFile(output, []byte(result.YAML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	} else if _, err := io.WriteString(cmd.OutOrStdout(), result.YAML); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if copyOut {
		if err := writeClipboard(result.YAML); err != nil {
			log.WithError(err).Warn("failed to copy to clipboard")
		} else {
			log.Info("copied to clipboard")
		}
	}

	return nil
}

func readInput(stdin io.Reader, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(data), nil
}
