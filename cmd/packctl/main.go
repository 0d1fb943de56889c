// Command packctl migrates, validates and renders template bodies offline.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tenderpack-backend/library"
	"tenderpack-backend/placeholder"
)

// errInvalidBody is returned by validate when a body has blocking tokens.
var errInvalidBody = errors.New("template body has invalid tokens")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "packctl",
		Short:         "Work with tender pack template bodies",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newValidateCmd(), newRenderCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Rewrite legacy placeholders to {{field:key}} syntax",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			out, stats := placeholder.MigrateLegacyTokens(string(body))
			if write {
				if err := os.WriteFile(args[0], []byte(out), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "rewrote %d token(s)%s\n", stats.Total, describeStats(stats))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}

func describeStats(stats placeholder.MigrationStats) string {
	if len(stats.Rewritten) == 0 {
		return ""
	}
	parts := make([]string, 0, len(stats.Rewritten))
	for p, n := range stats.Rewritten {
		parts = append(parts, fmt.Sprintf("%s=%d", p, n))
	}
	sort.Strings(parts)
	return " (" + strings.Join(parts, ", ") + ")"
}

func newValidateCmd() *cobra.Command {
	var libraryPath string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Report invalid tokens and keys unknown to the field library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			lib, err := library.LoadFile(libraryPath)
			if err != nil {
				return err
			}

			migrated, _ := placeholder.MigrateLegacyTokens(string(body))
			res := placeholder.Validate(migrated, placeholder.Registry{}, lib.Catalog())
			w := cmd.OutOrStdout()
			for _, tok := range res.InvalidTokens {
				fmt.Fprintf(w, "invalid: %s\n", tok)
			}
			for _, k := range res.UnknownKeys {
				fmt.Fprintf(w, "unknown: %s\n", k)
			}
			fmt.Fprintf(w, "%d key(s), %d invalid, %d unknown\n", len(res.Keys), len(res.InvalidTokens), len(res.UnknownKeys))
			if res.Blocking() {
				return errInvalidBody
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&libraryPath, "catalog", "", "field catalog and annexure library YAML (defaults to the built-in library)")
	return cmd
}

// valuesFile is the YAML input of the render command.
type valuesFile struct {
	Fields  map[string]string                `yaml:"fields"`
	Toggles map[string]string                `yaml:"toggles"`
	Tables  map[string]placeholder.TableRows `yaml:"tables"`
}

func newRenderCmd() *cobra.Command {
	var valuesPath string
	var strict bool
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a template body with values from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var values valuesFile
			if valuesPath != "" {
				raw, err := os.ReadFile(valuesPath)
				if err != nil {
					return fmt.Errorf("failed to read values file %s: %w", valuesPath, err)
				}
				if err := yaml.Unmarshal(raw, &values); err != nil {
					return fmt.Errorf("failed to parse values file %s: %w", valuesPath, err)
				}
			}

			migrated, _ := placeholder.MigrateLegacyTokens(string(body))
			registry := placeholder.ComposeRegistry(placeholder.Sources{
				Overrides: values.Fields,
				Toggles:   values.Toggles,
				Tables:    values.Tables,
			})
			res := placeholder.Render(migrated, registry)
			fmt.Fprint(cmd.OutOrStdout(), res.HTML)
			if len(res.MissingFields) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "missing: %s\n", strings.Join(res.MissingFields, ", "))
				if strict {
					return fmt.Errorf("%d field(s) missing", len(res.MissingFields))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&valuesPath, "fields", "f", "", "YAML file with fields, toggles and tables")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any field is missing")
	return cmd
}
