package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/scopekit/dag"
	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/manifest"
)

// ValidateResult is the payload of the validate command.
type ValidateResult struct {
	Manifest string               `json:"manifest"`
	Services int                  `json:"services"`
	Valid    bool                 `json:"valid"`
	Report   *di.ValidationReport `json:"report"`
	// Registrations lists defects a Builder would reject, such as duplicate
	// single-valued keys.
	Registrations []*apperrors.Error `json:"registrations,omitempty"`
}

type validateOptions struct {
	includeDirs []string
	policy      string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest for cycles, captive and unresolved dependencies",
		Long: `Load a manifest with its includes and analyze the dependency graph
without constructing any service. Unused services (not reachable from a
root) are listed but do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.includeDirs, "include-dir", "I", nil, "additional directories searched for included manifests")
	cmd.Flags().StringVar(&opts.policy, "captive-policy", "strict", "captive dependency policy (strict|direct)")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *validateOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(rootOpts, cmd)

	policy, err := dag.ParsePolicy(opts.policy)
	if err != nil {
		return commandError(f, CodeInvalidFlag, err)
	}

	m, err := loadManifest(path, opts.includeDirs)
	if err != nil {
		return commandError(f, CodeLoadFailed, err)
	}
	f.VerboseLog("loaded manifest %q with %d service(s)", m.Name, len(m.Services))

	g, err := m.Graph()
	if err != nil {
		return commandError(f, CodeLoadFailed, err)
	}

	report := di.ValidateGraph(g, policy)
	regErrs := manifest.Check(m)
	result := ValidateResult{
		Manifest:      m.Name,
		Services:      len(m.Services),
		Valid:         report.OK() && len(regErrs) == 0,
		Report:        report,
		Registrations: regErrs,
	}

	if !result.Valid {
		problems := len(regErrs) + len(report.Errors())
		msg := fmt.Sprintf("validation failed with %d problem(s)", problems)
		if f.JSON() {
			if err := f.Error(CodeValidationFailed, msg, result); err != nil {
				return err
			}
		} else {
			f.Printf("✗ %s: %d problem(s)\n", m.Name, problems)
			printRegistrations(f, regErrs)
			printReport(f, report)
		}
		return NewExitError(ExitFailure, msg)
	}

	if f.JSON() {
		return f.Success(result)
	}
	f.Printf("✓ %s: %d service(s) valid\n", m.Name, len(m.Services))
	printReport(f, report)
	return nil
}

// printReport writes one indented line per finding.
func printReport(f *OutputFormatter, report *di.ValidationReport) {
	if report.OK() && len(report.UnusedServices) == 0 {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(report.String(), "\n"), "\n") {
		f.Printf("  %s\n", line)
	}
}

func printRegistrations(f *OutputFormatter, errs []*apperrors.Error) {
	for _, e := range errs {
		if e.Code == apperrors.ErrCodeDuplicateRegistration {
			f.Printf("  duplicate: %s is registered %v times\n", e.Key, e.Details["count"])
			continue
		}
		f.Printf("  registration: %s\n", e.Message)
	}
}
