package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pdfcmd/internal/services"
)

func (a *app) newPrefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show stored preferences",
		Args:  a.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := a.preferences()
			if err != nil {
				return err
			}

			data, err := prefs.GetPreferences()
			if err != nil {
				return fmt.Errorf("failed to read preferences: %w", err)
			}

			mode := data.ValidationMode
			if mode == "" {
				mode = a.container.GetConfig().ValidationMode + " (config)"
			}
			workers := fmt.Sprint(data.Workers)
			if data.Workers == 0 {
				workers = "auto"
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%t\n", services.PrefCompressByDefault, data.CompressByDefault)
			fmt.Fprintf(tw, "%s\t%s\n", services.PrefValidationMode, mode)
			fmt.Fprintf(tw, "%s\t%s\n", services.PrefWorkers, workers)
			fmt.Fprintf(tw, "%s\t%d\n", services.PrefHistoryLimit, data.HistoryLimit)
			return tw.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Update a stored preference",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return a.usageError(cmd, fmt.Sprintf("expected KEY and VALUE, got %d arguments", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences()
			if err != nil {
				return err
			}
			if err := prefs.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(set)
	return cmd
}

func (a *app) preferences() (*services.PreferencesService, error) {
	prefs := a.container.GetPreferencesService()
	if prefs == nil {
		return nil, errNoDatabase
	}
	return prefs, nil
}
