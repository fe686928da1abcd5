package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shaban/avfaudio/session"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List audio session categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tIDENTIFIER\tOPTIONS")
			for _, c := range session.Categories() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name(), c, session.AllowedOptions(c))
			}
			return tw.Flush()
		},
	}
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List category options and their bit values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tVALUE\tCATEGORIES")
			for _, opt := range session.Options() {
				var cats []session.Category
				for _, c := range session.Categories() {
					if session.Validate(c, opt) == nil {
						cats = append(cats, c)
					}
				}
				fmt.Fprintf(tw, "%s\t0x%02x\t%s\n", opt, uint(opt), categoryNames(cats))
			}
			fmt.Fprintf(tw, "%s\t0x%02x\t%s\n", session.NotifyOthersOnDeactivation, uint(session.NotifyOthersOnDeactivation), "(deactivate)")
			return tw.Flush()
		},
	}
}

func (a *app) modesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List audio session modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tIDENTIFIER\tCATEGORIES")
			for _, m := range session.Modes() {
				var cats []session.Category
				for _, c := range session.Categories() {
					if session.ValidateMode(c, m) == nil {
						cats = append(cats, c)
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name(), m, categoryNames(cats))
			}
			return tw.Flush()
		},
	}
}

func categoryNames(cats []session.Category) string {
	if len(cats) == len(session.Categories()) {
		return "any"
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name()
	}
	return strings.Join(names, ", ")
}

func (a *app) checkCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "check <category> [option...]",
		Short: "Validate a category, options and mode combination",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session.ParseCategory(args[0])
			if err != nil {
				return err
			}
			o, err := session.ParseCategoryOptionList(args[1:])
			if err != nil {
				return err
			}
			m, err := session.ParseMode(mode)
			if err != nil {
				return err
			}
			cfg := session.Configuration{Category: c, Mode: m, Options: o}
			fmt.Fprintf(cmd.OutOrStdout(), "%s options=0x%02x\n", cfg, uint(o))
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "allowed options for %s: %s\n", c.Name(), session.AllowedOptions(c))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "default", "session mode")
	return cmd
}
