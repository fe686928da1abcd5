package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shaban/avfaudio"
	"github.com/shaban/avfaudio/internal/ui"
	"github.com/shaban/avfaudio/session"
)

func (a *app) applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured category, mode and options",
		Long: "Apply sets category, mode and options in one call, then the preferred\n" +
			"sample rate and IO buffer latency. Values come from the config file,\n" +
			"AVFAUDIO_ environment variables or flags, in increasing precedence.",
		Args: cobra.NoArgs,
		RunE: a.runApply,
	}
	cmd.Flags().String("category", "", "session category")
	cmd.Flags().StringSlice("options", nil, "category options, comma separated")
	cmd.Flags().String("mode", "", "session mode")
	cmd.Flags().Bool("activate", false, "activate the session afterwards")
	cmd.Flags().String("latency", "", "latency class (low, medium, high)")
	cmd.Flags().Float64("sample-rate", 0, "preferred hardware sample rate")
	bindFlags(a.v, cmd.Flags(), map[string]string{
		"category":    "category",
		"options":     "options",
		"mode":        "mode",
		"activate":    "activate",
		"latency":     "latency",
		"sample-rate": "preferred-sample-rate",
	})
	return cmd
}

func (a *app) runApply(cmd *cobra.Command, _ []string) error {
	s, err := a.settings()
	if err != nil {
		return err
	}
	cfg, err := s.Configuration()
	if err != nil {
		return err
	}
	class, err := s.LatencyClass()
	if err != nil {
		return err
	}

	c, err := a.controller(s)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if err := c.Apply(ctx, cfg); err != nil {
		return err
	}
	if s.PreferredSampleRate > 0 {
		if err := c.SetPreferredSampleRate(ctx, s.PreferredSampleRate); err != nil {
			return err
		}
	}
	if err := c.SetPreferredLatency(ctx, class); err != nil {
		return err
	}
	if s.Activate {
		if err := c.Activate(ctx, 0); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", cfg)
	return nil
}

func (a *app) activateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Activate the audio session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			c, err := a.controller(s)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Activate(cmd.Context(), 0); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "active")
			return nil
		},
	}
}

func (a *app) deactivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate the audio session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			c, err := a.controller(s)
			if err != nil {
				return err
			}
			defer c.Close()
			opts := s.DeactivateOptions()
			if err := c.Deactivate(cmd.Context(), opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inactive (%s)\n", opts)
			return nil
		},
	}
	cmd.Flags().Bool("notify-others", true, "let interrupted apps resume")
	bindFlags(a.v, cmd.Flags(), map[string]string{"notify-others": "notify-others-on-deactivation"})
	return cmd
}

type status struct {
	Configuration     session.Configuration `json:"configuration"`
	OtherAudioPlaying bool                  `json:"other_audio_playing"`
	Hardware          session.Hardware      `json:"hardware"`
	Route             session.Route         `json:"route"`
}

func readStatus(s *session.Session) (status, error) {
	var st status
	var err error
	if st.Configuration, err = s.Configuration(); err != nil {
		return st, err
	}
	if st.OtherAudioPlaying, err = s.OtherAudioPlaying(); err != nil {
		return st, err
	}
	if st.Hardware, err = s.Hardware(); err != nil {
		return st, err
	}
	if st.Route, err = s.CurrentRoute(); err != nil {
		return st, err
	}
	return st, nil
}

func (a *app) statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current category, options, mode, route and hardware values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := readStatus(a.session())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			return printStatus(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printStatus(w io.Writer, st status) error {
	tw := newTable(w)
	h := st.Hardware
	fmt.Fprintf(tw, "category:\t%s\n", st.Configuration.Category.Name())
	fmt.Fprintf(tw, "mode:\t%s\n", st.Configuration.Mode.Name())
	fmt.Fprintf(tw, "options:\t%s (0x%02x)\n", st.Configuration.Options, uint(st.Configuration.Options))
	fmt.Fprintf(tw, "other audio playing:\t%t\n", st.OtherAudioPlaying)
	fmt.Fprintf(tw, "sample rate:\t%.0f Hz (preferred %.0f)\n", h.SampleRate, h.PreferredSampleRate)
	fmt.Fprintf(tw, "io buffer:\t%v, %d frames (preferred %v)\n", h.IOBufferDuration, h.BufferFrames(), h.PreferredIOBufferDuration)
	fmt.Fprintf(tw, "latency:\tout %v, in %v\n", h.OutputLatency, h.InputLatency)
	for _, p := range st.Route.Inputs {
		fmt.Fprintf(tw, "input:\t%s (%s, %dch)\n", p.Name, p.Type, p.Channels)
	}
	for _, p := range st.Route.Outputs {
		fmt.Fprintf(tw, "output:\t%s (%s, %dch)\n", p.Name, p.Type, p.Channels)
	}
	return tw.Flush()
}

func (a *app) pickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Pick a category and options interactively and apply them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			start, err := a.session().Configuration()
			if errors.Is(err, session.ErrUnsupported) {
				return err
			}
			if err != nil {
				// fall back to the configured values
				if start, err = s.Configuration(); err != nil {
					return err
				}
			}

			prog := tea.NewProgram(ui.NewPicker(start),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			final, err := prog.Run()
			if err != nil {
				return err
			}
			p, ok := final.(ui.Picker)
			if !ok || !p.Done() {
				return nil
			}
			return a.applyPicked(cmd, p.Configuration())
		},
	}
}

func (a *app) applyPicked(cmd *cobra.Command, cfg session.Configuration) error {
	s, err := a.settings()
	if err != nil {
		return err
	}
	c, err := a.controller(s)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Apply(cmd.Context(), cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", cfg)
	return nil
}

func (a *app) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print route changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			c, err := a.controller(s)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			rm := avfaudio.NewRouteMonitor(c, func(rc avfaudio.RouteChange) {
				printRouteChange(out, rc)
			})
			if err := rm.SetPollingInterval(interval); err != nil {
				return err
			}
			if err := rm.Start(cmd.Context()); err != nil {
				return err
			}
			defer rm.Stop()
			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "polling interval")
	return cmd
}

func printRouteChange(w io.Writer, rc avfaudio.RouteChange) {
	for _, p := range rc.AddedInputs {
		fmt.Fprintf(w, "+ input  %s (%s)\n", p.Name, p.Type)
	}
	for _, p := range rc.RemovedInputs {
		fmt.Fprintf(w, "- input  %s (%s)\n", p.Name, p.Type)
	}
	for _, p := range rc.AddedOutputs {
		fmt.Fprintf(w, "+ output %s (%s)\n", p.Name, p.Type)
	}
	for _, p := range rc.RemovedOutputs {
		fmt.Fprintf(w, "- output %s (%s)\n", p.Name, p.Type)
	}
}
