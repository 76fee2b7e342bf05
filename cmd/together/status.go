package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
	"github.com/tartampluch/go-together/internal/tui"
)

func newVersionCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Args:        userArgs(cobra.NoArgs),
		Annotations: map[string]string{annotNoStore: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(a.out)
		},
	}
}

func newInitCmd(a *cliApp) *cobra.Command {
	var me, partner, start string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set your names and the day you got together",
		Long: `Init records the couple's profile and starts the counter.

Once onboarded, running it again changes only the flags you pass.

Example:
  together init --me Alice --partner Bob --start 2023-06-20
  together init --partner Robert`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			first, err := a.journal.IsFirstUse(ctx)
			if err != nil {
				return err
			}

			var p journal.Profile
			if first {
				p, err = a.journal.Onboard(ctx, me, partner, start)
			} else {
				var u journal.ProfileUpdate
				if cmd.Flags().Changed(config.FlagMe) {
					u.MyName = &me
				}
				if cmd.Flags().Changed(config.FlagPartner) {
					u.PartnerName = &partner
				}
				if cmd.Flags().Changed(config.FlagStart) {
					u.StartDate = &start
				}
				p, _, err = a.journal.UpdateProfile(ctx, u)
			}
			if err != nil {
				return err
			}
			return a.emit(p, func(w io.Writer) {
				fmt.Fprintf(w, config.OutOnboarded, p.StartDate)
			})
		},
	}
	cmd.Flags().StringVar(&me, config.FlagMe, "", config.FlagDescMe)
	cmd.Flags().StringVar(&partner, config.FlagPartner, "", config.FlagDescPart)
	cmd.Flags().StringVar(&start, config.FlagStart, "", config.FlagDescStart)
	return cmd
}

// statusView is the --json shape of the status command.
type statusView struct {
	MyName      string             `json:"myName"`
	PartnerName string             `json:"partnerName"`
	StartDate   string             `json:"startDate,omitempty"`
	Elapsed     *engine.Elapsed    `json:"elapsed,omitempty"`
	Upcoming    []journal.Upcoming `json:"upcoming"`
	Unread      int                `json:"unread"`
}

func newStatusCmd(a *cliApp) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how long you have been together and what comes next",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			data, err := a.journal.Data(ctx)
			if err != nil {
				return err
			}

			me, partner := data.UserProfile.DisplayNames()
			v := statusView{
				MyName:      me,
				PartnerName: partner,
				StartDate:   data.UserProfile.StartDate,
				Upcoming:    journal.UpcomingFrom(data.Anniversaries, a.journal.Now(), limit),
			}
			for _, m := range data.Moments {
				if !m.IsRead {
					v.Unread++
				}
			}

			anchor, err := a.journal.Anchor(ctx)
			switch {
			case err == nil:
				e := engine.ComputeElapsed(anchor, a.journal.Now())
				v.Elapsed = &e
			case !errors.Is(err, journal.ErrNotOnboarded):
				return err
			}

			return a.emit(v, func(w io.Writer) { a.printStatus(w, v) })
		},
	}
	cmd.Flags().IntVar(&limit, config.FlagLimit, config.UpcomingDefault, config.FlagDescLimit)
	return cmd
}

func (a *cliApp) printStatus(w io.Writer, v statusView) {
	tr := a.tr
	fmt.Fprintln(w, tr.T(config.TKeyLblCouple, map[string]any{"Me": v.MyName, "Partner": v.PartnerName}))
	if v.Elapsed == nil {
		fmt.Fprintln(w, tr.T(config.TKeyLblOnboard, nil))
	} else {
		fmt.Fprintln(w, tr.T(config.TKeyLblSince, map[string]any{"Date": v.StartDate}))
		fmt.Fprintf(w, "%s  %s %s\n",
			tr.T(config.TKeyTotalDays, map[string]any{"Days": v.Elapsed.TotalDays}),
			tr.Elapsed(*v.Elapsed),
			v.Elapsed.Clock(),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, tr.T(config.TKeyLblUpcoming, nil))
	if len(v.Upcoming) == 0 {
		fmt.Fprintln(w, "  "+tr.T(config.TKeyLblNoUpcoming, nil))
	}
	for _, u := range v.Upcoming {
		fmt.Fprintf(w, "  %s %s  %s  %s\n",
			config.AnniversaryIcons[u.Type], u.Name,
			u.Next.Date.Format(config.DateFormatFullDash),
			tr.Countdown(u.Next.DaysUntil),
		)
	}
	if v.Unread > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, tr.T(config.TKeyUnread, map[string]any{"Count": v.Unread}))
	}
}

func newWatchCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the live counter in the terminal",
		Long: `Watch opens a full screen counter that ticks every second until you press q.

The start date must be set with init first.`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			anchor, err := a.journal.Anchor(ctx)
			if err != nil {
				return err
			}
			p, err := a.journal.Profile(ctx)
			if err != nil {
				return err
			}
			upcoming, err := a.journal.Upcoming(ctx, config.UpcomingDefault)
			if err != nil {
				return err
			}
			return tui.Run(ctx, tui.Options{
				Notifier:   engine.NewNotifier(),
				Anchor:     anchor,
				Profile:    p,
				Upcoming:   upcoming,
				Translator: a.tr,
			})
		},
	}
}
