package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/journal"
)

// cellWidth caps free text in list tables.
const cellWidth = 40

// -----------------------------------------------------------------------------
// Diary
// -----------------------------------------------------------------------------

func newDiaryCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Write and read diary entries",
	}
	cmd.AddCommand(newDiaryAddCmd(a), newDiaryListCmd(a), newDiaryShowCmd(a), newDiaryEditCmd(a), newDiaryRmCmd(a))
	return cmd
}

func newDiaryAddCmd(a *cliApp) *cobra.Command {
	var mood, weather string
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Write a diary entry",
		Long: `Add records a new diary entry. The mood defaults to happy.

Example:
  together diary add "Picnic by the lake" --mood loved --weather sunny`,
		Args: userArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.journal.AddDiary(cmd.Context(), strings.Join(args, " "), mood, weather)
			if err != nil {
				return err
			}
			return a.emit(d, func(w io.Writer) { fmt.Fprintf(w, config.OutCreated, config.RecordDiary, d.ID) })
		},
	}
	cmd.Flags().StringVar(&mood, config.FlagMood, "", config.FlagDescMood)
	cmd.Flags().StringVar(&weather, config.FlagWeather, "", config.FlagDescWthr)
	return cmd
}

func newDiaryListCmd(a *cliApp) *cobra.Command {
	var (
		filter string
		day    string
		page   int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List diary entries, newest first",
		Long: `List shows one page of diary entries.

Example:
  together diary list --filter week
  together diary list --date 2024-06-15
  together diary list --page 2 --limit 5 --json`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if day != "" {
				entries, err := a.journal.DiariesOn(ctx, day)
				if err != nil {
					return err
				}
				return a.emit(entries, func(w io.Writer) { a.printDiaries(w, entries) })
			}

			f := journal.DiaryFilter(filter)
			switch f {
			case journal.FilterAll, journal.FilterToday, journal.FilterWeek, journal.FilterMonth:
			default:
				return usageError{fmt.Errorf("%s: %s %q", config.ErrValidation, config.FlagFilter, filter)}
			}
			p, err := a.journal.ListDiaries(ctx, f, page, limit)
			if err != nil {
				return err
			}
			return a.emit(p, func(w io.Writer) {
				a.printDiaries(w, p.Items)
				fmt.Fprintf(w, config.OutPageFooter, p.Page, len(p.Items), p.Total)
			})
		},
	}
	cmd.Flags().StringVar(&filter, config.FlagFilter, string(journal.FilterAll), config.FlagDescFilt)
	cmd.Flags().StringVar(&day, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().IntVar(&page, config.FlagPage, 1, config.FlagDescPage)
	cmd.Flags().IntVar(&limit, config.FlagLimit, 0, config.FlagDescLimit)
	return cmd
}

func (a *cliApp) printDiaries(w io.Writer, entries []journal.Diary) {
	if len(entries) == 0 {
		fmt.Fprintln(w, config.OutNone)
		return
	}
	now := a.journal.Now()
	table(w, "ID\tMOOD\tWRITTEN\tCONTENT", func(tw io.Writer) {
		for _, d := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, config.MoodIcons[d.Mood], a.tr.TimeAgo(d.CreatedAt, now), truncate(d.Content, cellWidth))
		}
	})
}

func newDiaryShowCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one diary entry",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.journal.Diary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(d, func(w io.Writer) {
				loc := a.journal.Location()
				fmt.Fprintf(w, "%s %s", config.MoodIcons[d.Mood], d.CreatedAt.In(loc).Format(config.DateFormatDisplay))
				if d.Weather != "" {
					fmt.Fprintf(w, "  %s", d.Weather)
				}
				fmt.Fprintf(w, "\n\n%s\n", d.Content)
			})
		},
	}
}

func newDiaryEditCmd(a *cliApp) *cobra.Command {
	var content, mood string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the content or mood of an entry",
		Long: `Edit replaces the fields you pass and keeps the others.

Example:
  together diary edit 3f2a... --mood grateful
  together diary edit 3f2a... --content "Picnic by the river"`,
		Args: userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := a.journal.Diary(ctx, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed(config.FlagContent) {
				content = current.Content
			}
			if !cmd.Flags().Changed(config.FlagMood) {
				mood = current.Mood
			}
			d, err := a.journal.UpdateDiary(ctx, args[0], content, mood)
			if err != nil {
				return err
			}
			return a.emit(d, func(w io.Writer) { fmt.Fprintf(w, config.OutUpdated, config.RecordDiary, d.ID) })
		},
	}
	cmd.Flags().StringVar(&content, config.FlagContent, "", config.FlagDescCont)
	cmd.Flags().StringVar(&mood, config.FlagMood, "", config.FlagDescMood)
	return cmd
}

func newDiaryRmCmd(a *cliApp) *cobra.Command {
	return newRmCmd(a, config.RecordDiary, func(cmd *cobra.Command, id string) error {
		return a.journal.DeleteDiary(cmd.Context(), id)
	})
}

// newRmCmd builds the "rm <id>" command shared by the record groups.
func newRmCmd(a *cliApp, record string, del func(cmd *cobra.Command, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a " + record,
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := del(cmd, args[0]); err != nil {
				return err
			}
			return a.emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, config.OutDeleted, record, args[0])
			})
		},
	}
}

// -----------------------------------------------------------------------------
// Anniversaries
// -----------------------------------------------------------------------------

func newAnniversaryCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "anniversary",
		Aliases: []string{"ann"},
		Short:   "Keep track of the dates that matter",
	}

	var kind string
	add := &cobra.Command{
		Use:   "add <name> <date>",
		Short: "Add an anniversary",
		Long: `Add records an annual date. Use --MM-DD when the year is unknown.

Example:
  together anniversary add "First date" 2021-03-08
  together anniversary add --type birthday Alice --07-01`,
		Args: userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ann, err := a.journal.AddAnniversary(cmd.Context(), args[0], args[1], kind)
			if err != nil {
				return err
			}
			return a.emit(ann, func(w io.Writer) { fmt.Fprintf(w, config.OutCreated, config.RecordAnniversary, ann.ID) })
		},
	}
	add.Flags().StringVar(&kind, config.FlagType, "", config.FlagDescAType)
	// Flags come first so that a yearless date such as --07-01 is read as an argument.
	add.Flags().SetInterspersed(false)

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List anniversaries by their next occurrence",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			upcoming, err := a.journal.Upcoming(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.emit(upcoming, func(w io.Writer) {
				if len(upcoming) == 0 {
					fmt.Fprintln(w, a.tr.T(config.TKeyLblNoUpcoming, nil))
					return
				}
				table(w, "ID\tNAME\tDATE\tNEXT\tIN", func(tw io.Writer) {
					for _, u := range upcoming {
						fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\n",
							u.ID, config.AnniversaryIcons[u.Type], u.Name, u.Date,
							u.Next.Date.Format(config.DateFormatFullDash), a.tr.Countdown(u.Next.DaysUntil))
					}
				})
			})
		},
	}
	list.Flags().IntVar(&limit, config.FlagLimit, 0, config.FlagDescLimit)

	rm := newRmCmd(a, config.RecordAnniversary, func(cmd *cobra.Command, id string) error {
		return a.journal.DeleteAnniversary(cmd.Context(), id)
	})

	cmd.AddCommand(add, list, rm)
	return cmd
}

// -----------------------------------------------------------------------------
// Moments
// -----------------------------------------------------------------------------

func newMomentCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moment",
		Short: "Leave short messages for each other",
	}

	var kind string
	post := &cobra.Command{
		Use:   "post [content]",
		Short: "Post a moment; without content a quick message is picked",
		Args:  userArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if content == "" {
				quick := journal.QuickMessages()
				content = quick[int(a.journal.Now().Unix())%len(quick)]
			}
			m, err := a.journal.PublishMoment(cmd.Context(), kind, content)
			if err != nil {
				return err
			}
			return a.emit(m, func(w io.Writer) { fmt.Fprintf(w, config.OutCreated, config.RecordMoment, m.ID) })
		},
	}
	post.Flags().StringVar(&kind, config.FlagType, "", config.FlagDescMType)

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the newest moments",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			moments, err := a.journal.Moments(ctx, limit)
			if err != nil {
				return err
			}
			return a.emit(moments, func(w io.Writer) {
				if len(moments) == 0 {
					fmt.Fprintln(w, config.OutNone)
					return
				}
				now := a.journal.Now()
				table(w, "ID\tFROM\tWHEN\tNEW\tCONTENT", func(tw io.Writer) {
					for _, m := range moments {
						unread := ""
						if !m.IsRead {
							unread = "•"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.FromUser, a.tr.TimeAgo(m.CreatedAt, now), unread, truncate(m.Content, cellWidth))
					}
				})
			})
		},
	}
	list.Flags().IntVar(&limit, config.FlagLimit, 0, config.FlagDescLimit)

	var all bool
	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark a moment, or all of them with --all, as read",
		Args:  userArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var n int
			switch {
			case all:
				changed, err := a.journal.MarkAllMomentsRead(ctx)
				if err != nil {
					return err
				}
				n = changed
			case len(args) == 1:
				if err := a.journal.MarkMomentRead(ctx, args[0]); err != nil {
					return err
				}
				n = 1
			default:
				return usageError{fmt.Errorf("%s: %s", config.ErrValidation, config.ErrIDOrAll)}
			}
			return a.emit(map[string]int{"marked": n}, func(w io.Writer) { fmt.Fprintf(w, config.OutMarkedRead, n) })
		},
	}
	read.Flags().BoolVar(&all, config.FlagAll, false, config.FlagDescAll)

	cmd.AddCommand(post, list, read)
	return cmd
}

// -----------------------------------------------------------------------------
// Time capsules
// -----------------------------------------------------------------------------

func newCapsuleCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capsule",
		Short: "Seal notes for a future day",
	}

	var openDate string
	seal := &cobra.Command{
		Use:   "seal <content>",
		Short: "Seal a time capsule",
		Long: `Seal stores a note that can only be opened on or after --open.

Example:
  together capsule seal "Read this on our fifth anniversary" --open 2028-06-20`,
		Args: userArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.journal.CreateCapsule(cmd.Context(), strings.Join(args, " "), openDate)
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) { fmt.Fprintf(w, config.OutCreated, config.RecordCapsule, c.ID) })
		},
	}
	seal.Flags().StringVar(&openDate, config.FlagOpen, "", config.FlagDescOpen)

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List time capsules",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := journal.CapsuleStatus(status)
			switch st {
			case journal.CapsuleAll, journal.CapsuleSealed, journal.CapsuleReady, journal.CapsuleOpened:
			default:
				return usageError{fmt.Errorf("%s: %s %q", config.ErrValidation, config.FlagStatus, status)}
			}
			capsules, err := a.journal.Capsules(cmd.Context(), st)
			if err != nil {
				return err
			}
			return a.emit(capsules, func(w io.Writer) {
				if len(capsules) == 0 {
					fmt.Fprintln(w, config.OutNone)
					return
				}
				table(w, "ID\tOPENS\tSTATUS\tCONTENT", func(tw io.Writer) {
					for _, c := range capsules {
						cs := a.journal.CapsuleStatus(c)
						content := ""
						if cs == journal.CapsuleOpened {
							content = truncate(c.Content, cellWidth)
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.OpenDate, a.tr.CapsuleStatus(string(cs)), content)
					}
				})
			})
		},
	}
	list.Flags().StringVar(&status, config.FlagStatus, string(journal.CapsuleAll), config.FlagDescCStat)

	open := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a capsule whose day has come",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.journal.OpenCapsule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) { fmt.Fprintln(w, c.Content) })
		},
	}

	cmd.AddCommand(seal, list, open)
	return cmd
}
