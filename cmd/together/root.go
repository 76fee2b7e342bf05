// Package main provides the together CLI: the journal commands, the terminal
// counter, the desktop tray app and the calendar feed server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
	"github.com/tartampluch/go-together/internal/store/sqlite"
)

// annotNoStore marks commands that run without opening the journal.
const annotNoStore = "no-store"

// cliApp carries the flags and the dependencies opened for one command.
type cliApp struct {
	configDir string
	dataDir   string
	jsonOut   bool
	debug     bool

	in  io.Reader
	out io.Writer

	// journalOpts are appended after the defaults; tests pin the clock here.
	journalOpts []journal.Option
	// setupLogs is false in tests so runs leave the user cache dir alone.
	setupLogs bool
	logCloser io.Closer

	settings config.Settings
	store    *sqlite.Store
	journal  *journal.Service
	tr       *i18n.Translator
}

func newCLIApp(in io.Reader, out io.Writer) *cliApp {
	return &cliApp{in: in, out: out}
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// userArgs reports argument count problems as usage errors.
func userArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCmd(a *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:   config.CommandName,
		Short: "A private journal for two, counting every day together",
		Long: `together keeps a couple's journal: diary entries, anniversaries, short
messages, time capsules and photos. It counts the time since the day you got
together in the terminal or the system tray and publishes the anniversaries as
a calendar feed on localhost.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.close() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, config.FlagConfigDir, "", config.FlagDescConfigDir)
	pf.StringVar(&a.dataDir, config.FlagDataDir, "", config.FlagDescDataDir)
	pf.BoolVar(&a.jsonOut, config.FlagJSON, false, config.FlagDescJSON)
	pf.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newStatusCmd(a),
		newWatchCmd(a),
		newGUICmd(a),
		newServeCmd(a),
		newDiaryCmd(a),
		newAnniversaryCmd(a),
		newMomentCmd(a),
		newCapsuleCmd(a),
		newPhotoCmd(a),
		newBackupCmd(a),
		newContactsCmd(a),
	)
	return root
}

// open loads the configuration and the journal before any command that needs them.
func (a *cliApp) open(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotNoStore] != "" || cmd.Name() == "help" {
		return nil
	}

	settings, err := config.Load(a.configDir, a.dataDir)
	if err != nil {
		return err
	}
	a.settings = settings

	if a.setupLogs && a.logCloser == nil {
		a.logCloser = setupLogging(settings.LogLevel, a.debug)
		logStartupInfo(cmd.CommandPath())
	}

	st, err := sqlite.New(settings.DatabasePath())
	if err != nil {
		return err
	}
	a.store = st

	opts := append([]journal.Option{journal.WithLocation(settings.Location)}, a.journalOpts...)
	a.journal = journal.NewService(st, opts...)

	tr, err := i18n.New(config.DefaultLanguage)
	if err != nil {
		return err
	}
	a.tr = tr
	return nil
}

// close releases the store. It is safe to call more than once.
func (a *cliApp) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// closeLogs flushes the log file once the command has finished.
func (a *cliApp) closeLogs() {
	if a.logCloser == nil {
		return
	}
	slog.Debug(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	_ = a.logCloser.Close()
	a.logCloser = nil
}

// emit prints v as indented JSON with --json and calls human otherwise.
func (a *cliApp) emit(v any, human func(w io.Writer)) error {
	if !a.jsonOut {
		human(a.out)
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeData, err)
	}
	if _, err := fmt.Fprintln(a.out, string(b)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}

// table writes tab separated rows aligned in columns.
func table(w io.Writer, header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

// truncate shortens s to n runes for table cells.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
