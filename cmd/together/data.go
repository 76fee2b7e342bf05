package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/journal"
)

// -----------------------------------------------------------------------------
// Photos
// -----------------------------------------------------------------------------

// photoView leaves the data URL out of listings.
type photoView struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	CreatedAt   string `json:"createdAt"`
}

func newPhotoCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Keep photos in the journal",
	}

	var contentType string
	add := &cobra.Command{
		Use:   "add <file>",
		Short: "Store an image file (- reads stdin)",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := a.openInput(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := a.journal.AddPhoto(cmd.Context(), r, contentType)
			if err != nil {
				return err
			}
			return a.emit(map[string]string{"id": p.ID}, func(w io.Writer) {
				fmt.Fprintf(w, config.OutCreated, config.RecordPhoto, p.ID)
			})
		},
	}
	add.Flags().StringVar(&contentType, config.FlagMime, "", config.FlagDescMime)

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored photos",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			photos, err := a.journal.Photos(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]photoView, 0, len(photos))
			for _, p := range photos {
				raw, ct, err := journal.DecodeDataURL(p.Data)
				if err != nil {
					continue
				}
				views = append(views, photoView{
					ID:          p.ID,
					ContentType: ct,
					Size:        len(raw),
					CreatedAt:   p.CreatedAt.In(a.journal.Location()).Format(config.DateFormatDisplay),
				})
			}
			return a.emit(views, func(w io.Writer) {
				if len(views) == 0 {
					fmt.Fprintln(w, config.OutNone)
					return
				}
				table(w, "ID\tTYPE\tBYTES\tADDED", func(tw io.Writer) {
					for _, v := range views {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", v.ID, v.ContentType, v.Size, v.CreatedAt)
					}
				})
			})
		},
	}

	rm := newRmCmd(a, config.RecordPhoto, func(cmd *cobra.Command, id string) error {
		return a.journal.DeletePhoto(cmd.Context(), id)
	})

	export := &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Write a stored photo to a file (- writes stdout)",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _, err := a.journal.PhotoBytes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if args[1] == config.StdioPath {
				_, err := a.out.Write(raw)
				return err
			}
			if err := os.WriteFile(args[1], raw, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			return a.emit(map[string]any{"path": args[1], "bytes": len(raw)}, func(w io.Writer) {
				fmt.Fprintf(w, config.OutPhotoSaved, len(raw), args[1])
			})
		},
	}

	cmd.AddCommand(add, list, rm, export)
	return cmd
}

// -----------------------------------------------------------------------------
// Backup
// -----------------------------------------------------------------------------

func newBackupCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, import or reset the whole journal",
	}

	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the journal as JSON (default together_backup_<date>.json, - for stdout)",
		Args:  userArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := journal.BackupFileName(a.journal.Now())
			if len(args) == 1 {
				path = args[0]
			}
			if path == config.StdioPath {
				return a.journal.Export(cmd.Context(), a.out)
			}

			f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			if err := a.journal.Export(cmd.Context(), f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			return a.emit(map[string]string{"path": path}, func(w io.Writer) { fmt.Fprintf(w, config.OutExported, path) })
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON backup into the journal (- reads stdin)",
		Long: `Import adds the records of a backup that are not in the journal yet.
Records with an ID already present are skipped; the backup's profile replaces
the current one.`,
		Args: userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := a.openInput(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := a.journal.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			return a.emit(stats, func(w io.Writer) {
				fmt.Fprintf(w, config.OutImported, stats.Diaries, stats.Anniversaries, stats.Moments, stats.Capsules, stats.Photos)
			})
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and the profile",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return usageError{errors.New(config.ErrConfirmReset)}
			}
			if err := a.journal.Reset(cmd.Context()); err != nil {
				return err
			}
			return a.emit(map[string]bool{"reset": true}, func(w io.Writer) { fmt.Fprint(w, config.OutReset) })
		},
	}
	reset.Flags().BoolVar(&yes, config.FlagYes, false, config.FlagDescYes)

	cmd.AddCommand(export, importCmd, reset)
	return cmd
}

// -----------------------------------------------------------------------------
// Contacts
// -----------------------------------------------------------------------------

func newContactsCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Import birthdays and anniversaries from an address book",
	}

	var src calendar.Source
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Add the dates found in a vCard file or CardDAV address book",
		Long: `Import reads BDAY and ANNIVERSARY from every contact and adds the ones the
journal does not have yet. The password for --user is taken from the keyring
(see contacts login).

Example:
  together contacts import --file contacts.vcf
  together contacts import --url https://dav.example.com/addressbooks/alice/ --user alice`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if src.Path == "" && src.URL == "" {
				return usageError{errors.New(config.ErrSourceMissing)}
			}
			pass, err := calendar.LoadPassword(src.User)
			if err != nil {
				return err
			}
			src.Pass = pass

			rc, err := src.Open(ctx, calendar.NewHTTPFetcher())
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			contacts, err := calendar.ParseContacts(ctx, rc)
			if err != nil {
				return err
			}
			n, err := a.journal.ImportAnniversaries(ctx, calendar.Anniversaries(contacts))
			if err != nil {
				return err
			}
			return a.emit(map[string]int{"imported": n}, func(w io.Writer) { fmt.Fprintf(w, config.OutContacts, n) })
		},
	}
	importCmd.Flags().StringVar(&src.Path, config.FlagFile, "", config.FlagDescFile)
	importCmd.Flags().StringVar(&src.URL, config.FlagURL, "", config.FlagDescURL)
	importCmd.Flags().StringVar(&src.User, config.FlagUser, "", config.FlagDescUser)

	var user, pass string
	login := &cobra.Command{
		Use:         "login",
		Short:       "Save the address book password in the system keyring",
		Args:        userArgs(cobra.NoArgs),
		Annotations: map[string]string{annotNoStore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				return usageError{errors.New(config.ErrUserRequired)}
			}
			if !cmd.Flags().Changed(config.FlagPassword) {
				fmt.Fprint(cmd.ErrOrStderr(), config.OutPasswordQuery)
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("%s: %w", config.ErrReadInput, err)
				}
				pass = strings.TrimRight(line, "\r\n")
			}
			if pass == "" {
				return usageError{errors.New(config.ErrEmptyPass)}
			}
			if err := calendar.SavePassword(user, pass); err != nil {
				return err
			}
			return a.emit(map[string]string{"user": user}, func(w io.Writer) { fmt.Fprintf(w, config.OutLoggedIn, user) })
		},
	}
	login.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	login.Flags().StringVar(&pass, config.FlagPassword, "", config.FlagDescPass)

	cmd.AddCommand(importCmd, login)
	return cmd
}

// openInput opens path for reading; "-" is the command's stdin.
func (a *cliApp) openInput(path string) (io.Reader, func(), error) {
	if path == config.StdioPath {
		return a.in, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%s: %w", config.ErrReadInput, err)
		if errors.Is(err, fs.ErrNotExist) {
			err = usageError{err}
		}
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
