package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	myName      *widget.Entry
	partnerName *widget.Entry
	startDate   *widget.Entry

	modeSelect *widget.Select
	urlEntry   *widget.Entry
	userEntry  *widget.Entry
	passEntry  *widget.Entry
	pathEntry  *widget.Entry

	reminderDays *DayCountEntry
}

// ShowSettingsWindow edits the couple's profile, the address book used for birthday
// import and the feed reminder.
func (app *TogetherApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenWin, config.LogKeyComponent, config.CompUI)
	tr := app.Translator
	w := app.App.NewWindow(tr.T(config.TKeyWinSettings, nil))
	app.settingsWindow = w

	sw := app.newSettingsWidgets()

	profileForm := widget.NewForm(
		widget.NewFormItem(tr.T(config.TKeyLblMyName, nil), sw.myName),
		widget.NewFormItem(tr.T(config.TKeyLblPartnerName, nil), sw.partnerName),
		widget.NewFormItem(tr.T(config.TKeyLblStartDate, nil), sw.startDate),
	)
	profileCard := widget.NewCard(tr.T(config.TKeyLblProfile, nil), "", profileForm)

	var content *fyne.Container
	refreshLayout := func() {
		if content == nil {
			return
		}
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWinWidth, content.MinSize().Height))
	}
	contactsCard := app.buildSourceCard(w, sw, refreshLayout)

	itemDays := widget.NewFormItem(tr.T(config.TKeyLblDaysBefore, nil), sw.reminderDays)
	itemDays.HintText = tr.T(config.TKeyHelpReminder, nil)
	reminderCard := widget.NewCard(tr.T(config.TKeyLblReminder, nil), "", widget.NewForm(itemDays))

	btnSave := widget.NewButtonWithIcon(tr.T(config.TKeyBtnSave, nil), theme.DocumentSaveIcon(), func() {
		if err := app.saveSettings(sw); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(tr.T(config.TKeyBtnCancel, nil), theme.CancelIcon(), func() { w.Close() })

	footer := widget.NewLabelWithStyle(fmt.Sprintf("%s %s", config.AppName, config.Version), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	content = container.NewPadded(container.NewVBox(
		profileCard,
		contactsCard,
		reminderCard,
		container.NewGridWithColumns(config.LayoutColumnsPair, btnCancel, btnSave),
		footer,
	))

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	refreshLayout()
	w.Show()
}

// newSettingsWidgets pre-fills every field from the journal, the preferences and
// the keyring.
func (app *TogetherApp) newSettingsWidgets() *settingsWidgets {
	p, _, _, _ := app.snapshot()
	sw := &settingsWidgets{}

	sw.myName = widget.NewEntry()
	sw.myName.SetText(p.MyName)
	sw.partnerName = widget.NewEntry()
	sw.partnerName.SetText(p.PartnerName)
	sw.startDate = widget.NewEntry()
	sw.startDate.SetPlaceHolder(config.DateFormatFullDash)
	sw.startDate.SetText(p.StartDate)
	sw.startDate.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := engine.ParseAnchor(s, app.Journal.Location())
		return err
	}

	sw.modeSelect = widget.NewSelect([]string{
		app.Translator.T(config.TKeyModeCardDAV, nil),
		app.Translator.T(config.TKeyModeLocal, nil),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetPlaceHolder(config.PlaceholderURL)
	sw.urlEntry.SetText(app.Preferences.String(config.PrefCardDAVURL))

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if pass, err := calendar.LoadPassword(sw.userEntry.Text); err == nil {
		sw.passEntry.SetText(pass)
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))

	sw.reminderDays = NewDayCountEntry(config.MaxDayDigits)
	if days := app.Preferences.IntWithFallback(config.PrefReminderDays, -1); days >= 0 {
		sw.reminderDays.SetText(strconv.Itoa(days))
	}
	sw.reminderDays.Validator = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}
	return sw
}

// buildSourceCard constructs the address book selection and its import button.
func (app *TogetherApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	tr := app.Translator

	browseBtn := widget.NewButton(tr.T(config.TKeyBtnBrowse, nil), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	webForm := widget.NewForm(
		widget.NewFormItem(tr.T(config.TKeyLblURL, nil), sw.urlEntry),
		widget.NewFormItem(tr.T(config.TKeyLblUser, nil), sw.userEntry),
		widget.NewFormItem(tr.T(config.TKeyLblPass, nil), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	showMode := func(mode string) {
		if mode == tr.T(config.TKeyModeLocal, nil) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	sw.modeSelect.OnChanged = showMode

	if app.Preferences.String(config.PrefSourceMode) == config.SourceModeLocal {
		sw.modeSelect.SetSelected(tr.T(config.TKeyModeLocal, nil))
	} else {
		sw.modeSelect.SetSelected(tr.T(config.TKeyModeCardDAV, nil))
	}

	importBtn := widget.NewButtonWithIcon(tr.T(config.TKeyBtnImport, nil), theme.DownloadIcon(), func() {
		app.saveSource(sw)
		src := app.sourceFrom(sw)
		go func() {
			n, err := app.ImportContacts(src)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				dialog.ShowInformation(config.AppName, tr.T(config.TKeyNotifImported, map[string]any{"Count": n}), w)
			})
		}()
	})

	return widget.NewCard(tr.T(config.TKeyLblContacts, nil), "", container.NewVBox(sw.modeSelect, webForm, localForm, importBtn))
}

// sourceFrom turns the visible fields into a calendar.Source.
func (app *TogetherApp) sourceFrom(sw *settingsWidgets) calendar.Source {
	if sw.modeSelect.Selected == app.Translator.T(config.TKeyModeLocal, nil) {
		return calendar.Source{Path: strings.TrimSpace(sw.pathEntry.Text)}
	}
	return calendar.Source{
		URL:  strings.TrimSpace(sw.urlEntry.Text),
		User: strings.TrimSpace(sw.userEntry.Text),
		Pass: sw.passEntry.Text,
	}
}

// ImportContacts reads the address book and adds its birthdays and anniversaries to
// the journal, skipping entries already present.
func (app *TogetherApp) ImportContacts(src calendar.Source) (int, error) {
	rc, err := src.Open(app.Ctx, app.Fetcher)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	contacts, err := calendar.ParseContacts(app.Ctx, rc)
	if err != nil {
		return 0, err
	}
	n, err := app.Journal.ImportAnniversaries(app.Ctx, calendar.Anniversaries(contacts))
	if err != nil {
		return 0, err
	}
	slog.Info(config.MsgContactsAdded, config.LogKeyComponent, config.CompUI, config.LogKeyCount, n)
	return n, app.Refresh(false)
}

// saveSource persists the address book settings. The password goes to the keyring.
func (app *TogetherApp) saveSource(sw *settingsWidgets) {
	mode := config.SourceModeWeb
	if sw.modeSelect.Selected == app.Translator.T(config.TKeyModeLocal, nil) {
		mode = config.SourceModeLocal
	}
	app.Preferences.SetString(config.PrefSourceMode, mode)
	app.Preferences.SetString(config.PrefCardDAVURL, strings.TrimSpace(sw.urlEntry.Text))
	app.Preferences.SetString(config.PrefUsername, strings.TrimSpace(sw.userEntry.Text))
	app.Preferences.SetString(config.PrefLocalPath, strings.TrimSpace(sw.pathEntry.Text))

	if user := strings.TrimSpace(sw.userEntry.Text); user != "" && sw.passEntry.Text != "" {
		if err := calendar.SavePassword(user, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyring, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		}
	}
}

// saveSettings writes the profile to the journal and the rest to preferences, then
// refreshes the tray. A first save with all three profile fields onboards the couple.
func (app *TogetherApp) saveSettings(sw *settingsWidgets) error {
	if err := sw.startDate.Validate(); err != nil {
		return err
	}
	if err := sw.reminderDays.Validate(); err != nil {
		return err
	}

	p, _, _, _ := app.snapshot()
	if p.StartDate == "" && strings.TrimSpace(sw.startDate.Text) != "" {
		if _, err := app.Journal.Onboard(app.Ctx, sw.myName.Text, sw.partnerName.Text, sw.startDate.Text); err != nil {
			return err
		}
	} else {
		myName, partnerName := sw.myName.Text, sw.partnerName.Text
		u := journal.ProfileUpdate{MyName: &myName, PartnerName: &partnerName}
		// Clearing the start date is a reset, which only the CLI offers.
		if startDate := strings.TrimSpace(sw.startDate.Text); startDate != "" {
			u.StartDate = &startDate
		}
		if _, _, err := app.Journal.UpdateProfile(app.Ctx, u); err != nil {
			return err
		}
	}

	app.saveSource(sw)

	if sw.reminderDays.Text == "" {
		app.Preferences.SetInt(config.PrefReminderDays, 0)
	} else if days, err := strconv.Atoi(sw.reminderDays.Text); err == nil {
		app.Preferences.SetInt(config.PrefReminderDays, days)
	}
	app.applyReminder()

	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUI)
	return app.Refresh(true)
}
