package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
)

// counterView holds the widgets of the counter window.
type counterView struct {
	couple    *widget.Label
	since     *widget.Label
	total     *widget.Label
	breakdown *widget.Label
	clock     *widget.Label
	empty     *widget.Label
	table     *widget.Table

	upcoming []journal.Upcoming
}

// ShowCounterWindow displays the live counter and the next anniversaries.
// If the window is already open it requests focus.
func (app *TogetherApp) ShowCounterWindow() {
	if app.counterWindow != nil {
		app.counterWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenWin, config.LogKeyComponent, config.CompUI)

	w := app.App.NewWindow(app.Translator.T(config.TKeyWinTitle, nil))
	w.Resize(fyne.NewSize(config.CounterWinWidth, config.CounterWinHeight))
	app.counterWindow = w

	cv := app.newCounterView()
	app.counter = cv
	app.refreshCounter()

	header := container.NewVBox(cv.couple, cv.since, widget.NewSeparator(), cv.total, container.NewHBox(cv.breakdown, cv.clock))
	upcoming := widget.NewCard(app.Translator.T(config.TKeyLblUpcoming, nil), "", container.NewStack(cv.table, cv.empty))
	w.SetContent(container.NewBorder(header, nil, nil, nil, upcoming))

	w.SetOnClosed(func() {
		app.counterWindow = nil
		app.counter = nil
	})
	w.Show()
}

func (app *TogetherApp) newCounterView() *counterView {
	cv := &counterView{
		couple:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		since:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		total:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		breakdown: widget.NewLabel(""),
		clock:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true}),
		empty:     widget.NewLabel(app.Translator.T(config.TKeyLblNoUpcoming, nil)),
	}
	tr := app.Translator

	cv.table = widget.NewTable(
		func() (int, int) {
			return len(cv.upcoming), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(cv.upcoming) {
				return
			}
			u := cv.upcoming[id.Row]
			switch id.Col {
			case config.ColIDName:
				label.SetText(config.AnniversaryIcons[u.Type] + " " + u.Name)
			case config.ColIDDate:
				label.SetText(u.Next.Date.Format(config.DateFormatFullDash))
			case config.ColIDCountdown:
				label.SetText(tr.Countdown(u.Next.DaysUntil))
			}
		},
	)

	cv.table.ShowHeaderRow = true
	cv.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	cv.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		var key string
		switch id.Col {
		case config.ColIDName:
			key = config.TKeyColName
		case config.ColIDDate:
			key = config.TKeyColDate
		case config.ColIDCountdown:
			key = config.TKeyColCountdown
		}
		o.(*widget.Label).SetText(tr.T(key, nil))
	}

	cv.table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	cv.table.SetColumnWidth(config.ColIDDate, config.ColWidthDate)
	cv.table.SetColumnWidth(config.ColIDCountdown, config.ColWidthCountdown)
	return cv
}

// refreshCounter copies the latest snapshot into the open window. Must run on the
// UI thread.
func (app *TogetherApp) refreshCounter() {
	if app.counter == nil {
		return
	}
	p, upcoming, e, counting := app.snapshot()
	app.counter.setProfile(app.Translator, p, upcoming, counting)
	app.counter.setElapsed(app.Translator, e)
}

func (cv *counterView) setProfile(tr *i18n.Translator, p journal.Profile, upcoming []journal.Upcoming, counting bool) {
	me, partner := p.DisplayNames()
	cv.couple.SetText(tr.T(config.TKeyLblCouple, map[string]any{"Me": me, "Partner": partner}))
	if counting {
		cv.since.SetText(tr.T(config.TKeyLblSince, map[string]any{"Date": p.StartDate}))
	} else {
		cv.since.SetText(tr.T(config.TKeyLblOnboard, nil))
	}

	cv.upcoming = upcoming
	if len(upcoming) == 0 {
		cv.table.Hide()
		cv.empty.Show()
	} else {
		cv.empty.Hide()
		cv.table.Show()
	}
	cv.table.Refresh()
}

func (cv *counterView) setElapsed(tr *i18n.Translator, e engine.Elapsed) {
	cv.total.SetText(tr.T(config.TKeyTotalDays, map[string]any{"Days": e.TotalDays}))
	cv.breakdown.SetText(tr.Elapsed(e))
	cv.clock.SetText(e.Clock())
}
