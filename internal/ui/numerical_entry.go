package ui

import (
	"unicode/utf8"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// DayCountEntry is an Entry that only takes a small number of days.
type DayCountEntry struct {
	widget.Entry
	MaxDigits int
}

// NewDayCountEntry creates an entry accepting up to maxDigits digits.
func NewDayCountEntry(maxDigits int) *DayCountEntry {
	entry := &DayCountEntry{MaxDigits: maxDigits}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but digits and stops at MaxDigits.
// Pasted text bypasses this and is checked by the Validator.
func (e *DayCountEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if e.MaxDigits > 0 && utf8.RuneCountInString(e.Text) >= e.MaxDigits {
		return
	}
	e.Entry.TypedRune(r)
}

// Keyboard shows a numeric keypad on mobile.
func (e *DayCountEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
