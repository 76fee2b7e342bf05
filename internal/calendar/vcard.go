package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
)

// Contact is one annual date found in an address book.
type Contact struct {
	Name string
	// Date is YYYY-MM-DD, or --MM-DD when the card omits the year.
	Date      string
	Kind      string
	YearKnown bool
}

// Anniversary converts c into the journal's record shape.
func (c Contact) Anniversary() journal.Anniversary {
	return journal.Anniversary{Name: c.Name, Date: c.Date, Type: c.Kind}
}

// Anniversaries converts contacts for journal.Service.ImportAnniversaries.
func Anniversaries(contacts []Contact) []journal.Anniversary {
	out := make([]journal.Anniversary, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.Anniversary())
	}
	return out
}

// ParseContacts reads every card from r and returns their BDAY and ANNIVERSARY
// dates. Malformed cards and unparsable dates are skipped.
func ParseContacts(ctx context.Context, r io.Reader) ([]Contact, error) {
	decoder := vcard.NewDecoder(r)
	processed := 0
	var contacts []Contact

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyError, err)
			// The decoder cannot resync after a broken BEGIN/END pair.
			if processed == 0 {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			break
		}
		processed++

		name := cardName(card)
		for _, field := range []struct{ prop, kind string }{
			{config.VCardBDAY, journal.KindBirthday},
			{config.VCardAnniversary, journal.KindAnniversary},
		} {
			prop := card.Get(field.prop)
			if prop == nil || strings.TrimSpace(prop.Value) == "" {
				continue
			}
			date, yearKnown, err := parseDate(strings.TrimSpace(prop.Value))
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompCalendar,
					config.LogKeyDate, prop.Value)
				continue
			}
			contacts = append(contacts, Contact{
				Name:      name,
				Date:      date,
				Kind:      field.kind,
				YearKnown: yearKnown,
			})
		}
	}

	slog.Info(config.MsgContactsParsed,
		config.LogKeyComponent, config.CompCalendar,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, processed),
			slog.Int(config.LogKeyFound, len(contacts)),
		),
	)
	return contacts, nil
}

// cardName prefers FN, then N, then a placeholder.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		return strings.TrimSpace(fn.Value)
	}
	if n := card.Get(config.VCardN); n != nil {
		parts := strings.FieldsFunc(n.Value, func(r rune) bool { return r == ';' })
		if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
			return joined
		}
	}
	return config.FallbackName
}

// parseDate normalises the vCard date forms to the journal's representation.
func parseDate(value string) (string, bool, error) {
	for _, f := range []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatLocalT,
	} {
		if t, err := time.Parse(f, value); err == nil {
			return t.Format(config.DateFormatFullDash), true, nil
		}
	}
	if strings.HasPrefix(value, "--") {
		md, err := engine.ParseMonthDay(value)
		if err != nil {
			return "", false, err
		}
		return "--" + md.String(), false, nil
	}
	return "", false, errors.New(config.ErrDateParse)
}
