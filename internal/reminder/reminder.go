// Package reminder exports the donor's next-eligible date as an iCalendar
// event so it can be imported into any calendar application.
package reminder

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
)

// Build renders a single-event VCALENDAR for the donor's next-eligible date.
// The summary is caller-supplied so the UI can localize it. The UID is
// deterministic over donor ID and date, so re-exporting replaces the event
// instead of duplicating it in the target calendar.
func Build(donorID int64, detail api.DonorDetail, now time.Time, summary string) ([]byte, error) {
	if detail.NextEligible == nil {
		return nil, errors.New(config.ErrNoNextEligible)
	}
	if summary == "" {
		summary = config.FallbackRemSummary
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)

	input := fmt.Sprintf(config.FormatHashInput,
		donorID,
		detail.NextEligible.Format(config.DateFormatDay),
		config.ReminderUIDSalt)
	hash := sha256.Sum256([]byte(input))
	uid := fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(*detail.NextEligible)
	event.Props.Set(dtStart)

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())
	event.Props.Set(dtStamp)

	addAlarm(event, summary)

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgRemExported,
		config.LogKeyComponent, config.CompReminder,
		config.LogKeyDonorID, donorID)

	return buf.Bytes(), nil
}

// addAlarm appends a DISPLAY alarm firing one day before the event.
func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(config.ICalAlarmComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAlarmAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid a "VALUE=TEXT" param on the duration.
	trigger := ical.NewProp(config.PropTrigger)
	trigger.Value = config.ICalAlarmTrigger
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}
