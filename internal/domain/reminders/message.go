package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/es"
)

var spanish = es.New()

// FormatFechaES formatea como "miércoles, 5 de marzo a las 3:30 p. m.".
func FormatFechaES(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	ampm := "a. m."
	if t.Hour() >= 12 {
		ampm = "p. m."
	}
	return fmt.Sprintf("%s, %d de %s a las %d:%02d %s",
		spanish.WeekdayWide(t.Weekday()), t.Day(), spanish.MonthWide(t.Month()), h, t.Minute(), ampm)
}

func MedicationMessage(member, name, dosage string) string {
	return fmt.Sprintf("Recordatorio de medicación: Es hora de que %s tome su dosis de %s (%s).", member, name, dosage)
}

func AppointmentMessage(member, doctor, location string, at time.Time) string {
	msg := fmt.Sprintf("Recordatorio: Cita para %s con %s el %s", member, doctor, FormatFechaES(at))
	if loc := strings.TrimSpace(location); loc != "" {
		return msg + " en " + loc + "."
	}
	return msg + "."
}
