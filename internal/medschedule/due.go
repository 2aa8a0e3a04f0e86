package medschedule

import "time"

// maxDueWindow acota la ventana para no recorrer semanas de atraso
// cuando el agente estuvo detenido.
const maxDueWindow = 7 * 24 * time.Hour

// DueBetween devuelve los instantes de recordatorio en (from, to], en la zona
// horaria de to. Solo cuenta los días en que el tratamiento está vigente y
// programado.
func DueBetween(s Schedule, from, to time.Time) []time.Time {
	if !to.After(from) || len(s.Times) == 0 {
		return nil
	}
	if to.Sub(from) > maxDueWindow {
		from = to.Add(-maxDueWindow)
	}

	loc := to.Location()
	from = from.In(loc)

	times := SortedReminderTimes(s)
	out := make([]time.Time, 0)

	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for !day.After(to) {
		if IsActive(s, day) && IsScheduledOnDay(s, WeekdayOf(day)) {
			for _, t := range times {
				at := t.On(day)
				if at.After(from) && !at.After(to) {
					out = append(out, at)
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
