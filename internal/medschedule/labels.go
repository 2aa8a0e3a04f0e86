package medschedule

import (
	"strings"

	"golang.org/x/text/language"
)

type dayLabels struct {
	everyDay string
	short    [daysInWeek]string
}

var (
	labelsEN = dayLabels{
		everyDay: "every day",
		short:    [daysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	}
	labelsES = dayLabels{
		everyDay: "Todos los días",
		short:    [daysInWeek]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"},
	}

	supportedLocales = []language.Tag{language.English, language.Spanish}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// DescribeDaySet devuelve "every day" o los días abreviados en orden
// ascendente, p.ej. "Mon, Wed".
func DescribeDaySet(s Schedule) string {
	return describe(s, labelsEN)
}

// DescribeDaySetIn es la variante localizada (inglés o español).
func DescribeDaySetIn(s Schedule, tag language.Tag) string {
	return describe(s, labelsFor(tag))
}

// MatchLocale elige entre los idiomas soportados a partir de un
// Accept-Language. Sin coincidencia devuelve inglés.
func MatchLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supportedLocales[idx]
}

func labelsFor(tag language.Tag) dayLabels {
	base, _ := tag.Base()
	if es, _ := language.Spanish.Base(); base == es {
		return labelsES
	}
	return labelsEN
}

func describe(s Schedule, l dayLabels) string {
	if s.Days.EveryDay() {
		return l.everyDay
	}
	days := s.Days.Days()
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, l.short[d])
	}
	return strings.Join(parts, ", ")
}
