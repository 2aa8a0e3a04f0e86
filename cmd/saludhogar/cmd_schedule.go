package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"saludhogar/internal/medschedule"
	"saludhogar/internal/platform/dates"
)

var (
	schedStart string
	schedEnd   string
	schedDays  []int
	schedTimes []string
	schedDate  string
	schedLang  string
	schedNext  time.Duration
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Herramientas sobre calendarios de medicación",
}

var scheduleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evalúa un calendario sin conexión",
	Long: `Evalúa un calendario de medicación para una fecha de referencia.

Días: 0=lunes ... 6=domingo. Sin días o con los siete = todos los días.

Examples:
  saludhogar schedule check --start 2024-03-01 --end 2024-03-31 --days 0,2,4 --times 21:00,08:00
  saludhogar schedule check --start 2024-03-01 --times 08:00 --date 2024-03-04 --next 48h
`,
	RunE: runScheduleCheck,
}

func init() {
	f := scheduleCheckCmd.Flags()
	f.StringVar(&schedStart, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&schedEnd, "end", "", "End date (YYYY-MM-DD), empty = open ended")
	f.IntSliceVar(&schedDays, "days", nil, "Weekdays, 0=Monday ... 6=Sunday")
	f.StringSliceVar(&schedTimes, "times", nil, "Reminder times (HH:MM)")
	f.StringVar(&schedDate, "date", "", "Reference date (YYYY-MM-DD), default today")
	f.StringVar(&schedLang, "lang", "en", "Label language (en, es)")
	f.DurationVar(&schedNext, "next", 0, "List reminder instants in the given window after the reference date")
	scheduleCmd.AddCommand(scheduleCheckCmd)
}

func runScheduleCheck(cmd *cobra.Command, _ []string) error {
	start, err := dates.ParsePtr(schedStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := dates.ParsePtr(schedEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	days, err := medschedule.NewDaySet(schedDays...)
	if err != nil {
		return fmt.Errorf("--days: %w", err)
	}
	times, err := medschedule.ParseTimes(schedTimes)
	if err != nil {
		return fmt.Errorf("--times: %w", err)
	}
	s := medschedule.Schedule{StartDate: start, EndDate: end, Days: days, Times: times}

	ref := time.Now()
	if schedDate != "" {
		if ref, err = dates.Parse(schedDate); err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	tag := medschedule.MatchLocale(schedLang)
	fmt.Fprintf(out, "reference date: %s\n", ref.Format(dates.Layout))
	fmt.Fprintf(out, "active:         %t\n", medschedule.IsActive(s, ref))
	fmt.Fprintf(out, "scheduled:      %t\n", medschedule.IsScheduledOnDay(s, medschedule.WeekdayOf(ref)))
	fmt.Fprintf(out, "days:           %s\n", medschedule.DescribeDaySetIn(s, tag))
	fmt.Fprintf(out, "times:          %s\n", strings.Join(medschedule.TimeStrings(medschedule.SortedReminderTimes(s)), ", "))

	res := medschedule.ValidateSubmission(s)
	if res.OK() {
		fmt.Fprintln(out, "validation:     ok")
	} else {
		codes := make([]string, 0, len(res.Codes))
		for _, c := range res.Codes {
			codes = append(codes, string(c))
		}
		fmt.Fprintf(out, "validation:     %s\n", strings.Join(codes, ", "))
	}

	if schedNext > 0 {
		y, m, d := ref.Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, ref.Location()).Add(-time.Nanosecond)
		for _, at := range medschedule.DueBetween(s, from, from.Add(schedNext)) {
			fmt.Fprintf(out, "  due %s\n", at.Format("Mon 2006-01-02 15:04"))
		}
	}
	return nil
}
