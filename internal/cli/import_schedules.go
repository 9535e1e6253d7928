package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scheduleFile is the YAML layout read by import-schedules.
type scheduleFile struct {
	Employees []employeeSchedules `yaml:"employees"`
}

type employeeSchedules struct {
	ID         string          `yaml:"id"`
	Weekly     []weeklyEntry   `yaml:"weekly"`
	Exceptions []exceptionItem `yaml:"exceptions"`
}

type periods struct {
	MorningStart   *string `yaml:"morning_start"`
	MorningEnd     *string `yaml:"morning_end"`
	AfternoonStart *string `yaml:"afternoon_start"`
	AfternoonEnd   *string `yaml:"afternoon_end"`
}

func (p periods) input() schedule.PeriodsInput {
	return schedule.PeriodsInput{
		MorningStart:   p.MorningStart,
		MorningEnd:     p.MorningEnd,
		AfternoonStart: p.AfternoonStart,
		AfternoonEnd:   p.AfternoonEnd,
	}
}

type weeklyEntry struct {
	Weekday int `yaml:"weekday"`
	periods `yaml:",inline"`
}

type exceptionItem struct {
	Date                     string `yaml:"date"`
	ShiftType                string `yaml:"shift_type"`
	BreakMinutes             *int   `yaml:"break_minutes"`
	IntervalToleranceMinutes *int   `yaml:"interval_tolerance_minutes"`
	periods                  `yaml:",inline"`
}

type importSchedulesResult struct {
	Weekly     int      `json:"weekly"`
	Exceptions int      `json:"exceptions"`
	Warnings   []string `json:"warnings,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

var importSchedulesCmd = &cobra.Command{
	Use:   "import-schedules <file.yaml>",
	Short: "Upsert weekly schedules and date exceptions from a YAML file",
	Long: `import-schedules reads a YAML file of the form

  employees:
    - id: E001
      weekly:
        - weekday: 1
          morning_start: "08:00"
          morning_end: "12:00"
          afternoon_start: "13:00"
          afternoon_end: "17:00"
      exceptions:
        - date: "2025-03-10"
          shift_type: NON_WORKING

Weekly schedules do not recompute history; exceptions recompute their date.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportSchedules,
}

func parseScheduleFile(r io.Reader) (scheduleFile, error) {
	var file scheduleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return scheduleFile{}, fmt.Errorf("parse schedule file: %w", err)
	}
	return file, nil
}

func runImportSchedules(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := parseScheduleFile(f)
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app.App) error {
		ctx := cmd.Context()
		var (
			result importSchedulesResult
			errs   []error
		)

		for _, emp := range file.Employees {
			for _, w := range emp.Weekly {
				_, err := a.Schedule.UpsertWorkSchedule(ctx, schedule.UpsertWorkScheduleRequest{
					EmployeeID:   emp.ID,
					DayOfWeek:    w.Weekday,
					PeriodsInput: w.input(),
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("%s weekday %d: %w", emp.ID, w.Weekday, err))
					continue
				}
				result.Weekly++
			}

			for _, e := range emp.Exceptions {
				resp, err := a.Schedule.UpsertException(ctx, schedule.UpsertExceptionRequest{
					EmployeeID:               emp.ID,
					Date:                     e.Date,
					PeriodsInput:             e.input(),
					ShiftType:                e.ShiftType,
					BreakMinutes:             e.BreakMinutes,
					IntervalToleranceMinutes: e.IntervalToleranceMinutes,
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("%s exception %s: %w", emp.ID, e.Date, err))
					continue
				}
				result.Exceptions++
				if resp.Warning != nil {
					result.Warnings = append(result.Warnings, fmt.Sprintf("%s %s: %s", emp.ID, e.Date, *resp.Warning))
				}
			}
		}

		for _, err := range errs {
			result.Errors = append(result.Errors, err.Error())
		}
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		return errors.Join(errs...)
	})
}
