package output

import (
	"fmt"
	"io"

	"github.com/yndnr/myke/internal/core/domain"
)

// TaskRow is one line of the task listing.
type TaskRow struct {
	Task        string   `json:"task" yaml:"task"`
	Source      string   `json:"source" yaml:"source"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string   `json:"kind" yaml:"kind" table:"wide"`
	Params      []string `json:"params,omitempty" yaml:"params,omitempty" table:"wide"`
}

// TaskRows converts tasks into listing rows.
func TaskRows(tasks []*domain.Task) []TaskRow {
	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		row := TaskRow{
			Task:        t.DisplayName(),
			Source:      t.Source,
			Description: t.Description,
			Kind:        string(t.Kind),
		}
		for _, p := range t.Params {
			row.Params = append(row.Params, p.FlagName())
		}
		rows = append(rows, row)
	}
	return rows
}

// PrintTasks writes the task listing. The table form ends with a hint
// on how to see a task's parameters.
func PrintTasks(w io.Writer, tasks []*domain.Task, format Format, prog string) error {
	rows := TaskRows(tasks)
	if format != FormatTable && format != "" {
		return NewFormatter(format, false).Format(w, rows)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}

	table := &Table{Headers: []string{"TASK", "SOURCE", "DESCRIPTION"}}
	for _, r := range rows {
		table.AddRow(r.Task, r.Source, r.Description)
	}
	if err := table.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTo view task parameters, see:\n> %s <task-name> --help\n", prog)
	return err
}
