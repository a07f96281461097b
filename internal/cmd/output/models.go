package output

import (
	"fmt"
	"io"

	"github.com/agentstation/propscan/pkg/properties"
	"github.com/agentstation/propscan/pkg/reconciler"
)

// Actions shown in result tables.
const (
	ActionCreated      = "created"
	ActionWouldCreate  = "would create"
	ActionSkipped      = "present"
	ActionDeleted      = "deleted"
	ActionWouldDelete  = "would delete"
	ActionNotAttempted = "not attempted"
)

// FormatProperties writes a remote collection in the given format.
func FormatProperties(w io.Writer, props []properties.RemoteProperty, format Format) error {
	var data any = props
	if isTable(format) {
		data = PropertiesToTableData(props)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatResult writes the outcome of a run in the given format. Tables
// are followed by the one-line summary of the run.
func FormatResult(w io.Writer, result *reconciler.Result, format Format) error {
	if !isTable(format) {
		return NewFormatter(format).Format(w, result)
	}

	data := ResultToTableData(result)
	if len(data.Rows) > 0 {
		if err := NewFormatter(format).Format(w, data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, result.Summary())
	return err
}

// PropertiesToTableData converts remote properties to table rows.
func PropertiesToTableData(props []properties.RemoteProperty) Data {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{p.Links.Self, p.Pathname, p.Name})
	}
	return Data{
		Headers: []string{"Link", "Pathname", "Name"},
		Rows:    rows,
	}
}

// ResultToTableData lists every property a run touched, one row each.
func ResultToTableData(result *reconciler.Result) Data {
	var rows [][]string
	if result.Metadata.Mode == reconciler.ModeRemove {
		rows = removeRows(result)
	} else {
		rows = scanRows(result)
	}
	return Data{
		Headers:         []string{"Action", "Pathname", "Name"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft},
	}
}

func scanRows(result *reconciler.Result) [][]string {
	var rows [][]string
	for i, p := range result.Planned {
		action := ActionCreated
		switch {
		case result.Metadata.DryRun:
			action = ActionWouldCreate
		case i >= len(result.Created):
			action = ActionNotAttempted
		}
		rows = append(rows, []string{action, p.DatasetPath, p.InternalPath})
	}
	for _, p := range result.Skipped {
		rows = append(rows, []string{ActionSkipped, p.DatasetPath, p.InternalPath})
	}
	return rows
}

func removeRows(result *reconciler.Result) [][]string {
	var rows [][]string
	for i, p := range result.Targets {
		action := ActionDeleted
		switch {
		case result.Metadata.DryRun:
			action = ActionWouldDelete
		case i >= len(result.Deleted):
			action = ActionNotAttempted
		}
		rows = append(rows, []string{action, p.Pathname, p.Name})
	}
	return rows
}

func isTable(format Format) bool {
	return format == FormatTable || format == ""
}
