package table

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Fprint renders v as a plain-text table. HTML cells fall back to their
// text form. With useColors the headers are bold and errors red.
func Fprint(w io.Writer, v View, useColors bool) {
	switch v.State {
	case BodyLoading:
		fmt.Fprintln(w, "Loading...")
		return
	case BodyError:
		if useColors {
			color.New(color.FgRed).Fprintf(w, "Error: %s\n", v.Error)
		} else {
			fmt.Fprintf(w, "Error: %s\n", v.Error)
		}
		return
	case BodyEmpty:
		fmt.Fprintln(w, "No data to display")
		return
	}

	headers := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		headers[i] = h.Label
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	if useColors && len(headers) > 0 {
		colors := make([]tablewriter.Colors, len(headers))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor}
		}
		table.SetHeaderColor(colors...)
	}

	for _, row := range v.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Text
		}
		table.Append(cells)
	}
	table.Render()

	fmt.Fprintf(w, "\n%s (%s)\n", v.RangeText(), v.PageText())
}
