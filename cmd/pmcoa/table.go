package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/m-mizutani/pmcoa/internal"
	"github.com/m-mizutani/pmcoa/internal/service"
)

type tableColumn struct {
	Title string
	Align text.Align
}

var (
	statsColumns = []tableColumn{
		{"Subset", text.AlignLeft},
		{"Partition", text.AlignLeft},
		{"Archives", text.AlignRight},
		{"Records", text.AlignRight},
		{"UTF-8", text.AlignRight},
		{"Latin-1", text.AlignRight},
		{"Not in index", text.AlignRight},
	}
	fileColumns = []tableColumn{
		{"File", text.AlignLeft},
		{"Rows", text.AlignRight},
		{"Data size", text.AlignRight},
	}
	profileColumns = []tableColumn{
		{"Phase", text.AlignLeft},
		{"Count", text.AlignRight},
		{"Total", text.AlignRight},
		{"Max", text.AlignRight},
	}
)

// newTableWriter creates rounded table with header of columns. Titles are printed as is.
func newTableWriter(columns []tableColumn) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.Title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       c.Align,
			AlignHeader: text.AlignLeft,
			AlignFooter: c.Align,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	return tw
}

func renderStats(stats []service.GroupStats) string {
	tw := newTableWriter(statsColumns)

	var total service.GroupStats
	for _, s := range stats {
		tw.AppendRow(table.Row{s.Subset, s.Partition, s.Archives, s.Records, s.UTF8, s.Latin1, s.NotInIndex})
		total.Archives += s.Archives
		total.Records += s.Records
		total.UTF8 += s.UTF8
		total.Latin1 += s.Latin1
		total.NotInIndex += s.NotInIndex
	}
	tw.AppendFooter(table.Row{"total", "", total.Archives, total.Records, total.UTF8, total.Latin1, total.NotInIndex})

	return tw.Render()
}

func renderFiles(files []*service.DumpFile) string {
	tw := newTableWriter(fileColumns)

	var rows, size int64
	for _, f := range files {
		tw.AppendRow(table.Row{f.Path, f.Rows, f.DataSize})
		rows += f.Rows
		size += f.DataSize
	}
	tw.AppendFooter(table.Row{len(files), rows, size})

	return tw.Render()
}

func renderProfile(results []internal.ProfileResult) string {
	tw := newTableWriter(profileColumns)
	for _, r := range results {
		tw.AppendRow(table.Row{r.Phase, r.Count, r.Total.String(), r.Max.String()})
	}
	return tw.Render()
}
