package output

import (
	"sort"
	"strconv"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/differ"
	"github.com/agentstation/catalogmirror/pkg/reconciler"
)

// ProductsTable lays out mirror rows for display. Wide adds the category and
// the raw availability token.
func ProductsTable(products []catalog.Product, wide bool) Data {
	headers := []string{"ID", "Name", "Colors", "Price", "Manufacturer", "Availability"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Category", "Status")
		align = append(align, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		d := p.Display()
		row := []string{d.ID, d.Name, d.Colors, strconv.Itoa(d.Price), d.Manufacturer, d.Available}
		if wide {
			row = append(row, p.Category, p.Available.String())
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ItemsTable lays out a fetched category listing sorted by id.
func ItemsTable(items map[string]catalog.Item) Data {
	ids := differ.Keys(items)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		it := items[id]
		rows = append(rows, []string{it.ID, it.Name, it.Colors, strconv.Itoa(it.Price), it.Manufacturer})
	}
	return Data{
		Headers:         []string{"ID", "Name", "Colors", "Price", "Manufacturer"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// AvailabilityTable lays out a fetched availability feed sorted by id.
func AvailabilityTable(status map[string]catalog.Availability) Data {
	ids := differ.Keys(status)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id, status[id].Pretty()})
	}
	return Data{Headers: []string{"ID", "Availability"}, Rows: rows}
}

// CycleTable summarizes a cycle, one row per category and manufacturer.
func CycleTable(res *reconciler.CycleResult) Data {
	rows := [][]string{}
	add := func(kind string, phase reconciler.PhaseResult) {
		names := make([]string, 0, len(phase.Results))
		for name := range phase.Results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, []string{kind, name, phase.Results[name].String()})
		}
	}
	add("category", res.Categories)
	add("manufacturer", res.Manufacturers)
	return Data{Headers: []string{"Kind", "Name", "Result"}, Rows: rows}
}
