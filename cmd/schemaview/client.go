package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"schemaview/internal/api"
	"schemaview/internal/column"
	"schemaview/internal/logger"
	"schemaview/internal/query"
	schema "schemaview/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// serviceFlags point a client command at a service.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "service base URL (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print JSON instead of a table",
		},
	}
}

func newClient(ctx context.Context, cmd *cli.Command) *api.Client {
	cfg := appConfig(ctx)
	url := cfg.Service.URL
	if u := cmd.String("url"); u != "" {
		url = u
	}
	policy := column.NumbersAsFloat
	if cfg.Decode.IntegralNumbers {
		policy = column.IntegralAsInt
	}
	return api.New(url, api.WithTimeout(cfg.Service.Timeout), api.WithNumberPolicy(policy))
}

func tablesCommand() *cli.Command {
	return &cli.Command{
		Name:   "tables",
		Usage:  "List the table definitions of a service",
		Flags:  serviceFlags(),
		Action: runTables,
	}
}

func runTables(ctx context.Context, cmd *cli.Command) error {
	defs, err := newClient(ctx, cmd).Tables(ctx)
	var se *schema.SchemaError
	if err != nil && !errors.As(err, &se) {
		return err
	}
	if se != nil {
		logger.Warn("%v", se)
	}

	if cmd.Bool("json") {
		return printJSON(defs)
	}

	t := newTable("Table", "Name", "Kind", "Leaves")
	for _, d := range defs {
		kind, leaves := "single", ""
		if d.IsFamily() {
			kind = "family"
			names := make([]string, len(d.Leaves))
			for i, l := range d.Leaves {
				names[i] = l.PrettyName()
			}
			leaves = strings.Join(names, ", ")
		}
		t.Row(d.Base.Table, d.Base.Name, kind, leaves)
	}
	fmt.Println(t)
	return nil
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:      "items",
		Usage:     "Fetch rows of a table",
		ArgsUsage: "<table>",
		Flags: append(serviceFlags(),
			&cli.Int64Flag{
				Name:  "id",
				Usage: "fetch the row with this primary key",
			},
			&cli.StringSliceFlag{
				Name:    "where",
				Aliases: []string{"w"},
				Usage:   "condition: col<v col>v col<=v col>=v col==v col!=v col@min..max col~a|b col!~a|b",
			},
		),
		Action: runItems,
	}
}

func runItems(ctx context.Context, cmd *cli.Command) error {
	tableID := cmd.Args().First()
	if tableID == "" {
		return fmt.Errorf("table argument required")
	}
	c := newClient(ctx, cmd)

	tables, err := c.Schemas(ctx)
	if err != nil {
		return err
	}
	var target *schema.Schema
	for i := range tables {
		if tables[i].Table == tableID {
			target = &tables[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown table %q", tableID)
	}

	sel := query.All()
	switch {
	case cmd.IsSet("id"):
		sel = query.ByID(cmd.Int64("id"))
	case len(cmd.StringSlice("where")) > 0:
		f, err := parseWhere(cmd.StringSlice("where"), *target)
		if err != nil {
			return err
		}
		sel = query.Where(f)
	}
	logger.Debug("fetching %s %s", tableID, sel)

	rows, err := c.Get(ctx, tableID, sel)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(rows)
	}

	names := make([]string, len(target.Columns))
	for i, col := range target.Columns {
		names[i] = col.Name
	}
	t := newTable(names...)
	for _, row := range rows {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = row[name].String()
		}
		t.Row(cells...)
	}
	fmt.Println(t)
	fmt.Fprintf(os.Stderr, "%d %s\n", len(rows), plural(len(rows), "row"))
	return nil
}

// newTable returns a bordered table; styling is dropped when stdout is not a
// terminal.
func newTable(headers ...string) *table.Table {
	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		t = t.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	}
	return t
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
