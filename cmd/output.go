package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smart-prospective/spctl/spapi"
)

// column is one table column: a header and the record field shown under it
type column struct {
	header string
	key    string
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listRecords filters the fetched records and prints them
func listRecords(cmd *cobra.Command, records []spapi.Record, columns []column) error {
	records, err := selectRecords(records)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), records, columns)
}

func printRecords(w io.Writer, records []spapi.Record, columns []column) error {
	if jsonOutput {
		return printJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, r := range records {
		values := make([]string, len(columns))
		for i, c := range columns {
			values[i] = displayValue(r[c.key])
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d record(s)\n", len(records))
	return nil
}

// printRecord prints one record as sorted "key: value" lines
func printRecord(w io.Writer, record spapi.Record) error {
	if jsonOutput {
		return printJSON(w, record)
	}
	for _, key := range slices.Sorted(maps.Keys(record)) {
		fmt.Fprintf(w, "%s: %s\n", key, displayValue(record[key]))
	}
	return nil
}

// displayValue renders a field for a table cell. Nested entities show their
// code or name, lists are comma joined.
func displayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		if v == "" {
			return "-"
		}
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, displayValue(item))
		}
		return strings.Join(items, ",")
	case map[string]any:
		r := spapi.Record(v)
		if code := r.Code(); code != "" {
			return code
		}
		if name := r.Name(); name != "" {
			return name
		}
		raw, _ := json.Marshal(v)
		return string(raw)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// confirm asks a y/N question unless skip is set
func confirm(cmd *cobra.Command, skip bool, format string, args ...any) bool {
	if skip {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+" [y/N]: ", args...)
	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}
