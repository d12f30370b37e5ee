package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"opecbrain/entity"
)

func printRecords(out io.Writer, records []entity.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No records found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "OBJETO\tSUBIU\tDESCEU\tPRONTO\tSTATUS")
	for _, rec := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Object, stamp(rec.Raised), stamp(rec.Lowered), stamp(rec.Ready), orDash(string(rec.Status)))
	}
	_ = w.Flush()
}

func stamp(ts *entity.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeDocument(out io.Writer, records []entity.Record) error {
	if records == nil {
		records = []entity.Record{}
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
