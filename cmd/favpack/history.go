package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Mavwarf/favpack/internal/history"
)

// noColor disables ANSI colours; set by NO_COLOR or when stdout is not a
// terminal.
var noColor = os.Getenv("NO_COLOR") != "" || !stdoutIsTerminal()

func ansi(code, s string) string {
	if noColor {
		return s
	}
	return code + s + "\033[0m"
}

func bold(s string) string  { return ansi("\033[1m", s) }
func dim(s string) string   { return ansi("\033[2m", s) }
func cyan(s string) string  { return ansi("\033[36m", s) }
func green(s string) string { return ansi("\033[32m", s) }

func (a *app) historyCmd(args []string) error {
	store, err := history.Open(a.cfg.Storage, a.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) > 0 {
		switch args[0] {
		case "clear":
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Activity log cleared.")
			return nil
		case "clean":
			if len(args) != 2 {
				return errors.New("usage: favpack history clean <days>")
			}
			days, err := strconv.Atoi(args[1])
			if err != nil || days <= 0 {
				return errors.New("days must be a positive integer")
			}
			n, err := store.Clean(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Removed %d record(s) older than %d day(s).\n", n, days)
			return nil
		}
	}

	days := 7
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errors.New("days must be a non-negative integer")
		}
		days = n
	}

	recs, err := store.Entries(days)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		if !a.cfg.Log {
			fmt.Fprintln(a.stdout, `No generations recorded. Enable logging with "log": true in config.`)
		} else {
			fmt.Fprintln(a.stdout, "No generations recorded.")
		}
		return nil
	}
	printHistory(a.stdout, history.GroupByDay(recs, time.Local), time.Now())
	return nil
}

func printHistory(w io.Writer, groups []history.DayGroup, now time.Time) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			bold(g.Date.Format("2006-01-02 Mon")),
			kindCounts(g.Counts),
			dim(humanize.Bytes(uint64(g.Bytes))))
		for _, r := range g.Records {
			name := r.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "  %s  %-6s  %s  %s  %s  %s\n",
				r.Time.In(g.Date.Location()).Format("15:04:05"),
				cyan(r.Kind),
				r.Source,
				name,
				r.SizesCSV(),
				green(humanize.Bytes(uint64(r.Bytes))))
		}
	}
	if len(groups) > 0 {
		last := groups[0].Records[len(groups[0].Records)-1]
		fmt.Fprintf(w, "\n%s\n", dim("last generation "+humanize.RelTime(last.Time, now, "ago", "from now")))
	}
}

// kindCounts renders per-kind counts in a stable order, e.g. "bundle 2, ico 1".
func kindCounts(counts map[string]int) string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s %d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
