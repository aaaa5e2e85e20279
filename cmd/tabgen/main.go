// Command tabgen writes sample delimited files, optionally appending rows at
// a fixed rate so that `tabsense -follow` has something to watch.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

func main() {
	var (
		delim       string
		rows        int
		rate        float64
		outPath     string
		durationStr string
		noHeader    bool
	)
	flag.StringVar(&delim, "delimiter", ",", `field delimiter: "," ";" or \t`)
	flag.IntVar(&rows, "rows", 20, "rows written up front")
	flag.Float64Var(&rate, "rate", 0, "rows per second appended after the initial rows; 0 stops after them")
	flag.StringVar(&outPath, "out", "", "output file (default: stdout)")
	flag.StringVar(&durationStr, "duration", "", "optional run duration (e.g. 30s, 2m) when -rate is set")
	flag.BoolVar(&noHeader, "no-header", false, "omit the header row")
	flag.Parse()

	d, err := parseDelimiter(delim)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if durationStr != "" {
		dur, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		ctx, cancel = context.WithTimeout(ctx, dur)
		defer cancel()
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
		fmt.Fprintf(os.Stderr, "generating rows -> %s\n", outPath)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	g := newGenerator(d, rand.New(rand.NewSource(time.Now().UnixNano())))
	if !noHeader {
		writeLine(w, g.header())
	}
	for i := 0; i < rows; i++ {
		writeLine(w, g.row())
	}
	if rate > 0 {
		stream(ctx, w, g, rate)
	}
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\'' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r[0], nil
}

func writeLine(w *bufio.Writer, line string) {
	w.WriteString(line)
	w.WriteByte('\n')
	_ = w.Flush()
}

func stream(ctx context.Context, w *bufio.Writer, g *generator, rate float64) {
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeLine(w, g.row())
		}
	}
}

type generator struct {
	delim rune
	rnd   *rand.Rand
	id    int
}

func newGenerator(delim rune, rnd *rand.Rand) *generator {
	return &generator{delim: delim, rnd: rnd}
}

func (g *generator) header() string {
	return g.join([]string{"id", "name", "age", "city", "note"})
}

var (
	names  = []string{"Amy", "Bob", "Carl", "Dana", "Erin", "Frank", "Gus", "Hana"}
	cities = []string{"Paris", "Lyon", "Nice", "Brest", "Lille", "Nantes"}
	notes  = []string{"", "vip", "late payer", "moved, new address", "call back; evenings", "says \"hi\""}
)

func (g *generator) row() string {
	g.id++
	city := cities[g.rnd.Intn(len(cities))]
	if g.rnd.Intn(3) == 0 {
		city += ", FR"
	}
	return g.join([]string{
		strconv.Itoa(g.id),
		names[g.rnd.Intn(len(names))],
		strconv.Itoa(18 + g.rnd.Intn(60)),
		city,
		notes[g.rnd.Intn(len(notes))],
	})
}

// join quotes fields that hold the delimiter. A field that holds double
// quotes is wrapped in single quotes instead.
func (g *generator) join(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		switch {
		case !strings.ContainsRune(f, g.delim):
			out[i] = f
		case strings.Contains(f, `"`):
			out[i] = "'" + f + "'"
		default:
			out[i] = `"` + f + `"`
		}
	}
	return strings.Join(out, string(g.delim))
}
