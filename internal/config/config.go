package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tabsense/internal/model"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Mode is what the process does once the buffer is loaded.
type Mode string

const (
	ModeTUI       Mode = "tui"
	ModeSort      Mode = "sort"
	ModeFormat    Mode = "format"
	ModeExport    Mode = "export"
	ModeColumns   Mode = "columns"
	ModeSetHeader Mode = "set-header"
)

type Config struct {
	FilePath   string
	UseStdin   bool
	Delimiters string
	Trim       bool
	MaxBytes   int64

	// nil means "ask the settings store"
	HeaderOverride *bool

	SortColumn   int
	SortDesc     bool
	// 1-based position from -cursor; the sort column is the one under it
	CursorLine   int
	CursorCol    int
	Template     string
	Where        string
	ExportFormat string
	ListColumns  bool
	SetHeader    string // "", "true" or "false"
	InPlace      bool
	OutPath      string

	Follow  bool
	Theme   Theme
	History int

	SettingsPath string
	SettingsDB   string
	NoPersist    bool

	Offline          bool
	OpenAIModel      string
	OpenAIBase       string
	OpenAITimeoutSec int

	ShowVersion bool

	// Internal
	IsPipedStdin bool
}

// Load parses args (without the program name). stdin is used only to find
// out whether input is piped; it may be nil.
func Load(args []string, stdin *os.File, errOut io.Writer) (*Config, error) {
	cfg := &Config{}

	if stdin != nil {
		if fi, err := stdin.Stat(); err == nil {
			cfg.IsPipedStdin = (fi.Mode() & os.ModeCharDevice) == 0
		}
	}

	fs := flag.NewFlagSet("tabsense", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&cfg.FilePath, "file", "", "path to the delimited text file")
	fs.BoolVar(&cfg.UseStdin, "stdin", false, "read from stdin (default: auto if piped)")
	fs.StringVar(&cfg.Delimiters, "delimiters", getenvDefault("TABSENSE_DELIMITERS", ",;"), `candidate delimiters in the order they are tried; \t for tab`)
	fs.BoolVar(&cfg.Trim, "trim", false, "trim whitespace around fields (output is no longer byte-identical)")
	fs.Int64Var(&cfg.MaxBytes, "max-bytes", int64(getenvDefaultInt("TABSENSE_MAX_BYTES", 64<<20)), "refuse inputs larger than this (0 = no limit)")
	header := fs.String("header", "", "treat the first row as header: true|false (default: per-file setting)")
	fs.IntVar(&cfg.SortColumn, "sort-col", -1, "sort by this 0-based column and print the result")
	cursor := fs.String("cursor", "", "sort by the column under LINE:COL (1-based, COL in bytes), as an editor cursor would")
	fs.BoolVar(&cfg.SortDesc, "desc", false, "sort descending")
	fs.StringVar(&cfg.Template, "template", "", "format every row with a template such as '{1}: {0}'")
	fs.StringVar(&cfg.Where, "where", "", `keep rows matching an expression, e.g. 'age > 30 && city == "Paris"'`)
	fs.StringVar(&cfg.ExportFormat, "export", "", "export rows: raw|csv|ndjson")
	fs.BoolVar(&cfg.ListColumns, "columns", false, "print column labels, one per line")
	fs.StringVar(&cfg.SetHeader, "set-header", "", "persist the use_header setting for -file: true|false")
	fs.BoolVar(&cfg.InPlace, "in-place", false, "write the sorted result back to -file")
	fs.StringVar(&cfg.OutPath, "out", "", "output path (default: stdout)")
	fs.BoolVar(&cfg.Follow, "follow", false, "reload the table as the file grows (TUI only)")
	theme := string(ThemeDark)
	fs.StringVar(&theme, "theme", getenvDefault("TABSENSE_THEME", string(ThemeDark)), "theme: dark|light")
	fs.IntVar(&cfg.History, "history", 50, "undo steps kept in the TUI")
	fs.StringVar(&cfg.SettingsPath, "settings", getenvDefault("TABSENSE_SETTINGS", ""), "per-file settings JSON path (default: user config dir)")
	fs.StringVar(&cfg.SettingsDB, "settings-db", getenvDefault("TABSENSE_SETTINGS_DB", ""), "keep per-file settings in this SQLite database instead of JSON")
	fs.BoolVar(&cfg.NoPersist, "no-persist", false, "keep per-file settings in memory only")
	fs.BoolVar(&cfg.Offline, "offline", false, "disable OpenAI template suggestions")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("TABSENSE_OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model override")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("TABSENSE_OPENAI_BASE_URL", ""), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("TABSENSE_OPENAI_TIMEOUT_SEC", 60), "OpenAI request timeout in seconds")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 1 && cfg.FilePath == "" {
		cfg.FilePath = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	cfg.Theme = Theme(theme)

	if *header != "" {
		v, err := strconv.ParseBool(*header)
		if err != nil {
			return nil, fmt.Errorf("-header: %w", err)
		}
		cfg.HeaderOverride = &v
	}
	if *cursor != "" {
		line, col, err := parseCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("-cursor: %w", err)
		}
		cfg.CursorLine, cfg.CursorCol = line, col
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Determine input source defaults
	if cfg.UseStdin || (cfg.IsPipedStdin && cfg.FilePath == "") {
		cfg.UseStdin = true
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if c.InPlace && c.FilePath == "" {
		return errors.New("-in-place requires -file")
	}
	if c.InPlace && c.OutPath != "" {
		return errors.New("-in-place and -out are exclusive")
	}
	if c.SetHeader != "" {
		if _, err := strconv.ParseBool(c.SetHeader); err != nil {
			return fmt.Errorf("-set-header: %w", err)
		}
		if c.FilePath == "" {
			return errors.New("-set-header requires -file")
		}
	}
	switch strings.ToLower(c.ExportFormat) {
	case "", "raw", "csv", "ndjson", "json":
	default:
		return fmt.Errorf("unknown export format %q", c.ExportFormat)
	}
	if c.SortColumn >= 0 && c.HasCursor() {
		return errors.New("-sort-col and -cursor are exclusive")
	}
	n := 0
	for _, set := range []bool{c.SortColumn >= 0 || c.HasCursor(), c.Template != "", c.ExportFormat != "", c.ListColumns, c.SetHeader != ""} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("-sort-col, -template, -export, -columns and -set-header are exclusive")
	}
	if c.InPlace && c.SortColumn < 0 && !c.HasCursor() && c.Where == "" {
		return errors.New("-in-place only applies to -sort-col or -where")
	}
	if c.History < 1 {
		c.History = 1
	}
	if c.OpenAITimeoutSec < 1 {
		c.OpenAITimeoutSec = 1
	}
	return nil
}

// Mode picks the action from the flags. A -where filter alone behaves like
// a raw export.
func (c *Config) Mode() Mode {
	switch {
	case c.SetHeader != "":
		return ModeSetHeader
	case c.SortColumn >= 0 || c.HasCursor():
		return ModeSort
	case c.Template != "":
		return ModeFormat
	case c.ListColumns:
		return ModeColumns
	case c.ExportFormat != "" || c.Where != "":
		return ModeExport
	}
	return ModeTUI
}

// HasCursor reports whether -cursor picks the sort column.
func (c *Config) HasCursor() bool { return c.CursorLine > 0 }

// parseCursor reads "LINE:COL".
func parseCursor(s string) (line, col int, err error) {
	l, cc, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not LINE:COL", s)
	}
	if line, err = strconv.Atoi(l); err != nil || line < 1 {
		return 0, 0, fmt.Errorf("bad line in %q", s)
	}
	if col, err = strconv.Atoi(cc); err != nil || col < 1 {
		return 0, 0, fmt.Errorf("bad column in %q", s)
	}
	return line, col, nil
}

// Direction is the sort direction requested by -desc.
func (c *Config) Direction() model.SortDirection {
	if c.SortDesc {
		return model.Descending
	}
	return model.Ascending
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("file=%s stdin=%v mode=%s delimiters=%q follow=%v theme=%s offline=%v", c.FilePath, c.UseStdin, c.Mode(), c.Delimiters, c.Follow, c.Theme, c.Offline)
}
