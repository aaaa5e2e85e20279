// Package cli runs the non-interactive modes: one parse, transform and emit
// cycle driven by flags.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tabsense/internal/command"
	"tabsense/internal/config"
	"tabsense/internal/detect"
	"tabsense/internal/export"
	"tabsense/internal/filter"
	"tabsense/internal/ingest"
	"tabsense/internal/model"
	"tabsense/internal/parse"
	"tabsense/internal/settings"
	"tabsense/internal/util/logx"
)

var log = logx.Named("cli")

// OpenSettings picks the settings backend from the config.
func OpenSettings(cfg *config.Config) (settings.Store, error) {
	switch {
	case cfg.NoPersist:
		return settings.NewMemoryStore(), nil
	case cfg.SettingsDB != "":
		return settings.OpenSQLite(cfg.SettingsDB)
	}
	path := cfg.SettingsPath
	if path == "" {
		path = settings.DefaultJSONPath()
	}
	s, err := settings.OpenJSON(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("settings file %s", s.Path())
	return s, nil
}

// Reader wraps the store with the -header override, if any.
func Reader(cfg *config.Config, store settings.Reader) settings.Reader {
	if cfg.HeaderOverride != nil {
		return settings.Override{Reader: store, Key: settings.KeyUseHeader, Value: *cfg.HeaderOverride}
	}
	return store
}

// Source maps the config to ingest options.
func Source(cfg *config.Config) ingest.Options {
	opt := ingest.Options{Source: ingest.SourceDemo, MaxBytes: cfg.MaxBytes}
	switch {
	case cfg.FilePath != "":
		opt.Source, opt.Path = ingest.SourceFile, cfg.FilePath
	case cfg.UseStdin:
		opt.Source = ingest.SourceStdin
	}
	return opt
}

func Actions(cfg *config.Config, store settings.Reader) command.Actions {
	return command.Actions{
		Settings: Reader(cfg, store),
		Options: command.Options{
			Candidates:     detect.ParseDelimiters(cfg.Delimiters),
			TrimWhitespace: cfg.Trim,
		},
	}
}

// Run executes the mode selected by cfg. Output goes to stdout unless -out
// or -in-place says otherwise; nothing is written when any step fails.
func Run(ctx context.Context, cfg *config.Config, store settings.Store, stdin io.Reader, stdout io.Writer) error {
	identity := settings.Identity(cfg.FilePath)
	if cfg.Mode() == config.ModeSetHeader {
		v, _ := strconv.ParseBool(cfg.SetHeader)
		if err := store.SetFileSetting(identity, settings.KeyUseHeader, v); err != nil {
			return err
		}
		log.Infof("use_header=%v for %s", v, identity)
		return nil
	}

	opt := Source(cfg)
	opt.Stdin = stdin
	buf, err := ingest.ReadAll(ctx, opt)
	if err != nil {
		return err
	}
	actions := Actions(cfg, store)
	m, err := actions.Parse(identity, buf.Body)
	if err != nil {
		return err
	}
	if cfg.Where != "" {
		ev, err := filter.NewEvaluator(filter.Criteria{Expr: cfg.Where, Column: -1})
		if err != nil {
			return fmt.Errorf("-where: %w", err)
		}
		before := m.Len()
		m = ev.Apply(m, m.GetHeader())
		log.Infof("filter kept %d of %d rows", m.Len(), before)
	}

	var out string
	switch cfg.Mode() {
	case config.ModeSort:
		column := cfg.SortColumn
		if cfg.HasCursor() {
			if column, err = cursorColumn(m, buf.Body, cfg.CursorLine, cfg.CursorCol); err != nil {
				return err
			}
		}
		s, _, err := command.SortView(m, column, cfg.Direction())
		if err != nil {
			return err
		}
		out = buf.Text(s)
	case config.ModeFormat:
		out = command.FormatView(m, cfg.Template) + "\n"
	case config.ModeColumns:
		out = strings.Join(command.Columns(m), "\n") + "\n"
	case config.ModeExport:
		var b strings.Builder
		if err := export.Write(&b, m, cfg.ExportFormat); err != nil {
			return err
		}
		out = b.String()
		if f := strings.ToLower(cfg.ExportFormat); f == "" || f == "raw" {
			out = buf.Text(out)
		}
	default:
		return fmt.Errorf("mode %s is interactive", cfg.Mode())
	}
	return emit(cfg, out, stdout)
}

// cursorColumn resolves a 1-based LINE:COL position in the buffer to the
// column under it.
func cursorColumn(m *model.Matrix, body string, line, col int) (int, error) {
	lines := parse.SplitLines(body)
	if line > len(lines) {
		return 0, fmt.Errorf("-cursor line %d: buffer has %d lines", line, len(lines))
	}
	c := command.ColumnFromCursor(m, lines[line-1], col-1)
	log.Debugf("cursor %d:%d is in column %d", line, col, c)
	return c, nil
}

func emit(cfg *config.Config, out string, stdout io.Writer) error {
	switch {
	case cfg.InPlace:
		return export.ToFile(cfg.FilePath, out)
	case cfg.OutPath != "":
		return export.ToFile(cfg.OutPath, out)
	}
	_, err := io.WriteString(stdout, out)
	return err
}
