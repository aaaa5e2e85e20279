package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nxadm/tail"

	"tabsense/internal/util/logx"
)

var log = logx.Named("ingest")

type SourceKind string

const (
	SourceStdin SourceKind = "stdin"
	SourceFile  SourceKind = "file"
	SourceDemo  SourceKind = "demo"
)

type Options struct {
	Source   SourceKind
	Path     string
	MaxBytes int64 // refuse larger inputs; 0 = no limit
	Stdin    io.Reader
}

// Buffer is the text handed to the parser. A single trailing newline is
// split off so that it does not count as an extra empty row; Text restores
// it on output.
type Buffer struct {
	Body            string
	TrailingNewline bool
	Source          string
}

func NewBuffer(raw, source string) Buffer {
	b := Buffer{Source: source}
	// with CRLF files the '\r' stays in the body, like on every other line
	b.Body, b.TrailingNewline = strings.CutSuffix(raw, "\n")
	return b
}

// Text renders body as file content, restoring the trailing newline.
func (b Buffer) Text(body string) string {
	if !b.TrailingNewline {
		return body
	}
	return body + "\n"
}

// ErrTooLarge is returned when the input exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("input too large")

// ReadAll loads the whole input. The parser works on complete buffers.
func ReadAll(ctx context.Context, opt Options) (Buffer, error) {
	var r io.Reader
	src := string(opt.Source)
	switch opt.Source {
	case SourceStdin:
		r = opt.Stdin
		if r == nil {
			r = os.Stdin
		}
	case SourceFile:
		f, err := os.Open(opt.Path)
		if err != nil {
			return Buffer{}, err
		}
		defer f.Close()
		r = f
		src = opt.Path
	case SourceDemo:
		return NewBuffer(Demo, "demo"), nil
	default:
		return Buffer{}, errors.New("unknown source kind")
	}
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	var data []byte
	var err error
	read := make(chan struct{})
	go func() {
		defer close(read)
		data, err = io.ReadAll(r)
	}()
	select {
	case <-ctx.Done():
		return Buffer{}, ctx.Err()
	case <-read:
	}
	if err != nil {
		return Buffer{}, err
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return Buffer{}, fmt.Errorf("%s: %w (limit %d bytes)", src, ErrTooLarge, opt.MaxBytes)
	}
	log.Infof("read %d bytes from %s", len(data), src)
	return NewBuffer(string(data), src), nil
}

type Line struct {
	Text   string
	Source string
	When   time.Time
}

// Follow streams lines appended to path after the call. Both channels close
// when ctx is done or the tail stops.
func Follow(ctx context.Context, path string) (<-chan Line, <-chan error) {
	out := make(chan Line, 1024)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		t, err := tail.TailFile(path, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
			Poll:      true,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		})
		if err != nil {
			errs <- err
			return
		}
		defer t.Cleanup()
		log.Infof("following %s", path)
		for {
			select {
			case <-ctx.Done():
				_ = t.Stop()
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				if l.Err != nil {
					select {
					case errs <- l.Err:
					default:
					}
					continue
				}
				// a CRLF file keeps its '\r', like the lines loaded by ReadAll
				select {
				case out <- Line{Text: l.Text, Source: path, When: time.Now()}:
				case <-ctx.Done():
					_ = t.Stop()
					return
				}
			}
		}
	}()
	return out, errs
}

// Demo is shown when no input is given.
const Demo = `name,age,city,joined
Bob,30,"Lyon, FR",2021-04-02
Amy,25,Paris,2019-11-23
Carl,41,Nice,2020-01-15
Dana,19,'Brest, FR',2023-07-30
Eve,35,Lille,2018-03-09`
