package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rgonek/button-block/attachment"
	"github.com/rgonek/button-block/editor"
	"github.com/rgonek/button-block/extension"
	"github.com/rgonek/button-block/mdimport"
	"github.com/rgonek/button-block/render"
	"github.com/rgonek/button-block/resolver"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	formatText     = "text"
	formatHTML     = "html"
	formatSnapshot = "snapshot"
	formatMarkdown = "markdown"
)

func parseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		return formatText, nil
	case formatText, formatHTML, formatSnapshot, formatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (allowed: text, html, snapshot, markdown)", format)
	}
}

type options struct {
	format  string
	reverse bool
	strict  bool
	config  extension.Config
	log     logrus.FieldLogger
}

func (o options) chain() *render.Chain {
	chain := resolver.New[attachment.Fragment, render.Renderable]()
	render.Install(chain, render.New(render.Config{
		MarkerClasses: o.config.MarkerClasses,
		Logger:        o.log,
	}))
	return chain
}

func run(ctx context.Context, opts options, input string, out io.Writer) error {
	if opts.reverse {
		return writeAttachments(mdimport.Read(input), opts.log, out)
	}

	if opts.format == formatSnapshot {
		return writeSnapshot(ctx, opts, input, out)
	}

	doc, err := render.Scan(ctx, opts.chain(), input)
	if err != nil {
		return err
	}
	entries := doc.Entries
	if opts.strict {
		if err := checkDeclined(entries); err != nil {
			return err
		}
	}

	switch opts.format {
	case formatHTML:
		for _, e := range entries {
			if e.Declined() {
				continue
			}
			fmt.Fprintln(out, e.Value.HTML())
		}
	case formatMarkdown:
		for _, e := range entries {
			if e.Declined() {
				continue
			}
			fmt.Fprintf(out, "- %s\n", e.Value.PlainText())
		}
	default:
		fmt.Fprintln(out, doc.PlainText())
	}

	for _, e := range entries {
		if b, ok := e.Value.(*render.Block); ok {
			for _, w := range b.Warnings {
				opts.log.WithField("type", w.Type).WithField("field", w.Field).Warn(w.Message)
			}
		}
	}
	return nil
}

func checkDeclined(entries []render.Entry) error {
	var errs []error
	for _, e := range entries {
		if !e.Declined() {
			continue
		}
		if _, err := attachment.DecodeFragment(e.Fragment); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeSnapshot(ctx context.Context, opts options, input string, out io.Writer) error {
	reg, err := extension.New(opts.config, extension.WithLogger(opts.log))
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ed := editor.New(editor.Capabilities{RichText: true}, editor.WithLogger(opts.log))
	if _, err := reg.Activate(ed); err != nil {
		return err
	}
	if err := ed.ImportHTML(ctx, input); err != nil {
		return err
	}

	data, err := ed.ExportJSON()
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format snapshot JSON: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(out)
	return err
}

func writeAttachments(res mdimport.Result, log logrus.FieldLogger, out io.Writer) error {
	for _, w := range res.Warnings {
		log.WithField("type", w.Type).WithField("field", w.Field).Warn(w.Message)
	}
	for _, n := range res.Buttons {
		if err := html.Render(out, attachment.ExportDOM(n)); err != nil {
			return fmt.Errorf("failed to render attachment: %w", err)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}

func main() {
	format := flag.String("format", formatText, "Output: text|html|snapshot|markdown")
	reverse := flag.Bool("reverse", false, "Read Markdown and write persisted button attachments")
	strict := flag.Bool("strict", false, "Fail on attachments no renderer accepts")
	configPath := flag.String("config", "", "YAML config file")
	logLevel := flag.String("log-level", "warning", "Log level: debug|info|warning|error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: btn [options] <input-file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}

	f, err := parseFormat(*format)
	if err != nil {
		log.WithError(err).Error("invalid format")
		os.Exit(1)
	}

	opts := options{format: f, reverse: *reverse, strict: *strict, log: log}
	if *configPath != "" {
		cfg, err := extension.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Error("invalid config")
			os.Exit(1)
		}
		opts.config = cfg
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.WithError(err).Error("error reading file")
		os.Exit(1)
	}

	if err := run(context.Background(), opts, string(data), os.Stdout); err != nil {
		log.WithError(err).Error("error rendering file")
		os.Exit(1)
	}
}
