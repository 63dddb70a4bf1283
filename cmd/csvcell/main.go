// Command csvcell converts CSV files into typed JSON lines.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/ingest"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/pgsink"
	"github.com/JonMunkholm/csvcell/internal/reader"
	"github.com/JonMunkholm/csvcell/internal/rowjson"
	"github.com/urfave/cli/v3"
)

func main() {
	appCtx, appClose := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appClose()

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(appCtx, os.Args); err != nil {
		log.Printf("error running csvcell: %v", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. The streams are parameters so tests can
// drive the commands without touching the process's files.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	logLevelFlag := &cli.StringFlag{
		Name:    "log-level",
		Value:   "warn",
		Usage:   "Log level written to stderr (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}

	return &cli.Command{
		Name:      "csvcell",
		Usage:     "Convert CSV cells into typed values",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     []cli.Flag{logLevelFlag},
		Before: func(ctx context.Context, clicmd *cli.Command) (context.Context, error) {
			logging.Setup(stderr, clicmd.String("log-level"), "text")
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert a CSV file (or stdin) to JSON lines, one row per line",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Aliases:  []string{"s"},
						Usage:    `Column declarations, e.g. "id:int64,amount:decimal,note"`,
						Required: true,
					},
					&cli.StringFlag{
						Name:    "locale",
						Aliases: []string{"l"},
						Value:   "und",
						Usage:   "BCP 47 locale of the numbers and dates",
						Sources: cli.EnvVars("CONVERT_LOCALE"),
					},
					&cli.StringFlag{
						Name:    "styles",
						Value:   "Number",
						Usage:   `Number styles, e.g. "Float|AllowThousands"`,
						Sources: cli.EnvVars("CONVERT_NUMBER_STYLES"),
					},
					&cli.StringFlag{
						Name:    "timezone",
						Value:   "UTC",
						Usage:   "IANA zone for date-times without an offset",
						Sources: cli.EnvVars("CONVERT_TIMEZONE"),
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Value: ",",
						Usage: "Field delimiter (a single character or \"tab\")",
					},
					&cli.IntFlag{
						Name:    "workers",
						Value:   4,
						Sources: cli.EnvVars("CONVERT_WORKERS"),
					},
					&cli.BoolFlag{Name: "no-header", Usage: "Bind columns by position; the first line is data"},
					&cli.BoolFlag{Name: "clean", Value: true, Usage: `Strip spreadsheet wrappers such as ="007"`},
					&cli.BoolFlag{Name: "lazy-quotes", Usage: "Allow quotes inside unquoted fields"},
					&cli.BoolFlag{Name: "strict", Usage: "Exit with an error if any cell fails to convert"},
					&cli.BoolFlag{Name: "valid-only", Usage: "Write only rows where every cell converted"},
				},
				Action: func(ctx context.Context, clicmd *cli.Command) error {
					src := stdin
					if path := clicmd.Args().First(); path != "" && path != "-" {
						f, err := os.Open(path)
						if err != nil {
							return err
						}
						defer f.Close()
						src = f
					}
					return runConvert(ctx, clicmd, src, stdout)
				},
			},
			{
				Name:  "kinds",
				Usage: "List the supported column kinds",
				Action: func(ctx context.Context, clicmd *cli.Command) error {
					tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "KIND\tPOSTGRES\tALIASES")
					for _, k := range core.Kinds() {
						fmt.Fprintf(tw, "%s\t%s\t%v\n", k, pgsink.PgType(k), k.Aliases())
					}
					return tw.Flush()
				},
			},
			{
				Name:  "locales",
				Usage: "List the built-in locales",
				Action: func(ctx context.Context, clicmd *cli.Command) error {
					tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "LOCALE\tDECIMAL\tGROUP\tCURRENCY")
					for _, tag := range core.Locales() {
						fc := core.ForLocale(tag)
						fmt.Fprintf(tw, "%s\t%q\t%q\t%s\n", tag, fc.DecimalSeparator, fc.GroupSeparator, fc.CurrencySymbol)
					}
					return tw.Flush()
				},
			},
		},
	}
}

// runConvert converts src with the command's flags and writes JSON lines to out.
func runConvert(ctx context.Context, clicmd *cli.Command, src io.Reader, out io.Writer) error {
	schema, err := core.ParseSchema(clicmd.String("schema"))
	if err != nil {
		return err
	}
	format, err := core.ParseLocale(clicmd.String("locale"))
	if err != nil {
		return err
	}
	styles, err := core.ParseNumberStyles(clicmd.String("styles"))
	if err != nil {
		return err
	}
	format.Location, err = time.LoadLocation(clicmd.String("timezone"))
	if err != nil {
		return err
	}
	comma, err := delimiter(clicmd.String("delimiter"))
	if err != nil {
		return err
	}

	res, err := ingest.Run(ctx, src, ingest.Options{
		Schema:  schema,
		Format:  format,
		Styles:  styles,
		Workers: int(clicmd.Int("workers")),
		Reader: reader.Options{
			Comma:      comma,
			LazyQuotes: clicmd.Bool("lazy-quotes"),
			CleanCells: clicmd.Bool("clean"),
		},
		NoHeader: clicmd.Bool("no-header"),
	})
	if err != nil {
		return err
	}

	logger := logging.WithFields(ctx, "job_id", res.ID)
	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	if clicmd.Bool("strict") && res.Summary.FailedCells > 0 {
		return fmt.Errorf("%d of %d rows failed conversion, first: %v",
			res.Summary.Rows-res.Summary.ValidRows, res.Summary.Rows, res.CellErrors(1)[0])
	}

	rows := res.Rows
	if clicmd.Bool("valid-only") {
		rows = res.ValidRows()
	}

	enc := rowjson.NewEncoder(out)
	for _, row := range rows {
		if err := enc.WriteLine(row); err != nil {
			return err
		}
	}
	return enc.Flush()
}

func delimiter(v string) (rune, error) {
	if v == "tab" || v == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", v)
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r, nil
}
