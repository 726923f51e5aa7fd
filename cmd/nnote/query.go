package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/nnote/internal/noteservice"
	"github.com/starford/nnote/internal/output"
)

// queryFlags select notes. They are shared by list, edit and tag.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "since", Aliases: []string{"s"}, Usage: "Earliest date spec or identifier"},
		&cli.StringFlag{Name: "until", Aliases: []string{"u"}, Usage: "Latest date spec or identifier, inclusive of the whole period"},
		&cli.StringFlag{Name: "index", Aliases: []string{"i"}, Usage: "1-based positions in walk order, e.g. 1-3,7"},
		&cli.IntFlag{Name: "count", Aliases: []string{"c"}, Usage: "Maximum number of notes"},
		&cli.StringFlag{Name: "order", Aliases: []string{"o"}, Usage: "Walk order: forward or reverse", Value: noteservice.OrderReverse},
		&cli.StringFlag{Name: "grep", Aliases: []string{"g"}, Usage: "Regular expression searched in text files"},
		&cli.StringSliceFlag{Name: "select", Aliases: []string{"S"}, Usage: "Attribute or .ext filter that must match"},
		&cli.StringSliceFlag{Name: "exclude", Aliases: []string{"E"}, Usage: "Attribute or .ext filter that must not match"},
	}
}

// formatFlags choose how list prints notes. The shortcuts win over
// --format.
func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "summary, identify, filename, realpath, full or json", Value: string(output.FormatSummary)},
		&cli.BoolFlag{Name: "identify", Aliases: []string{"I"}, Usage: "Print identifiers"},
		&cli.BoolFlag{Name: "filename", Aliases: []string{"F"}, Usage: "Print file names"},
		&cli.BoolFlag{Name: "realpath", Aliases: []string{"R"}, Usage: "Print absolute paths"},
		&cli.BoolFlag{Name: "full", Aliases: []string{"l"}, Usage: "Print headers and text"},
		&cli.StringFlag{Name: "color", Usage: "Colour note text in full output: auto, always or never", Value: colorAuto},
	}
}

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// colorFromFlags decides whether full output is highlighted. In auto mode
// colour is used only on a terminal and when NO_COLOR is unset.
func colorFromFlags(cmd *cli.Command) (bool, error) {
	switch mode := cmd.String("color"); mode {
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	case colorAuto, "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := cmd.Root().Writer.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode %q", mode)
	}
}

// newPrinter builds the printer for list and show.
func newPrinter(cmd *cli.Command, s *session, format output.Format) (*output.Printer, error) {
	color, err := colorFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	p := output.NewPrinter(cmd.Root().Writer, format, s.svc, s.svc.Location())
	p.SetHighlight(color)
	return p, nil
}

// queryFromFlags reads the selection flags. The first positional argument
// is a date spec or identifier naming the note period.
func queryFromFlags(cmd *cli.Command) noteservice.Query {
	return noteservice.Query{
		Note:    cmd.Args().First(),
		Since:   cmd.String("since"),
		Until:   cmd.String("until"),
		Index:   cmd.String("index"),
		Count:   int(cmd.Int("count")),
		Order:   cmd.String("order"),
		Grep:    cmd.String("grep"),
		Select:  cmd.StringSlice("select"),
		Exclude: cmd.StringSlice("exclude"),
	}
}

func formatFromFlags(cmd *cli.Command) (output.Format, error) {
	switch {
	case cmd.Bool("identify"):
		return output.FormatIdentify, nil
	case cmd.Bool("filename"):
		return output.FormatFilename, nil
	case cmd.Bool("realpath"):
		return output.FormatRealpath, nil
	case cmd.Bool("full"):
		return output.FormatFull, nil
	}
	return output.ParseFormat(cmd.String("format"))
}
