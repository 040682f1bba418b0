package errors

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter writes compiler results to the CLI surface. The byte content of
// the stream is fixed (`ERROR\n<message>` / `OK`); color is layered on top
// and follows the color package's global setting, which turns color off
// when stdout (not the writer passed here) is not a terminal.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// ReportError prints the failure banner and the error message.
func (r *Reporter) ReportError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(r.out, "ERROR")
	fmt.Fprintln(r.out, err.Error())
}

// ReportOK prints the success banner of the check-only mode.
func (r *Reporter) ReportOK() {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintln(r.out, "OK")
}
