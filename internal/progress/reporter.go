// Package progress renders extraction feedback for the unpack command.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter consumes extraction progress. Report matches the signature
// of archive.ReportFunc so a Reporter plugs straight into Unpack.
type Reporter interface {
	Report(done, total int, name string)
	Finish()
}

// New returns a terminal progress bar, or a line-per-archive reporter
// when running under CI where carriage returns garble the log.
func New() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &logReporter{}
	}
	return &barReporter{}
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func (r *barReporter) Report(done, total int, name string) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Extracting archives"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.Describe(name)
	_ = r.bar.Set(done)
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

type logReporter struct{}

func (r *logReporter) Report(done, total int, name string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, name)
}

func (r *logReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Extraction complete")
}
