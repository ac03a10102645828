package cli

// Terminal output helpers built on pterm. User-facing progress goes through
// the Printer so --quiet can silence it without touching structured logs;
// errors are always printed.

import (
	"github.com/pterm/pterm"
)

// Printer renders user-facing progress output. The zero value prints
// everything; set Quiet to suppress all but errors.
type Printer struct {
	Quiet bool
}

// DefaultPrinter is the printer used by the package-level helpers.
var DefaultPrinter = &Printer{}

// Section prints a titled section divider.
func (p *Printer) Section(title string) {
	if p.Quiet {
		return
	}
	pterm.DefaultSection.Println(title)
}

// Step prints a single progress step.
func (p *Printer) Step(msg string) {
	if p.Quiet {
		return
	}
	pterm.Printf("%s %s\n", pterm.Cyan("→"), msg)
}

// Info prints an informational line.
func (p *Printer) Info(msg string) {
	if p.Quiet {
		return
	}
	pterm.Info.Println(msg)
}

// Success prints a success line.
func (p *Printer) Success(msg string) {
	if p.Quiet {
		return
	}
	pterm.Success.Println(msg)
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	if p.Quiet {
		return
	}
	pterm.Warning.Println(msg)
}

// Error prints an error line. Not silenced by Quiet.
func (p *Printer) Error(msg string) {
	pterm.Error.Println(msg)
}

// Printf prints formatted text.
func (p *Printer) Printf(format string, args ...any) {
	if p.Quiet {
		return
	}
	pterm.Printf(format, args...)
}

// Println prints a line.
func (p *Printer) Println(args ...any) {
	if p.Quiet {
		return
	}
	pterm.Println(args...)
}

// SpinnerStart starts a spinner and returns a stop function. The stop
// function resolves the spinner as success or failure with the given text.
func (p *Printer) SpinnerStart(msg string) func(success bool, result string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	spinner, err := pterm.DefaultSpinner.Start(msg)
	if err != nil {
		return func(bool, string) {}
	}
	return func(success bool, result string) {
		if success {
			spinner.Success(result)
			return
		}
		spinner.Fail(result)
	}
}

// Header prints a prominent header.
func Header(title string) {
	if DefaultPrinter.Quiet {
		return
	}
	pterm.DefaultHeader.Println(title)
}

// Section prints a titled section divider via the default printer.
func Section(title string) {
	DefaultPrinter.Section(title)
}

// Info prints an informational line via the default printer.
func Info(msg string) {
	DefaultPrinter.Info(msg)
}

// Success prints a success line via the default printer.
func Success(msg string) {
	DefaultPrinter.Success(msg)
}

// Warn prints a warning line via the default printer.
func Warn(msg string) {
	DefaultPrinter.Warn(msg)
}

// Error prints an error line via the default printer.
func Error(msg string) {
	DefaultPrinter.Error(msg)
}

// Table renders rows as a plain table with a header row.
func Table(data [][]string) {
	if DefaultPrinter.Quiet {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// TableBoxed renders rows as a boxed table without a header row, for
// property-style listings.
func TableBoxed(data [][]string) {
	if DefaultPrinter.Quiet {
		return
	}
	_ = pterm.DefaultTable.WithBoxed(true).WithData(data).Render()
}

// Green colors text green.
func Green(text string) string {
	return pterm.Green(text)
}

// Yellow colors text yellow.
func Yellow(text string) string {
	return pterm.Yellow(text)
}

// Red colors text red.
func Red(text string) string {
	return pterm.Red(text)
}

// Cyan colors text cyan.
func Cyan(text string) string {
	return pterm.Cyan(text)
}
