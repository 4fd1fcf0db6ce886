package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/drblury/catalogflow"
)

var (
	keyColor  = color.New(color.FgCyan)
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)

func outcomeColor(outcome catalogflow.Outcome) *color.Color {
	switch outcome {
	case catalogflow.OutcomeRegistered:
		return okColor
	case catalogflow.OutcomeRejected, catalogflow.OutcomeSkipped:
		return warnColor
	default:
		return errColor
	}
}

// printResult writes one line per registration:
//
//	registered data-sources/load_prices (201, 12ms)
func printResult(w io.Writer, res catalogflow.Result) {
	outcomeColor(res.Outcome).Fprint(w, string(res.Outcome))
	fmt.Fprintf(w, " %s/%s", res.Endpoint, res.RecordID)
	switch {
	case res.Err != nil:
		fmt.Fprintf(w, ": %v\n", res.Err)
	case res.StatusCode != 0:
		fmt.Fprintf(w, " (%d, %s)\n", res.StatusCode, res.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintln(w)
	}
	if res.Outcome == catalogflow.OutcomeRejected && res.Body != "" {
		fmt.Fprintf(w, "  %s\n", res.Body)
	}
	if res.EventErr != nil {
		warnColor.Fprint(w, "  event not published")
		fmt.Fprintf(w, ": %v\n", res.EventErr)
	}
}

// printFields writes aligned "key: value" lines from alternating pairs.
func printFields(w io.Writer, pairs ...string) {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		width = max(width, len(pairs[i]))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		keyColor.Fprintf(w, "%-*s", width+1, pairs[i]+":")
		fmt.Fprintf(w, " %s\n", pairs[i+1])
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := catalogflow.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// PrintError writes err the way every catalogctl command reports failures.
func PrintError(w io.Writer, err error) {
	errColor.Fprint(w, "error")
	fmt.Fprintf(w, ": %v\n", err)
}
