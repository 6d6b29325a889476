package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Style string

const (
	StylePlain  Style = "plain"
	StylePretty Style = "pretty"
)

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StylePlain:
		return StylePlain, nil
	case StylePretty:
		return StylePretty, nil
	default:
		return "", fmt.Errorf("unknown report style %q", s)
	}
}

const (
	greenHeader     = "================== GREEN TABLE =================="
	redHeader       = "================== RED TABLE ===================="
	exceptionHeader = "================== EXCEPTION TABLE =============="
)

// Render writes the GREEN, RED and EXCEPTION tables in that order using the
// fixed-width layout (URL 40, condition 15, error 30). Long values are not
// truncated.
func Render(w io.Writer, b Buckets) error {
	bw := bufio.NewWriter(w)

	twoCol := func(header string, rows []Row) {
		fmt.Fprintf(bw, "\n%s\n", header)
		fmt.Fprintf(bw, "%-40s | %-15s\n", "URL", "Condition")
		fmt.Fprintln(bw, strings.Repeat("-", 60))
		for _, r := range rows {
			fmt.Fprintf(bw, "%-40s | %-15s\n", r.URL, r.Condition)
		}
	}
	twoCol(greenHeader, b.Green)
	twoCol(redHeader, b.Red)

	fmt.Fprintf(bw, "\n%s\n", exceptionHeader)
	fmt.Fprintf(bw, "%-40s | %-15s | %-30s\n", "URL", "Condition", "Error")
	fmt.Fprintln(bw, strings.Repeat("-", 90))
	for _, r := range b.Exception {
		fmt.Fprintf(bw, "%-40s | %-15s | %-30s\n", r.URL, r.Condition, r.Error)
	}

	return bw.Flush()
}

// RenderPretty writes the same three tables with box drawing.
func RenderPretty(w io.Writer, b Buckets) error {
	build := func(title string, withError bool, rows []Row) string {
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetTitle(title)
		if withError {
			t.AppendHeader(table.Row{"URL", "Condition", "Error"})
		} else {
			t.AppendHeader(table.Row{"URL", "Condition"})
		}
		for _, r := range rows {
			if withError {
				t.AppendRow(table.Row{r.URL, r.Condition, r.Error})
			} else {
				t.AppendRow(table.Row{r.URL, r.Condition})
			}
		}
		return t.Render()
	}

	out := strings.Join([]string{
		build("GREEN", false, b.Green),
		build("RED", false, b.Red),
		build("EXCEPTION", true, b.Exception),
	}, "\n\n")
	_, err := io.WriteString(w, out+"\n")
	return err
}

func Write(w io.Writer, style Style, b Buckets) error {
	if style == StylePretty {
		return RenderPretty(w, b)
	}
	return Render(w, b)
}

// Text renders b to a string; used for notifier bodies and the status API.
func Text(style Style, b Buckets) string {
	var sb strings.Builder
	_ = Write(&sb, style, b)
	return sb.String()
}
