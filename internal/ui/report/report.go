package report

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/schemalint/schemalint/internal/lint"
	"github.com/schemalint/schemalint/internal/schema"
)

// Run opens an interactive browser over a validation result: a table list
// on the left with violation counts, violation details on the right.
func Run(s *schema.Schema, result lint.Result) error {
	byTable := make(map[string][]lint.Violation)
	for _, v := range result.Violations {
		byTable[v.Table] = append(byTable[v.Table], v)
	}

	app := tview.NewApplication()
	list := tview.NewList().ShowSecondaryText(false)
	detail := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	detail.SetBorder(true).SetTitle(" Violations ")
	list.SetBorder(true).SetTitle(" Tables ")

	names := s.TableNames()
	render := func(index int) {
		if index < 0 || index >= len(names) {
			return
		}
		detail.SetText(formatTable(names[index], byTable[names[index]]))
		detail.ScrollToBeginning()
	}

	for _, name := range names {
		label := name
		if n := len(byTable[name]); n > 0 {
			label = fmt.Sprintf("[red]%s (%d)[-]", name, n)
		}
		list.AddItem(label, "", 0, nil)
	}
	if len(names) == 0 {
		list.AddItem("No tables in schema", "", 0, nil)
	}

	list.SetChangedFunc(func(index int, main, secondary string, shortcut rune) {
		render(index)
	})
	render(0)

	layout := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(detail, 0, 2, false)

	frame := tview.NewFrame(layout).
		SetBorders(0, 0, 0, 0, 0, 0).
		AddText(statusLine(s, result), false, tview.AlignLeft, tcell.ColorYellow)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(frame, true).Run()
}

func statusLine(s *schema.Schema, result lint.Result) string {
	if result.Valid() {
		return fmt.Sprintf("%d tables, no violations (press 'q' to exit)", len(s.Tables))
	}
	return fmt.Sprintf("%d tables, %d violations (press 'q' to exit)", len(s.Tables), len(result.Violations))
}

func formatTable(name string, violations []lint.Violation) string {
	if len(violations) == 0 {
		return fmt.Sprintf("[green]%s passes every registered rule.[-]", name)
	}

	var b strings.Builder
	for i, v := range violations {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[red]%s[-] [yellow](%s)[-]\n%s", v.Rule, v.Kind, v.Message)
		if v.Resolution != "" {
			fmt.Fprintf(&b, "\n[blue]resolution:[-] %s", v.Resolution)
		}
	}
	return b.String()
}
