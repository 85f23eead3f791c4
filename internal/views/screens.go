package views

import (
	"fmt"
	"strings"
)

type ChecklistItemData struct {
	Line     int
	Symbol   string
	Text     string
	Due      string
	Done     bool
	Overdue  bool
	Selected bool
}

type ChecklistPanelData struct {
	Path   string
	Filter string
	Tag    string
	Items  []ChecklistItemData
}

type DetailPaneData struct {
	Line         int
	MarkdownView string
	Preview      []string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

type DueLogItemData struct {
	Path        string
	Line        int
	Description string
	Due         string
}

func RenderChecklistPanel(data ChecklistPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s:\n", data.Path))
	filter := data.Filter
	if data.Tag != "" {
		filter += " " + data.Tag
	}
	b.WriteString(fmt.Sprintf("filter: %s\n", filter))
	if len(data.Items) == 0 {
		b.WriteString("(no checkboxes)")
		return b.String()
	}
	for _, item := range data.Items {
		b.WriteString(renderChecklistItem(item) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func renderChecklistItem(item ChecklistItemData) string {
	cursor := " "
	if item.Selected {
		cursor = cursorStyle.Render(">")
	}
	text := item.Text
	if item.Done {
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %3d [%s] %s", cursor, item.Line, item.Symbol, text)
	if item.Due != "" {
		due := "due:" + item.Due
		if item.Overdue {
			due = overdueStyle.Render("overdue:" + item.Due)
		}
		line += " " + due
	}
	return line
}

func RenderDetailPane(data DetailPaneData) string {
	if data.Line == 0 {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("details: line %d\n", data.Line))
	b.WriteString(data.MarkdownView)
	if len(data.Preview) > 0 {
		b.WriteString("\n\nnext dates:\n")
		for _, d := range data.Preview {
			b.WriteString("- " + d + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderDueLog(items []DueLogItemData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("due:\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("- %s (%s:%d) %s\n", it.Description, it.Path, it.Line, it.Due))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s",
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
