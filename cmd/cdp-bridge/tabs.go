package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cdp-bridge/pkg/tools/browser"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(salmonPink)
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(mintGreen)
	urlStyle      = lipgloss.NewStyle().Foreground(mutedGray)
	explicitStyle = lipgloss.NewStyle().Foreground(salmonPink)
)

// listTabs prints every open tab and marks the one tools would act on.
func listTabs(ctx context.Context, exec *browser.Executor, endpoint string) error {
	list, err := exec.ListPages(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderTabs(list, endpoint))
	return nil
}

func renderTabs(list browser.TabList, endpoint string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d tab(s) at %s", len(list.Tabs), endpoint)))
	b.WriteString("\n")

	for _, tab := range list.Tabs {
		marker := "  "
		title := tab.Title
		if title == "" {
			title = "(untitled)"
		}
		if tab.Active {
			marker = activeStyle.Render("▶ ")
			title = activeStyle.Render(title)
		}
		line := fmt.Sprintf("%s[%d] %s  %s", marker, tab.Index, title, urlStyle.Render(tab.URL))
		if tab.Explicit {
			line += explicitStyle.Render("  (navigated)")
		}
		b.WriteString(line + "\n")
	}

	if list.ActiveTier != "" {
		b.WriteString(urlStyle.Render("active tab chosen by the " + list.ActiveTier + " rule"))
	} else {
		b.WriteString(urlStyle.Render("no active tab"))
	}
	return b.String()
}
