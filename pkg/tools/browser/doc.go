// Package browser exposes browser operations on a remote browser as MCP tools.
//
// An Executor performs each operation against the page a browser.Session
// resolves: the page opened by the last navigation while it is open, or
// otherwise the tab the user appears to be looking at. Register adds every
// operation to an mcp.Server.
//
// # Operations
//
//   - browse_to: open a URL in a new page and return its markup
//   - get_page_info, get_current_url, get_page_title: page metadata
//   - get_page_content: html, text, links or cleaned markup, optionally scoped by selector
//   - get_active_tab_content: markup of the active tab, ignoring the navigated page
//   - interact_with_page: click, fill, select, hover, focus or press on an element
//   - get_page_screenshots: base64 PNG of the viewport, full page or an element
//   - evaluate_javascript: run a script in the page
//   - list_tabs: every tab with the active and navigated ones marked
//   - force_browse_to_active_tab: pin the active tab by opening it as the navigated page
//   - shutdown_browser: release the page, context, browser link and driver
//
// # Concurrency
//
// The MCP server may dispatch tool calls concurrently. The Executor
// serializes them, so the underlying Session only ever sees one operation at
// a time.
package browser
