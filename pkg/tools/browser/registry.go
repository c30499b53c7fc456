package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NavigateInput is the input of browse_to.
type NavigateInput struct {
	URL string `json:"url" jsonschema:"The full URL to navigate to, including the scheme"`
}

// ContentInput is the input of get_page_content.
type ContentInput struct {
	ContentType string `json:"content_type,omitempty" jsonschema:"Type of content to return: html (default), text, links or clean"`
	Selector    string `json:"selector,omitempty" jsonschema:"Optional CSS selector limiting the content to matching elements"`
}

// SelectorInput is the input of tools taking only an optional selector.
type SelectorInput struct {
	Selector string `json:"selector,omitempty" jsonschema:"Optional CSS selector limiting the result to matching elements"`
}

// InteractInput is the input of interact_with_page.
type InteractInput struct {
	Action   string `json:"action" jsonschema:"One of click, type, fill, select, hover, focus, press"`
	Selector string `json:"selector" jsonschema:"CSS selector of the element to interact with"`
	Value    string `json:"value,omitempty" jsonschema:"Text to type, option to select or key to press. Required for type, fill, select and press"`
}

// ClickInput is the input of click_element.
type ClickInput struct {
	Selector string `json:"selector" jsonschema:"CSS selector of the element to click"`
}

// InputTextInput is the input of input_text.
type InputTextInput struct {
	Selector string `json:"selector" jsonschema:"CSS selector of the input element"`
	Text     string `json:"text" jsonschema:"Text to type into the element"`
}

// ScreenshotInput is the input of get_page_screenshots.
type ScreenshotInput struct {
	FullPage bool   `json:"full_page,omitempty" jsonschema:"Capture the whole scrollable page instead of the viewport"`
	Selector string `json:"selector,omitempty" jsonschema:"Optional CSS selector of a single element to capture"`
}

// EvaluateInput is the input of evaluate_javascript.
type EvaluateInput struct {
	Script string `json:"script" jsonschema:"JavaScript function or expression returning a value, for example () => document.title"`
	Args   []any  `json:"args,omitempty" jsonschema:"Optional arguments passed to the function as one array"`
}

// NoInput is the input of tools without parameters.
type NoInput struct{}

// Register adds every browser tool backed by exec to server.
func Register(server *mcp.Server, exec *Executor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "browse_to",
		Description: "Navigate to a URL in a new page and return the page's HTML. The page becomes the target of later operations.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in NavigateInput) (*mcp.CallToolResult, any, error) {
		content, err := exec.Navigate(ctx, in.URL)
		return textResult(content), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page_info",
		Description: "Get the URL, title, HTTPS status and favicon of the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		info, err := exec.PageInfo(ctx)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(info)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_url",
		Description: "Get the URL of the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		url, err := exec.CurrentURL(ctx)
		return textResult(url), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page_title",
		Description: "Get the title of the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		title, err := exec.PageTitle(ctx)
		return textResult(title), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page_content",
		Description: "Get content from the current page as html, text, links or clean (semantic HTML without scripts and styles).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ContentInput) (*mcp.CallToolResult, any, error) {
		return contentResult(exec.Content(ctx, ContentRequest{Kind: ContentKind(in.ContentType), Selector: in.Selector}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_active_tab_content",
		Description: "Get the HTML of the tab the user is currently looking at, without changing the page other tools operate on.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		content, err := exec.ActiveTabContent(ctx)
		return textResult(content), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_text_content",
		Description: "Extract the visible text of the current page, optionally limited to elements matching a CSS selector.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in SelectorInput) (*mcp.CallToolResult, any, error) {
		return contentResult(exec.Content(ctx, ContentRequest{Kind: KindText, Selector: in.Selector}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page_links",
		Description: "List the absolute URLs of links on the current page, optionally limited to anchors matching a CSS selector.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in SelectorInput) (*mcp.CallToolResult, any, error) {
		return contentResult(exec.Content(ctx, ContentRequest{Kind: KindLinks, Selector: in.Selector}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "interact_with_page",
		Description: "Click, type into, select, hover, focus or press a key on an element of the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in InteractInput) (*mcp.CallToolResult, any, error) {
		msg, err := exec.Interact(ctx, InteractRequest{Action: in.Action, Selector: in.Selector, Value: in.Value})
		return textResult(msg), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "click_element",
		Description: "Click an element on the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ClickInput) (*mcp.CallToolResult, any, error) {
		msg, err := exec.Interact(ctx, InteractRequest{Action: ActionClick, Selector: in.Selector})
		return textResult(msg), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "input_text",
		Description: "Type text into an input element on the current page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in InputTextInput) (*mcp.CallToolResult, any, error) {
		msg, err := exec.Interact(ctx, InteractRequest{Action: ActionType, Selector: in.Selector, Value: in.Text})
		return textResult(msg), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page_screenshots",
		Description: "Capture a PNG screenshot of the current page or one element, returned base64 encoded.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in ScreenshotInput) (*mcp.CallToolResult, any, error) {
		data, err := exec.Screenshot(ctx, ScreenshotRequest{FullPage: in.FullPage, Selector: in.Selector})
		return textResult(data), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_javascript",
		Description: "Run JavaScript in the current page and return the result. The script must be a function or an expression that produces the value.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in EvaluateInput) (*mcp.CallToolResult, any, error) {
		result, err := exec.Evaluate(ctx, in.Script, in.Args)
		if err != nil {
			return nil, nil, err
		}
		return textResult(FormatResult(result)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tabs",
		Description: "List every open tab with its title and URL, marking the active tab and the navigated page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		list, err := exec.ListPages(ctx)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(list)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "force_browse_to_active_tab",
		Description: "Detect the tab the user is looking at and open it as the page later operations target.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		msg, err := exec.BrowseToActiveTab(ctx)
		return textResult(msg), nil, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shutdown_browser",
		Description: "Close the navigated page and disconnect from the browser. The next operation reconnects.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		results := exec.Shutdown()
		lines := make([]string, 0, len(results))
		for _, r := range results {
			lines = append(lines, r.String())
		}
		return textResult(strings.Join(lines, "\n")), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return textResult(string(data)), nil, nil
}

func contentResult(res ContentResult, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return nil, nil, err
	}
	if res.Kind == KindLinks {
		return jsonResult(res.Links)
	}
	return textResult(res.Text), nil, nil
}
