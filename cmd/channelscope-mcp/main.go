package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// errorResponse mirrors the channelscope API error body.
type errorResponse struct {
	Error string `json:"error"`
}

// channelRecord mirrors the fields of the channelscope record used in the
// text summary. The full JSON is passed through unchanged.
type channelRecord struct {
	ChannelID    string   `json:"channelId"`
	Thumbnail    string   `json:"thumbnail"`
	Tags         []string `json:"tags"`
	Monetization struct {
		Status string `json:"status"`
	} `json:"monetization"`
	ChannelInfo struct {
		Name        string `json:"name"`
		Subscribers string `json:"subscribers"`
		TotalViews  string `json:"totalViews"`
		VideoCount  string `json:"videoCount"`
	} `json:"channelInfo"`
}

func main() {
	_ = godotenv.Load()

	apiURL := strings.TrimRight(os.Getenv("CHANNELSCOPE_API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3001"
	}

	s := server.NewMCPServer(
		"channelscope",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_channel",
		mcp.WithDescription("Analyze a public YouTube channel page and return its name, subscriber, video and view counts, tags, thumbnail, channel ID and monetization signal. Renders the page in a headless browser, so a call can take up to a minute."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The YouTube channel URL, e.g. https://www.youtube.com/@GoogleDevelopers"),
		),
	)
	s.AddTool(analyzeTool, handleAnalyzeChannel(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleAnalyzeChannel(apiURL string) server.ToolHandlerFunc {
	// Navigation alone may take 60s; leave room for queueing.
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		channelURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		endpoint := apiURL + "/api/analyze?url=" + url.QueryEscape(channelURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		if resp.StatusCode != http.StatusOK {
			var errResp errorResponse
			if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
				return mcp.NewToolResultError(fmt.Sprintf("API returned HTTP %d", resp.StatusCode)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("[HTTP %d] %s", resp.StatusCode, errResp.Error)), nil
		}

		var rec channelRecord
		if err := json.Unmarshal(respBody, &rec); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(formatRecord(rec, respBody)), nil
	}
}

// formatRecord renders a short summary followed by the full record.
func formatRecord(rec channelRecord, raw []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Channel: %s\n", rec.ChannelInfo.Name)
	fmt.Fprintf(&b, "Channel ID: %s\n", rec.ChannelID)
	fmt.Fprintf(&b, "Subscribers: %s\n", rec.ChannelInfo.Subscribers)
	fmt.Fprintf(&b, "Videos: %s\n", rec.ChannelInfo.VideoCount)
	fmt.Fprintf(&b, "Total views: %s\n", rec.ChannelInfo.TotalViews)
	fmt.Fprintf(&b, "Monetization: %s\n", rec.Monetization.Status)
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	b.WriteString("\nRecord:\n")
	b.WriteString(pretty.String())
	return b.String()
}
