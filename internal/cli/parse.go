package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/rileyhilliard/fleetdash/internal/ui"
)

// pageParser is the slice of the API client parse needs.
type pageParser interface {
	Parse(ctx context.Context, req fleetapi.ParseRequest) (*fleetapi.ParseResponse, error)
}

// ParseOptions holds the flags of the parse command.
type ParseOptions struct {
	URL     string
	Proxy   string
	Timeout time.Duration
	Headers []string
	Block   []string
	Load    string
	Actions []string
	Output  string // write page content here instead of stdout
}

// BuildParseRequest validates opts and converts them to the wire request.
func BuildParseRequest(opts ParseOptions) (fleetapi.ParseRequest, error) {
	req := fleetapi.ParseRequest{
		URL:   strings.TrimSpace(opts.URL),
		Proxy: strings.TrimSpace(opts.Proxy),
		Load:  strings.TrimSpace(opts.Load),
		Block: opts.Block,
	}
	if req.URL == "" {
		return req, errors.New(errors.ErrConfig,
			"A page URL is required",
			"Usage: fleetdash parse <url>")
	}
	if opts.Timeout < 0 {
		return req, errors.New(errors.ErrConfig,
			"Timeout can't be negative",
			"Use a duration like 30s, or leave it out for the manager's default.")
	}
	req.Timeout = int(opts.Timeout / time.Millisecond)

	headers, err := ParseHeaders(opts.Headers)
	if err != nil {
		return req, err
	}
	req.Headers = headers

	for _, a := range opts.Actions {
		action, err := ParseAction(a)
		if err != nil {
			return req, err
		}
		req.Actions = append(req.Actions, action)
	}
	return req, nil
}

// parseCommand renders a page on the least-loaded worker.
func parseCommand(ctx context.Context, api pageParser, out io.Writer, opts ParseOptions, animate bool) error {
	req, err := BuildParseRequest(opts)
	if err != nil {
		return err
	}

	spin := commandSpinner("Rendering "+req.URL, out, animate)
	if spin != nil {
		spin.Start()
	}

	resp, err := api.Parse(ctx, req)
	if err != nil {
		if spin != nil {
			spin.Fail()
		}
		return errors.FromAPI(err, "parse page")
	}
	if resp.Error != "" {
		if spin != nil {
			spin.Fail()
		}
		return errors.New(errors.ErrCommand,
			"Page render failed: "+resp.Error,
			"Check the URL is reachable from the workers, or raise --timeout.")
	}
	if spin != nil {
		spin.Success()
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(resp.Content), 0644); err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				fmt.Sprintf("Failed to write %s", opts.Output),
				"Check the directory exists and is writable.")
		}
	}

	if machineMode {
		return WriteJSONSuccess(out, resp)
	}

	renderParseSummary(out, resp, opts.Output)
	if opts.Output == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, resp.Content)
	}
	return nil
}

func renderParseSummary(out io.Writer, resp *fleetapi.ParseResponse, savedTo string) {
	status := strconv.Itoa(resp.Status)
	if resp.Status >= 400 {
		status = ui.ErrorStyle().Render(status)
	}

	summary := []ui.KeyValue{
		{Key: "Status", Value: status},
		{Key: "Content", Value: humanize.Bytes(uint64(len(resp.Content)))},
		{Key: "Cookies", Value: strconv.Itoa(len(resp.Cookies))},
	}
	if savedTo != "" {
		summary = append(summary, ui.KeyValue{Key: "Saved to", Value: savedTo})
	}

	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		summary = append(summary, ui.KeyValue{Key: "Headers", Value: strings.Join(names, ", ")})
	}

	fmt.Fprint(out, ui.RenderSummary(summary))
}
