// Package lookup resolves a Brazilian license plate to candidate model
// names and a manufacture year by scraping a public plate-consultation
// site. The remote markup is not a stable schema; every outcome maps onto
// exactly one of three states: found, not found, or transport failure.
package lookup

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/stuaninauts/fipe-cli/internal/model"
)

// ErrBadPlate marks input that does not match the plate pattern. No
// request is made.
var ErrBadPlate = eris.New("lookup: plate must match ABC1234 or ABC1D23")

// ErrNotFound means the site answered but knows no vehicle under the
// plate. Recoverable; surfaced to the user, pipeline state unaffected.
var ErrNotFound = eris.New("lookup: plate not found")

// ErrTransport marks a network or protocol failure reaching the site.
var ErrTransport = eris.New("lookup: fetch failed")

var plateRe = regexp.MustCompile(`^[A-Za-z]{3}\d([A-Za-z]|\d)\d{2}$`)

// Client is a rate-limited plate-lookup client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the request User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit caps outgoing requests per minute.
func WithRateLimit(perMinute float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perMinute/60.0), 1)
	}
}

// NewClient creates a Client against baseURL (scheme and host, no trailing
// slash).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Mozilla/5.0",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10.0/60.0), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the consultation page for plate and parses the model
// candidates and manufacture year out of it.
func (c *Client) Lookup(ctx context.Context, plate string) (*model.PlateInfo, error) {
	if !plateRe.MatchString(plate) {
		return nil, eris.Wrapf(ErrBadPlate, "%q", plate)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "lookup: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/placa/"+plate, nil)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(ErrTransport, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrapf(ErrTransport, "read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrTransport, "status %d", resp.StatusCode)
	}

	return parsePage(string(body))
}

var (
	modelTableRe  = regexp.MustCompile(`(?is)<table[^>]*class="[^"]*fipe-desktop[^"]*"[^>]*>(.*?)</table>`)
	detailTableRe = regexp.MustCompile(`(?is)<table[^>]*class="[^"]*fipeTablePriceDetail[^"]*"[^>]*>(.*?)</table>`)
	rowRe         = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe        = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// manufactureYearRow is the position of the "Ano" row in the detail table.
const manufactureYearRow = 5

func parsePage(page string) (*model.PlateInfo, error) {
	modelTable := modelTableRe.FindStringSubmatch(page)
	if modelTable == nil {
		return nil, ErrNotFound
	}

	rows := rowRe.FindAllStringSubmatch(modelTable[1], -1)
	if len(rows) < 2 {
		return nil, ErrNotFound
	}
	var models []string
	// The first row is the header.
	for _, row := range rows[1:] {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 2 {
			continue
		}
		if name := cellText(cells[1][1]); name != "" {
			models = append(models, name)
		}
	}
	if len(models) == 0 {
		return nil, ErrNotFound
	}

	detailTable := detailTableRe.FindStringSubmatch(page)
	if detailTable == nil {
		return nil, eris.Wrap(ErrTransport, "detail table missing")
	}
	detailRows := rowRe.FindAllStringSubmatch(detailTable[1], -1)
	if len(detailRows) <= manufactureYearRow {
		return nil, eris.Wrap(ErrTransport, "detail table truncated")
	}
	cells := cellRe.FindAllStringSubmatch(detailRows[manufactureYearRow][1], -1)
	if len(cells) < 2 {
		return nil, eris.Wrap(ErrTransport, "year cell missing")
	}
	year, err := strconv.Atoi(cellText(cells[1][1]))
	if err != nil {
		return nil, eris.Wrapf(ErrTransport, "year %q", cellText(cells[1][1]))
	}

	return &model.PlateInfo{Models: models, ManufactureYear: year}, nil
}

func cellText(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, ""))
}
