package streeteasy

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"nyc-apartments/config"
	"nyc-apartments/models"
	"nyc-apartments/utils"
)

const (
	searchURL    = "https://streeteasy.com/for-rent/nyc"
	providerName = "streeteasy_rentals"
)

var (
	priceRegexp = regexp.MustCompile(`[\d,]+`)
	bedsRegexp  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:bed|br)`)
	idRegexp    = regexp.MustCompile(`/(?:rental|building)/(\d+)`)
)

// Provider scrapes StreetEasy rental search results with a headless
// browser. StreetEasy has no public API; cards carry no coordinates, so
// its listings survive only radius-unbounded searches. The struct holds
// no per-run state, so one Provider serves any number of fetches.
type Provider struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use StreetEasy Provider.
func New(cfg *config.Config, logger *utils.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (p *Provider) Name() string { return providerName }

// Fetch drives pagination over the rentals search and normalizes each
// card. Card-level surprises skip the card; page-level failures stop
// pagination but keep what was already collected.
func (p *Provider) Fetch(ctx context.Context, cfg *config.Config, _ models.Location) ([]*models.Listing, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	p.logger.Info("[streeteasy] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	seen := utils.NewSeenSet()
	var listings []*models.Listing

	currentURL := searchURL
	for page := 1; page <= cfg.ScrapePages; page++ {
		p.logger.Info("[streeteasy] Scraping page %d — URL: %s", page, currentURL)

		pageListings, nextURL, err := p.scrapePage(allocCtx, currentURL, page, seen)
		if err != nil {
			p.logger.Error("[streeteasy] Page %d failed: %v", page, err)
			break
		}
		if len(pageListings) == 0 {
			p.logger.Warn("[streeteasy] Page %d returned 0 listings — stopping", page)
			break
		}

		listings = append(listings, pageListings...)

		if nextURL == "" || page >= cfg.ScrapePages {
			break
		}
		currentURL = nextURL
		time.Sleep(time.Duration(cfg.RateLimitMs) * time.Millisecond)
	}

	p.logger.Info("[streeteasy] Scrape complete — total listings: %d", len(listings))
	return listings, nil
}

// cardData is the raw card payload lifted out of the results page.
type cardData struct {
	Title   string `json:"title"`
	Price   string `json:"price"`
	Area    string `json:"area"`
	Address string `json:"address"`
	Beds    string `json:"beds"`
	URL     string `json:"url"`
}

// scrapePage loads a search results page and extracts listing cards.
func (p *Provider) scrapePage(allocCtx context.Context, pageURL string, pageNum int, seen *utils.SeenSet) ([]*models.Listing, string, error) {
	var listings []*models.Listing
	var nextURL string

	err := p.retry.Do(fmt.Sprintf("scrape-page-%d", pageNum), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var cards []cardData
		var nextPageURL string

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),

			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('[data-testid="listing-card"], li.searchCardList--listItem, article[class*="listingCard"]');
					var seen = {};
					for (var i = 0; i < cards.length; i++) {
						var card = cards[i];
						var linkEl = card.querySelector('a[href*="/rental/"]') || card.querySelector('a[href*="/building/"]');
						if (!linkEl || !linkEl.href || seen[linkEl.href]) continue;
						seen[linkEl.href] = true;

						var addrEl = card.querySelector('[data-testid="listing-card-address"], address, p[class*="address"]');
						var priceEl = card.querySelector('[data-testid="listing-card-price"], span[class*="price"]');
						var areaEl = card.querySelector('[data-testid="listing-card-area"], p[class*="area"]');
						var bedsEl = card.querySelector('[data-testid="listing-card-bed"], span[class*="Bed"]');

						results.push({
							title:   addrEl ? addrEl.innerText.trim() : '',
							price:   priceEl ? priceEl.innerText.trim() : '',
							area:    areaEl ? areaEl.innerText.trim() : '',
							address: addrEl ? addrEl.innerText.trim() : '',
							beds:    bedsEl ? bedsEl.innerText.trim() : (card.innerText.match(/\d+(\.\d+)?\s*bed/i) || [''])[0],
							url:     linkEl.href
						});
					}
					return results;
				})()
			`, &cards),

			chromedp.Evaluate(`
				(function() {
					var next = document.querySelector('a[rel="next"]') ||
					           document.querySelector('a[aria-label="Next page"]');
					return next && next.href ? next.href : '';
				})()
			`, &nextPageURL),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}

		p.logger.Debug("[streeteasy] Page %d — found %d cards", pageNum, len(cards))

		listings = p.collectCards(cards, seen)
		nextURL = nextPageURL
		return nil
	})

	return listings, nextURL, err
}

// collectCards normalizes scraped cards, skipping unusable ones and URLs
// already seen during this fetch.
func (p *Provider) collectCards(cards []cardData, seen *utils.SeenSet) []*models.Listing {
	var listings []*models.Listing
	for _, c := range cards {
		if c.URL == "" {
			continue
		}
		if !seen.Add(c.URL) {
			p.logger.Debug("[streeteasy] Skipping duplicate: %s", c.URL)
			continue
		}
		l := p.normalize(c.Title, c.Price, c.Area, c.Address, c.Beds, c.URL)
		if l == nil {
			continue
		}
		listings = append(listings, l)
	}
	return listings
}

// normalize maps one scraped card into a Listing, or nil if the card
// cannot be identified.
func (p *Provider) normalize(title, price, area, address, beds, cardURL string) *models.Listing {
	id := ""
	if m := idRegexp.FindStringSubmatch(cardURL); len(m) == 2 {
		id = m[1]
	}
	if id == "" {
		// Fall back to the last URL path segment.
		parts := strings.Split(strings.TrimRight(cardURL, "/"), "/")
		id = parts[len(parts)-1]
	}
	if id == "" {
		return nil
	}

	if address == "" {
		address = "Unknown address"
	}

	var pricePtr *int
	if m := priceRegexp.FindString(strings.ReplaceAll(price, ",", "")); m != "" {
		if v, err := strconv.Atoi(m); err == nil && v >= 0 {
			pricePtr = &v
		}
	}

	var bedsPtr *float64
	if m := bedsRegexp.FindStringSubmatch(strings.ToLower(beds)); len(m) == 2 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			bedsPtr = &v
		}
	}

	var titlePtr *string
	if t := strings.TrimSpace(title); t != "" {
		titlePtr = &t
	}
	var areaPtr *string
	if a := strings.TrimSpace(area); a != "" {
		areaPtr = &a
	}
	u := cardURL

	return &models.Listing{
		ID:           id,
		Provider:     providerName,
		Title:        titlePtr,
		Address:      address,
		Neighborhood: areaPtr,
		City:         "New York",
		State:        "NY",
		Price:        pricePtr,
		Beds:         bedsPtr,
		URL:          &u,
	}
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
