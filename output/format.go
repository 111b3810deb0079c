package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"nyc-apartments/models"
)

// csvHeader is the column order for CSV output.
var csvHeader = []string{
	"provider", "id", "neighborhood", "address", "city", "state", "zipcode",
	"price", "beds", "baths", "lat", "lon", "url",
}

// ToJSON renders listings as an indented JSON array.
func ToJSON(listings []*models.Listing) (string, error) {
	if listings == nil {
		listings = []*models.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("output: marshal json: %w", err)
	}
	return string(data), nil
}

// ToCSV renders listings as CSV with a header row.
func ToCSV(listings []*models.Listing) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("output: write csv header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.Provider,
			l.ID,
			strOrEmpty(l.Neighborhood),
			l.Address,
			l.City,
			l.State,
			strOrEmpty(l.Zipcode),
			intOrEmpty(l.Price),
			floatOrEmpty(l.Beds),
			floatOrEmpty(l.Baths),
			floatOrEmpty(l.Lat),
			floatOrEmpty(l.Lon),
			strOrEmpty(l.URL),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("output: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("output: flush csv: %w", err)
	}
	return sb.String(), nil
}

// PrintTable writes an aligned table of listings to stdout.
func PrintTable(listings []*models.Listing) {
	if len(listings) == 0 {
		fmt.Println("No apartments found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tNEIGHBORHOOD\tADDRESS\tPRICE\tBEDS\tBATHS\tURL")

	for _, l := range listings {
		price := "-"
		if l.Price != nil {
			price = "$" + formatThousands(*l.Price)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Provider,
			strOrDash(l.Neighborhood),
			l.Address,
			price,
			floatOrDash(l.Beds),
			floatOrDash(l.Baths),
			strOrDash(l.URL),
		)
	}

	w.Flush()
}

// formatThousands renders 1234567 as "1,234,567".
func formatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intOrEmpty(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func floatOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func strOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func floatOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
