package flightera

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"anc-co2-tracker/models"
)

// listingTable matches the flight listing table in a page snapshot.
const listingTable = "table.min-w-full.divide-y.divide-gray-200.table-auto"

// ParseListing extracts flight records from one rendered page snapshot. Rows
// with fewer than four cells are ignored; any field that cannot be extracted
// degrades to Unknown rather than dropping the row.
func ParseListing(html string, dir models.Direction) ([]*models.FlightRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing snapshot: %w", err)
	}

	table := doc.Find(listingTable).First()
	if table.Length() == 0 {
		return nil, nil
	}

	var records []*models.FlightRecord
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 4 {
			return
		}

		dateStatus := textOrUnknown(cols.Eq(0).Find("span.whitespace-nowrap").First())
		status := textOrUnknown(cols.Eq(0).Find(`span[class*="inline-flex items-center"]`).First())

		primary := textOrUnknown(cols.Eq(1).Find("a").First())
		// The alternate number next to the operator's own link is the
		// canonical one when present.
		flightNumber := strings.TrimSpace(cols.Eq(1).Find("span.text-gray-700").First().Text())
		if flightNumber == "" {
			flightNumber = primary
		}

		airline := textOrUnknown(cols.Eq(1).Find("span.whitespace-nowrap").First())
		counterparty := textOrUnknown(cols.Eq(2).Find("a").First())

		records = append(records, &models.FlightRecord{
			DateStatus:    dateStatus,
			PrimaryNumber: primary,
			FlightNumber:  flightNumber,
			Airline:       airline,
			Counterparty:  counterparty,
			Status:        status,
			Direction:     dir,
		})
	})

	return records, nil
}

func textOrUnknown(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return models.Unknown
	}
	return text
}
