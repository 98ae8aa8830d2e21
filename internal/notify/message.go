package notify

import (
	"strconv"

	"carmarket-backend/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatListingAlert renders the WhatsApp body sent when a listing matches an alert.
func FormatListingAlert(l *models.Listing) string {
	unit := l.MileageUnit
	if unit == "" {
		unit = "km"
	}

	return printer.Sprintf(
		"🚗 New Car Alert!\n\n%s %s %s\n💰 Price: €%d\n📍 Location: %s\n🔢 Mileage: %d %s\n\nView it now on Carzone!",
		strconv.Itoa(l.Year), l.Make, l.Model, l.Price, l.Location, l.Mileage, unit,
	)
}
