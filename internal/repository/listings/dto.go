package listings

import (
	"fmt"
	"strconv"

	"github.com/homegrid/mapsearch/internal/db"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
)

// Hash field names for stored listings.
const (
	fieldMLS     = "mls"
	fieldLat     = "lat"
	fieldLng     = "lng"
	fieldPrice   = "price"
	fieldAddress = "address"
	fieldBeds    = "beds"
	fieldBaths   = "baths"
	fieldStatus  = "status"
	fieldType    = "type"
)

// toFields flattens a listing into hash fields.
func toFields(l *listing.Listing) map[string]string {
	return map[string]string{
		fieldMLS:     l.Key(),
		fieldLat:     strconv.FormatFloat(l.Location().Lat, 'f', -1, 64),
		fieldLng:     strconv.FormatFloat(l.Location().Lng, 'f', -1, 64),
		fieldPrice:   strconv.FormatFloat(l.Price(), 'f', -1, 64),
		fieldAddress: l.Address(),
		fieldBeds:    strconv.Itoa(l.Beds()),
		fieldBaths:   strconv.Itoa(l.Baths()),
		fieldStatus:  l.Status(),
		fieldType:    l.PropertyType(),
	}
}

// fromFields rebuilds a listing from hash fields.
func fromFields(fields map[string]string) (listing.Listing, error) {
	lat, err := strconv.ParseFloat(fields[fieldLat], 64)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(fields[fieldLng], 64)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("parse lng: %w", err)
	}
	price, _ := strconv.ParseFloat(fields[fieldPrice], 64)
	beds, _ := strconv.Atoi(fields[fieldBeds])
	baths, _ := strconv.Atoi(fields[fieldBaths])

	return listing.New(
		fields[fieldMLS],
		geo.Point{Lat: lat, Lng: lng},
		price,
		fields[fieldAddress],
		beds, baths,
		fields[fieldStatus],
		fields[fieldType],
	)
}

// toGeoMember builds the geo index entry for a listing.
func toGeoMember(l *listing.Listing) db.GeoMember {
	return db.GeoMember{Member: l.Key(), Lng: l.Location().Lng, Lat: l.Location().Lat}
}
