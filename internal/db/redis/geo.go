package redis

import (
	"context"

	"github.com/homegrid/mapsearch/internal/db"
)

// GeoAdd indexes members in the geospatial set at key.
func (s *Store) GeoAdd(ctx context.Context, key string, members []db.GeoMember) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Geoadd().Key(key).LongitudeLatitudeMember()
	for _, m := range members {
		cmd = cmd.LongitudeLatitudeMember(m.Lng, m.Lat, m.Member)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpGeoAdd, Err: err}
	}
	return nil
}

// GeoSearchBox returns the members inside a box centered on lng/lat,
// nearest-first, capped at limit.
func (s *Store) GeoSearchBox(ctx context.Context, key string, lng, lat, widthKM, heightKM float64, limit int) ([]string, error) {
	cmd := s.b().Geosearch().Key(key).
		Fromlonlat(lng, lat).
		Bybox(widthKM).Height(heightKM).Km().
		Asc().
		Count(int64(limit)).
		Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpGeoSearch, Err: err}
	}
	return members, nil
}

// GeoRemove drops members from the geospatial set at key.
func (s *Store) GeoRemove(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpGeoRemove, Err: err}
	}
	return nil
}
