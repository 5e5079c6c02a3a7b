package models

import "strings"

// EntityKind distinguishes a single room thermostat from a zone aggregator.
type EntityKind uint8

const (
	KindRoom EntityKind = iota
	KindZone
)

// zoneMarker also covers the "_zone_hm" suffix used by the heating manager.
const zoneMarker = "_zone"

// KindOf classifies an entity identifier. It is meant to be called once,
// when a card is bound to its entity.
func KindOf(entityID string) EntityKind {
	if strings.Contains(entityID, zoneMarker) {
		return KindZone
	}
	return KindRoom
}

func (k EntityKind) String() string {
	if k == KindZone {
		return "zone"
	}
	return "room"
}

func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
