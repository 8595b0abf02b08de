package methods

import (
	"encoding/hex"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// GeometryToWKB encodes g for a binary geometry column.
func GeometryToWKB(g orb.Geometry) ([]byte, error) {
	b, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("wkb marshal %T: %w", g, err)
	}
	return b, nil
}

// WKBToGeometry decodes either raw WKB or its hex text, as PostGIS returns it.
func WKBToGeometry(b []byte) (orb.Geometry, error) {
	if raw, err := hex.DecodeString(string(b)); err == nil && len(raw) > 0 {
		b = raw
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("wkb unmarshal: %w", err)
	}
	return g, nil
}
