package domain

// SelectionState is the coordinator state: idle or one selected listing.
type SelectionState struct {
	Selected *Listing `json:"selected,omitempty"`
}

func (s SelectionState) Idle() bool {
	return s.Selected == nil
}

type ClickKind string

const (
	ClickCluster    ClickKind = "cluster"
	ClickListing    ClickKind = "listing"
	ClickBackground ClickKind = "background"
)

// MapClick is a click reported by the renderer with the properties of the hit feature.
type MapClick struct {
	Kind      ClickKind `json:"kind" validate:"required,oneof=cluster listing background"`
	ClusterID int64     `json:"clusterId,omitempty"`
	Center    *GeoPoint `json:"center,omitempty"`
	ListingID string    `json:"listingId,omitempty"`
}
