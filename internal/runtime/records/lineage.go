package records

import (
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
)

// Lineage links a data source to the market asset derived from it.
type Lineage struct {
	ID              string  `json:"id"`
	DataSourceID    string  `json:"dataSourceId"`
	MarketAssetID   string  `json:"marketAssetId"`
	ModelRegistryID *string `json:"modelRegistryId"`
	UserID          string  `json:"userId"`

	// OmitModelID drops modelRegistryId from the payload when it is nil
	// instead of sending null.
	OmitModelID bool `json:"-"`
}

func (r Lineage) RecordID() string { return r.ID }
func (r Lineage) Endpoint() string { return EndpointLineage }

// MarshalJSON honours OmitModelID.
func (r Lineage) MarshalJSON() ([]byte, error) {
	if r.ModelRegistryID == nil && r.OmitModelID {
		return jsoncodec.Marshal(struct {
			ID            string `json:"id"`
			DataSourceID  string `json:"dataSourceId"`
			MarketAssetID string `json:"marketAssetId"`
			UserID        string `json:"userId"`
		}{r.ID, r.DataSourceID, r.MarketAssetID, r.UserID})
	}
	type plain Lineage
	return jsoncodec.Marshal(plain(r))
}
