// Package records defines the payloads posted to the catalog, one per
// endpoint, with the catalog's JSON field names.
package records

import (
	"github.com/drblury/catalogflow/internal/runtime/jsoncodec"
)

// Catalog endpoints, relative to the configured base URL.
const (
	EndpointDataSources  = "data-sources"
	EndpointDataSets     = "data-sets"
	EndpointModels       = "models"
	EndpointETL          = "etl"
	EndpointLineage      = "lineage"
	EndpointMarketAssets = "market-assets"
)

// Record is implemented by every catalog payload.
type Record interface {
	// RecordID is the catalog primary key of the record.
	RecordID() string
	// Endpoint is the collection the record is posted to.
	Endpoint() string
}

// Endpoints lists every collection the catalog exposes to this client.
func Endpoints() []string {
	return []string{
		EndpointDataSources,
		EndpointDataSets,
		EndpointModels,
		EndpointETL,
		EndpointLineage,
		EndpointMarketAssets,
	}
}

// DataSource describes where raw data comes from.
type DataSource struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Format         string `json:"format"`
	ConnectionData string `json:"connectionData"`
}

func (r DataSource) RecordID() string { return r.ID }
func (r DataSource) Endpoint() string { return EndpointDataSources }

// DataSet is a named, derived dataset.
type DataSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

func (r DataSet) RecordID() string { return r.ID }
func (r DataSet) Endpoint() string { return EndpointDataSets }

// Model is a model registry entry.
type Model struct {
	ID         string         `json:"id"`
	ModelName  string         `json:"modelName"`
	Parameters map[string]any `json:"parameters"`
}

func (r Model) RecordID() string { return r.ID }
func (r Model) Endpoint() string { return EndpointModels }

// MarshalJSON encodes nil parameters as an empty object.
func (r Model) MarshalJSON() ([]byte, error) {
	type plain Model
	if r.Parameters == nil {
		r.Parameters = map[string]any{}
	}
	return jsoncodec.Marshal(plain(r))
}

// ETL describes a transformation job.
type ETL struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	TriggerType string `json:"triggerType"`
}

func (r ETL) RecordID() string { return r.ID }
func (r ETL) Endpoint() string { return EndpointETL }

// MarketAsset is a tradable asset tracked by the catalog. The catalog appends
// a history entry from demand and currentPrice on every post.
type MarketAsset struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Demand       *float64 `json:"demand,omitempty"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}

func (r MarketAsset) RecordID() string { return r.ID }
func (r MarketAsset) Endpoint() string { return EndpointMarketAssets }
