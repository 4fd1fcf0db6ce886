package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drblury/catalogflow"
)

// kinds maps the singular record kinds accepted on the command line to their
// catalog endpoints.
var kinds = map[string]string{
	"data-source":  catalogflow.EndpointDataSources,
	"data-set":     catalogflow.EndpointDataSets,
	"model":        catalogflow.EndpointModels,
	"etl":          catalogflow.EndpointETL,
	"lineage":      catalogflow.EndpointLineage,
	"market-asset": catalogflow.EndpointMarketAssets,
}

// resolveEndpoint accepts a record kind or an endpoint name.
func resolveEndpoint(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if endpoint, ok := kinds[name]; ok {
		return endpoint, nil
	}
	for _, endpoint := range catalogflow.Endpoints() {
		if endpoint == name {
			return endpoint, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q (expected one of %s)", name, strings.Join(kindNames(), ", "))
}

func kindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type registerOptions struct {
	id          string
	name        string
	recordType  string
	format      string
	connection  string
	description string
	path        string
	params      string
	trigger     string
	sourceID    string
	assetID     string
	modelID     string
	demand      float64
	price       float64
	fromFile    string
	funcName    string
}

func newRegisterCommand(root *rootOptions) *cobra.Command {
	o := &registerOptions{}

	cmd := &cobra.Command{
		Use:   "register <kind>",
		Short: "Register one record with the catalog",
		Long: `Register posts a single record, built from flags, to the catalog.

Kinds: ` + strings.Join(kindNames(), ", ") + `.

Records get the same defaults as the wrappers. A data source registered with
--from-file takes type, format and connection data from the inferred metadata
of that file; explicit flags still win.`,
		Example: `  catalogctl register data-source --id load_prices --from-file prices.go --func loadPrices
  catalogctl register model --id arima --params '{"p":1,"d":1,"q":0}'
  catalogctl register lineage --source-id load_prices --asset-id AAPL --model-id arima`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := resolveEndpoint(args[0])
			if err != nil {
				return err
			}

			client, err := root.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			record, err := o.record(cmd, client, endpoint)
			if err != nil {
				return err
			}

			res := client.Register(cmd.Context(), endpoint, record)
			printResult(cmd.OutOrStdout(), res)
			if res.Err != nil {
				return res.Err
			}
			if !res.OK() {
				return fmt.Errorf("catalog answered %d", res.StatusCode)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.id, "id", "", "record id (required except for lineage)")
	f.StringVar(&o.name, "name", "", "display name, defaults to the id")
	f.StringVar(&o.recordType, "type", "", "data source or market asset type")
	f.StringVar(&o.format, "format", "", "data source format")
	f.StringVar(&o.connection, "connection", "", "data source connection data")
	f.StringVar(&o.description, "description", "", "data set description (default \""+catalogflow.DefaultDataSetDescription+"\")")
	f.StringVar(&o.path, "path", "", "data set path (default \""+catalogflow.DefaultDataSetPath+"\")")
	f.StringVar(&o.params, "params", "", "model parameters as a JSON object")
	f.StringVar(&o.trigger, "trigger", "", "ETL trigger type (default \""+catalogflow.DefaultTriggerType+"\")")
	f.StringVar(&o.sourceID, "source-id", "", "lineage data source id")
	f.StringVar(&o.assetID, "asset-id", "", "lineage market asset id")
	f.StringVar(&o.modelID, "model-id", "", "lineage model registry id")
	f.Float64Var(&o.demand, "demand", 0, "market asset demand")
	f.Float64Var(&o.price, "price", 0, "market asset current price")
	f.StringVar(&o.fromFile, "from-file", "", "infer data source metadata from this Go file")
	f.StringVar(&o.funcName, "func", "", "with --from-file, only inspect this function")

	return cmd
}

func (o *registerOptions) record(cmd *cobra.Command, client *catalogflow.Client, endpoint string) (catalogflow.Record, error) {
	if endpoint != catalogflow.EndpointLineage && o.id == "" {
		return nil, errors.New("--id is required")
	}
	name := o.name
	if name == "" {
		name = o.id
	}

	switch endpoint {
	case catalogflow.EndpointDataSources:
		meta := catalogflow.DefaultMetadata()
		if o.fromFile != "" {
			var err error
			if meta, err = inferFile(o.fromFile, o.funcName); err != nil {
				return nil, err
			}
		}
		return catalogflow.DataSource{
			ID:             o.id,
			Name:           name,
			Type:           valueOr(o.recordType, meta.Type),
			Format:         valueOr(o.format, meta.Format),
			ConnectionData: valueOr(o.connection, meta.Path),
		}, nil

	case catalogflow.EndpointDataSets:
		return catalogflow.DataSet{
			ID:          o.id,
			Name:        name,
			Description: valueOr(o.description, catalogflow.DefaultDataSetDescription),
			Path:        valueOr(o.path, catalogflow.DefaultDataSetPath),
		}, nil

	case catalogflow.EndpointModels:
		params := map[string]any{}
		if o.params != "" {
			if err := catalogflow.Unmarshal([]byte(o.params), &params); err != nil {
				return nil, fmt.Errorf("invalid --params: %w", err)
			}
		}
		return catalogflow.Model{ID: o.id, ModelName: name, Parameters: params}, nil

	case catalogflow.EndpointETL:
		return catalogflow.ETL{
			ID:          o.id,
			Name:        name,
			Language:    client.Config().ETLLanguage,
			TriggerType: valueOr(o.trigger, catalogflow.DefaultTriggerType),
		}, nil

	case catalogflow.EndpointLineage:
		if o.sourceID == "" || o.assetID == "" {
			return nil, errors.New("--source-id and --asset-id are required")
		}
		record := catalogflow.Lineage{
			ID:            valueOr(o.id, client.NextLineageID()),
			DataSourceID:  o.sourceID,
			MarketAssetID: o.assetID,
			UserID:        client.User(),
			OmitModelID:   client.Config().ModelIDMode == catalogflow.ModelIDOmit,
		}
		if o.modelID != "" {
			record.ModelRegistryID = &o.modelID
		}
		return record, nil

	case catalogflow.EndpointMarketAssets:
		record := catalogflow.MarketAsset{
			ID:   o.id,
			Name: name,
			Type: valueOr(o.recordType, catalogflow.DefaultMarketAssetType),
		}
		if cmd.Flags().Changed("demand") {
			record.Demand = &o.demand
		}
		if cmd.Flags().Changed("price") {
			record.CurrentPrice = &o.price
		}
		return record, nil
	}
	return nil, fmt.Errorf("unsupported endpoint %q", endpoint)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
