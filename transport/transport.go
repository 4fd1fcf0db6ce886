// Package transport holds the event sinks registration outcomes are mirrored
// onto. Sinks live in sub-packages and add themselves to DefaultRegistry from
// init, so a blank import of transport/transports enables all of them.
package transport

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataRecordKey is the message metadata key holding "endpoint/recordID".
// Sinks that partition or route use it so that every outcome for one catalog
// record lands on the same partition.
const MetadataRecordKey = "catalog_record"

// Builder creates a sink publisher from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error)

// Config exposes the sink settings of the client configuration.
type Config interface {
	GetEventSinkSystem() string

	GetKafkaBrokers() []string
	GetRabbitMQURL() string
	GetNATSURL() string
	GetNATSStreamName() string
	GetHTTPWebhookURL() string
	GetIOFile() string

	GetAWSRegion() string
	GetAWSAccountID() string
	GetAWSAccessKeyID() string
	GetAWSSecretAccessKey() string
	GetAWSEndpoint() string
}

// RecordKey returns the catalog record a message describes, falling back to
// the message UUID for messages published without one.
func RecordKey(msg *message.Message) string {
	if key := msg.Metadata.Get(MetadataRecordKey); key != "" {
		return key
	}
	return msg.UUID
}
