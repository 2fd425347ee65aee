package queuestorage

import (
	"encoding/xml"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"
)

// TimeRFC1123 is a time the service writes in RFC 1123 form, for example
// "Wed, 09 Sep 2009 09:20:03 GMT".
type TimeRFC1123 struct {
	time.Time
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeRFC1123) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}
	return []byte(t.UTC().Format(http.TimeFormat)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is the zero
// time.
func (t *TimeRFC1123) UnmarshalText(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	v, err := http.ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

// Metadata is a set of name/value pairs attached to a queue. In XML each pair
// is an element named after the key.
type Metadata map[string]string

// UnmarshalXML implements xml.Unmarshaler.
func (m *Metadata) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	out := Metadata{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &el); err != nil {
				return err
			}
			out[el.Name.Local] = v
		case xml.EndElement:
			*m = out
			return nil
		}
	}
}

// MarshalXML implements xml.Marshaler. Keys are written in sorted order.
func (m Metadata) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if err := e.EncodeElement(m[k], xml.StartElement{Name: xml.Name{Local: k}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// StorageServiceProperties are the account level analytics and CORS settings.
type StorageServiceProperties struct {
	XMLName       xml.Name   `xml:"StorageServiceProperties"`
	Logging       *Logging   `xml:"Logging,omitempty"`
	HourMetrics   *Metrics   `xml:"HourMetrics,omitempty"`
	MinuteMetrics *Metrics   `xml:"MinuteMetrics,omitempty"`
	Cors          []CorsRule `xml:"Cors>CorsRule,omitempty"`
}

// Logging configures Storage Analytics logging.
type Logging struct {
	Version         string          `xml:"Version"`
	Delete          bool            `xml:"Delete"`
	Read            bool            `xml:"Read"`
	Write           bool            `xml:"Write"`
	RetentionPolicy RetentionPolicy `xml:"RetentionPolicy"`
}

// Metrics configures hour or minute metrics.
type Metrics struct {
	Version         string           `xml:"Version,omitempty"`
	Enabled         bool             `xml:"Enabled"`
	IncludeAPIs     *bool            `xml:"IncludeAPIs,omitempty"`
	RetentionPolicy *RetentionPolicy `xml:"RetentionPolicy,omitempty"`
}

// RetentionPolicy says how long analytics data is kept.
type RetentionPolicy struct {
	Enabled bool   `xml:"Enabled"`
	Days    *int32 `xml:"Days,omitempty"`
}

// CorsRule is one cross-origin rule. List fields are comma separated.
type CorsRule struct {
	AllowedOrigins  string `xml:"AllowedOrigins"`
	AllowedMethods  string `xml:"AllowedMethods"`
	AllowedHeaders  string `xml:"AllowedHeaders"`
	ExposedHeaders  string `xml:"ExposedHeaders"`
	MaxAgeInSeconds int32  `xml:"MaxAgeInSeconds"`
}

// StorageServiceStats reports secondary replication.
type StorageServiceStats struct {
	XMLName        xml.Name        `xml:"StorageServiceStats"`
	GeoReplication *GeoReplication `xml:"GeoReplication,omitempty"`
}

// Geo replication states.
const (
	GeoReplicationLive        = "live"
	GeoReplicationBootstrap   = "bootstrap"
	GeoReplicationUnavailable = "unavailable"
)

// GeoReplication is the replication state of the secondary.
type GeoReplication struct {
	Status       string       `xml:"Status"`
	LastSyncTime *TimeRFC1123 `xml:"LastSyncTime,omitempty"`
}

// ListQueuesSegmentResponse is one page of queues.
type ListQueuesSegmentResponse struct {
	XMLName         xml.Name    `xml:"EnumerationResults"`
	ServiceEndpoint string      `xml:"ServiceEndpoint,attr"`
	Prefix          string      `xml:"Prefix"`
	Marker          string      `xml:"Marker,omitempty"`
	MaxResults      int32       `xml:"MaxResults"`
	Queues          []QueueItem `xml:"Queues>Queue"`
	NextMarker      string      `xml:"NextMarker"`
}

// QueueItem is a queue in a listing.
type QueueItem struct {
	Name     string   `xml:"Name"`
	Metadata Metadata `xml:"Metadata,omitempty"`
}

// SignedIdentifiers is the stored access policy list of a queue.
type SignedIdentifiers struct {
	XMLName xml.Name           `xml:"SignedIdentifiers"`
	Items   []SignedIdentifier `xml:"SignedIdentifier"`
}

// SignedIdentifier is a named stored access policy.
type SignedIdentifier struct {
	ID           string        `xml:"Id"`
	AccessPolicy *AccessPolicy `xml:"AccessPolicy,omitempty"`
}

// AccessPolicy bounds the validity and permissions of a shared access
// signature. Permission is a combination of r, a, u and p.
type AccessPolicy struct {
	Start      *time.Time `xml:"Start,omitempty"`
	Expiry     *time.Time `xml:"Expiry,omitempty"`
	Permission string     `xml:"Permission,omitempty"`
}

// QueueMessage is the body of Enqueue and Update.
type QueueMessage struct {
	XMLName     xml.Name `xml:"QueueMessage"`
	MessageText string   `xml:"MessageText"`
}

// EnqueuedMessageList is the result of Enqueue.
type EnqueuedMessageList struct {
	XMLName xml.Name          `xml:"QueueMessagesList"`
	Items   []EnqueuedMessage `xml:"QueueMessage"`
}

// EnqueuedMessage identifies a message that was added.
type EnqueuedMessage struct {
	MessageID       string      `xml:"MessageId"`
	InsertionTime   TimeRFC1123 `xml:"InsertionTime"`
	ExpirationTime  TimeRFC1123 `xml:"ExpirationTime"`
	PopReceipt      string      `xml:"PopReceipt"`
	TimeNextVisible TimeRFC1123 `xml:"TimeNextVisible"`
}

// DequeuedMessagesList is the result of Dequeue.
type DequeuedMessagesList struct {
	XMLName xml.Name          `xml:"QueueMessagesList"`
	Items   []DequeuedMessage `xml:"QueueMessage"`
}

// DequeuedMessage is a message that is now invisible until TimeNextVisible.
type DequeuedMessage struct {
	MessageID       string      `xml:"MessageId"`
	InsertionTime   TimeRFC1123 `xml:"InsertionTime"`
	ExpirationTime  TimeRFC1123 `xml:"ExpirationTime"`
	PopReceipt      string      `xml:"PopReceipt"`
	TimeNextVisible TimeRFC1123 `xml:"TimeNextVisible"`
	DequeueCount    int64       `xml:"DequeueCount"`
	MessageText     string      `xml:"MessageText"`
}

// PeekedMessagesList is the result of Peek.
type PeekedMessagesList struct {
	XMLName xml.Name        `xml:"QueueMessagesList"`
	Items   []PeekedMessage `xml:"QueueMessage"`
}

// PeekedMessage is a message read without changing its visibility.
type PeekedMessage struct {
	MessageID      string      `xml:"MessageId"`
	InsertionTime  TimeRFC1123 `xml:"InsertionTime"`
	ExpirationTime TimeRFC1123 `xml:"ExpirationTime"`
	DequeueCount   int64       `xml:"DequeueCount"`
	MessageText    string      `xml:"MessageText"`
}
