package domain

// FieldType is the type tag of a subscriber field.
type FieldType string

// Subscriber field types understood by the sink.
const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldMultiple FieldType = "multiple"
)

// SubscriberField is one typed key/value on a subscriber. Value is a string
// for text and date fields and a []string for multiple fields.
type SubscriberField struct {
	Key   string    `json:"key"`
	Value any       `json:"value"`
	Type  FieldType `json:"type"`
}

// Subscriber is one record for the downstream marketing sink.
type Subscriber struct {
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phone_number,omitempty"`
	Language    string            `json:"language,omitempty"`
	Fields      []SubscriberField `json:"fields"`
}

// Field returns the field with the given key.
func (s *Subscriber) Field(key string) (SubscriberField, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return SubscriberField{}, false
}

// SubscriberBatch is one request to the sink.
type SubscriberBatch struct {
	UpdateOnDuplicate bool         `json:"update_on_duplicate"`
	Tags              []string     `json:"tags"`
	Subscribers       []Subscriber `json:"subscribers"`
}

// SinkResult is the sink's answer to a batch.
type SinkResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Results []SinkRecordResult `json:"results,omitempty"`
}

// SinkRecordResult is the per-subscriber outcome when the sink reports one.
type SinkRecordResult struct {
	Email   string `json:"email,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PushResult summarises one push of orders to the sink.
type PushResult struct {
	RunID    string           `json:"runId"`
	Fetched  int              `json:"fetched"`
	Eligible int              `json:"eligible"`
	Sent     int              `json:"sent"`
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	DryRun   bool             `json:"dryRun,omitempty"`
	Batch    *SubscriberBatch `json:"batch,omitempty"`
}
