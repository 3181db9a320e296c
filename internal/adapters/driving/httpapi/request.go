package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// queryParams reads filter params from the URL. List params may repeat or
// carry comma separated values.
func queryParams(r *http.Request) domain.FilterParams {
	q := r.URL.Query()
	return domain.FilterParams{
		From:         q.Get("from"),
		To:           q.Get("to"),
		Environment:  q.Get("env"),
		Environments: q["envs"],
		Plates:       q["plate"],
		Phones:       q["phone"],
		Status:       q.Get("status"),
		CustomerType: q.Get("customerType"),
		Invoiced:     q.Get("invoiced"),
	}
}

// receiptParams reads a goods receipt page from the URL.
func receiptParams(r *http.Request) domain.ReceiptParams {
	q := r.URL.Query()
	return domain.ReceiptParams{
		From:        q.Get("from"),
		To:          q.Get("to"),
		Environment: q.Get("env"),
		Skip:        q.Get("skip"),
		Take:        q.Get("take"),
	}
}

// subscribersRequest is the body of POST /subscribers. updateOnDuplicate
// defaults to true when omitted.
type subscribersRequest struct {
	UpdateOnDuplicate *bool               `json:"update_on_duplicate"`
	Tags              []string            `json:"tags"`
	Subscribers       []domain.Subscriber `json:"subscribers"`
}

func (req subscribersRequest) batch() domain.SubscriberBatch {
	update := true
	if req.UpdateOnDuplicate != nil {
		update = *req.UpdateOnDuplicate
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.SubscriberBatch{UpdateOnDuplicate: update, Tags: tags, Subscribers: req.Subscribers}
}

// filterRequest is the JSON body of filter driven POST routes.
type filterRequest struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Environment  string   `json:"environment"`
	Environments []string `json:"environments"`
	Plates       []string `json:"plates"`
	Status       string   `json:"status"`
	CustomerType string   `json:"customerType"`
	Invoiced     *bool    `json:"invoiced"`
}

func (req filterRequest) filter(loc *time.Location) (domain.OrderFilter, error) {
	f, err := domain.FilterParams{
		From:         req.From,
		To:           req.To,
		Environment:  req.Environment,
		Environments: req.Environments,
		Plates:       req.Plates,
		Status:       req.Status,
		CustomerType: req.CustomerType,
	}.Filter(loc)
	if err != nil {
		return domain.OrderFilter{}, err
	}
	f.Invoiced = req.Invoiced
	return f, nil
}

// phoneItem is one entry of a phone batch lookup.
type phoneItem struct {
	CallID       string `json:"callId"`
	PhoneNumber  string `json:"phoneNumber"`
	Environment  string `json:"environment"`
	From         string `json:"from"`
	To           string `json:"to"`
	Status       string `json:"status"`
	CustomerType string `json:"customerType"`
	Invoiced     *bool  `json:"invoiced"`
}

// phonesRequest is the body of POST /orders/phones. Top level fields are
// the defaults every item inherits.
type phonesRequest struct {
	filterRequest
	Items []phoneItem `json:"items"`
}

func (req phonesRequest) parse(loc *time.Location) (domain.OrderFilter, []domain.PhoneLookupItem, error) {
	if len(req.Items) == 0 {
		return domain.OrderFilter{}, nil, &domain.ValidationError{Field: "items", Err: domain.ErrEmptyPhoneList}
	}
	base := req.filterRequest
	base.Plates = nil
	defaults, err := base.filter(loc)
	if err != nil {
		return domain.OrderFilter{}, nil, err
	}

	items := make([]domain.PhoneLookupItem, len(req.Items))
	for i, it := range req.Items {
		from, err := domain.ParseFilterTime("items.from", it.From, false, loc)
		if err != nil {
			return domain.OrderFilter{}, nil, err
		}
		to, err := domain.ParseFilterTime("items.to", it.To, true, loc)
		if err != nil {
			return domain.OrderFilter{}, nil, err
		}
		ct, err := domain.ParseCustomerType(it.CustomerType)
		if err != nil {
			return domain.OrderFilter{}, nil, &domain.ValidationError{Field: "items.customerType", Err: err}
		}
		items[i] = domain.PhoneLookupItem{
			CallID: it.CallID,
			Phone:  it.PhoneNumber,
			Override: domain.PhoneLookupOverride{
				Environment:  strings.ToUpper(strings.TrimSpace(it.Environment)),
				From:         from,
				To:           to,
				Status:       strings.TrimSpace(it.Status),
				CustomerType: ct,
				Invoiced:     it.Invoiced,
			},
		}
	}
	return defaults, items, nil
}
