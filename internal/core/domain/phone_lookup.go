package domain

import "time"

// PhoneLookupOverride narrows the default filter for one lookup item.
// Zero values inherit the default.
type PhoneLookupOverride struct {
	Environment  string
	From         *time.Time
	To           *time.Time
	Status       string
	CustomerType CustomerType
	Invoiced     *bool
}

// PhoneLookupItem is one phone number to look up, tagged with a caller id.
type PhoneLookupItem struct {
	CallID   string
	Phone    string
	Override PhoneLookupOverride
}

// PhoneMatch pairs a lookup item with one order it matched.
type PhoneMatch struct {
	CallID     string `json:"callId"`
	InputPhone string `json:"inputPhoneNumber"`
	Order      Order  `json:"order"`
}
