package services

import (
	"strconv"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// Subscriber field keys understood by the marketing sink.
const (
	FieldPersonalNumber = "Kundinfo.Personnr"
	FieldFirstName      = "Namn.Förnamn"
	FieldLastName       = "Namn.Efternamn"
	FieldCity           = "Adress.Stad"
	FieldBirthday       = "Datum.Födelsedag"
	FieldOrderDate      = "Infoflex.Datum"
	FieldOrderNumber    = "Infoflex.Doknr"
	FieldPrice          = "Infoflex.Pris"
	FieldFacility       = "Infoflex.Anlaggning"
	FieldFacilityEmail  = "Infoflex.AnlaggningEpost"
	FieldFacilityPhone  = "Infoflex.AnlaggningTfn"
	FieldVehicleType    = "Infoflex.Fordonstyp"
	FieldMake           = "Infoflex.Marke"
	FieldOdometer       = "Infoflex.Mätarställning"
	FieldModel          = "Infoflex.Modell"
	FieldModelYear      = "Infoflex.Modellar"
	FieldPlate          = "Infoflex.Regnr"
	FieldJobTypes       = "Infoflex.Jobbtyp"
	FieldCreated        = "Infoflex.Skapad"
	FieldOrderCity      = "Infoflex.Stad"
)

const sinkDateLayout = "2006-01-02"

// FacilityFinder resolves the contact card of an environment.
type FacilityFinder interface {
	Facility(envID string) domain.Facility
}

// SubscriberBuilder turns enriched orders into sink payloads.
type SubscriberBuilder struct {
	facilities FacilityFinder
	tags       []string
	language   string
}

// NewSubscriberBuilder creates a builder. Every batch carries tags and every
// subscriber carries language.
func NewSubscriberBuilder(facilities FacilityFinder, tags []string, language string) *SubscriberBuilder {
	return &SubscriberBuilder{
		facilities: facilities,
		tags:       append([]string(nil), tags...),
		language:   language,
	}
}

// Build creates one batch with a subscriber per order. Duplicates are
// updated by the sink.
func (b *SubscriberBuilder) Build(orders []domain.Order) *domain.SubscriberBatch {
	batch := &domain.SubscriberBatch{
		UpdateOnDuplicate: true,
		Tags:              append([]string{}, b.tags...),
		Subscribers:       make([]domain.Subscriber, 0, len(orders)),
	}
	for i := range orders {
		batch.Subscribers = append(batch.Subscribers, b.Subscriber(&orders[i]))
	}
	return batch
}

// Subscriber maps one order to a subscriber. Missing values become empty
// strings so every subscriber carries the same field set.
func (b *SubscriberBuilder) Subscriber(o *domain.Order) domain.Subscriber {
	c := o.Customer
	if c == nil {
		c = &domain.Party{}
	}
	v := o.Vehicle
	if v == nil {
		v = &domain.Vehicle{}
	}
	facility := b.facilities.Facility(o.Environment)

	odometer := ""
	if o.Odometer != 0 {
		odometer = strconv.Itoa(o.Odometer)
	}
	modelYear := ""
	if v.Year != 0 {
		modelYear = strconv.Itoa(v.Year)
	}
	categories := append([]string{}, o.Categories...)

	return domain.Subscriber{
		Email:       c.Email,
		PhoneNumber: c.MobilePhone,
		Language:    b.language,
		Fields: []domain.SubscriberField{
			text(FieldPersonalNumber, c.OrgNumber),
			text(FieldFirstName, c.FirstName),
			text(FieldLastName, c.LastName),
			text(FieldCity, c.City),
			dateField(FieldBirthday, c.BirthDate),
			dateField(FieldOrderDate, o.Date),
			text(FieldOrderNumber, strconv.Itoa(o.Number)),
			text(FieldPrice, strconv.FormatFloat(o.TotalInclVAT, 'f', -1, 64)),
			text(FieldFacility, facility.Name),
			text(FieldFacilityEmail, facility.Email),
			text(FieldFacilityPhone, facility.Phone),
			text(FieldVehicleType, v.Category),
			text(FieldMake, v.Make),
			text(FieldOdometer, odometer),
			text(FieldModel, v.Model),
			text(FieldModelYear, modelYear),
			text(FieldPlate, o.Plate),
			{Key: FieldJobTypes, Value: categories, Type: domain.FieldMultiple},
			dateField(FieldCreated, o.CreatedAt),
			text(FieldOrderCity, c.City),
		},
	}
}

func text(key, value string) domain.SubscriberField {
	return domain.SubscriberField{Key: key, Value: value, Type: domain.FieldText}
}

func dateField(key string, t *time.Time) domain.SubscriberField {
	value := ""
	if t != nil {
		value = t.Format(sinkDateLayout)
	}
	return domain.SubscriberField{Key: key, Value: value, Type: domain.FieldDate}
}
