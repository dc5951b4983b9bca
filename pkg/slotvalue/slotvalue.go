// Package slotvalue defines the tagged union of resolved slot values: plain
// custom strings and the builtin-entity payload kinds named in spec.md's
// data model.
package slotvalue

// Kind discriminates the payload carried by a Value.
type Kind string

const (
	Custom        Kind = "custom"
	InstantTime   Kind = "instant_time"
	TimeInterval  Kind = "time_interval"
	Number        Kind = "number"
	Ordinal       Kind = "ordinal"
	AmountOfMoney Kind = "amount_of_money"
	Temperature   Kind = "temperature"
	Duration      Kind = "duration"
	Percentage    Kind = "percentage"
	MusicArtist   Kind = "music_artist"
	MusicAlbum    Kind = "music_album"
	MusicTrack    Kind = "music_track"
	City          Kind = "city"
	Country       Kind = "country"
	Region        Kind = "region"
)

// InstantTimePayload is the grammar value for a single resolved moment.
type InstantTimePayload struct {
	Value     string `json:"value"` // ISO-8601-like grammar string
	Grain     string `json:"grain"`
	Precision string `json:"precision"`
}

// TimeIntervalPayload is the grammar value for a bounded time span.
type TimeIntervalPayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// NumberPayload carries a numeric literal.
type NumberPayload struct {
	Value float64 `json:"value"`
}

// OrdinalPayload carries an ordinal position (1st, 2nd, …).
type OrdinalPayload struct {
	Value int64 `json:"value"`
}

// AmountOfMoneyPayload carries a currency amount.
type AmountOfMoneyPayload struct {
	Value     float64 `json:"value"`
	Precision string  `json:"precision,omitempty"`
	Unit      string  `json:"unit,omitempty"`
}

// TemperaturePayload carries a scalar temperature with its unit.
type TemperaturePayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// DurationPayload carries a duration broken into calendar units.
type DurationPayload struct {
	Years, Quarters, Months, Weeks, Days          int64
	Hours, Minutes, Seconds                       int64
	Precision                                     string
}

// PercentagePayload carries a percentage value.
type PercentagePayload struct {
	Value float64 `json:"value"`
}

// Value is the tagged union. Exactly the field matching Kind is meaningful;
// the rest are zero. Custom entities (including music/geography gazetteer
// entities) carry their resolved string in CustomValue.
type Value struct {
	Kind Kind `json:"kind"`

	CustomValue string `json:"value,omitempty"`

	InstantTime   *InstantTimePayload   `json:"instant_time,omitempty"`
	TimeInterval  *TimeIntervalPayload  `json:"time_interval,omitempty"`
	Number        *NumberPayload        `json:"number,omitempty"`
	Ordinal       *OrdinalPayload       `json:"ordinal,omitempty"`
	AmountOfMoney *AmountOfMoneyPayload `json:"amount_of_money,omitempty"`
	Temperature   *TemperaturePayload   `json:"temperature,omitempty"`
	Duration      *DurationPayload      `json:"duration,omitempty"`
	Percentage    *PercentagePayload    `json:"percentage,omitempty"`
}

// NewCustom builds a Custom-kind value (also used for music/geography
// gazetteer entities, which resolve to a plain canonical string).
func NewCustom(s string) Value {
	return Value{Kind: Custom, CustomValue: s}
}
