package domain

import (
	"database/sql/driver"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var optionsJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type OptionCategory string

const (
	OptionCategoryLimits     OptionCategory = "Limits"
	OptionCategoryVIP        OptionCategory = "VIP Services"
	OptionCategoryInsurance  OptionCategory = "Insurance"
	OptionCategoryAdditional OptionCategory = "Additional"
	OptionCategoryDelivery   OptionCategory = "Delivery"
)

type OptionPricingMode string

const (
	// OptionPricingPercentage charges Rate times the undiscounted daily car price per day.
	OptionPricingPercentage OptionPricingMode = "percentage"
	// OptionPricingFixedDaily charges Rate per (fractional) rental day.
	OptionPricingFixedDaily OptionPricingMode = "fixed_daily"
	OptionPricingFree       OptionPricingMode = "free"
)

const (
	OptionUnlimitedKm        = "unlimitedKm"
	OptionSpeedLimitIncrease = "speedLimitIncrease"
	OptionTireInsurance      = "tireInsurance"
	OptionPersonalDriver     = "personalDriver"
	OptionPriorityService    = "priorityService"
	OptionChildSeat          = "childSeat"
	OptionSimCard            = "simCard"
	OptionRoadsideAssistance = "roadsideAssistance"
	OptionAirportDelivery    = "airportDelivery"
)

// RentalOption is an entry of the static add-on catalog.
type RentalOption struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Category    OptionCategory    `json:"category"`
	PricingMode OptionPricingMode `json:"pricing_mode"`
	Rate        float64           `json:"rate"`
	Color       string            `json:"color"`
}

var optionCatalog = []RentalOption{
	{ID: OptionUnlimitedKm, Label: "Unlimited mileage", Category: OptionCategoryLimits, PricingMode: OptionPricingPercentage, Rate: 0.5, Color: "#3b82f6"},
	{ID: OptionSpeedLimitIncrease, Label: "Speed limit increase", Category: OptionCategoryLimits, PricingMode: OptionPricingPercentage, Rate: 0.2, Color: "#6366f1"},
	{ID: OptionPersonalDriver, Label: "Personal driver", Category: OptionCategoryVIP, PricingMode: OptionPricingFixedDaily, Rate: 800, Color: "#eab308"},
	{ID: OptionPriorityService, Label: "Priority service", Category: OptionCategoryVIP, PricingMode: OptionPricingFixedDaily, Rate: 1000, Color: "#f59e0b"},
	{ID: OptionTireInsurance, Label: "Tire and glass insurance", Category: OptionCategoryInsurance, PricingMode: OptionPricingPercentage, Rate: 0.2, Color: "#10b981"},
	{ID: OptionChildSeat, Label: "Child seat", Category: OptionCategoryAdditional, PricingMode: OptionPricingFixedDaily, Rate: 100, Color: "#ec4899"},
	{ID: OptionSimCard, Label: "SIM card", Category: OptionCategoryAdditional, PricingMode: OptionPricingFixedDaily, Rate: 100, Color: "#8b5cf6"},
	{ID: OptionRoadsideAssistance, Label: "Roadside assistance", Category: OptionCategoryAdditional, PricingMode: OptionPricingFixedDaily, Rate: 500, Color: "#ef4444"},
	{ID: OptionAirportDelivery, Label: "Airport delivery", Category: OptionCategoryDelivery, PricingMode: OptionPricingFree, Rate: 0, Color: "#64748b"},
}

// OptionCatalog returns a copy of the add-on catalog in display order.
func OptionCatalog() []RentalOption {
	out := make([]RentalOption, len(optionCatalog))
	copy(out, optionCatalog)
	return out
}

func LookupOption(id string) (RentalOption, bool) {
	for _, o := range optionCatalog {
		if o.ID == id {
			return o, true
		}
	}
	return RentalOption{}, false
}

// OptionsSelection holds one flag per catalog option. Decoding stored JSON
// ignores unknown keys; ParseOptions rejects them.
type OptionsSelection struct {
	UnlimitedKm        bool `json:"unlimitedKm"`
	SpeedLimitIncrease bool `json:"speedLimitIncrease"`
	TireInsurance      bool `json:"tireInsurance"`
	PersonalDriver     bool `json:"personalDriver"`
	PriorityService    bool `json:"priorityService"`
	ChildSeat          bool `json:"childSeat"`
	SimCard            bool `json:"simCard"`
	RoadsideAssistance bool `json:"roadsideAssistance"`
	AirportDelivery    bool `json:"airportDelivery"`
}

func (o *OptionsSelection) flag(id string) *bool {
	switch id {
	case OptionUnlimitedKm:
		return &o.UnlimitedKm
	case OptionSpeedLimitIncrease:
		return &o.SpeedLimitIncrease
	case OptionTireInsurance:
		return &o.TireInsurance
	case OptionPersonalDriver:
		return &o.PersonalDriver
	case OptionPriorityService:
		return &o.PriorityService
	case OptionChildSeat:
		return &o.ChildSeat
	case OptionSimCard:
		return &o.SimCard
	case OptionRoadsideAssistance:
		return &o.RoadsideAssistance
	case OptionAirportDelivery:
		return &o.AirportDelivery
	}
	return nil
}

// Selected reports whether the option is switched on. Unknown ids are never selected.
func (o OptionsSelection) Selected(id string) bool {
	if f := o.flag(id); f != nil {
		return *f
	}
	return false
}

// SelectedOptions returns the catalog entries switched on, in catalog order.
func (o OptionsSelection) SelectedOptions() []RentalOption {
	var out []RentalOption
	for _, opt := range optionCatalog {
		if o.Selected(opt.ID) {
			out = append(out, opt)
		}
	}
	return out
}

// ParseOptions builds a selection from a loosely typed option bag. Absent
// keys stay false; unknown keys are an error.
func ParseOptions(raw map[string]bool) (OptionsSelection, error) {
	var sel OptionsSelection
	var unknown []string
	for id, on := range raw {
		f := sel.flag(id)
		if f == nil {
			unknown = append(unknown, id)
			continue
		}
		*f = on
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return OptionsSelection{}, NewValidationError(fmt.Sprintf("unknown rental option: %v", unknown))
	}
	return sel, nil
}

// Value stores the selection as a JSON object.
func (o OptionsSelection) Value() (driver.Value, error) {
	return optionsJSON.Marshal(o)
}

func (o *OptionsSelection) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*o = OptionsSelection{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported options column type %T", src)
	}
	if len(data) == 0 {
		*o = OptionsSelection{}
		return nil
	}
	var sel OptionsSelection
	if err := optionsJSON.Unmarshal(data, &sel); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}
	*o = sel
	return nil
}
