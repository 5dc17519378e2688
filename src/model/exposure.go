package model

import "time"

const (
	ProductLoan            = "loan"
	ProductBond            = "bond"
	ProductDeposit         = "deposit"
	ProductDerivative      = "derivative"
	ProductOffBalanceSheet = "off_balance_sheet"
	ProductEquity          = "equity"
)

const (
	ExposureClassSovereign  = "sovereign"
	ExposureClassCorporate  = "corporate"
	ExposureClassRetail     = "retail"
	ExposureClassSME        = "sme"
	ExposureClassRealEstate = "real_estate"
	ExposureClassBank       = "bank"
)

// Exposure is one financial instrument within a run. Rows are created by the
// exposure generator when the run is simulated and are read-only afterwards.
type Exposure struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RunID           string    `gorm:"size:36;index;not null" json:"run_id"`
	ProductType     string    `gorm:"size:30;not null" json:"product_type"`
	CounterpartyID  string    `gorm:"size:60;index" json:"counterparty_id"`
	BookingDate     time.Time `json:"booking_date"`
	MaturityDate    time.Time `json:"maturity_date"`
	Currency        string    `gorm:"size:3;not null" json:"currency"`
	Notional        float64   `json:"notional"`
	EAD             float64   `json:"ead"`
	PDOrigination   float64   `json:"pd_origination"`
	PDCurrent       float64   `json:"pd_current"`
	LGD             float64   `json:"lgd"`
	CCF             float64   `json:"ccf"`
	MaturityYears   float64   `json:"maturity_years"`
	MarkToMarket    float64   `json:"mark_to_market"`
	Entity          string    `gorm:"size:60;index" json:"entity"`
	ExposureClass   string    `gorm:"size:30;index;not null" json:"exposure_class"`
	NettingSetID    string    `gorm:"size:60" json:"netting_set_id"`
	CollateralValue float64   `json:"collateral_value"`
	DaysPastDue     int       `json:"days_past_due"`
	Forbearance     bool      `json:"forbearance"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Exposure) TableName() string {
	return "exposures"
}
