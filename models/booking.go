package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const BookingPending BookingStatus = "pending"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
)

// CustomerSnapshot is captured at submission time, not a reference to a profile
type CustomerSnapshot struct {
	Name   string `gorm:"column:customer_name;not null" json:"name"`
	Phone  string `gorm:"column:customer_phone" json:"phone"`
	Email  string `gorm:"column:customer_email;index;not null" json:"email"`
	Gender string `gorm:"column:customer_gender" json:"gender,omitempty"`
}

type Booking struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber   string           `gorm:"uniqueIndex;not null" json:"billNum"`
	BusinessDate string           `gorm:"type:varchar(8);index;not null" json:"businessDate"` // ddmmyyyy
	Customer     CustomerSnapshot `gorm:"embedded" json:"customer"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	Currency      Currency      `gorm:"type:varchar(3);default:'VND'" json:"currency"`
	AmountPaid    int64         `gorm:"default:0" json:"amountPaid"`
	Change        int64         `gorm:"default:0" json:"change"`

	TotalVND int64         `gorm:"not null" json:"totalVND"`
	TotalUSD int64         `gorm:"not null" json:"totalUSD"`
	Status   BookingStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Lang     string        `gorm:"type:varchar(5)" json:"lang"`
	Note     string        `json:"note,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Lines []BookingLine `gorm:"foreignKey:BookingID" json:"items"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type BookingLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Position    int       `gorm:"not null" json:"-"`
	ServiceID   string    `gorm:"type:varchar(32);index;not null" json:"serviceId"`
	ServiceName string    `gorm:"not null" json:"serviceName"`
	Quantity    int       `gorm:"default:1" json:"qty"`
	UnitPrice   int64     `gorm:"not null" json:"unitPrice"`
	UnitPriceUS int64     `gorm:"column:unit_price_usd;not null" json:"unitPriceUSD"`
	TotalPrice  int64     `gorm:"not null" json:"totalPrice"`
	Duration    int       `json:"duration"`
	Options     Options   `gorm:"column:options_snapshot;type:jsonb" json:"options"`
}

func (l *BookingLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// BillCounter holds the last issued sequence for one business day
type BillCounter struct {
	DateCode  string `gorm:"type:varchar(8);primary_key"`
	Seq       int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
