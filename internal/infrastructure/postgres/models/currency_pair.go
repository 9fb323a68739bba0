package models

import "time"

type CurrencyPairModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	BaseCurrency  string `gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_pairs_base_quote"`
	QuoteCurrency string `gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_pairs_base_quote"`
	IsActive      bool   `gorm:"not null;default:true;index"`
	CreatedAt     time.Time
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false"`
}

func (CurrencyPairModel) TableName() string {
	return "currency_pairs"
}
