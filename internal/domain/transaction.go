package domain

import "time"

type Network string

const (
	NetworkEthereum Network = "Ethereum"
	NetworkBSC      Network = "Binance Smart Chain"
	NetworkSUI      Network = "SUI"
	NetworkSolana   Network = "Solana"
)

func (n Network) Valid() bool {
	switch n {
	case NetworkEthereum, NetworkBSC, NetworkSUI, NetworkSolana:
		return true
	}
	return false
}

// Transaction is an append-only transfer record. From is a free-form sender
// address; To references the receiving user.
type Transaction struct {
	ID              string    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	From            string    `json:"from"`
	To              string    `gorm:"type:uuid;index;not null" json:"to"`
	TransactionHash string    `gorm:"not null" json:"transaction_hash"`
	Amount          float64   `gorm:"not null" json:"amount"`
	Network         Network   `gorm:"type:text;not null;default:'Ethereum'" json:"network"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "transaction" }
