package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Address struct {
	ID                  int    `json:"id"`
	Type                string `json:"type"`
	FullName            string `json:"fullName"`
	AddressLine1        string `json:"addressLine1"`
	AddressLine2        string `json:"addressLine2,omitempty"`
	City                string `json:"city"`
	StateProvinceRegion string `json:"stateProvinceRegion"`
	PostalCode          string `json:"postalCode"`
	Country             string `json:"country"`
	IsDefault           bool   `json:"isDefault"`
}

type PaymentMethod struct {
	ID             int    `json:"id"`
	CardType       string `json:"cardType"`
	LastFourDigits string `json:"lastFourDigits"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	IsDefault      bool   `json:"isDefault"`
}

type OrderItem struct {
	ItemName     string `json:"itemName"`
	ItemImageURL string `json:"itemImageUrl"`
}

type Order struct {
	ID          int             `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items"`
}

// Profile is the signed-in user's account page as the catalog returns it.
type Profile struct {
	User           User            `json:"user"`
	Addresses      []Address       `json:"addresses"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	OrderHistory   []Order         `json:"orderHistory"`
}

// OrderLine is one cart listing sent with an order. The catalog reads
// amounts as JSON numbers.
type OrderLine struct {
	ID          int     `json:"id"`
	InventoryID int     `json:"inventoryId"`
	Name        string  `json:"name"`
	Size        string  `json:"size"`
	Price       float64 `json:"price"`
}

// OrderRequest is the body the catalog's order endpoint accepts.
type OrderRequest struct {
	CartItems         []OrderLine `json:"cartItems"`
	TotalAmount       float64     `json:"totalAmount"`
	ShippingAddressID int         `json:"shippingAddressId,omitempty"`
	PaymentMethodID   int         `json:"paymentMethodId,omitempty"`
}

type OrderConfirmation struct {
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}
