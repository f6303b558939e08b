package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Product is backend-owned and read-only from this layer's perspective.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Rating      decimal.Decimal `json:"rating"`
	ReviewCount int             `json:"review_count"`
}

// Snapshot is the denormalized product copy stored with a cart or
// wishlist line so screens render without refetching.
type Snapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type CartLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Snapshot  Snapshot  `json:"snapshot"`
	AddedAt   time.Time `json:"added_at"`
}

type WishlistLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Snapshot  Snapshot  `json:"snapshot"`
	AddedAt   time.Time `json:"added_at"`
}

type Order struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          OrderStatus     `json:"status"`
	PaymentIntentID string          `json:"payment_intent_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
	Verified bool   `json:"IsAccVerified"`
}

// Session is the in-memory authentication state, mirrored to the durable
// store so it survives restarts.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Review struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	UserName  string          `json:"user_name"`
	Rating    decimal.Decimal `json:"rating"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
}

type Address struct {
	ID      string `json:"id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}
