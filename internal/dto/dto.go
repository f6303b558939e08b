package dto

import (
	"github.com/shopspring/decimal"

	"github.com/izzy-ti/go-storefront-client/internal/model"
)

// Envelope is the response shape every backend endpoint shares.
// Payload fields are embedded alongside it in the concrete responses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDataRequest struct {
	UserID string `json:"userId"`
}

type UserDataResponse struct {
	Envelope
	UserData model.User `json:"userData"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

type SendResetOTPRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type AddressResponse struct {
	Envelope
	Data model.Address `json:"data"`
}

// --- Product ---

type ProductResponse struct {
	Envelope
	Product model.Product `json:"product"`
}

type ProductListResponse struct {
	Envelope
	Products []model.Product `json:"products"`
}

type ListProductsParams struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

type CreateProductRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// --- Remote cart ---

type RemoteCartRequest struct {
	UserID string `json:"userId"`
}

type RemoteCartEntry struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type RemoteCartResponse struct {
	Envelope
	Cart []RemoteCartEntry `json:"cart"`
}

// --- Order ---

type CreateOrderRequest struct {
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentIntentID string          `json:"paymentIntentId"`
}

type CreateOrderResponse struct {
	Envelope
	OrderID string `json:"orderId"`
}

type UpdateOrderRequest struct {
	Status model.OrderStatus `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type OrderHistoryResponse struct {
	Envelope
	Orders []model.Order `json:"orders"`
}

// --- Review ---

type AddReviewRequest struct {
	Rating  decimal.Decimal `json:"rating"`
	Comment string          `json:"comment"`
}

type ProductRatingResponse struct {
	Envelope
	Rating      decimal.Decimal `json:"rating"`
	ReviewCount int             `json:"reviewCount"`
}

type ProductReviewsResponse struct {
	Envelope
	Reviews []model.Review `json:"reviews"`
}

// --- Seller ---

type SellerProductsResponse struct {
	Envelope
	Products []model.Product `json:"products"`
}

type SellerOrdersResponse struct {
	Envelope
	Orders []model.Order `json:"orders"`
}
