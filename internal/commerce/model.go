package commerce

import (
	"encoding/json"
	"time"
)

// PageInfo is the cursor information of a connection.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// Connection is a single page of a cursor-paginated list.
type Connection[T any] struct {
	Nodes    []T      `json:"nodes"`
	PageInfo PageInfo `json:"pageInfo"`
}

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type ProductRef struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// Merchandise is the product variant a cart line points to.
type Merchandise struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	QuantityAvailable int        `json:"quantityAvailable"`
	Price             Money      `json:"price"`
	Product           ProductRef `json:"product"`
}

type CartLineCost struct {
	AmountPerQuantity Money `json:"amountPerQuantity"`
	TotalAmount       Money `json:"totalAmount"`
}

type CartLine struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	Merchandise Merchandise  `json:"merchandise"`
	Cost        CartLineCost `json:"cost"`
}

type CartCost struct {
	SubtotalAmount Money  `json:"subtotalAmount"`
	TotalAmount    Money  `json:"totalAmount"`
	TotalTaxAmount *Money `json:"totalTaxAmount"`
}

type CustomerRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type BuyerIdentity struct {
	Email    *string      `json:"email"`
	Customer *CustomerRef `json:"customer"`
}

// Cart is the remote cart as returned by the commerce API. Quantities and
// costs are authoritative; they are never computed locally.
type Cart struct {
	ID            string               `json:"id"`
	CheckoutURL   string               `json:"checkoutUrl"`
	TotalQuantity int                  `json:"totalQuantity"`
	Lines         Connection[CartLine] `json:"lines"`
	Cost          CartCost             `json:"cost"`
	BuyerIdentity BuyerIdentity        `json:"buyerIdentity"`
}

// CustomerAccessToken is the remote session token. Raw holds the object as
// the remote sent it, including fields this package does not model.
type CustomerAccessToken struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Raw         json.RawMessage `json:"-"`
}

type customerAccessToken CustomerAccessToken

func (t *CustomerAccessToken) UnmarshalJSON(data []byte) error {
	var v customerAccessToken
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	v.Raw = append(json.RawMessage(nil), data...)
	*t = CustomerAccessToken(v)

	return nil
}

// MarshalJSON writes Raw unchanged when present.
func (t CustomerAccessToken) MarshalJSON() ([]byte, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	return json.Marshal(customerAccessToken(t))
}

type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type MailingAddress struct {
	ID        string  `json:"id,omitempty"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Company   *string `json:"company,omitempty"`
	Address1  *string `json:"address1"`
	Address2  *string `json:"address2"`
	City      *string `json:"city"`
	Province  *string `json:"province,omitempty"`
	Country   *string `json:"country"`
	Zip       *string `json:"zip"`
	Phone     *string `json:"phone"`
}

type Customer struct {
	ID             string          `json:"id"`
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	DefaultAddress *MailingAddress `json:"defaultAddress"`
}

type Order struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	OrderNumber       int       `json:"orderNumber"`
	ProcessedAt       time.Time `json:"processedAt"`
	FinancialStatus   *string   `json:"financialStatus"`
	FulfillmentStatus string    `json:"fulfillmentStatus"`
	CurrentTotalPrice Money     `json:"currentTotalPrice"`
	StatusURL         string    `json:"statusUrl"`
}

type CheckoutLineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutInput struct {
	LineItems       []CheckoutLineItem
	Email           *string
	ShippingAddress *MailingAddress
	Language        LanguageCode
}

type Checkout struct {
	ID     string `json:"id"`
	WebURL string `json:"webUrl"`
}

type Product struct {
	ID               string `json:"id"`
	Handle           string `json:"handle"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	PriceRange       struct {
		MinVariantPrice Money `json:"minVariantPrice"`
		MaxVariantPrice Money `json:"maxVariantPrice"`
	} `json:"priceRange"`
	FeaturedImage *struct {
		URL     string  `json:"url"`
		AltText *string `json:"altText"`
	} `json:"featuredImage"`
}

type Collection struct {
	ID          string              `json:"id"`
	Handle      string              `json:"handle"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Products    Connection[Product] `json:"products"`
}
