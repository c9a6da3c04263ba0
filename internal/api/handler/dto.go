package handler

import (
	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to add a product to inventory
type CreateProductRequest struct {
	Brand        string           `json:"brand" binding:"required"`
	Model        string           `json:"model" binding:"required"`
	Category     string           `json:"category"`
	Condition    string           `json:"condition"`
	Colour       string           `json:"colour"`
	CostPriceEUR *decimal.Decimal `json:"costPriceEur" binding:"required"`
	SellPriceEUR *decimal.Decimal `json:"sellPriceEur"`
	Status       string           `json:"status" binding:"omitempty,oneof=in_stock sold reserved"`
	Quantity     *int             `json:"quantity" binding:"omitempty,min=0"`
	Images       []product.Image  `json:"images"`
	Notes        string           `json:"notes"`
}

// SellProductRequest represents a sale. Both fields are optional.
type SellProductRequest struct {
	PriceEUR *decimal.Decimal `json:"priceEur"`
	Notes    string           `json:"notes"`
}

type ProductListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=in_stock sold reserved"`
	Brand  string `form:"brand"`
	Search string `form:"q"`
}

// CreateBuyingListRequest represents a request to add an item to the buying list
type CreateBuyingListRequest struct {
	SourceType        string                 `json:"sourceType" binding:"omitempty,oneof=manual evaluator supplier"`
	Brand             string                 `json:"brand" binding:"required"`
	Model             string                 `json:"model" binding:"required"`
	Category          string                 `json:"category"`
	Condition         string                 `json:"condition"`
	Colour            string                 `json:"colour"`
	TargetBuyPriceEUR *decimal.Decimal       `json:"targetBuyPriceEur" binding:"required"`
	Notes             string                 `json:"notes"`
	SupplierID        *uuid.UUID             `json:"supplierId"`
	EvaluationID      *string                `json:"evaluationId"`
	LandedCost        *buyinglist.LandedCost `json:"landedCost"`
}

type BuyingListQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending ordered received cancelled"`
	SourceType string `form:"sourceType" binding:"omitempty,oneof=manual evaluator supplier"`
	SupplierID string `form:"supplierId" binding:"omitempty,uuid"`
}

// CreateSupplierRequest represents a request to register a supplier
type CreateSupplierRequest struct {
	Name            string                  `json:"name" binding:"required"`
	ContactEmail    string                  `json:"contactEmail" binding:"omitempty,email"`
	DefaultCurrency string                  `json:"defaultCurrency" binding:"omitempty,len=3"`
	ImportTemplate  supplier.ImportTemplate `json:"importTemplate"`
}

// ImportForm holds the non-file fields of a multipart supplier import
type ImportForm struct {
	SupplierID   string `form:"supplierId" binding:"required,uuid"`
	ExchangeRate string `form:"exchangeRate"`
	Async        bool   `form:"async"`
}

// CreateSourcingRequest represents a client sourcing request
type CreateSourcingRequest struct {
	ClientName  string           `json:"clientName" binding:"required"`
	Brand       string           `json:"brand" binding:"required"`
	Model       string           `json:"model"`
	Description string           `json:"description"`
	BudgetEUR   *decimal.Decimal `json:"budgetEur"`
	Status      string           `json:"status" binding:"omitempty,oneof=open sourcing sourced fulfilled lost"`
	Notes       string           `json:"notes"`
}

type SourcingListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open sourcing sourced fulfilled lost"`
}

type JobListQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=queued running completed failed cancelled"`
	Type       string `form:"type"`
	SupplierID string `form:"supplierId" binding:"omitempty,uuid"`
}

// PricingRequest represents a request for AI market research on an item
type PricingRequest struct {
	Brand     string `json:"brand" binding:"required"`
	Model     string `json:"model" binding:"required"`
	Category  string `json:"category"`
	Condition string `json:"condition"`
	Colour    string `json:"colour"`
	Notes     string `json:"notes"`
}

// LimitQuery bounds list endpoints. Zero selects the service default.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type ProfitSummaryQuery struct {
	Months int `form:"months" binding:"omitempty,min=1"`
}

func optionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
