// =============================================================================
// Picking List Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser   (builds OrderLine values from the merchant export)
//   - picking     (consumes OrderLine, produces PickingEntry)
//   - xlsxwriter / xmlwriter (render PickingEntry)
//   - store       (persists PickingEntry)
//
// =============================================================================

package types

import (
	"strings"
	"time"
)

// =============================================================================
// ORDER EXPORT HEADERS
// =============================================================================
// The merchant order export carries a fixed set of named columns. Any other
// column in the uploaded file is dropped at ingestion.

const (
	HeaderOrderedAt        = "注文日時"
	HeaderShippingMethod   = "配送方法(複数配送先)"
	HeaderCheckItem        = "チェック項目"
	HeaderStore            = "販売店舗"
	HeaderManagementNumber = "GoQ管理番号"
	HeaderTrackingNumber   = "お荷物伝票番号"
	HeaderPostalCode       = "送付先郵便番号"
	HeaderAddress          = "送付先住所（全て）"
	HeaderRecipientName    = "送付先氏名"
	HeaderProductName      = "商品名"
	HeaderQuantity         = "個数"
	HeaderJANCode          = "JANコード"
	HeaderTotalAmount      = "合計金額"
	HeaderOrderNumber      = "受注番号"
	HeaderOrdererName      = "注文者氏名"
	HeaderItemCode         = "商品コード"
	HeaderManagementSKU    = "SKU管理番号"
	HeaderProductURL       = "商品URL"
	HeaderItemSKU          = "商品SKU"
)

// KnownHeaders lists the order export headers in file order.
var KnownHeaders = []string{
	HeaderOrderedAt,
	HeaderShippingMethod,
	HeaderCheckItem,
	HeaderStore,
	HeaderManagementNumber,
	HeaderTrackingNumber,
	HeaderPostalCode,
	HeaderAddress,
	HeaderRecipientName,
	HeaderProductName,
	HeaderQuantity,
	HeaderJANCode,
	HeaderTotalAmount,
	HeaderOrderNumber,
	HeaderOrdererName,
	HeaderItemCode,
	HeaderManagementSKU,
	HeaderProductURL,
	HeaderItemSKU,
}

// =============================================================================
// ORDER LINE
// =============================================================================

// OrderLine is a single row of the merchant order export.
// All values are kept as the strings found in the file; numeric fields are
// parsed by the consumers that need them.
type OrderLine struct {
	OrderedAt        string
	ShippingMethod   string
	CheckItem        string
	Store            string
	ManagementNumber string
	TrackingNumber   string
	PostalCode       string
	Address          string
	RecipientName    string
	ProductName      string

	// Quantity is the ordered item count as a numeric string.
	Quantity string

	JANCode     string
	TotalAmount string
	OrderNumber string
	OrdererName string

	// ItemCode is the primary item code (商品コード).
	ItemCode string

	// ManagementSKU is the SKU management code (SKU管理番号). It is the key
	// of the unit override table.
	ManagementSKU string

	ProductURL string

	// ItemSKU is the alternate item identifier (商品SKU).
	ItemSKU string

	// RowNumber is the 1-indexed row in the source file, for error reporting.
	RowNumber int
}

// OrderLineFromFields builds an OrderLine from a header -> value map.
// Headers outside KnownHeaders are ignored.
func OrderLineFromFields(fields map[string]string) OrderLine {
	return OrderLine{
		OrderedAt:        fields[HeaderOrderedAt],
		ShippingMethod:   fields[HeaderShippingMethod],
		CheckItem:        fields[HeaderCheckItem],
		Store:            fields[HeaderStore],
		ManagementNumber: fields[HeaderManagementNumber],
		TrackingNumber:   fields[HeaderTrackingNumber],
		PostalCode:       fields[HeaderPostalCode],
		Address:          fields[HeaderAddress],
		RecipientName:    fields[HeaderRecipientName],
		ProductName:      fields[HeaderProductName],
		Quantity:         fields[HeaderQuantity],
		JANCode:          fields[HeaderJANCode],
		TotalAmount:      fields[HeaderTotalAmount],
		OrderNumber:      fields[HeaderOrderNumber],
		OrdererName:      fields[HeaderOrdererName],
		ItemCode:         fields[HeaderItemCode],
		ManagementSKU:    fields[HeaderManagementSKU],
		ProductURL:       fields[HeaderProductURL],
		ItemSKU:          fields[HeaderItemSKU],
	}
}

// Fields returns the line as a header -> value map.
func (l OrderLine) Fields() map[string]string {
	return map[string]string{
		HeaderOrderedAt:        l.OrderedAt,
		HeaderShippingMethod:   l.ShippingMethod,
		HeaderCheckItem:        l.CheckItem,
		HeaderStore:            l.Store,
		HeaderManagementNumber: l.ManagementNumber,
		HeaderTrackingNumber:   l.TrackingNumber,
		HeaderPostalCode:       l.PostalCode,
		HeaderAddress:          l.Address,
		HeaderRecipientName:    l.RecipientName,
		HeaderProductName:      l.ProductName,
		HeaderQuantity:         l.Quantity,
		HeaderJANCode:          l.JANCode,
		HeaderTotalAmount:      l.TotalAmount,
		HeaderOrderNumber:      l.OrderNumber,
		HeaderOrdererName:      l.OrdererName,
		HeaderItemCode:         l.ItemCode,
		HeaderManagementSKU:    l.ManagementSKU,
		HeaderProductURL:       l.ProductURL,
		HeaderItemSKU:          l.ItemSKU,
	}
}

// =============================================================================
// PICKING ENTRY
// =============================================================================

// PickingEntry is one row of the picking list: every order line that maps to
// the same JAN code (or product name, when no JAN is known) is merged here.
type PickingEntry struct {
	// ProductName is the display name of the product.
	ProductName string

	// JANCode is the canonical unit code. Empty when the line was not
	// resolved against the reference table.
	JANCode string

	// ParentJANCode is set when a contributing line was a kit component.
	ParentJANCode string

	// Quantity is the sum of the order line quantities.
	Quantity int

	// NormalizedUnits is the sum of quantity x units-per-package.
	NormalizedUnits int

	// ParentNormalizedUnits is the kit parent quantity, display only.
	ParentNormalizedUnits int
}

// IsKit reports whether the entry is a kit/set product. The flag follows the
// parent JAN code, not the parent ASIN: a kit row without a parent JAN is
// totalled like a regular product.
func (e PickingEntry) IsKit() bool {
	return strings.TrimSpace(e.ParentJANCode) != ""
}

// SortKey returns the key callers use to order the list by name.
func (e PickingEntry) SortKey() string {
	return e.ProductName
}

// TotalContribution is the entry's share of the grand total. Kit entries
// count in order terms, everything else in single units.
func (e PickingEntry) TotalContribution() int {
	if e.IsKit() {
		return e.Quantity
	}
	return e.NormalizedUnits
}

// =============================================================================
// PICKING LIST
// =============================================================================

// PickingList is a computed list together with the header data printed
// above it.
type PickingList struct {
	// RunID identifies the run in file names and the history store.
	RunID string

	// SourceFile is the order export the list was built from.
	SourceFile string

	// ShippingMethod is taken from the first order line.
	ShippingMethod string

	// LoadedAt is when the order export was read.
	LoadedAt time.Time

	Entries []PickingEntry

	// Total is the grand total (see PickingEntry.TotalContribution).
	Total int

	// ExcludedCount is the number of order lines not in the reference table.
	ExcludedCount int

	EligibleCount int
	SkippedCount  int
}
