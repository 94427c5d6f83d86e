// =============================================================================
// Picking List Generator - XML Writer Module
// =============================================================================
//
// This module renders a picking list as XML for the warehouse handheld
// import. The document looks like this:
//
//   <pickingList runId="..." source="orders.csv" shippingMethod="ネコポス" loadedAt="2024-05-01T09:00:00+09:00">
//     <item n="1">
//       <productName>カレー</productName>
//       <jan>4900000000001</jan>
//       <janDisplay>0001</janDisplay>
//       <quantity>2</quantity>
//       <units>12</units>
//     </item>
//     <item n="2" kit="true">
//       ...
//       <parentJan>4900000000009</parentJan>
//       <parentUnits>8</parentUnits>
//     </item>
//     <summary total="14" excluded="1" eligible="3" skipped="0"/>
//   </pickingList>
//
// Items are numbered from 1 in list order.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/ginjaninja78/picking-list/internal/picking"
	"github.com/ginjaninja78/picking-list/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// JANDisplay formats the janDisplay element.
	JANDisplay picking.JANDisplay
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// XML DOCUMENT
// =============================================================================

type xmlDocument struct {
	XMLName        xml.Name   `xml:"pickingList"`
	RunID          string     `xml:"runId,attr,omitempty"`
	Source         string     `xml:"source,attr,omitempty"`
	ShippingMethod string     `xml:"shippingMethod,attr,omitempty"`
	LoadedAt       string     `xml:"loadedAt,attr,omitempty"`
	Items          []xmlItem  `xml:"item"`
	Summary        xmlSummary `xml:"summary"`
}

type xmlItem struct {
	N           int    `xml:"n,attr"`
	Kit         bool   `xml:"kit,attr,omitempty"`
	ProductName string `xml:"productName"`
	JAN         string `xml:"jan,omitempty"`
	JANDisplay  string `xml:"janDisplay,omitempty"`
	Quantity    int    `xml:"quantity"`
	Units       int    `xml:"units"`
	ParentJAN   string `xml:"parentJan,omitempty"`
	ParentUnits int    `xml:"parentUnits,omitempty"`
}

type xmlSummary struct {
	Total    int `xml:"total,attr"`
	Excluded int `xml:"excluded,attr"`
	Eligible int `xml:"eligible,attr"`
	Skipped  int `xml:"skipped,attr"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders a picking list with the default options.
func Generate(list *types.PickingList, display picking.JANDisplay) ([]byte, error) {
	opts := DefaultGenerateOptions()
	opts.JANDisplay = display
	return GenerateWithOptions(list, opts)
}

// GenerateWithOptions renders a picking list.
//
// PARAMETERS:
//   - list: The computed picking list.
//   - options: Indentation, declaration and JAN display settings.
//
// RETURNS:
//   - The XML document bytes.
//   - An error if marshalling fails.
func GenerateWithOptions(list *types.PickingList, options GenerateOptions) ([]byte, error) {
	if list == nil {
		return nil, fmt.Errorf("picking list is nil")
	}

	doc := buildDocument(list, options)

	var buf bytes.Buffer
	if options.IncludeXMLDeclaration {
		buf.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buf)
	enc.Indent("", options.Indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// WriteFile renders list to path.
func WriteFile(path string, list *types.PickingList, display picking.JANDisplay) error {
	data, err := Generate(list, display)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

func buildDocument(list *types.PickingList, options GenerateOptions) *xmlDocument {
	doc := &xmlDocument{
		RunID:          list.RunID,
		Source:         list.SourceFile,
		ShippingMethod: list.ShippingMethod,
		Items:          make([]xmlItem, 0, len(list.Entries)),
		Summary: xmlSummary{
			Total:    list.Total,
			Excluded: list.ExcludedCount,
			Eligible: list.EligibleCount,
			Skipped:  list.SkippedCount,
		},
	}
	if !list.LoadedAt.IsZero() {
		doc.LoadedAt = list.LoadedAt.Format(time.RFC3339)
	}

	for i, e := range list.Entries {
		item := xmlItem{
			N:           i + 1,
			ProductName: e.ProductName,
			JAN:         e.JANCode,
			JANDisplay:  options.JANDisplay.Format(e.JANCode),
			Quantity:    e.Quantity,
			Units:       e.NormalizedUnits,
		}
		if e.IsKit() {
			item.Kit = true
			item.ParentJAN = e.ParentJANCode
			item.ParentUnits = e.ParentNormalizedUnits
		}
		doc.Items = append(doc.Items, item)
	}

	return doc
}
