package edi

import (
	"context"
	"strings"

	"github.com/mercuryedi/mercury/internal/model"
)

// invoiceSteps is the fixed composition for the 810 invoice document type.
// The ordering follows the DoD-style transaction layout: parties and code
// sources lead the line items, charges and totals close the set.
var invoiceSteps = []compositionStep{
	{name: "beginning", emit: (*Assembler).invoiceBeginning},
	{name: "parties", emit: (*Assembler).invoiceParties},
	{name: "code-lists", emit: func(a *Assembler, ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
		return a.codeListLoop(ctx, rec.CodeLists)
	}},
	{name: "financial-accounting", emit: (*Assembler).financialLoop},
	{name: "line-items", emit: (*Assembler).invoiceLineItems},
	{name: "references", emit: (*Assembler).referenceLoop},
	{name: "dates", emit: (*Assembler).dateLoop},
	{name: "payment-terms", emit: (*Assembler).paymentTerms},
	{name: "carrier", emit: (*Assembler).carrierSegment},
	{name: "service-charges", emit: (*Assembler).serviceChargeLoop},
	{name: "code-lists-post-sac", emit: func(a *Assembler, ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
		return a.codeListLoop(ctx, rec.CodeListsPostSAC)
	}},
	{name: "total", emit: (*Assembler).invoiceTotal},
	{name: "line-count", emit: (*Assembler).lineCount},
}

// invoiceBeginning emits the BIG segment when an invoice number exists.
func (a *Assembler) invoiceBeginning(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	if rec.InvoiceNumber == "" {
		return nil, nil
	}

	seg, err := a.encode(ctx, "BIG", map[int]any{
		1: rec.InvoiceDate,
		2: rec.InvoiceNumber,
		3: rec.PODate,
		4: rec.PONumber,
		7: rec.TransactionCode,
		8: rec.TransactionPurpose,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// invoiceParties emits the N1 loops for an invoice. Two patterns exist:
// the bill-to/issuer pair (government style, message-direction indicators
// and a fixed extra issuer-DODAAC segment) and the remit-to/ship-to pair
// (commercial style, used only when no issuer is present). Each slot
// re-tags position 1 with its canonical entity code; the record's own
// entity_code field is not trusted here.
func (a *Assembler) invoiceParties(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string

	appendSegments := func(more []string, err error) error {
		if err != nil {
			return err
		}
		segments = append(segments, more...)
		return nil
	}

	if rec.BillTo != nil {
		values := map[int]any{
			1: "BT",
			2: rec.BillTo.Name,
			3: rec.BillTo.IDQualifier,
			4: rec.BillTo.Identifier,
		}
		// Message-to indicator rides along when the party has no address
		if rec.BillToAddress == nil {
			values[6] = "TO"
		}
		seg, err := a.encode(ctx, "N1", values)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		if err := appendSegments(a.addressSegments(ctx, rec.BillToAddress)); err != nil {
			return nil, err
		}

		if contact := rec.ContactByFunction("BD"); contact != nil {
			seg, err := a.contactSegment(ctx, contact)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	if rec.Issuer != nil {
		values := map[int]any{
			1: "II",
			2: rec.Issuer.Name,
			3: rec.Issuer.IDQualifier,
			4: rec.Issuer.Identifier,
		}
		if rec.Issuer.Name == "" {
			values[6] = "FR"
		}
		seg, err := a.encode(ctx, "N1", values)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		// Second issuer segment carrying the DODAAC qualifier, emitted
		// only when a bill-to closes the pair
		if rec.BillTo != nil {
			seg, err := a.encode(ctx, "N1", map[int]any{
				1: "II",
				3: "10",
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	if rec.RemitTo != nil && rec.Issuer == nil {
		seg, err := a.encode(ctx, "N1", map[int]any{
			1: "RE",
			2: rec.RemitTo.Name,
			3: rec.RemitTo.IDQualifier,
			4: rec.RemitTo.Identifier,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		if err := appendSegments(a.addressSegments(ctx, rec.RemitToAddress)); err != nil {
			return nil, err
		}

		if contact := rec.ContactByFunction("AP"); contact != nil {
			seg, err := a.contactSegment(ctx, contact)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	if rec.ShipTo != nil && rec.Issuer == nil {
		seg, err := a.encode(ctx, "N1", map[int]any{
			1: "ST",
			2: rec.ShipTo.Name,
			3: rec.ShipTo.IDQualifier,
			4: rec.ShipTo.Identifier,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		if err := appendSegments(a.addressSegments(ctx, rec.ShipToAddress)); err != nil {
			return nil, err
		}

		if contact := rec.ContactByFunction("SR"); contact != nil {
			seg, err := a.contactSegment(ctx, contact)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	return segments, nil
}

// invoiceLineItems emits one IT1 segment per line item. The identifier
// qualifier follows a priority rule: a stock number with no buyer part
// number wins the federal-supply qualifier with separators stripped; a
// buyer part number leads with vendor-part and stock-number secondaries
// (separators retained); otherwise the plain item identifier rides under
// the federal-supply qualifier verbatim.
func (a *Assembler) invoiceLineItems(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string

	for _, item := range rec.Items {
		values := map[int]any{
			1: item.LineNumber,
			2: itemQuantity(item),
			3: item.UnitOfMeasure,
			4: floatValue(item.UnitPrice),
		}

		switch {
		case item.StockNumber != "" && item.BuyerPartNumber == "":
			values[5] = "ST"
			values[6] = "FS"
			values[7] = strings.ReplaceAll(item.StockNumber, "-", "")
		case item.BuyerPartNumber != "":
			values[6] = "BP"
			values[7] = item.BuyerPartNumber
			if item.VendorPartNumber != "" {
				values[8] = "VP"
				values[9] = item.VendorPartNumber
			}
			if item.StockNumber != "" {
				values[10] = "N4"
				values[11] = item.StockNumber
			}
		case item.ItemID != "":
			values[6] = "FS"
			values[7] = item.ItemID
		}

		seg, err := a.encode(ctx, "IT1", values)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// invoiceTotal emits the TDS segment in minor units when a total exists.
func (a *Assembler) invoiceTotal(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	if rec.TotalAmount == nil {
		return nil, nil
	}

	seg, err := a.encode(ctx, "TDS", map[int]any{
		1: minorUnits(*rec.TotalAmount),
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}
