package edi

import (
	"context"

	"github.com/mercuryedi/mercury/internal/model"
)

// purchaseOrderSteps is the fixed composition for the 850 purchase-order
// document type.
var purchaseOrderSteps = []compositionStep{
	{name: "beginning", emit: (*Assembler).poBeginning},
	{name: "currency", emit: (*Assembler).poCurrency},
	{name: "references", emit: (*Assembler).referenceLoop},
	{name: "shipping-terms", emit: (*Assembler).poShippingTerms},
	{name: "service-charges", emit: (*Assembler).serviceChargeLoop},
	{name: "payment-terms", emit: (*Assembler).paymentTerms},
	{name: "dates", emit: (*Assembler).dateLoop},
	{name: "carrier", emit: (*Assembler).carrierInfoSegment},
	{name: "special-instructions", emit: (*Assembler).poSpecialInstructions},
	{name: "parties", emit: (*Assembler).poParties},
	{name: "line-items", emit: (*Assembler).poLineItems},
	{name: "line-count", emit: (*Assembler).lineCount},
	{name: "grand-total", emit: (*Assembler).poGrandTotal},
}

// poBeginning emits the BEG segment. A missing order type defaults to a
// new order.
func (a *Assembler) poBeginning(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	orderType := rec.TransactionCode
	if orderType == "" {
		orderType = "NE"
	}

	seg, err := a.encode(ctx, "BEG", map[int]any{
		1: rec.TransactionPurpose,
		2: orderType,
		3: rec.PONumber,
		5: rec.PODate,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// poCurrency always emits the CUR segment, defaulting to USD.
func (a *Assembler) poCurrency(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	currency := rec.Currency
	if currency == "" {
		currency = "USD"
	}

	seg, err := a.encode(ctx, "CUR", map[int]any{
		1: "BY",
		2: currency,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// poShippingTerms emits the FOB segment when shipping terms are present.
func (a *Assembler) poShippingTerms(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	fob := rec.FOBTerms
	if fob == nil {
		return nil, nil
	}

	seg, err := a.encode(ctx, "FOB", map[int]any{
		1: fob.ShipmentMethod,
		2: fob.LocationQualifier,
		3: fob.Description,
		4: fob.TransportationTerms,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// poSpecialInstructions emits one N9 header per instruction block followed
// by an MTX segment per message line.
func (a *Assembler) poSpecialInstructions(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string

	for _, instruction := range rec.SpecialInstructions {
		qualifier := instruction.ReferenceQualifier
		if qualifier == "" {
			qualifier = "L1"
		}

		seg, err := a.encode(ctx, "N9", map[int]any{
			1: qualifier,
			2: instruction.ReferenceID,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		for _, message := range instruction.Messages {
			seg, err := a.encode(ctx, "MTX", map[int]any{
				2: message,
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	return segments, nil
}

// poParties emits the N1 loops in the fixed buyer → seller → bill-to →
// ship-to → ship-from hierarchy. Each slot binds its own record field and
// re-tags position 1 with the slot's canonical entity code.
func (a *Assembler) poParties(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	slots := []struct {
		party      *model.Party
		address    *model.Address
		entityCode string
	}{
		{entityCode: "BY", party: rec.Buyer, address: rec.BuyerAddress},
		{entityCode: "SE", party: rec.Seller, address: rec.SellerAddress},
		{entityCode: "BT", party: rec.BillTo, address: rec.BillToAddress},
		{entityCode: "ST", party: rec.ShipTo, address: rec.ShipToAddress},
		{entityCode: "SF", party: rec.ShipFrom},
	}

	var segments []string
	for _, slot := range slots {
		if slot.party == nil {
			continue
		}

		seg, err := a.encode(ctx, "N1", map[int]any{
			1: slot.entityCode,
			2: slot.party.Name,
			3: slot.party.IDQualifier,
			4: slot.party.Identifier,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		addressSegs, err := a.addressSegments(ctx, slot.address)
		if err != nil {
			return nil, err
		}
		segments = append(segments, addressSegs...)
	}

	return segments, nil
}

// poLineItems emits one PO1 segment per line item with PID description,
// PO4 pack-size, and AMT extended-amount sub-segments wherever each is
// present. Cancelled lines report zero quantity.
func (a *Assembler) poLineItems(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string

	for _, item := range rec.Items {
		qualifier := item.ProductIDQualifier
		if qualifier == "" {
			qualifier = "BP"
		}
		productID := item.StockNumber
		if productID == "" {
			productID = item.ItemID
		}

		seg, err := a.encode(ctx, "PO1", map[int]any{
			1: item.LineNumber,
			2: itemQuantity(item),
			3: item.UnitOfMeasure,
			4: floatValue(item.UnitPrice),
			6: qualifier,
			7: productID,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		if item.ItemDescription != "" {
			seg, err := a.encode(ctx, "PID", map[int]any{
				1: "F",
				5: item.ItemDescription,
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}

		if item.PackSize != nil {
			seg, err := a.encode(ctx, "PO4", map[int]any{
				1: *item.PackSize,
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}

		if item.ExtendedAmount != nil {
			seg, err := a.encode(ctx, "AMT", map[int]any{
				1: "1",
				2: *item.ExtendedAmount,
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	return segments, nil
}

// poGrandTotal emits the gross order total AMT segment when a total
// exists.
func (a *Assembler) poGrandTotal(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	if rec.TotalAmount == nil {
		return nil, nil
	}

	seg, err := a.encode(ctx, "AMT", map[int]any{
		1: "GV",
		2: *rec.TotalAmount,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}
