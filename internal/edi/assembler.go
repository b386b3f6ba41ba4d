package edi

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/model"
)

// Assembler walks a document type's composition steps and emits the full
// ordered segment sequence for a validated transaction record. Segment
// contents stay schema-driven through the encoder; only the step orderings
// are fixed per document type, since they encode external trading-partner
// conventions.
type Assembler struct {
	enc     *Encoder
	agency  string
	version string
}

// NewAssembler creates an assembler encoding against the given schema
// namespace.
func NewAssembler(enc *Encoder, agency, version string) *Assembler {
	return &Assembler{enc: enc, agency: agency, version: version}
}

// compositionStep is one gated stage of a document type's fixed step list.
// Steps that find no data emit nothing rather than placeholder segments.
type compositionStep struct {
	emit func(*Assembler, context.Context, *model.TransactionRecord) ([]string, error)
	name string
}

var compositions = map[string][]compositionStep{
	model.TransactionTypeInvoice:       invoiceSteps,
	model.TransactionTypePurchaseOrder: purchaseOrderSteps,
}

// Assemble emits the complete ordered segment sequence for the record.
// An unsupported document type fails before any segment is produced, and
// any encoding failure aborts the whole assembly; callers never see a
// partial sequence.
func (a *Assembler) Assemble(ctx context.Context, rec *model.TransactionRecord, documentType string) ([]string, error) {
	steps, ok := compositions[documentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedTransactionType, documentType)
	}

	var segments []string
	for _, step := range steps {
		out, err := step.emit(a, ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("%s step failed: %w", step.name, err)
		}
		segments = append(segments, out...)
	}

	return segments, nil
}

func (a *Assembler) encode(ctx context.Context, segmentID string, values map[int]any) (string, error) {
	return a.enc.Encode(ctx, segmentID, values, a.agency, a.version)
}

// minorUnits renders a monetary amount as integer minor units, e.g.
// 1811.70 → "181170".
func minorUnits(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount*100)), 10)
}

func floatValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// addressSegments emits the N3/N4 sub-segments for a party's address when
// street or locality data exists.
func (a *Assembler) addressSegments(ctx context.Context, addr *model.Address) ([]string, error) {
	if addr == nil {
		return nil, nil
	}

	var segments []string

	if addr.StreetLine1 != "" || addr.StreetLine2 != "" {
		seg, err := a.encode(ctx, "N3", map[int]any{
			1: addr.StreetLine1,
			2: addr.StreetLine2,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	if addr.City != "" || addr.State != "" || addr.PostalCode != "" {
		seg, err := a.encode(ctx, "N4", map[int]any{
			1: addr.City,
			2: addr.State,
			3: addr.PostalCode,
			4: addr.CountryCode,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// contactSegment emits one PER segment with TE/EM/FX pairs appended in
// order for whichever channels the contact carries.
func (a *Assembler) contactSegment(ctx context.Context, contact *model.Contact) (string, error) {
	values := map[int]any{
		1: contact.FunctionCode,
		2: contact.Name,
	}
	pos := 3
	if contact.Phone != "" {
		values[pos] = "TE"
		values[pos+1] = contact.Phone
		pos += 2
	}
	if contact.Email != "" {
		values[pos] = "EM"
		values[pos+1] = contact.Email
		pos += 2
	}
	if contact.Fax != "" {
		values[pos] = "FX"
		values[pos+1] = contact.Fax
	}
	return a.encode(ctx, "PER", values)
}

// codeListLoop emits one LM segment per code list followed by an LQ
// sub-segment per pair. Pairs missing their code are dropped, and a list
// whose pairs are all empty is skipped entirely.
func (a *Assembler) codeListLoop(ctx context.Context, lists []model.CodeList) ([]string, error) {
	var segments []string

	for _, list := range lists {
		var pairs []model.CodePair
		for _, pair := range list.Codes {
			if pair.IndustryCode != "" {
				pairs = append(pairs, pair)
			}
		}
		if len(pairs) == 0 {
			continue
		}

		seg, err := a.encode(ctx, "LM", map[int]any{
			1: list.AgencyCode,
			2: list.SourceSubqualifier,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)

		for _, pair := range pairs {
			seg, err := a.encode(ctx, "LQ", map[int]any{
				1: pair.Qualifier,
				2: pair.IndustryCode,
			})
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	return segments, nil
}

// financialLoop emits the FA1/FA2 accounting block when breakdown pairs
// exist.
func (a *Assembler) financialLoop(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	fa := rec.FinancialAccounting
	if fa == nil || len(fa.BreakdownCodes) == 0 {
		return nil, nil
	}

	agency := fa.AgencyCode
	if agency == "" {
		agency = "DZ"
	}

	seg, err := a.encode(ctx, "FA1", map[int]any{1: agency})
	if err != nil {
		return nil, err
	}
	segments := []string{seg}

	for _, breakdown := range fa.BreakdownCodes {
		seg, err := a.encode(ctx, "FA2", map[int]any{
			1: breakdown.BreakdownCode,
			2: breakdown.FinancialCode,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// referenceLoop emits one REF segment per reference entry. The free-form
// description element stays off the wire.
func (a *Assembler) referenceLoop(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string
	for _, ref := range rec.References {
		seg, err := a.encode(ctx, "REF", map[int]any{
			1: ref.Qualifier,
			2: ref.Identifier,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// dateLoop emits one DTM segment per date entry in insertion order.
func (a *Assembler) dateLoop(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string
	for _, dt := range rec.Dates {
		seg, err := a.encode(ctx, "DTM", map[int]any{
			1: dt.Qualifier,
			2: dt.DateValue,
			3: dt.TimeValue,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// paymentTerms emits the ITD segment when payment terms are present. The
// invoice-date basis code rides along only when a discount exists.
func (a *Assembler) paymentTerms(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	terms := rec.PaymentTerms
	if terms == nil {
		return nil, nil
	}

	termsType := terms.TermsType
	if termsType == "" {
		termsType = "01"
	}

	values := map[int]any{
		1: termsType,
		3: floatValue(terms.DiscountPercent),
		4: intValue(terms.DiscountDueDays),
		6: intValue(terms.NetDueDays),
		7: terms.DueDate,
	}
	if terms.DiscountPercent != nil {
		values[2] = "3"
	}

	seg, err := a.encode(ctx, "ITD", values)
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// carrierSegment emits the minimal CAD form when a detail-style carrier
// exists, else the fuller TD5 form, never both.
func (a *Assembler) carrierSegment(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	if rec.CarrierDetail != nil {
		seg, err := a.encode(ctx, "CAD", map[int]any{
			5: rec.CarrierDetail.Routing,
		})
		if err != nil {
			return nil, err
		}
		return []string{seg}, nil
	}

	return a.carrierInfoSegment(ctx, rec)
}

// carrierInfoSegment emits the TD5 routing segment when an info-style
// carrier exists.
func (a *Assembler) carrierInfoSegment(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	carrier := rec.CarrierInfo
	if carrier == nil {
		return nil, nil
	}

	routingSequence := carrier.RoutingSequence
	if routingSequence == "" {
		routingSequence = "O"
	}
	idQualifier := carrier.IDQualifier
	if idQualifier == "" {
		idQualifier = "2"
	}
	transportMethod := carrier.TransportMethod
	if transportMethod == "" {
		transportMethod = "M"
	}

	seg, err := a.encode(ctx, "TD5", map[int]any{
		1: routingSequence,
		2: idQualifier,
		3: carrier.IDCode,
		4: transportMethod,
		5: carrier.Routing,
	})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// serviceChargeLoop emits one SAC segment per charge/allowance entry,
// amounts in minor units.
func (a *Assembler) serviceChargeLoop(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	var segments []string
	for _, charge := range rec.ServiceCharges {
		var amount any
		if charge.Amount != nil {
			amount = minorUnits(*charge.Amount)
		}

		seg, err := a.encode(ctx, "SAC", map[int]any{
			1: charge.Indicator,
			2: charge.Code,
			3: charge.AgencyQualifier,
			4: charge.AgencyCode,
			5: amount,
		})
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// lineCount emits the CTT transaction-totals segment when a line count is
// present.
func (a *Assembler) lineCount(ctx context.Context, rec *model.TransactionRecord) ([]string, error) {
	if rec.LineItemCount == nil {
		return nil, nil
	}

	seg, err := a.encode(ctx, "CTT", map[int]any{1: *rec.LineItemCount})
	if err != nil {
		return nil, err
	}
	return []string{seg}, nil
}

// itemQuantity resolves the quantity token for a line item; cancelled
// lines always report zero.
func itemQuantity(item model.LineItem) any {
	if item.Status == model.ItemStatusCancelled {
		return 0
	}
	return floatValue(item.Quantity)
}
