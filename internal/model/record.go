// Package model defines the core domain models used throughout the application.
package model

// Transaction set identifiers for the supported document types.
const (
	TransactionTypeInvoice       = "810"
	TransactionTypePurchaseOrder = "850"
)

// Line item status values.
const (
	ItemStatusActive      = "ACTIVE"
	ItemStatusCancelled   = "CANCELLED"
	ItemStatusBackordered = "BACKORDERED"
)

// LineItem is one ordered line of a transaction (IT1/PO1 loops).
type LineItem struct {
	Quantity           *float64 `json:"quantity"`
	UnitPrice          *float64 `json:"unit_price"`
	ExtendedAmount     *float64 `json:"extended_amount"`
	PackSize           *int     `json:"pack_size"`
	UnitOfMeasure      string   `json:"unit_of_measure"`
	ItemID             string   `json:"item_id"`
	ItemDescription    string   `json:"item_description"`
	Status             string   `json:"status"`
	ProductIDQualifier string   `json:"product_id_qualifier"`
	StockNumber        string   `json:"nsn"`
	VendorPartNumber   string   `json:"vendor_part_number"`
	BuyerPartNumber    string   `json:"buyer_part_number"`
	LineNumber         int      `json:"line_number"`
}

// Party identifies one named trading-partner role (N1 loops).
type Party struct {
	EntityCode  string `json:"entity_code"`
	Name        string `json:"name"`
	IDQualifier string `json:"id_qualifier"`
	Identifier  string `json:"identifier"`
}

// Contact carries per-function contact details (PER segment).
type Contact struct {
	FunctionCode string `json:"function_code"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Fax          string `json:"fax"`
}

// Address holds the street and locality lines attached to a party (N3/N4).
type Address struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// DateReference is one dated fact on the transaction (DTM segment).
type DateReference struct {
	Qualifier string `json:"qualifier"`
	DateValue string `json:"date_value"`
	TimeValue string `json:"time_value"`
}

// Reference is one (qualifier, identifier) pair (REF/N9 segments).
type Reference struct {
	Qualifier   string `json:"qualifier"`
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
}

// CodePair is a single qualifier/code entry within a code list (LQ segment).
type CodePair struct {
	Qualifier    string `json:"qualifier"`
	IndustryCode string `json:"industry_code"`
}

// CodeList groups code pairs under an agency qualifier (LM/LQ loops).
type CodeList struct {
	AgencyCode         string     `json:"agency_code"`
	SourceSubqualifier string     `json:"source_subqualifier"`
	Codes              []CodePair `json:"codes"`
}

// FinancialBreakdown is one FA2 breakdown pair.
type FinancialBreakdown struct {
	BreakdownCode string `json:"breakdown_code"`
	FinancialCode string `json:"financial_code"`
}

// FinancialAccounting carries the FA1/FA2 accounting block.
type FinancialAccounting struct {
	AgencyCode     string               `json:"agency_code"`
	BreakdownCodes []FinancialBreakdown `json:"breakdown_codes"`
}

// CarrierDetail is the minimal carrier form (CAD segment, routing only).
type CarrierDetail struct {
	TransportMethod  string `json:"transport_method"`
	EquipmentInitial string `json:"equipment_initial"`
	EquipmentNumber  string `json:"equipment_number"`
	SCAC             string `json:"scac"`
	Routing          string `json:"routing"`
}

// CarrierInfo is the fuller carrier form (TD5 segment).
type CarrierInfo struct {
	RoutingSequence string `json:"routing_sequence"`
	IDQualifier     string `json:"id_qualifier"`
	IDCode          string `json:"id_code"`
	TransportMethod string `json:"transport_method"`
	Routing         string `json:"routing"`
	ShipmentMethod  string `json:"shipment_method"`
}

// ServiceCharge is one allowance or charge entry (SAC segment).
type ServiceCharge struct {
	Amount          *float64 `json:"amount"`
	Indicator       string   `json:"indicator"`
	Code            string   `json:"code"`
	AgencyQualifier string   `json:"agency_qualifier"`
	AgencyCode      string   `json:"agency_code"`
}

// PaymentTerms carries discount and net-due terms (ITD segment).
type PaymentTerms struct {
	DiscountPercent *float64 `json:"discount_percent"`
	DiscountDueDays *int     `json:"discount_due_days"`
	NetDueDays      *int     `json:"net_due_days"`
	TermsType       string   `json:"terms_type"`
	TermsBasisDate  string   `json:"terms_basis_date"`
	DueDate         string   `json:"due_date"`
}

// FOBTerms carries shipping payment terms (FOB segment).
type FOBTerms struct {
	ShipmentMethod      string `json:"shipment_method"`
	LocationQualifier   string `json:"location_qualifier"`
	Description         string `json:"description"`
	TransportationTerms string `json:"transportation_terms"`
}

// SpecialInstruction is one note block (N9 header plus MTX message lines).
type SpecialInstruction struct {
	ReferenceQualifier string   `json:"reference_qualifier"`
	ReferenceID        string   `json:"reference_id"`
	Messages           []string `json:"messages"`
}

// TransactionRecord is the structured transaction extracted from source text.
// It is constructed once by the extraction step, consumed read-only by the
// assembler, and holds no persistence of its own.
type TransactionRecord struct {
	// Header
	TransactionType    string `json:"transaction_type"`
	TransactionPurpose string `json:"transaction_purpose"`
	TransactionCode    string `json:"transaction_type_code"`
	PONumber           string `json:"po_number"`
	PODate             string `json:"po_date"`
	InvoiceNumber      string `json:"invoice_number"`
	InvoiceDate        string `json:"invoice_date"`
	Currency           string `json:"currency"`

	// Parties
	Buyer    *Party `json:"buyer"`
	Seller   *Party `json:"seller"`
	RemitTo  *Party `json:"remit_to"`
	Issuer   *Party `json:"issuer"`
	BillTo   *Party `json:"bill_to"`
	ShipTo   *Party `json:"ship_to"`
	ShipFrom *Party `json:"ship_from"`

	// Addresses attached to specific party roles
	BuyerAddress   *Address `json:"buyer_address"`
	SellerAddress  *Address `json:"seller_address"`
	RemitToAddress *Address `json:"remit_to_address"`
	BillToAddress  *Address `json:"bill_to_address"`
	ShipToAddress  *Address `json:"ship_to_address"`

	Contacts   []Contact       `json:"contacts"`
	Items      []LineItem      `json:"items"`
	References []Reference     `json:"references"`
	Dates      []DateReference `json:"dates"`

	// Two independent code-list blocks at different output positions
	CodeLists        []CodeList `json:"code_lists"`
	CodeListsPostSAC []CodeList `json:"code_lists_post_sac"`

	FinancialAccounting *FinancialAccounting `json:"financial_accounting"`
	PaymentTerms        *PaymentTerms        `json:"payment_terms"`
	CarrierInfo         *CarrierInfo         `json:"carrier_info"`
	CarrierDetail       *CarrierDetail       `json:"carrier_detail"`
	FOBTerms            *FOBTerms            `json:"fob_terms"`
	SpecialInstructions []SpecialInstruction `json:"special_instructions"`
	ServiceCharges      []ServiceCharge      `json:"service_charges"`

	// Totals
	SubtotalAmount *float64 `json:"subtotal_amount"`
	TotalAmount    *float64 `json:"total_amount"`
	LineItemCount  *int     `json:"number_of_line_items"`

	// Extraction metadata
	ConfidenceScore *float64 `json:"confidence_score"`
	Notes           string   `json:"notes"`
}

// ContactByFunction returns the first contact with the given function code.
func (r *TransactionRecord) ContactByFunction(code string) *Contact {
	for i := range r.Contacts {
		if r.Contacts[i].FunctionCode == code {
			return &r.Contacts[i]
		}
	}
	return nil
}
