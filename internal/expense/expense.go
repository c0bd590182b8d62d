package expense

// MaxBillImageSize is the hard size limit for uploaded bill images.
const MaxBillImageSize = 5 << 20 // 5 MiB

// Transaction is the strictly typed record produced from a finance signal.
// Field names match what clients already consume.
type Transaction struct {
	Caption   string  `json:"caption"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Type      string  `json:"type"` // "income" or "spent"
	CreatedAt string  `json:"createdAt"`
}

// CaptionResult is the outcome of the item-photo flow.
type CaptionResult struct {
	Items   []string `json:"items"`
	Caption string   `json:"caption"`
}

// BillScan pairs the text read off a bill with the transaction parsed from
// it, so the caller can show the user what was recognized.
type BillScan struct {
	RawText string       `json:"rawText"`
	Parsed  *Transaction `json:"parsed"`
}
