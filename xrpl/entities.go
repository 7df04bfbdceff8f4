package xrpl

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

// ObservedTransaction is one validated Payment seen on the ledger, reduced
// to the fields the reconciliation engine cares about. MemoText carries the
// decoded first memo of the transaction, empty if there is none or it does
// not decode to valid UTF-8.
type ObservedTransaction struct {
	SourceAddress      string
	DestinationAddress string
	AmountDrops        int64
	MemoText           string
	Success            bool
	TxHash             string
}

type rawMemoWrapper struct {
	Memo rawMemo `json:"Memo"`
}

type rawMemo struct {
	MemoData string `json:"MemoData"`
	MemoType string `json:"MemoType"`
}

type rawTransaction struct {
	Account         string           `json:"Account"`
	Destination     string           `json:"Destination"`
	TransactionType string           `json:"TransactionType"`
	Amount          json.RawMessage  `json:"Amount"`
	Memos           []rawMemoWrapper `json:"Memos"`
	Hash            string           `json:"hash"`
}

type rawMeta struct {
	TransactionResult string `json:"TransactionResult"`
}

// decodeMemoText returns the hex-decoded MemoData of the first memo.
func decodeMemoText(memos []rawMemoWrapper) string {
	if len(memos) == 0 {
		return ""
	}
	data, err := hex.DecodeString(memos[0].Memo.MemoData)
	if err != nil || !utf8.Valid(data) {
		return ""
	}
	return string(data)
}

// dropsFromAmount parses a native XRP amount, which is a decimal string of
// drops on the wire. Issued-currency amounts are JSON objects and are not
// supported here.
func dropsFromAmount(raw json.RawMessage) (int64, bool) {
	var amount string
	if err := json.Unmarshal(raw, &amount); err != nil {
		return 0, false
	}
	drops, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, false
	}
	return drops, true
}

// observedFromRaw reduces a raw ledger transaction plus its metadata to an
// ObservedTransaction. The second return value is false for anything that is
// not an XRP Payment.
func observedFromRaw(tx rawTransaction, meta rawMeta) (ObservedTransaction, bool) {
	if tx.TransactionType != "Payment" {
		return ObservedTransaction{}, false
	}
	drops, ok := dropsFromAmount(tx.Amount)
	if !ok {
		return ObservedTransaction{}, false
	}
	return ObservedTransaction{
		SourceAddress:      tx.Account,
		DestinationAddress: tx.Destination,
		AmountDrops:        drops,
		MemoText:           decodeMemoText(tx.Memos),
		Success:            meta.TransactionResult == "tesSUCCESS",
		TxHash:             tx.Hash,
	}, true
}
